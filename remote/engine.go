package remote

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/vlcremote/vlcremote/log"
)

// DefaultCommandTimeout bounds a single dispatch and the confirmation window
// that follows its acknowledgement.
const DefaultCommandTimeout = 5 * time.Second

// Origin tells observers where a change came from.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// Change is a single property transition seen by observers.
type Change struct {
	Property string
	Old      any
	New      any
	Origin   Origin
}

// Dispatcher delivers a command to the remote side. It is only ever called
// from the engine's dispatch worker, one command at a time.
type Dispatcher func(ctx context.Context, cmd Command) error

// Hooks are invoked outside the engine lock, after the state transition that
// produced them is complete. A hook may call Close.
type Hooks struct {
	PropertyChanged func(Change)
	CommandFailed   func(command string, err error)
}

// Options configure an Engine.
type Options struct {
	CommandTimeout time.Duration
	Hooks          Hooks
}

type pendingCommand struct {
	seq     uint64
	value   any
	command string

	// zero until the transport acknowledged the command
	deadline time.Time
}

type job struct {
	seq    uint64
	cmd    Command
	fields []string
}

type failure struct {
	command string
	err     error
}

// Engine mirrors the fields of a Schema, dispatches local writes and merges
// remote snapshots. All state is guarded by a single mutex; network I/O only
// ever happens on the dispatch worker, outside that lock.
type Engine struct {
	schema   *Schema
	dispatch Dispatcher
	opts     Options
	now      func() time.Time

	mu        sync.Mutex
	idle      *sync.Cond
	values    values
	confirmed values
	pending   map[string]*pendingCommand
	seq       uint64
	settled   uint64
	queue     []job
	busy      bool
	closed    bool
	hooking   int

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an engine and starts its dispatch worker.
func New(schema *Schema, dispatch Dispatcher, opts Options) *Engine {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		schema:    schema,
		dispatch:  dispatch,
		opts:      opts,
		now:       time.Now,
		values:    make(values, len(schema.fields)),
		confirmed: make(values, len(schema.fields)),
		pending:   make(map[string]*pendingCommand),
		wake:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	e.idle = sync.NewCond(&e.mu)

	for _, f := range schema.fields {
		e.values[f.Name] = f.Default
		e.confirmed[f.Name] = f.Default
	}

	go e.run()
	return e
}

// Get returns the current local value of a property.
func (e *Engine) Get(name string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[name]
}

// Snapshot copies all current local values.
func (e *Engine) Snapshot() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]any, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Confirmed returns the last value of a property the remote agreed with.
func (e *Engine) Confirmed(name string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmed[name]
}

// Pending reports whether a command for the property awaits confirmation.
func (e *Engine) Pending(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pending[name]
	return ok
}

// Seq returns the sequence number of the last command the dispatch worker
// finished. A status read requested after Seq returned n can observe every
// command up to n; commands still queued or in flight are not judged by it.
func (e *Engine) Seq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settled
}

// Set writes a property locally and enqueues one command for it.
// Writing the current value is a no-op.
func (e *Engine) Set(name string, value any) error {
	f, ok := e.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	if f.ReadOnly {
		return &ImmutablePropertyError{Property: name}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}

	v, err := f.normalize(value, e.values)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	if same(e.values[name], v) {
		e.mu.Unlock()
		return nil
	}

	changes := e.stage(f.Command(v), values{name: v})
	e.mu.Unlock()

	e.notify(changes, nil)
	return nil
}

// Invoke enqueues an imperative command. effects computes, from the current
// state and under the engine lock, the values the command is expected to
// produce; those are applied optimistically and confirmed like regular writes.
func (e *Engine) Invoke(cmd Command, effects func(View) map[string]any) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}

	var eff values
	if effects != nil {
		eff = effects(e.values)
	}

	for name := range eff {
		f, ok := e.schema.Field(name)
		if !ok {
			e.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
		}
		if f.ReadOnly {
			e.mu.Unlock()
			return &ImmutablePropertyError{Property: name}
		}
	}

	changes := e.stage(cmd, eff)
	e.mu.Unlock()

	e.notify(changes, nil)
	return nil
}

// ApplySnapshot merges a status read that reflects every command dispatched so far.
func (e *Engine) ApplySnapshot(snapshot map[string]any) {
	e.ApplySnapshotAt(e.Seq(), snapshot)
}

// ApplySnapshotAt merges a status read issued when Seq was seq. Fields absent
// from the snapshot are left alone. Pending commands newer than seq cannot be
// judged by this snapshot and stay pending.
func (e *Engine) ApplySnapshotAt(seq uint64, snapshot map[string]any) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	var changes []Change
	for _, f := range e.schema.fields {
		v, ok := snapshot[f.Name]
		if !ok {
			continue
		}

		e.confirmed[f.Name] = v

		if p := e.pending[f.Name]; p != nil {
			if p.seq > seq {
				continue
			}

			delete(e.pending, f.Name)
			if same(p.value, v) {
				log.WithFields(log.Fields{"property": f.Name, "seq": p.seq, "command": p.command}).Debug("command confirmed")
				continue
			}
			e.logStale(f.Name, p, "conflicting snapshot")
		}

		old := e.values[f.Name]
		if same(old, v) {
			continue
		}
		e.values[f.Name] = v
		changes = append(changes, Change{Property: f.Name, Old: old, New: v, Origin: OriginRemote})
	}

	changes = append(changes, e.revalidate()...)
	e.mu.Unlock()

	e.notify(changes, nil)
}

// Expire fails acknowledged commands whose confirmation window closed before now.
func (e *Engine) Expire(now time.Time) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	var (
		changes []Change
		expired []*pendingCommand
		seen    = make(map[uint64]bool)
	)

	for _, f := range e.schema.fields {
		p := e.pending[f.Name]
		if p == nil || p.deadline.IsZero() || now.Before(p.deadline) {
			continue
		}

		delete(e.pending, f.Name)
		if c, ok := e.rollback(f.Name); ok {
			changes = append(changes, c)
		}
		if !seen[p.seq] {
			seen[p.seq] = true
			expired = append(expired, p)
		}
	}
	e.mu.Unlock()

	failures := lo.Map(expired, func(p *pendingCommand, _ int) failure {
		return failure{command: p.command, err: fmt.Errorf("%w: %s #%d", ErrUnconfirmed, p.command, p.seq)}
	})
	e.notify(changes, failures)
}

// Drain blocks until every queued command has been dispatched.
func (e *Engine) Drain() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for !e.closed && (len(e.queue) > 0 || e.busy) {
		e.idle.Wait()
	}
}

// Close cancels in-flight dispatch and drops queued and pending commands.
// Callbacks for commands that complete afterwards are discarded.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.queue = nil
	e.pending = make(map[string]*pendingCommand)
	e.idle.Broadcast()
	// the worker may be the one running the hook that called us
	nested := e.hooking > 0
	e.mu.Unlock()

	e.cancel()
	if !nested {
		<-e.done
	}
}

// stage applies effects locally and queues cmd. Caller holds e.mu.
func (e *Engine) stage(cmd Command, effects values) []Change {
	e.seq++
	seq := e.seq

	var (
		changes []Change
		fields  []string
	)

	for _, f := range e.schema.fields {
		v, ok := effects[f.Name]
		if !ok {
			continue
		}

		if p := e.pending[f.Name]; p != nil {
			e.logStale(f.Name, p, "superseded by local write")
		}

		old := e.values[f.Name]
		e.values[f.Name] = v
		e.pending[f.Name] = &pendingCommand{seq: seq, value: v, command: cmd.Name}
		fields = append(fields, f.Name)

		if !same(old, v) {
			changes = append(changes, Change{Property: f.Name, Old: old, New: v, Origin: OriginLocal})
		}
	}

	e.queue = append(e.queue, job{seq: seq, cmd: cmd, fields: fields})
	log.WithFields(log.Fields{"seq": seq, "command": cmd.String()}).Debug("command queued")

	select {
	case e.wake <- struct{}{}:
	default:
	}

	return changes
}

// rollback restores the last confirmed value. Caller holds e.mu.
func (e *Engine) rollback(name string) (Change, bool) {
	old := e.values[name]
	v := e.confirmed[name]
	e.values[name] = v
	if same(old, v) {
		return Change{}, false
	}
	return Change{Property: name, Old: old, New: v, Origin: OriginLocal}, true
}

// revalidate re-runs domain checks on provisional values, e.g. after a
// snapshot made another field they depend on known. Caller holds e.mu.
func (e *Engine) revalidate() []Change {
	var changes []Change

	for _, f := range e.schema.fields {
		p := e.pending[f.Name]
		if p == nil || f.Validate == nil {
			continue
		}

		v, err := f.Validate(e.values[f.Name], e.values)
		if err != nil || same(v, e.values[f.Name]) {
			continue
		}

		old := e.values[f.Name]
		e.values[f.Name] = v
		p.value = v
		changes = append(changes, Change{Property: f.Name, Old: old, New: v, Origin: OriginLocal})
	}

	return changes
}

func (e *Engine) run() {
	defer close(e.done)

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-e.wake:
		}

		for e.next() {
		}
	}
}

func (e *Engine) next() bool {
	e.mu.Lock()
	if e.closed || len(e.queue) == 0 {
		e.busy = false
		e.idle.Broadcast()
		e.mu.Unlock()
		return false
	}

	j := e.queue[0]
	e.queue = e.queue[1:]
	e.busy = true
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(e.ctx, e.opts.CommandTimeout)
	err := e.dispatch(ctx, j.cmd)
	cancel()

	e.finish(j, err)
	return true
}

func (e *Engine) finish(j job, err error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	e.settled = j.seq

	var changes []Change
	if err != nil {
		for _, name := range j.fields {
			p := e.pending[name]
			if p == nil || p.seq != j.seq {
				continue
			}
			delete(e.pending, name)
			if c, ok := e.rollback(name); ok {
				changes = append(changes, c)
			}
		}
	} else {
		deadline := e.now().Add(e.opts.CommandTimeout)
		for _, name := range j.fields {
			if p := e.pending[name]; p != nil && p.seq == j.seq {
				p.deadline = deadline
			}
		}
	}
	e.mu.Unlock()

	if err == nil {
		return
	}

	log.WithFields(log.Fields{"seq": j.seq, "command": j.cmd.String()}).Warnf("command failed: %v", err)
	e.notify(changes, []failure{{command: j.cmd.Name, err: err}})
}

func (e *Engine) notify(changes []Change, failures []failure) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.hooking++
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.hooking--
		e.mu.Unlock()
	}()

	if h := e.opts.Hooks.PropertyChanged; h != nil {
		for _, c := range changes {
			h(c)
		}
	}

	if h := e.opts.Hooks.CommandFailed; h != nil {
		for _, f := range failures {
			h(f.command, f.err)
		}
	}
}

func (e *Engine) logStale(name string, p *pendingCommand, cause string) {
	err := &StaleCommandError{Property: name, Command: p.command, Seq: p.seq, Cause: cause}
	log.WithFields(log.Fields{"property": name, "seq": p.seq}).Debug(err.Error())
}

func same(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}

	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) {
		return false
	}
	if t.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
