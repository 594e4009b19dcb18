// Package player mirrors a remote media player as a set of local properties.
//
// Writes go out as commands right away and show up locally before the player
// confirms them. A background loop reads the player's status and merges it
// back, so changes made elsewhere (a remote control, the player's own UI)
// reach observers too.
package player

import (
	"context"
	"strconv"
	"sync"

	"github.com/vlcremote/vlcremote/protocol"
	"github.com/vlcremote/vlcremote/remote"
)

// Hooks receive player events. They are called from background goroutines
// and never while internal locks are held. A hook may call Close.
type Hooks struct {
	PropertyChanged     func(remote.Change)
	ConnectivityChanged func(connected bool)
	CommandFailed       func(command string, err error)
	LoopStateChanged    func(LoopState)
}

// State is a copy of every property at one point in time.
type State struct {
	Paused      bool    `json:"paused" yaml:"paused"`
	Playing     bool    `json:"playing" yaml:"playing"`
	Fullscreen  bool    `json:"fullscreen" yaml:"fullscreen"`
	Duration    float64 `json:"duration" yaml:"duration"`
	CurrentTime float64 `json:"current_time" yaml:"current_time"`
}

// RemotePlayer is the local mirror of one remote player.
type RemotePlayer struct {
	transport protocol.Transport
	decoder   protocol.Decoder
	opts      Options
	hooks     Hooks
	engine    *remote.Engine

	// serializes status reads
	pollMu sync.Mutex

	mu        sync.Mutex
	state     LoopState
	connected bool
	known     bool // a status read has completed, connected is meaningful
	faults    int
	closed    bool
	hooking   int
	cancel    context.CancelFunc
	done      chan struct{}
	sub       protocol.Subscription

	push chan pushedStatus
	kick chan struct{}
}

// New creates a player on top of transport. Nothing is sent until a property
// is written or the loop is started.
func New(transport protocol.Transport, decoder protocol.Decoder, opts Options, hooks Hooks) *RemotePlayer {
	p := &RemotePlayer{
		transport: transport,
		decoder:   decoder,
		opts:      opts.withDefaults(),
		hooks:     hooks,
		push:      make(chan pushedStatus, 16),
		kick:      make(chan struct{}, 1),
	}

	var engineHooks remote.Hooks
	if h := hooks.PropertyChanged; h != nil {
		engineHooks.PropertyChanged = func(c remote.Change) {
			p.hook(func() { h(c) })
		}
	}
	if h := hooks.CommandFailed; h != nil {
		engineHooks.CommandFailed = func(command string, err error) {
			p.hook(func() { h(command, err) })
		}
	}

	p.engine = remote.New(schema, p.dispatch, remote.Options{
		CommandTimeout: p.opts.CommandTimeout,
		Hooks:          engineHooks,
	})

	return p
}

// hook runs call unless the player is closed, counting it so that Close
// issued from inside a hook does not wait for the goroutine running it.
func (p *RemotePlayer) hook(call func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.hooking++
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.hooking--
		p.mu.Unlock()
	}()
	call()
}

func (p *RemotePlayer) dispatch(ctx context.Context, cmd remote.Command) error {
	_, err := p.transport.SendCommand(ctx, cmd.Name, cmd.Params)
	return err
}

// State returns every property at once.
func (p *RemotePlayer) State() State {
	v := p.engine.Snapshot()
	return State{
		Paused:      v[Paused].(bool),
		Playing:     v[Playing].(bool),
		Fullscreen:  v[Fullscreen].(bool),
		Duration:    v[Duration].(float64),
		CurrentTime: v[CurrentTime].(float64),
	}
}

// Get returns a property by name, or nil for unknown names.
func (p *RemotePlayer) Get(name string) any {
	return p.engine.Get(name)
}

func (p *RemotePlayer) Paused() bool         { return p.engine.Get(Paused).(bool) }
func (p *RemotePlayer) Playing() bool        { return p.engine.Get(Playing).(bool) }
func (p *RemotePlayer) Fullscreen() bool     { return p.engine.Get(Fullscreen).(bool) }
func (p *RemotePlayer) Duration() float64    { return p.engine.Get(Duration).(float64) }
func (p *RemotePlayer) CurrentTime() float64 { return p.engine.Get(CurrentTime).(float64) }

// Set writes a property by name. Values are coerced, so "true" and "42.5"
// are accepted as well as typed values.
func (p *RemotePlayer) Set(name string, value any) error {
	return p.engine.Set(name, value)
}

func (p *RemotePlayer) SetPaused(paused bool) error {
	return p.engine.Set(Paused, paused)
}

func (p *RemotePlayer) SetPlaying(playing bool) error {
	return p.engine.Set(Playing, playing)
}

func (p *RemotePlayer) SetFullscreen(fullscreen bool) error {
	return p.engine.Set(Fullscreen, fullscreen)
}

// SetCurrentTime seeks. Negative and non-finite positions are rejected,
// positions past the end are clamped to the duration.
func (p *RemotePlayer) SetCurrentTime(seconds float64) error {
	return p.engine.Set(CurrentTime, seconds)
}

// SetDuration always fails: the duration is owned by the remote player.
func (p *RemotePlayer) SetDuration(seconds float64) error {
	return p.engine.Set(Duration, seconds)
}

// PlayItem starts the playlist item with the given identifier.
func (p *RemotePlayer) PlayItem(id int) error {
	if id < 0 {
		return &remote.ValidationError{Property: "item", Value: id, Reason: "must not be negative"}
	}

	cmd := remote.Command{
		Name:   protocol.CmdPlayItem,
		Params: map[string]string{protocol.ParamID: strconv.Itoa(id)},
	}
	return p.engine.Invoke(cmd, func(remote.View) map[string]any {
		return map[string]any{Playing: true, Paused: false}
	})
}

// Stop stops playback.
func (p *RemotePlayer) Stop() error {
	return p.engine.Invoke(remote.Command{Name: protocol.CmdStop}, func(remote.View) map[string]any {
		return map[string]any{Playing: false, Paused: false}
	})
}

func (p *RemotePlayer) ToggleFullscreen() error {
	return p.engine.Invoke(remote.Command{Name: protocol.CmdToggleFullscreen}, func(v remote.View) map[string]any {
		return map[string]any{Fullscreen: !remote.Bool(v, Fullscreen)}
	})
}

func (p *RemotePlayer) TogglePause() error {
	return p.engine.Invoke(remote.Command{Name: protocol.CmdTogglePause}, func(v remote.View) map[string]any {
		return map[string]any{Paused: !remote.Bool(v, Paused)}
	})
}

// Pending reports whether a write to the property awaits confirmation.
func (p *RemotePlayer) Pending(name string) bool {
	return p.engine.Pending(name)
}

// Flush blocks until every queued command has been handed to the transport.
func (p *RemotePlayer) Flush() {
	p.engine.Drain()
}

// Close stops the loop and the push subscription and drops queued commands.
// No hook fires after Close returns. Called from a hook, it returns without
// waiting for the loop to exit.
func (p *RemotePlayer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	nested := p.hooking > 0
	cancel, done, sub := p.cancel, p.done, p.sub
	p.sub = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		if !nested {
			<-done
		}
	}

	p.engine.Close()

	if sub != nil {
		return sub.Close()
	}
	return nil
}
