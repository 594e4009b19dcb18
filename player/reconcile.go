package player

import (
	"context"
	"fmt"
	"time"

	"github.com/vlcremote/vlcremote/log"
	"github.com/vlcremote/vlcremote/protocol"
	"github.com/vlcremote/vlcremote/remote"
)

// LoopState is the phase of the reconciliation loop.
type LoopState int

const (
	Idle LoopState = iota
	Polling
	AwaitingResponse
	Reconciling
	Faulted
)

func (s LoopState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case AwaitingResponse:
		return "awaiting response"
	case Reconciling:
		return "reconciling"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("LoopState(%d)", int(s))
	}
}

// Backoff is the delay before the next status read after faults consecutive
// failures: interval doubled per fault, never more than ceiling.
func Backoff(faults int, interval, ceiling time.Duration) time.Duration {
	d := interval
	for i := 0; i < faults && d < ceiling; i++ {
		d *= 2
	}
	return min(d, ceiling)
}

// Start runs the reconciliation loop until ctx is done or Close is called.
// The first status read happens immediately. Transports able to push status
// changes are subscribed to as well; polling continues alongside.
func (p *RemotePlayer) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return remote.ErrClosed
	}
	if p.cancel != nil {
		p.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	if s, ok := protocol.AsSubscriber(p.transport); ok {
		sub, err := s.SubscribeToPush(p.onPush)
		if err != nil {
			log.Warnf("push notifications unavailable, polling only: %v", err)
		} else {
			p.mu.Lock()
			p.sub = sub
			p.mu.Unlock()
		}
	}

	go p.loop(ctx)
	return nil
}

// Refresh runs one status read synchronously. It returns the transport or
// decode error that faulted the cycle, if any.
func (p *RemotePlayer) Refresh(ctx context.Context) error {
	if p.isClosed() {
		return remote.ErrClosed
	}
	return p.cycle(ctx, nil)
}

// LoopState returns the current phase of the loop.
func (p *RemotePlayer) LoopState() LoopState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Connected reports whether the last status read succeeded.
func (p *RemotePlayer) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// NextPoll is the delay the loop waits before its next status read.
func (p *RemotePlayer) NextPoll() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Backoff(p.faults, p.opts.PollInterval, p.opts.MaxBackoff)
}

func (p *RemotePlayer) loop(ctx context.Context) {
	defer close(p.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			_ = p.cycle(ctx, nil)
		case <-p.kick:
			_ = p.cycle(ctx, nil)
		case pushed := <-p.push:
			_ = p.cycle(ctx, &pushed)
		}

		p.engine.Expire(time.Now())
		timer.Reset(p.NextPoll())
	}
}

// pushedStatus is a payload delivered by the transport together with the
// command sequence at the time it arrived.
type pushedStatus struct {
	raw protocol.RawStatus
	seq uint64
}

func (p *RemotePlayer) onPush(raw protocol.RawStatus) {
	select {
	case p.push <- pushedStatus{raw: raw, seq: p.engine.Seq()}:
	default:
		// overflowed, a full read catches up
		select {
		case p.kick <- struct{}{}:
		default:
		}
	}
}

// cycle performs one status read, or consumes a pushed payload, and merges it.
func (p *RemotePlayer) cycle(ctx context.Context, pushed *pushedStatus) error {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	if p.LoopState() == Faulted {
		p.setState(Idle)
	}
	p.setState(Polling)
	var (
		raw protocol.RawStatus
		seq uint64
	)
	if pushed != nil {
		raw, seq = pushed.raw, pushed.seq
	} else {
		seq = p.engine.Seq()
	}
	p.setState(AwaitingResponse)

	if pushed == nil {
		fetchCtx, cancel := context.WithTimeout(ctx, p.opts.CommandTimeout)
		var err error
		raw, err = p.transport.FetchStatus(fetchCtx)
		cancel()
		if err != nil {
			return p.fault(protocol.Classify("status", err))
		}
	}

	snapshot, err := p.decoder.Decode(raw)
	if err != nil {
		return p.fault(err)
	}

	p.setState(Reconciling)
	p.engine.ApplySnapshotAt(seq, values(snapshot))
	p.restore()
	p.setState(Idle)

	return nil
}

func (p *RemotePlayer) fault(err error) error {
	p.mu.Lock()
	p.faults++
	lost := p.connected || !p.known
	p.connected, p.known = false, true
	faults := p.faults
	p.mu.Unlock()

	log.WithFields(log.Fields{"faults": faults}).Warnf("status read failed: %v", err)

	p.setState(Faulted)
	if lost {
		p.notifyConnectivity(false)
	}
	return err
}

func (p *RemotePlayer) restore() {
	p.mu.Lock()
	p.faults = 0
	gained := !p.connected
	p.connected, p.known = true, true
	p.mu.Unlock()

	if gained {
		log.Info("connected to player")
		p.notifyConnectivity(true)
	}
}

func (p *RemotePlayer) setState(s LoopState) {
	p.mu.Lock()
	changed := p.state != s
	p.state = s
	p.mu.Unlock()

	if h := p.hooks.LoopStateChanged; changed && h != nil {
		p.hook(func() { h(s) })
	}
}

func (p *RemotePlayer) notifyConnectivity(connected bool) {
	if h := p.hooks.ConnectivityChanged; h != nil {
		p.hook(func() { h(connected) })
	}
}

func (p *RemotePlayer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
