package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vlcremote/vlcremote/protocol"
	"github.com/vlcremote/vlcremote/remote"
)

type sent struct {
	name   string
	params map[string]string
}

type fakeTransport struct {
	mu       sync.Mutex
	sent     []sent
	sendErr  error
	fetchErr error
	status   protocol.StatusSnapshot
	gate     chan struct{}
}

func (f *fakeTransport) SendCommand(ctx context.Context, name string, params map[string]string) (protocol.CommandResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, sent{name: name, params: params})
	gate, err := f.gate, f.sendErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return protocol.CommandResult{}, protocol.Timeout(name, ctx.Err())
		}
	}
	return protocol.CommandResult{}, err
}

func (f *fakeTransport) FetchStatus(context.Context) (protocol.RawStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return protocol.RawStatus("status"), nil
}

func (f *fakeTransport) Decode(protocol.RawStatus) (protocol.StatusSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *fakeTransport) report(s protocol.StatusSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakeTransport) commands() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

type events struct {
	mu           sync.Mutex
	changes      []remote.Change
	failures     []string
	connectivity []bool
}

func (e *events) hooks() Hooks {
	return Hooks{
		PropertyChanged: func(c remote.Change) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.changes = append(e.changes, c)
		},
		CommandFailed: func(command string, _ error) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.failures = append(e.failures, command)
		},
		ConnectivityChanged: func(connected bool) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.connectivity = append(e.connectivity, connected)
		},
	}
}

func (e *events) take() []remote.Change {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.changes
	e.changes = nil
	return out
}

func newTestPlayer() (*RemotePlayer, *fakeTransport, *events) {
	transport := &fakeTransport{}
	ev := &events{}
	p := New(transport, transport, DefaultOptions(), ev.hooks())
	return p, transport, ev
}

func TestSetters(t *testing.T) {
	Convey("Given a connected player", t, func() {
		p, transport, ev := newTestPlayer()
		defer p.Close()

		Convey("A write is visible immediately and sent once", func() {
			So(p.SetFullscreen(true), ShouldBeNil)
			So(p.Fullscreen(), ShouldBeTrue)
			So(p.SetFullscreen(true), ShouldBeNil)
			p.Flush()

			cmds := transport.commands()
			So(cmds, ShouldHaveLength, 1)
			So(cmds[0].name, ShouldEqual, protocol.CmdFullscreen)
			So(cmds[0].params[protocol.ParamValue], ShouldEqual, "true")
		})

		Convey("Seeking past the end is clamped to the duration", func() {
			transport.report(protocol.StatusSnapshot{Duration: mo.Some(120.0)})
			So(p.Refresh(context.Background()), ShouldBeNil)

			So(p.SetCurrentTime(200), ShouldBeNil)
			So(p.CurrentTime(), ShouldEqual, 120.0)
			p.Flush()

			cmds := transport.commands()
			So(cmds, ShouldHaveLength, 1)
			So(cmds[0].name, ShouldEqual, protocol.CmdSeek)
			So(cmds[0].params[protocol.ParamValue], ShouldEqual, "120")
		})

		Convey("Negative positions are rejected", func() {
			transport.report(protocol.StatusSnapshot{Duration: mo.Some(120.0)})
			So(p.Refresh(context.Background()), ShouldBeNil)

			var verr *remote.ValidationError
			So(errors.As(p.SetCurrentTime(-5), &verr), ShouldBeTrue)
			So(p.CurrentTime(), ShouldEqual, 0.0)
			p.Flush()
			So(transport.commands(), ShouldBeEmpty)
		})

		Convey("A seek before the duration is known is clamped once it is", func() {
			So(p.SetCurrentTime(500), ShouldBeNil)
			p.Flush()

			transport.report(protocol.StatusSnapshot{Duration: mo.Some(300.0)})
			So(p.Refresh(context.Background()), ShouldBeNil)
			So(p.CurrentTime(), ShouldEqual, 300.0)
			So(transport.commands(), ShouldHaveLength, 1)
		})

		Convey("The duration cannot be written", func() {
			var ierr *remote.ImmutablePropertyError
			So(errors.As(p.SetDuration(10), &ierr), ShouldBeTrue)
			So(ierr.Property, ShouldEqual, Duration)
		})

		Convey("Textual values are coerced", func() {
			So(p.Set(Paused, "true"), ShouldBeNil)
			So(p.Paused(), ShouldBeTrue)

			var verr *remote.ValidationError
			So(errors.As(p.Set(CurrentTime, "soon"), &verr), ShouldBeTrue)
		})

		Convey("A failing command is rolled back and reported", func() {
			transport.sendErr = protocol.Network("fullscreen", errors.New("connection refused"))

			So(p.SetFullscreen(true), ShouldBeNil)
			p.Flush()

			So(p.Fullscreen(), ShouldBeFalse)
			So(ev.failures, ShouldResemble, []string{protocol.CmdFullscreen})

			changes := ev.take()
			So(changes, ShouldHaveLength, 2)
			So(changes[1].New, ShouldEqual, false)
		})
	})
}

func TestVerbs(t *testing.T) {
	Convey("Given a player", t, func() {
		p, transport, ev := newTestPlayer()
		defer p.Close()

		Convey("TogglePause flips paused and is confirmed silently", func() {
			So(p.TogglePause(), ShouldBeNil)
			So(p.Paused(), ShouldBeTrue)
			p.Flush()

			cmds := transport.commands()
			So(cmds, ShouldHaveLength, 1)
			So(cmds[0].name, ShouldEqual, protocol.CmdTogglePause)
			So(ev.take(), ShouldHaveLength, 1)

			transport.report(protocol.StatusSnapshot{Paused: mo.Some(true)})
			So(p.Refresh(context.Background()), ShouldBeNil)

			So(p.Pending(Paused), ShouldBeFalse)
			So(ev.take(), ShouldBeEmpty)
			So(transport.commands(), ShouldHaveLength, 1)
		})

		Convey("ToggleFullscreen flips fullscreen", func() {
			So(p.ToggleFullscreen(), ShouldBeNil)
			So(p.Fullscreen(), ShouldBeTrue)
			p.Flush()
			So(transport.commands()[0].name, ShouldEqual, protocol.CmdToggleFullscreen)
		})

		Convey("PlayItem starts playback of the item", func() {
			So(p.PlayItem(3), ShouldBeNil)
			So(p.Playing(), ShouldBeTrue)
			So(p.Paused(), ShouldBeFalse)
			p.Flush()

			cmds := transport.commands()
			So(cmds[0].name, ShouldEqual, protocol.CmdPlayItem)
			So(cmds[0].params[protocol.ParamID], ShouldEqual, "3")
		})

		Convey("PlayItem rejects negative identifiers", func() {
			var verr *remote.ValidationError
			So(errors.As(p.PlayItem(-1), &verr), ShouldBeTrue)
		})

		Convey("Stop clears playing and paused", func() {
			transport.report(protocol.StatusSnapshot{Playing: mo.Some(true), Paused: mo.Some(true)})
			So(p.Refresh(context.Background()), ShouldBeNil)

			So(p.Stop(), ShouldBeNil)
			So(p.State(), ShouldResemble, State{})
		})
	})
}

func TestReconcile(t *testing.T) {
	Convey("Given a playing player with an unknown duration", t, func() {
		p, transport, ev := newTestPlayer()
		defer p.Close()

		transport.report(protocol.StatusSnapshot{Playing: mo.Some(true), Paused: mo.Some(false)})
		So(p.Refresh(context.Background()), ShouldBeNil)
		ev.take()

		Convey("A snapshot with duration and position fires two remote changes", func() {
			transport.report(protocol.StatusSnapshot{Duration: mo.Some(300.0), CurrentTime: mo.Some(10.0)})
			So(p.Refresh(context.Background()), ShouldBeNil)

			So(p.Duration(), ShouldEqual, 300.0)
			So(p.CurrentTime(), ShouldEqual, 10.0)

			changes := ev.take()
			So(changes, ShouldHaveLength, 2)
			for _, c := range changes {
				So(c.Origin, ShouldEqual, remote.OriginRemote)
			}
			p.Flush()
			So(transport.commands(), ShouldBeEmpty)
		})

		Convey("A status read racing an unacknowledged command does not undo it", func() {
			transport.gate = make(chan struct{})
			So(p.SetPaused(true), ShouldBeNil)

			So(p.Refresh(context.Background()), ShouldBeNil)
			So(p.Paused(), ShouldBeTrue)
			So(p.Pending(Paused), ShouldBeTrue)

			close(transport.gate)
			p.Flush()

			transport.report(protocol.StatusSnapshot{Paused: mo.Some(true)})
			So(p.Refresh(context.Background()), ShouldBeNil)
			So(p.Pending(Paused), ShouldBeFalse)
			So(transport.commands(), ShouldHaveLength, 1)
		})

		Convey("Connectivity follows status reads", func() {
			transport.fetchErr = protocol.Timeout("status", context.DeadlineExceeded)
			So(p.Refresh(context.Background()), ShouldNotBeNil)
			So(p.Connected(), ShouldBeFalse)
			So(p.LoopState(), ShouldEqual, Faulted)

			transport.fetchErr = nil
			So(p.Refresh(context.Background()), ShouldBeNil)
			So(p.LoopState(), ShouldEqual, Idle)
			So(ev.connectivity, ShouldResemble, []bool{true, false, true})
		})

		Convey("A push that arrived before a command settled does not undo it", func() {
			transport.report(protocol.StatusSnapshot{Paused: mo.Some(false)})
			p.onPush(protocol.RawStatus("push"))

			So(p.SetPaused(true), ShouldBeNil)
			p.Flush()

			pushed := <-p.push
			So(p.cycle(context.Background(), &pushed), ShouldBeNil)
			So(p.Paused(), ShouldBeTrue)
			So(p.Pending(Paused), ShouldBeTrue)
		})
	})

	Convey("Given a player that cannot reach the remote side from the start", t, func() {
		p, transport, ev := newTestPlayer()
		defer p.Close()
		transport.fetchErr = protocol.Timeout("status", context.DeadlineExceeded)

		Convey("The first fault reports the connection as down, once", func() {
			So(p.Refresh(context.Background()), ShouldNotBeNil)
			So(p.Refresh(context.Background()), ShouldNotBeNil)
			So(ev.connectivity, ShouldResemble, []bool{false})

			transport.fetchErr = nil
			So(p.Refresh(context.Background()), ShouldBeNil)
			So(ev.connectivity, ShouldResemble, []bool{false, true})
		})
	})
}

func TestCloseFromHook(t *testing.T) {
	returnedInTime := func(returned <-chan error) (error, bool) {
		select {
		case err := <-returned:
			return err, true
		case <-time.After(2 * time.Second):
			return nil, false
		}
	}

	Convey("Given a running player whose failure hook closes it", t, func() {
		transport := &fakeTransport{sendErr: protocol.ErrProtocol}
		returned := make(chan error, 1)

		var p *RemotePlayer
		p = New(transport, transport, Options{PollInterval: time.Hour}, Hooks{
			CommandFailed: func(string, error) {
				returned <- p.Close()
			},
		})
		So(p.Start(context.Background()), ShouldBeNil)

		Convey("Close returns and the player refuses further writes", func() {
			So(p.SetPaused(true), ShouldBeNil)
			err, ok := returnedInTime(returned)
			So(ok, ShouldBeTrue)
			So(err, ShouldBeNil)
			So(errors.Is(p.SetPaused(false), remote.ErrClosed), ShouldBeTrue)
		})
	})

	Convey("Given a running player whose connectivity hook closes it", t, func() {
		transport := &fakeTransport{}
		returned := make(chan error, 1)

		var p *RemotePlayer
		p = New(transport, transport, Options{PollInterval: time.Hour}, Hooks{
			ConnectivityChanged: func(bool) {
				returned <- p.Close()
			},
		})

		Convey("Close returns from the loop goroutine", func() {
			So(p.Start(context.Background()), ShouldBeNil)
			err, ok := returnedInTime(returned)
			So(ok, ShouldBeTrue)
			So(err, ShouldBeNil)
			So(errors.Is(p.Start(context.Background()), remote.ErrClosed), ShouldBeTrue)
		})
	})
}

func TestBackoff(t *testing.T) {
	Convey("Backoff doubles per fault up to the ceiling", t, func() {
		got := make([]time.Duration, 0, 7)
		for n := 0; n < 7; n++ {
			got = append(got, Backoff(n, time.Second, 30*time.Second))
		}
		So(got, ShouldResemble, []time.Duration{
			time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			30 * time.Second,
			30 * time.Second,
		})
	})

	Convey("Given a player whose status reads time out", t, func() {
		transport := &fakeTransport{fetchErr: protocol.Timeout("status", context.DeadlineExceeded)}
		p := New(transport, transport, Options{
			PollInterval: time.Second,
			MaxBackoff:   5 * time.Second,
		}, Hooks{})
		defer p.Close()

		Convey("The delay grows with each fault and then holds", func() {
			delays := []time.Duration{p.NextPoll()}
			for i := 0; i < 4; i++ {
				So(p.Refresh(context.Background()), ShouldNotBeNil)
				delays = append(delays, p.NextPoll())
			}

			So(delays, ShouldResemble, []time.Duration{
				time.Second,
				2 * time.Second,
				4 * time.Second,
				5 * time.Second,
				5 * time.Second,
			})
		})

		Convey("A successful read resets it", func() {
			So(p.Refresh(context.Background()), ShouldNotBeNil)
			transport.fetchErr = nil
			So(p.Refresh(context.Background()), ShouldBeNil)
			So(p.NextPoll(), ShouldEqual, time.Second)
		})
	})
}

type pushTransport struct {
	*fakeTransport
	callback chan func(protocol.RawStatus)
}

func (p *pushTransport) SubscribeToPush(callback func(protocol.RawStatus)) (protocol.Subscription, error) {
	p.callback <- callback
	return p, nil
}

func (p *pushTransport) Close() error { return nil }

func TestLoop(t *testing.T) {
	Convey("Given a started player", t, func() {
		transport := &pushTransport{fakeTransport: &fakeTransport{}, callback: make(chan func(protocol.RawStatus), 1)}
		transport.report(protocol.StatusSnapshot{Playing: mo.Some(true)})

		changed := make(chan remote.Change, 16)
		connected := make(chan bool, 4)
		p := New(transport, transport, Options{PollInterval: time.Hour}, Hooks{
			PropertyChanged:     func(c remote.Change) { changed <- c },
			ConnectivityChanged: func(c bool) { connected <- c },
		})
		defer p.Close()

		So(p.Start(context.Background()), ShouldBeNil)

		Convey("The first status read happens right away", func() {
			So(<-connected, ShouldBeTrue)
			So(p.Playing(), ShouldBeTrue)
		})

		Convey("Pushed status is merged without waiting for a poll", func() {
			So(<-connected, ShouldBeTrue)
			<-changed

			push := <-transport.callback
			transport.report(protocol.StatusSnapshot{Fullscreen: mo.Some(true)})
			push(protocol.RawStatus("push"))

			c := <-changed
			So(c.Property, ShouldEqual, Fullscreen)
			So(c.Origin, ShouldEqual, remote.OriginRemote)
		})

		Convey("A closed player cannot be restarted", func() {
			So(p.Close(), ShouldBeNil)
			So(errors.Is(p.Start(context.Background()), remote.ErrClosed), ShouldBeTrue)
			So(errors.Is(p.SetPaused(true), remote.ErrClosed), ShouldBeTrue)
		})
	})
}

func TestOptions(t *testing.T) {
	Convey("Zero options fall back to the defaults", t, func() {
		So(Options{}.withDefaults(), ShouldResemble, DefaultOptions())
	})

	Convey("The backoff ceiling is never below the poll interval", t, func() {
		o := Options{PollInterval: time.Minute, MaxBackoff: time.Second}.withDefaults()
		So(o.MaxBackoff, ShouldEqual, time.Minute)
	})

	Convey("Loop states have readable names", t, func() {
		So(AwaitingResponse.String(), ShouldEqual, "awaiting response")
		So(LoopState(42).String(), ShouldEqual, "LoopState(42)")
	})
}
