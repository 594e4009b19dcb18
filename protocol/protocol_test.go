package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type scriptedTransport struct {
	errs  []error
	calls int
}

func (s *scriptedTransport) next() error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *scriptedTransport) SendCommand(_ context.Context, _ string, _ map[string]string) (CommandResult, error) {
	return CommandResult{}, s.next()
}

func (s *scriptedTransport) FetchStatus(_ context.Context) (RawStatus, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return RawStatus(`{}`), nil
}

type pushTransport struct {
	scriptedTransport
}

func (p *pushTransport) SubscribeToPush(func(RawStatus)) (Subscription, error) {
	return nil, nil
}

func TestWithRetry(t *testing.T) {
	Convey("Given a transport wrapped with three attempts", t, func() {
		inner := &scriptedTransport{}
		transport := WithRetry(inner, 3, 0)

		Convey("Network errors are retried until success", func() {
			inner.errs = []error{Network("dial", errors.New("refused")), Timeout("read", errors.New("slow"))}
			raw, err := transport.FetchStatus(context.Background())
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, "{}")
			So(inner.calls, ShouldEqual, 3)
		})

		Convey("Attempts are bounded", func() {
			inner.errs = []error{
				Network("dial", errors.New("refused")),
				Network("dial", errors.New("refused")),
				Network("dial", errors.New("refused")),
				nil,
			}
			_, err := transport.SendCommand(context.Background(), CmdStop, nil)
			So(errors.Is(err, ErrNetwork), ShouldBeTrue)
			So(inner.calls, ShouldEqual, 3)
		})

		Convey("Protocol errors are not retried", func() {
			inner.errs = []error{Protocol("command", "unknown command %q", "x")}
			_, err := transport.SendCommand(context.Background(), "x", nil)
			So(errors.Is(err, ErrProtocol), ShouldBeTrue)
			So(inner.calls, ShouldEqual, 1)
		})

		Convey("A cancelled context stops retrying", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			inner.errs = []error{Network("dial", errors.New("refused"))}
			_, err := WithRetry(inner, 3, time.Hour).FetchStatus(ctx)
			So(err, ShouldNotBeNil)
			So(inner.calls, ShouldEqual, 1)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Classify", t, func() {
		Convey("Deadline errors become timeouts", func() {
			err := Classify("status", context.DeadlineExceeded)
			So(errors.Is(err, ErrTimeout), ShouldBeTrue)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("Other errors become network errors", func() {
			So(errors.Is(Classify("status", errors.New("broken pipe")), ErrNetwork), ShouldBeTrue)
		})

		Convey("Classified errors are kept as they are", func() {
			err := Protocol("command", "bad")
			So(Classify("status", err), ShouldEqual, err)
		})

		Convey("Only network and timeout errors are retryable", func() {
			So(Retryable(Network("x", errors.New("y"))), ShouldBeTrue)
			So(Retryable(Timeout("x", errors.New("y"))), ShouldBeTrue)
			So(Retryable(Decode(errors.New("y"))), ShouldBeFalse)
		})
	})
}

func TestAsSubscriber(t *testing.T) {
	Convey("AsSubscriber", t, func() {
		Convey("Finds push support through a retry wrapper", func() {
			_, ok := AsSubscriber(WithRetry(&pushTransport{}, 2, 0))
			So(ok, ShouldBeTrue)
		})

		Convey("Reports polling-only transports", func() {
			_, ok := AsSubscriber(WithRetry(&scriptedTransport{}, 2, 0))
			So(ok, ShouldBeFalse)
		})
	})
}

func TestStatusSnapshot(t *testing.T) {
	Convey("A zero snapshot is empty", t, func() {
		So(StatusSnapshot{}.Empty(), ShouldBeTrue)
		So(StatusSnapshot{Duration: mo.Some(1.0)}.Empty(), ShouldBeFalse)
	})
}
