// Package protocol defines the boundary between the synchronization core and
// the concrete remote-player backends.
package protocol

import (
	"context"
	"strconv"

	"github.com/samber/mo"
)

// Canonical command names understood by every backend.
const (
	CmdPause            = "pause"
	CmdPlay             = "play"
	CmdFullscreen       = "fullscreen"
	CmdSeek             = "seek"
	CmdPlayItem         = "play_item"
	CmdStop             = "stop"
	CmdTogglePause      = "toggle_pause"
	CmdToggleFullscreen = "toggle_fullscreen"
)

// Parameter names.
const (
	ParamValue = "value"
	ParamID    = "id"
)

// RawStatus is an undecoded status payload as read from the wire.
type RawStatus []byte

// CommandResult is whatever the player answered to a command.
type CommandResult struct {
	Payload RawStatus
}

// Transport talks to one remote player. Implementations own connection
// lifecycle and per-request timeouts.
type Transport interface {
	// SendCommand fails with ErrNetwork, ErrTimeout or ErrProtocol.
	SendCommand(ctx context.Context, name string, params map[string]string) (CommandResult, error)

	// FetchStatus fails with ErrNetwork or ErrTimeout.
	FetchStatus(ctx context.Context) (RawStatus, error)
}

// Subscription is a live push registration.
type Subscription interface {
	Close() error
}

// Subscriber is implemented by transports able to push status changes.
// Transports without it are polled only.
type Subscriber interface {
	SubscribeToPush(callback func(RawStatus)) (Subscription, error)
}

// Decoder turns a raw payload into a snapshot. It fails with ErrDecode.
type Decoder interface {
	Decode(raw RawStatus) (StatusSnapshot, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(raw RawStatus) (StatusSnapshot, error)

func (f DecoderFunc) Decode(raw RawStatus) (StatusSnapshot, error) {
	return f(raw)
}

// StatusSnapshot is one read of the remote player. Fields a payload does not
// carry are absent, which is common for push notifications.
type StatusSnapshot struct {
	Paused      mo.Option[bool]
	Playing     mo.Option[bool]
	Fullscreen  mo.Option[bool]
	Duration    mo.Option[float64]
	CurrentTime mo.Option[float64]
}

// Empty reports whether the snapshot carries no field at all.
func (s StatusSnapshot) Empty() bool {
	return s.Paused.IsAbsent() &&
		s.Playing.IsAbsent() &&
		s.Fullscreen.IsAbsent() &&
		s.Duration.IsAbsent() &&
		s.CurrentTime.IsAbsent()
}

// AsSubscriber finds push support on t or on the transports it wraps.
func AsSubscriber(t Transport) (Subscriber, bool) {
	for t != nil {
		if s, ok := t.(Subscriber); ok {
			return s, true
		}
		w, ok := t.(interface{ Unwrap() Transport })
		if !ok {
			return nil, false
		}
		t = w.Unwrap()
	}
	return nil, false
}

// FormatBool encodes a boolean parameter.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// FormatSeconds encodes a time parameter.
func FormatSeconds(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
