package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrNetwork  = errors.New("network error")
	ErrTimeout  = errors.New("timeout")
	ErrProtocol = errors.New("protocol error")
	ErrDecode   = errors.New("decode error")
)

// Network wraps err as a network failure of op.
func Network(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}

// Timeout wraps err as a timeout of op.
func Timeout(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
}

// Protocol reports a malformed or rejected exchange.
func Protocol(op string, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrProtocol, fmt.Sprintf(format, args...))
}

// Decode wraps a payload parsing failure.
func Decode(err error) error {
	return fmt.Errorf("%w: %w", ErrDecode, err)
}

// Classify maps an I/O error to ErrTimeout or ErrNetwork. Errors that are
// already classified are returned unchanged.
func Classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNetwork), errors.Is(err, ErrTimeout), errors.Is(err, ErrProtocol), errors.Is(err, ErrDecode):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout(op, err)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout(op, err)
	}
	return Network(op, err)
}

// Retryable reports whether a transport-level retry can help.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout)
}
