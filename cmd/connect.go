package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/mpv"
	"github.com/vlcremote/vlcremote/player"
	"github.com/vlcremote/vlcremote/protocol"
	"github.com/vlcremote/vlcremote/util"
	"github.com/vlcremote/vlcremote/vlc"
)

const (
	backendVLC = "vlc"
	backendMPV = "mpv"
)

var backends = []string{backendVLC, backendMPV}

// backend is a transport that can name the player it talks to.
type backend interface {
	protocol.Transport
	Target() string
}

// session is one connected player together with the failures its commands
// reported.
type session struct {
	*player.RemotePlayer
	target string
	closer io.Closer

	mu       sync.Mutex
	failures []error
}

func openBackend() (backend, protocol.Decoder, error) {
	switch name := strings.ToLower(viper.GetString(key.PlayerBackend)); name {
	case backendVLC:
		c, err := vlc.FromConfig()
		if err != nil {
			return nil, nil, err
		}
		return c, vlc.Decoder{}, nil
	case backendMPV:
		c, err := mpv.FromConfig()
		if err != nil {
			return nil, nil, err
		}
		return c, mpv.Decoder{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q, available: %s", name, strings.Join(backends, ", "))
	}
}

// connect builds a player for the configured backend. Hooks receive every
// event; command failures are recorded on the session as well.
func connect(hooks player.Hooks) (*session, error) {
	b, decoder, err := openBackend()
	if err != nil {
		return nil, err
	}

	s := &session{target: b.Target()}
	if c, ok := b.(io.Closer); ok {
		s.closer = c
	}

	failed := hooks.CommandFailed
	hooks.CommandFailed = func(command string, err error) {
		s.mu.Lock()
		s.failures = append(s.failures, fmt.Errorf("%s: %w", command, err))
		s.mu.Unlock()

		if failed != nil {
			failed(command, err)
		}
	}

	transport := protocol.WithRetry(b, viper.GetInt(key.PlayerRetries), protocol.DefaultRetryDelay)
	s.RemotePlayer = player.New(transport, decoder, player.OptionsFromConfig(), hooks)
	return s, nil
}

// Err joins the failures reported so far.
func (s *session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.failures...)
}

func (s *session) Close() error {
	err := s.RemotePlayer.Close()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

// control reads the player, applies act and waits for the resulting commands
// to be sent.
func control(act func(s *session) error) {
	s, err := connect(player.Hooks{})
	handleErr(err)
	defer util.Ignore(s.Close)

	handleErr(s.Refresh(context.Background()))
	handleErr(act(s))
	s.Flush()
	handleErr(s.Err())
}
