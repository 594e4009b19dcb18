// Package mpv drives mpv through its JSON-IPC socket (--input-ipc-server).
package mpv

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/dexterlb/mpvipc"
	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/log"
	"github.com/vlcremote/vlcremote/protocol"
	"github.com/vlcremote/vlcremote/where"
)

// mpv property names making up a status payload.
const (
	propPause      = "pause"
	propIdle       = "idle-active"
	propFullscreen = "fullscreen"
	propDuration   = "duration"
	propTimePos    = "time-pos"
)

var statusProperties = []string{propPause, propIdle, propFullscreen, propDuration, propTimePos}

// Client is a protocol.Transport for one mpv instance.
type Client struct {
	socket string

	mu   sync.Mutex
	conn *mpvipc.Connection
}

// New returns a client for the mpv listening on socket. The socket is not
// dialed until the first request.
func New(socket string) *Client {
	return &Client{socket: socket}
}

// FromConfig builds a client from mpv.socket, falling back to the socket
// Launch uses by default.
func FromConfig() (*Client, error) {
	socket := viper.GetString(key.MPVSocket)
	if socket == "" {
		socket = where.MPVSocket()
	}
	return New(socket), nil
}

// Target identifies the player this client talks to.
func (c *Client) Target() string {
	return "mpv://" + c.socket
}

// Close drops the connection. The client reconnects on the next request.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// FetchStatus reads every mirrored property into one JSON object keyed by
// mpv property name. Properties mpv reports as unavailable, such as the
// duration while idle, are left out.
func (c *Client) FetchStatus(ctx context.Context) (protocol.RawStatus, error) {
	status := make(map[string]any, len(statusProperties))

	for _, name := range statusProperties {
		v, err := c.call(ctx, "status", "get_property", name)
		switch {
		case err == nil:
			status[name] = v
		case unavailable(err):
		default:
			return nil, err
		}
	}

	raw, err := json.Marshal(status)
	if err != nil {
		return nil, protocol.Protocol("status", "encode: %v", err)
	}
	return raw, nil
}

// SendCommand translates a canonical command into an mpv IPC command.
func (c *Client) SendCommand(ctx context.Context, name string, params map[string]string) (protocol.CommandResult, error) {
	args, err := translate(name, params)
	if err != nil {
		return protocol.CommandResult{}, err
	}

	if _, err := c.call(ctx, name, args...); err != nil {
		return protocol.CommandResult{}, err
	}
	return protocol.CommandResult{}, nil
}

func translate(name string, params map[string]string) ([]any, error) {
	switch name {
	case protocol.CmdPause, protocol.CmdFullscreen:
		on, err := strconv.ParseBool(params[protocol.ParamValue])
		if err != nil {
			return nil, protocol.Protocol(name, "invalid value %q", params[protocol.ParamValue])
		}
		property := map[string]string{protocol.CmdPause: propPause, protocol.CmdFullscreen: propFullscreen}[name]
		return []any{"set_property", property, on}, nil
	case protocol.CmdPlay:
		on, err := strconv.ParseBool(params[protocol.ParamValue])
		if err != nil {
			return nil, protocol.Protocol(name, "invalid value %q", params[protocol.ParamValue])
		}
		if !on {
			return []any{"stop"}, nil
		}
		return []any{"set_property", propPause, false}, nil
	case protocol.CmdSeek:
		seconds, err := strconv.ParseFloat(params[protocol.ParamValue], 64)
		if err != nil {
			return nil, protocol.Protocol(name, "invalid position %q", params[protocol.ParamValue])
		}
		return []any{"seek", seconds, "absolute"}, nil
	case protocol.CmdPlayItem:
		id, err := strconv.Atoi(params[protocol.ParamID])
		if err != nil {
			return nil, protocol.Protocol(name, "invalid item id %q", params[protocol.ParamID])
		}
		return []any{"playlist-play-index", id}, nil
	case protocol.CmdStop:
		return []any{"stop"}, nil
	case protocol.CmdTogglePause:
		return []any{"cycle", propPause}, nil
	case protocol.CmdToggleFullscreen:
		return []any{"cycle", propFullscreen}, nil
	default:
		return nil, protocol.Protocol(name, "unsupported command")
	}
}

func (c *Client) connection() (*mpvipc.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn, nil
	}

	conn := mpvipc.NewConnection(c.socket)
	if err := conn.Open(); err != nil {
		return nil, err
	}
	c.conn = conn
	return conn, nil
}

type reply struct {
	data any
	err  error
}

// call performs one IPC request. mpvipc has no deadlines of its own, so the
// request runs aside and ctx decides how long to wait for it.
func (c *Client) call(ctx context.Context, op string, args ...any) (any, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, protocol.Network(op, err)
	}

	done := make(chan reply, 1)
	go func() {
		data, err := conn.Call(args...)
		done <- reply{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, protocol.Timeout(op, ctx.Err())
	case r := <-done:
		if r.err == nil {
			return r.data, nil
		}
		if conn.IsClosed() {
			log.Debugf("mpv: connection to %s lost: %v", c.socket, r.err)
			return nil, protocol.Network(op, r.err)
		}
		return nil, protocol.Protocol(op, "%v", r.err)
	}
}

func unavailable(err error) bool {
	return strings.Contains(err.Error(), "property unavailable")
}
