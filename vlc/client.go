// Package vlc drives VLC through its HTTP interface (the "web" lua interface,
// enabled with --extraintf http and a password).
package vlc

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/auth"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/log"
	"github.com/vlcremote/vlcremote/network"
	"github.com/vlcremote/vlcremote/protocol"
)

const statusPath = "/requests/status.json"

// VLC command names, passed as the command query parameter.
const (
	cmdPause      = "pl_pause"
	cmdForcePause = "pl_forcepause"
	cmdResume     = "pl_forceresume"
	cmdPlay       = "pl_play"
	cmdStop       = "pl_stop"
	cmdFullscreen = "fullscreen"
	cmdSeek       = "seek"
)

// Client is a protocol.Transport for one VLC instance.
type Client struct {
	base     url.URL
	password string
	http     *http.Client
	decoder  Decoder
}

// New returns a client for VLC listening on host:port.
func New(host string, port int, password string) *Client {
	return &Client{
		base: url.URL{
			Scheme: "http",
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
			Path:   statusPath,
		},
		password: password,
		http:     network.Client,
	}
}

// FromConfig builds a client from the vlc.* keys. When no password is
// configured the one stored in the keyring is used.
func FromConfig() (*Client, error) {
	password := viper.GetString(key.VLCPassword)
	if password == "" {
		var err error
		if password, err = auth.GetPassword(); err != nil {
			log.Warnf("keyring unavailable: %v", err)
		}
	}

	return New(viper.GetString(key.VLCHost), viper.GetInt(key.VLCPort), password), nil
}

// Target identifies the player this client talks to.
func (c *Client) Target() string {
	return "vlc://" + c.base.Host
}

// WebURL is the address of VLC's own browser interface.
func (c *Client) WebURL() string {
	u := c.base
	u.Path = "/"
	return u.String()
}

// FetchStatus reads status.json.
func (c *Client) FetchStatus(ctx context.Context) (protocol.RawStatus, error) {
	return c.request(ctx, "status", nil)
}

// SendCommand translates a canonical command into VLC's vocabulary.
func (c *Client) SendCommand(ctx context.Context, name string, params map[string]string) (protocol.CommandResult, error) {
	query, err := c.translate(ctx, name, params)
	if err != nil {
		return protocol.CommandResult{}, err
	}
	if query == nil {
		return protocol.CommandResult{}, nil
	}

	raw, err := c.request(ctx, name, query)
	if err != nil {
		return protocol.CommandResult{}, err
	}
	return protocol.CommandResult{Payload: raw}, nil
}

// translate returns the query for a canonical command, or nil when nothing
// needs to be sent.
func (c *Client) translate(ctx context.Context, name string, params map[string]string) (url.Values, error) {
	query := url.Values{}

	switch name {
	case protocol.CmdPause:
		on, err := boolParam(name, params)
		if err != nil {
			return nil, err
		}
		query.Set("command", map[bool]string{true: cmdForcePause, false: cmdResume}[on])
	case protocol.CmdPlay:
		on, err := boolParam(name, params)
		if err != nil {
			return nil, err
		}
		query.Set("command", map[bool]string{true: cmdPlay, false: cmdStop}[on])
	case protocol.CmdFullscreen:
		on, err := boolParam(name, params)
		if err != nil {
			return nil, err
		}
		// VLC only knows how to toggle
		current, err := c.fullscreen(ctx)
		if err != nil {
			return nil, err
		}
		if current == on {
			return nil, nil
		}
		query.Set("command", cmdFullscreen)
	case protocol.CmdSeek:
		seconds, err := strconv.ParseFloat(params[protocol.ParamValue], 64)
		if err != nil {
			return nil, protocol.Protocol(name, "invalid position %q", params[protocol.ParamValue])
		}
		query.Set("command", cmdSeek)
		query.Set("val", strconv.Itoa(int(seconds)))
	case protocol.CmdPlayItem:
		id := params[protocol.ParamID]
		if _, err := strconv.Atoi(id); err != nil {
			return nil, protocol.Protocol(name, "invalid item id %q", id)
		}
		query.Set("command", cmdPlay)
		query.Set("id", id)
	case protocol.CmdStop:
		query.Set("command", cmdStop)
	case protocol.CmdTogglePause:
		query.Set("command", cmdPause)
	case protocol.CmdToggleFullscreen:
		query.Set("command", cmdFullscreen)
	default:
		return nil, protocol.Protocol(name, "unsupported command")
	}

	return query, nil
}

func (c *Client) fullscreen(ctx context.Context) (bool, error) {
	raw, err := c.FetchStatus(ctx)
	if err != nil {
		return false, err
	}
	snapshot, err := c.decoder.Decode(raw)
	if err != nil {
		return false, err
	}
	return snapshot.Fullscreen.OrElse(false), nil
}

func (c *Client) request(ctx context.Context, op string, query url.Values) (protocol.RawStatus, error) {
	u := c.base
	u.RawQuery = query.Encode()

	req, err := network.NewRequest(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, protocol.Protocol(op, "build request: %v", err)
	}
	req.SetBasicAuth("", c.password)

	log.Tracef("vlc: GET %s", u.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, protocol.Classify(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, protocol.Protocol(op, "unauthorized, check the VLC password")
	case resp.StatusCode != http.StatusOK:
		return nil, protocol.Protocol(op, "unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, protocol.Classify(op, err)
	}
	return body, nil
}

func boolParam(name string, params map[string]string) (bool, error) {
	v, err := strconv.ParseBool(params[protocol.ParamValue])
	if err != nil {
		return false, protocol.Protocol(name, "invalid value %q", params[protocol.ParamValue])
	}
	return v, nil
}

func (c *Client) String() string {
	return fmt.Sprintf("VLC at %s", c.base.Host)
}
