package mpv

import (
	"encoding/json"
	"sync"

	"github.com/dexterlb/mpvipc"
	"github.com/vlcremote/vlcremote/log"
	"github.com/vlcremote/vlcremote/protocol"
)

type subscription struct {
	conn *mpvipc.Connection
	stop chan struct{}
	once sync.Once
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		err = s.conn.Close()
	})
	return err
}

// SubscribeToPush observes the mirrored properties on a dedicated connection
// and hands every change to callback as a one-field status payload.
func (c *Client) SubscribeToPush(callback func(protocol.RawStatus)) (protocol.Subscription, error) {
	conn := mpvipc.NewConnection(c.socket)
	if err := conn.Open(); err != nil {
		return nil, protocol.Network("subscribe", err)
	}

	sub := &subscription{conn: conn, stop: make(chan struct{})}
	events := make(chan *mpvipc.Event)

	go conn.ListenForEvents(events, sub.stop)
	go func() {
		for ev := range events {
			raw, ok := propertyChange(ev)
			if !ok {
				continue
			}
			log.Tracef("mpv: %s", raw)
			callback(raw)
		}
	}()

	// observe ids start at 1, 0 means "no observer"
	for i, name := range statusProperties {
		if _, err := conn.Call("observe_property", i+1, name); err != nil {
			_ = sub.Close()
			return nil, protocol.Protocol("subscribe", "observe %s: %v", name, err)
		}
	}

	return sub, nil
}

// propertyChange encodes an observed property change the way FetchStatus
// encodes a full read.
func propertyChange(ev *mpvipc.Event) (protocol.RawStatus, bool) {
	if ev == nil || ev.Name != "property-change" || ev.Data == nil {
		return nil, false
	}

	i := int(ev.ID) - 1
	if i < 0 || i >= len(statusProperties) {
		return nil, false
	}

	raw, err := json.Marshal(map[string]any{statusProperties[i]: ev.Data})
	if err != nil {
		log.Warnf("mpv: cannot encode %s change: %v", statusProperties[i], err)
		return nil, false
	}
	return raw, true
}
