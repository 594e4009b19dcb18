package mpv

import (
	"encoding/json"
	"fmt"

	"github.com/samber/mo"
	"github.com/vlcremote/vlcremote/protocol"
)

// Decoder decodes status payloads built by Client, both full reads and
// single-property push notifications.
type Decoder struct{}

func (Decoder) Decode(raw protocol.RawStatus) (protocol.StatusSnapshot, error) {
	var status map[string]any
	if err := json.Unmarshal(raw, &status); err != nil {
		return protocol.StatusSnapshot{}, protocol.Decode(err)
	}

	var (
		snapshot protocol.StatusSnapshot
		err      error
	)

	boolean := func(name string) mo.Option[bool] {
		v, ok := status[name]
		if !ok || err != nil {
			return mo.None[bool]()
		}
		b, isBool := v.(bool)
		if !isBool {
			err = fmt.Errorf("%s: expected a boolean, got %T", name, v)
			return mo.None[bool]()
		}
		return mo.Some(b)
	}

	number := func(name string) mo.Option[float64] {
		v, ok := status[name]
		if !ok || err != nil {
			return mo.None[float64]()
		}
		f, isNumber := v.(float64)
		if !isNumber {
			err = fmt.Errorf("%s: expected a number, got %T", name, v)
			return mo.None[float64]()
		}
		return mo.Some(max(f, 0))
	}

	idle, pause := boolean(propIdle), boolean(propPause)
	snapshot.Fullscreen = boolean(propFullscreen)
	snapshot.Duration = number(propDuration)
	snapshot.CurrentTime = number(propTimePos)

	if err != nil {
		return protocol.StatusSnapshot{}, protocol.Decode(err)
	}

	// an idle mpv has nothing loaded: neither playing nor paused. Playing is
	// only derived from pause once idle is known.
	switch {
	case idle.OrElse(false):
		snapshot.Playing, snapshot.Paused = mo.Some(false), mo.Some(false)
	case idle.IsPresent():
		snapshot.Playing, snapshot.Paused = mo.Some(!pause.OrElse(false)), pause
	default:
		snapshot.Paused = pause
	}

	return snapshot, nil
}
