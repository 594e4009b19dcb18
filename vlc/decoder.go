package vlc

import (
	"encoding/json"
	"fmt"

	"github.com/samber/mo"
	"github.com/spf13/cast"
	"github.com/vlcremote/vlcremote/protocol"
)

// status is the subset of status.json the player mirrors. Older VLC builds
// report fullscreen as 0/1 instead of a boolean.
type status struct {
	State      *string  `json:"state"`
	Fullscreen any      `json:"fullscreen"`
	Length     *float64 `json:"length"`
	Time       *float64 `json:"time"`
}

// Decoder decodes status.json payloads.
type Decoder struct{}

func (Decoder) Decode(raw protocol.RawStatus) (protocol.StatusSnapshot, error) {
	var s status
	if err := json.Unmarshal(raw, &s); err != nil {
		return protocol.StatusSnapshot{}, protocol.Decode(err)
	}

	var snapshot protocol.StatusSnapshot

	if s.State != nil {
		switch *s.State {
		case "playing":
			snapshot.Playing, snapshot.Paused = mo.Some(true), mo.Some(false)
		case "paused":
			snapshot.Playing, snapshot.Paused = mo.Some(false), mo.Some(true)
		case "stopped":
			snapshot.Playing, snapshot.Paused = mo.Some(false), mo.Some(false)
		default:
			return protocol.StatusSnapshot{}, protocol.Decode(fmt.Errorf("unknown state %q", *s.State))
		}
	}

	switch v := s.Fullscreen.(type) {
	case nil:
	case float64:
		snapshot.Fullscreen = mo.Some(v != 0)
	default:
		fullscreen, err := cast.ToBoolE(v)
		if err != nil {
			return protocol.StatusSnapshot{}, protocol.Decode(fmt.Errorf("fullscreen: %w", err))
		}
		snapshot.Fullscreen = mo.Some(fullscreen)
	}

	if s.Length != nil {
		snapshot.Duration = mo.Some(max(*s.Length, 0))
	}
	if s.Time != nil {
		snapshot.CurrentTime = mo.Some(max(*s.Time, 0))
	}

	return snapshot, nil
}
