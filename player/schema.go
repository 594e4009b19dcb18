package player

import (
	"math"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/vlcremote/vlcremote/protocol"
	"github.com/vlcremote/vlcremote/remote"
)

// Property names of a remote player.
const (
	Paused      = "paused"
	Playing     = "playing"
	Fullscreen  = "fullscreen"
	Duration    = "duration"
	CurrentTime = "current_time"
)

// Properties lists every player property in notification order.
var Properties = []string{Paused, Playing, Fullscreen, Duration, CurrentTime}

var schema = lo.Must(remote.NewSchema(
	remote.Field{
		Name:     Paused,
		Default:  false,
		Validate: boolean(Paused),
		Command:  boolCommand(protocol.CmdPause),
	},
	remote.Field{
		Name:     Playing,
		Default:  false,
		Validate: boolean(Playing),
		Command:  boolCommand(protocol.CmdPlay),
	},
	remote.Field{
		Name:     Fullscreen,
		Default:  false,
		Validate: boolean(Fullscreen),
		Command:  boolCommand(protocol.CmdFullscreen),
	},
	remote.Field{
		Name:     Duration,
		Default:  0.0,
		ReadOnly: true,
	},
	remote.Field{
		Name:     CurrentTime,
		Default:  0.0,
		Validate: position,
		Command: func(value any) remote.Command {
			return remote.Command{
				Name:   protocol.CmdSeek,
				Params: map[string]string{protocol.ParamValue: protocol.FormatSeconds(value.(float64))},
			}
		},
	},
))

func boolean(name string) func(any, remote.View) (any, error) {
	return func(value any, _ remote.View) (any, error) {
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, &remote.ValidationError{Property: name, Value: value, Reason: "not a boolean"}
		}
		return b, nil
	}
}

func boolCommand(name string) func(any) remote.Command {
	return func(value any) remote.Command {
		return remote.Command{
			Name:   name,
			Params: map[string]string{protocol.ParamValue: protocol.FormatBool(value.(bool))},
		}
	}
}

// position accepts a playback position in seconds. Positions past a known
// duration are clamped to it; while the duration is unknown the value is kept
// and clamped again once a snapshot reports one.
func position(value any, view remote.View) (any, error) {
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, &remote.ValidationError{Property: CurrentTime, Value: value, Reason: "not a number"}
	}

	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return nil, &remote.ValidationError{Property: CurrentTime, Value: value, Reason: "not a finite number"}
	case f < 0:
		return nil, &remote.ValidationError{Property: CurrentTime, Value: value, Reason: "must not be negative"}
	}

	if duration := remote.Float(view, Duration); duration > 0 {
		f = lo.Clamp(f, 0, duration)
	}
	return f, nil
}

// values turns the present fields of a snapshot into engine values.
func values(s protocol.StatusSnapshot) map[string]any {
	out := make(map[string]any, len(Properties))

	set := func(name string, v any, ok bool) {
		if ok {
			out[name] = v
		}
	}

	paused, ok := s.Paused.Get()
	set(Paused, paused, ok)
	playing, ok := s.Playing.Get()
	set(Playing, playing, ok)
	fullscreen, ok := s.Fullscreen.Get()
	set(Fullscreen, fullscreen, ok)
	duration, ok := s.Duration.Get()
	set(Duration, math.Max(duration, 0), ok)
	current, ok := s.CurrentTime.Get()
	set(CurrentTime, math.Max(current, 0), ok)

	return out
}
