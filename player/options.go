package player

import (
	"time"

	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/key"
)

// Options tune the reconciliation loop and command dispatch.
type Options struct {
	// PollInterval is the delay between two status reads while healthy.
	PollInterval time.Duration

	// CommandTimeout bounds every command and status read, and is the window
	// in which an acknowledged command must show up in a snapshot.
	CommandTimeout time.Duration

	// MaxBackoff caps the delay between status reads while faulted.
	MaxBackoff time.Duration
}

// DefaultOptions returns the stock timings.
func DefaultOptions() Options {
	return Options{
		PollInterval:   time.Second,
		CommandTimeout: 5 * time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

// OptionsFromConfig reads the player.* keys, which are expressed in seconds.
func OptionsFromConfig() Options {
	return Options{
		PollInterval:   seconds(viper.GetFloat64(key.PlayerPollInterval)),
		CommandTimeout: seconds(viper.GetFloat64(key.PlayerCommandTimeout)),
		MaxBackoff:     seconds(viper.GetFloat64(key.PlayerMaxBackoff)),
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()

	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = def.CommandTimeout
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = def.MaxBackoff
	}
	if o.MaxBackoff < o.PollInterval {
		o.MaxBackoff = o.PollInterval
	}

	return o
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
