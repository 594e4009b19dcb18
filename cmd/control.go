package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/history"
	"github.com/vlcremote/vlcremote/log"
	"github.com/vlcremote/vlcremote/player"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/util"
)

func init() {
	rootCmd.AddCommand(pauseCmd, resumeCmd, toggleCmd, stopCmd, playCmd, fullscreenCmd, seekCmd, setCmd)
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		control(func(s *session) error { return s.SetPaused(true) })
		success("paused")
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume paused playback",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		control(func(s *session) error { return s.SetPaused(false) })
		success("resumed")
	},
}

var toggleCmd = &cobra.Command{
	Use:     "toggle",
	Short:   "Toggle between paused and playing",
	Aliases: []string{"tp"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var paused bool
		control(func(s *session) error {
			if err := s.TogglePause(); err != nil {
				return err
			}
			paused = s.Paused()
			return nil
		})
		success("%s", lo.Ternary(paused, "paused", "resumed"))
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		control(func(s *session) error { return s.Stop() })
		success("stopped")
	},
}

var playCmd = &cobra.Command{
	Use:   "play [item]",
	Short: "Start playback, or play the playlist item with the given id",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			control(func(s *session) error { return s.SetPlaying(true) })
			success("playing")
			return
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			handleErr(fmt.Errorf("invalid item id %q", args[0]))
		}

		var target string
		control(func(s *session) error {
			target = s.target
			return s.PlayItem(id)
		})

		if err := history.Save(target, id); err != nil {
			log.Warnf("history not saved: %v", err)
		}
		success("playing item %s", style.Fg(color.Yellow)(strconv.Itoa(id)))
	},
}

var fullscreenCmd = &cobra.Command{
	Use:       "fullscreen [on|off|toggle]",
	Short:     "Switch fullscreen on or off",
	Aliases:   []string{"fs"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "toggle"},
	Run: func(cmd *cobra.Command, args []string) {
		mode := "toggle"
		if len(args) == 1 {
			mode = args[0]
		}

		var on bool
		control(func(s *session) error {
			var err error
			switch mode {
			case "on":
				err = s.SetFullscreen(true)
			case "off":
				err = s.SetFullscreen(false)
			default:
				err = s.ToggleFullscreen()
			}
			on = s.Fullscreen()
			return err
		})
		success("fullscreen %s", lo.Ternary(on, "on", "off"))
	},
}

var seekCmd = &cobra.Command{
	Use:   "seek <seconds>",
	Short: "Jump to a position in the current media",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		seconds, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			handleErr(fmt.Errorf("invalid position %q", args[0]))
		}

		var at float64
		control(func(s *session) error {
			if err := s.SetCurrentTime(seconds); err != nil {
				return err
			}
			at = s.CurrentTime()
			return nil
		})
		success("seeked to %s", style.Fg(color.Yellow)(util.FormatSeconds(at)))
	},
}

var setCmd = &cobra.Command{
	Use:       "set <property> <value>",
	Short:     "Write a player property",
	Args:      cobra.ExactArgs(2),
	ValidArgs: player.Properties,
	Run: func(cmd *cobra.Command, args []string) {
		name, value := args[0], args[1]
		handleErr(checkProperty(name))
		control(func(s *session) error { return s.Set(name, value) })
		success("set %s to %s", style.Fg(color.Purple)(name), style.Fg(color.Yellow)(value))
	},
}

func checkProperty(name string) error {
	if lo.Contains(player.Properties, name) {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(name, player.Properties)
	if len(ranks) == 0 {
		// too far off for a subsequence match, fall back to a prefix
		ranks = fuzzy.RankFindNormalizedFold(name[:min(len(name), 2)], player.Properties)
	}
	sort.Sort(ranks)

	if len(ranks) == 0 {
		return fmt.Errorf("unknown property %s, available: %s",
			style.Fg(color.Red)(name),
			strings.Join(player.Properties, ", "),
		)
	}
	return fmt.Errorf("unknown property %s, did you mean %s?",
		style.Fg(color.Red)(name),
		style.Fg(color.Yellow)(ranks[0].Target),
	)
}
