package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/TylerBrock/colorjson"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/icon"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/player"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/util"
	"gopkg.in/yaml.v3"
)

var outputFormats = []string{"table", "text", "json", "yaml"}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringP("output", "o", "", "Output format: "+strings.Join(outputFormats, ", "))
	lo.Must0(statusCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.OutputFormat, statusCmd.Flags().Lookup("output")))
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show what the player is doing",
	Aliases: []string{"st"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := connect(player.Hooks{})
		handleErr(err)
		defer util.Ignore(s.Close)

		handleErr(s.Refresh(context.Background()))
		handleErr(render(os.Stdout, viper.GetString(key.OutputFormat), report{Target: s.target, State: s.State()}))
	},
}

// report is what status prints.
type report struct {
	Target string       `json:"target" yaml:"target"`
	State  player.State `json:"state" yaml:"state"`
}

func (r report) rows() [][]string {
	st := r.State
	return [][]string{
		{"Target", r.Target},
		{"State", stateLabel(st)},
		{"Fullscreen", strconv.FormatBool(st.Fullscreen)},
		{"Position", fmt.Sprintf("%s / %s", util.FormatSeconds(st.CurrentTime), util.FormatSeconds(st.Duration))},
	}
}

func stateLabel(st player.State) string {
	switch {
	case st.Paused:
		return icon.Get(icon.Paused) + " paused"
	case st.Playing:
		return icon.Get(icon.Playing) + " playing"
	default:
		return icon.Get(icon.Stopped) + " stopped"
	}
}

func render(w io.Writer, format string, r report) error {
	switch strings.ToLower(format) {
	case "json":
		return renderJSON(w, r)
	case "yaml":
		b, err := yaml.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "txt", "text":
		label := style.New().Bold(true).Foreground(color.Blue).Render
		for _, row := range r.rows() {
			if _, err := fmt.Fprintf(w, "%s %s\n", label(row[0]+":"), row[1]); err != nil {
				return err
			}
		}
		return nil
	case "table", "":
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Property", "Value"})
		if err := table.Bulk(r.rows()); err != nil {
			return err
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q, available: %s", format, strings.Join(outputFormats, ", "))
	}
}

func renderJSON(w io.Writer, r report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !viper.GetBool(key.CliColored)
	b, err := f.Marshal(obj)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
