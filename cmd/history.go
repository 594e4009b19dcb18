package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/history"
	"github.com/vlcremote/vlcremote/icon"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("all", "a", false, "Show the history of every player, not only the configured one")
	historyCmd.Flags().BoolP("clear", "c", false, "Forget the history of the configured player")
	historyCmd.MarkFlagsMutuallyExclusive("all", "clear")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the playlist items recently started with play",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b, _, err := openBackend()
		handleErr(err)
		target := b.Target()

		if lo.Must(cmd.Flags().GetBool("clear")) {
			handleErr(history.Remove(target))
			fmt.Printf("%s history of %s cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(target))
			return
		}

		saved, err := history.Get()
		handleErr(err)

		var entries []*history.Entry
		if lo.Must(cmd.Flags().GetBool("all")) {
			entries = lo.Flatten(lo.Values(saved))
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].PlayedAt.After(entries[j].PlayedAt)
			})
		} else {
			entries = saved[target]
		}

		if len(entries) == 0 {
			fmt.Println(style.Faint("no history yet"))
			return
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"Item", "Player", "Played at"})
		handleErr(table.Bulk(lo.Map(entries, func(e *history.Entry, _ int) []string {
			return []string{fmt.Sprint(e.Item), e.Target, e.PlayedAt.Format("2006-01-02 15:04")}
		})))
		handleErr(table.Render())
		fmt.Println(style.Faint(util.Quantify(len(entries), "entry", "entries")))
	},
}
