package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/constant"
	"github.com/vlcremote/vlcremote/icon"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/mpv"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/where"
)

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().BoolP("wait", "w", false, "Keep running until mpv exits, quit mpv on ctrl+c")
}

var launchCmd = &cobra.Command{
	Use:   "launch [media...]",
	Short: "Start a local mpv that can be controlled with --backend mpv",
	Run: func(cmd *cobra.Command, args []string) {
		checkDependency("mpv")

		socket := viper.GetString(key.MPVSocket)
		if socket == "" {
			socket = where.MPVSocket()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		proc, err := mpv.Launch(ctx, socket, args...)
		handleErr(err)

		fmt.Printf("%s mpv listening on %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Yellow)(proc.Socket))
		if !lo.Must(cmd.Flags().GetBool("wait")) {
			return
		}

		select {
		case <-proc.Wait():
		case <-ctx.Done():
			handleErr(proc.Close())
		}
	},
}

// checkDependency exits with install instructions when dep is not in PATH.
func checkDependency(dep string) {
	if _, err := exec.LookPath(dep); err == nil {
		return
	}

	var install string
	switch runtime.GOOS {
	case constant.Darwin:
		install = "brew install " + dep
	case constant.Linux:
		install = "sudo apt install " + dep
	case constant.Windows:
		install = "scoop install " + dep
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("%s was not found in your PATH.", style.Bold(dep))

	var suggestion string
	if install != "" {
		suggestion = fmt.Sprintf("\nTo install it, try running:\n  %s", style.New().Foreground(color.HiCyan).Bold(true).Render(install))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, suggestion)))
	os.Exit(1)
}
