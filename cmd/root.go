// Package cmd implements the command-line interface for vlcremote.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/constant"
	"github.com/vlcremote/vlcremote/icon"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/log"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/version"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("backend", "b", "", "Remote player backend (vlc or mpv)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return backends, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlayerBackend, rootCmd.PersistentFlags().Lookup("backend")))

	rootCmd.PersistentFlags().String("host", "", "Host of the VLC web interface")
	lo.Must0(viper.BindPFlag(key.VLCHost, rootCmd.PersistentFlags().Lookup("host")))

	rootCmd.PersistentFlags().Int("port", 0, "Port of the VLC web interface")
	lo.Must0(viper.BindPFlag(key.VLCPort, rootCmd.PersistentFlags().Lookup("port")))

	rootCmd.PersistentFlags().String("socket", "", "Path of the mpv IPC socket")
	lo.Must0(viper.BindPFlag(key.MPVSocket, rootCmd.PersistentFlags().Lookup("socket")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd is the entry point of the application.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Control a VLC or mpv player from the terminal",
	Long: style.Bold(constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiCyan).Render("    - Control a VLC or mpv player from the terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		statusCmd.Run(statusCmd, args)
	},
}

// Execute wires the subcommands and runs the CLI.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
