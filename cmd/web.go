package cmd

import (
	"errors"
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/vlc"
)

func init() {
	rootCmd.AddCommand(webCmd)
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Open the VLC web interface in a browser",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		b, _, err := openBackend()
		handleErr(err)

		c, ok := b.(*vlc.Client)
		if !ok {
			handleErr(errors.New("only the vlc backend has a web interface"))
		}

		url := c.WebURL()
		fmt.Printf("Opening %s\n", style.Fg(color.Yellow)(url))
		handleErr(browser.OpenURL(url))
	},
}
