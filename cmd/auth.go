package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/vlcremote/vlcremote/auth"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/icon"
	"github.com/vlcremote/vlcremote/style"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authDeleteCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the VLC web interface password stored in the system keyring",
}

var authSetCmd = &cobra.Command{
	Use:   "set [password]",
	Short: "Store the VLC web interface password",
	Long:  "Store the VLC web interface password. It is read from the terminal when not given.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			var err error
			password, err = readPassword(os.Stdin)
			handleErr(err)
		}

		if password == "" {
			handleErr(errors.New("empty password"))
		}

		handleErr(auth.SetPassword(password))
		fmt.Printf("%s password stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the stored VLC web interface password",
	Aliases: []string{"remove"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeletePassword())
		fmt.Printf("%s password removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

var errNoTerminal = errors.New("password must be given as an argument when stdin is not a terminal")

// readPassword prompts for the password on in, which must be a terminal.
func readPassword(in *os.File) (string, error) {
	if !term.IsTerminal(int(in.Fd())) {
		return "", errNoTerminal
	}

	var password string
	if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithStdio(in, os.Stdout, os.Stderr)); err != nil {
		return "", err
	}
	return strings.TrimSpace(password), nil
}
