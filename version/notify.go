package version

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/color"
	"github.com/vlcremote/vlcremote/constant"
	"github.com/vlcremote/vlcremote/icon"
	"github.com/vlcremote/vlcremote/key"
	"github.com/vlcremote/vlcremote/style"
	"github.com/vlcremote/vlcremote/util"
)

// Notify prints a notice when a newer release exists and cli.version_check is on.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking for a new version...", icon.Get(icon.Progress)))
	version, err := Latest()
	erase()
	if err != nil {
		return
	}

	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint(ReleaseURL(version)),
	)
}
