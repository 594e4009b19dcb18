// Package main is the entry point of vlcremote.
package main

import (
	"github.com/samber/lo"
	"github.com/vlcremote/vlcremote/cmd"
	"github.com/vlcremote/vlcremote/config"
	"github.com/vlcremote/vlcremote/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
