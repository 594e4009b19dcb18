// Package icon renders status symbols in the variant selected by icons.variant.
package icon

import (
	"github.com/spf13/viper"
	"github.com/vlcremote/vlcremote/key"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants lists the accepted icons.variant values.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Playing
	Paused
	Stopped
	Fullscreen
	Connected
	Disconnected
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]*iconDef{
	Success:      {emoji: "🎉", nerd: "\uf00c", plain: "✓"},
	Fail:         {emoji: "💀", nerd: "\uf00d", plain: "✗"},
	Progress:     {emoji: "⏳", nerd: "\uf110", plain: "…"},
	Playing:      {emoji: "▶️", nerd: "\uf04b", plain: ">"},
	Paused:       {emoji: "⏸️", nerd: "\uf04c", plain: "||"},
	Stopped:      {emoji: "⏹️", nerd: "\uf04d", plain: "[]"},
	Fullscreen:   {emoji: "🖥️", nerd: "\uf065", plain: "[F]"},
	Connected:    {emoji: "🟢", nerd: "\uf1e6", plain: "+"},
	Disconnected: {emoji: "🔴", nerd: "\uf127", plain: "-"},
}

// Get renders i in the configured variant.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.Get()
}
