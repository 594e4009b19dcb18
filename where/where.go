// Package where resolves the filesystem locations used by the application.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/vlcremote/vlcremote/constant"
	"github.com/vlcremote/vlcremote/filesystem"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "VLCREMOTE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory, honouring VLCREMOTE_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is where dated log files are written.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History is the file recording recently played items.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Temp is a volatile directory for sockets and other transient artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}

// MPVSocket is the default IPC socket for an mpv instance launched by us.
func MPVSocket() string {
	return filepath.Join(Temp(), "mpv.sock")
}
