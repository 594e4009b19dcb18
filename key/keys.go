// Package key lists the configuration identifiers shared by viper, flags and the environment.
package key

// Player backend and synchronization.
const (
	PlayerBackend        = "player.backend"
	PlayerPollInterval   = "player.poll_interval"
	PlayerCommandTimeout = "player.command_timeout"
	PlayerMaxBackoff     = "player.max_backoff"
	PlayerRetries        = "player.retries"
)

// VLC HTTP interface.
const (
	VLCHost     = "vlc.host"
	VLCPort     = "vlc.port"
	VLCPassword = "vlc.password"
)

// mpv JSON-IPC.
const (
	MPVSocket = "mpv.socket"
)

// History of played items.
const (
	HistorySave = "history.save"
	HistorySize = "history.size"
)

// Output formatting for status-like commands.
const (
	OutputFormat = "output.format"
)

// Icons.
const (
	IconsVariant = "icons.variant"
)

// Logging.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI behaviour.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
