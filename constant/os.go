package constant

// runtime.GOOS values the CLI special-cases.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
