package shared

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns a stderr logger tagged with the component name. The
// level comes from ANCHOR_LOG_LEVEL (default info); unparseable values fall
// back to info rather than failing startup.
func NewLogger(component string) zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := Env("ANCHOR_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	return zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
