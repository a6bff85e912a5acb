package config

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger points the global zerolog logger at w as plain console text.
func InitLogger(w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	})
}

// Level returns the effective log level: debug when Debug is set,
// otherwise LogLevel, falling back to warn when it doesn't parse.
func (c *Config) Level() zerolog.Level {
	if c.Debug {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// ApplyLogLevel sets the global zerolog level from the config.
func (c *Config) ApplyLogLevel() {
	zerolog.SetGlobalLevel(c.Level())
}
