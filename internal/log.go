package internal

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}

// Logger is the default logger of every runtime.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	Level(zerolog.InfoLevel)
