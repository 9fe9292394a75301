package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Options selects the log level and sinks.
type Options struct {
	Level          string
	GraylogEnabled bool
	GraylogAddress string
	// Console defaults to stdout.
	Console io.Writer
	NoColor bool
}

// ParseLevel maps a config string to a zerolog level. Unknown values fall
// back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the process logger: human-readable console output, plus raw
// JSON to Graylog when enabled. The returned closer flushes the GELF sink.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	level := ParseLevel(opts.Level)

	out := opts.Console
	if out == nil {
		out = os.Stdout
	}
	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		},
	}

	var closer io.Closer = nopCloser{}
	if opts.GraylogEnabled {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("graylog writer %s: %w", opts.GraylogAddress, err)
		}
		writers = append(writers, gw)
		closer = gw
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().
		Logger()

	logger.Info().
		Str("loglevel", level.String()).
		Bool("graylog", opts.GraylogEnabled).
		Msg("Logging set up")
	return logger, closer, nil
}
