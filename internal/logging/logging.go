// Package logging configures the global zerolog logger and provides the HTTP
// request logging middleware.
package logging

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger output
type Options struct {
	Level string
	// File receives JSON logs with rotation when set
	File string
	// Console is the human-readable sink, stderr when nil
	Console io.Writer
}

// Setup installs the global logger. It returns a closer for the log file,
// which is a no-op when no file is configured.
func Setup(opts Options) (func() error, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: console}
	closer := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		file := &lumberjack.Logger{
			Filename: opts.File,
			// megabytes
			MaxSize:    64,
			MaxBackups: 5,
			// days
			MaxAge:    14,
			LocalTime: true,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file.Close
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	if err != nil && opts.Level != "" {
		log.Warn().Str("level", opts.Level).Msg("Unknown log level, using info")
	}
	return closer, nil
}

// RequestLogger returns a Chi middleware that logs HTTP requests using zerolog
func RequestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_ip", r.RemoteAddr).
					Str("request_id", middleware.GetReqID(r.Context())).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Str("user_agent", r.UserAgent()).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
