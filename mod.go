// Package haven defines the global tools shared by the packages of the course
// marketplace, like the logger and the metrics collectors.
package haven

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors exposes the Prometheus collectors created in the packages.
// A component is free to register them to its own registry.
var PromCollectors []prometheus.Collector
