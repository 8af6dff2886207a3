// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// LogLevelEnvVar selects the log level: debug, info (default), warn or
// error.
const LogLevelEnvVar = "EVENTCHAT_LOG_LEVEL"

// NewCommandLogger creates the structured logger of a command run.
// When stderr is a terminal, uses slog.TextHandler for human-readable
// output. When stderr is piped or redirected (cron, systemd, CI), uses
// slog.JSONHandler so scheduled runs can be ingested as-is.
func NewCommandLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: logLevel(os.Getenv(LogLevelEnvVar))}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
