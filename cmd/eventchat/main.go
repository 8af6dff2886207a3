// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command eventchat keeps one Communi group chat per upcoming
// ChurchTools event in sync with the event's service roster.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Event titles are rendered in sync.timezone, which must resolve
	// on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own report return an ExitError
		// with the desired exit code. Don't print a redundant "error:"
		// line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:])
}
