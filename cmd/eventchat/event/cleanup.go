// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/lib/config"
	"github.com/bureau-foundation/eventchat/lib/eventsync"
)

type cleanupParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Days  int `json:"days"  flag:"days"  desc:"days to look back (default: sync.cleanup_days)" default:"-1"`
	Grace int `json:"grace" flag:"grace" desc:"days a chat survives its event (default: sync.cleanup_grace_days)" default:"-1"`
}

// CleanupCommand returns the "cleanup" command.
func CleanupCommand() *cli.Command {
	var params cleanupParams

	return &cli.Command{
		Name:    "cleanup",
		Summary: "Delete the chats of past events",
		Description: `Delete the Communi chat group of every past ChurchTools event.

Without arguments, the window ends sync.cleanup_grace_days before today
and reaches sync.cleanup_days further back, so a chat stays available
for a few days after its event. Event IDs given as arguments are cleaned
up regardless of their date. Events without a chat are not an error.

Exits with status 1 when any event failed.`,
		Usage: "eventchat cleanup [event-id...] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("cleanup", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			eventIDs, err := parseEventIDs(args)
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			syncer, err := connection.Syncer()
			if err != nil {
				return err
			}
			return runCleanup(ctx, syncer, connection.Config, params, eventIDs, os.Stdout, cli.StdoutIsTerminal())
		},
		Examples: []cli.Example{
			{
				Description: "Delete chats of events from the last two weeks, keeping the last two days",
				Command:     "eventchat cleanup --days 14 --grace 2",
			},
		},
	}
}

func runCleanup(ctx context.Context, syncer *eventsync.Syncer, cfg *config.Config, params cleanupParams, eventIDs []int, w io.Writer, styled bool) error {
	if len(eventIDs) == 0 {
		days, grace := params.Days, params.Grace
		if days < 0 {
			days = cfg.Sync.CleanupDays
		}
		if grace < 0 {
			grace = cfg.Sync.CleanupGraceDays
		}
		var err error
		eventIDs, err = syncer.ListEventIDs(ctx, syncer.Now().AddDate(0, 0, -grace), -days)
		if err != nil {
			return err
		}
	}

	report := syncer.DeleteEventChats(ctx, eventIDs)
	return writeReport(w, report, params.JSONOutput, styled)
}
