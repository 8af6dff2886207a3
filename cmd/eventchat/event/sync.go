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

type syncParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Days int  `json:"days" flag:"days" desc:"days to look ahead (default: sync.lookahead_days)" default:"-1"`
	All  bool `json:"all"  flag:"all"  desc:"create chats for events without relevant services too"`
}

// SyncCommand returns the "sync" command.
func SyncCommand() *cli.Command {
	var params syncParams

	return &cli.Command{
		Name:    "sync",
		Summary: "Create and fill the chats of upcoming events",
		Description: `Create a Communi chat group for every upcoming ChurchTools event and
add the people serving in it.

Without arguments, every event starting between today and
sync.lookahead_days from now is synced. Event IDs given as arguments
are synced regardless of their date.

Existing groups are found by their title prefix and only gain members:
nobody is ever removed. Each run posts a status message listing the
people that were added, could not be found, or were left out because
their service is excluded.

Exits with status 1 when any event failed.`,
		Usage: "eventchat sync [event-id...] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("sync", &params)
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
			return runSync(ctx, syncer, connection.Config, params, eventIDs, os.Stdout, cli.StdoutIsTerminal())
		},
		Examples: []cli.Example{
			{
				Description: "Sync the next two weeks",
				Command:     "eventchat sync --days 14",
			},
			{
				Description: "Sync one event, even when no relevant service is staffed",
				Command:     "eventchat sync 2626 --all",
			},
		},
	}
}

func runSync(ctx context.Context, syncer *eventsync.Syncer, cfg *config.Config, params syncParams, eventIDs []int, w io.Writer, styled bool) error {
	if len(eventIDs) == 0 {
		days := params.Days
		if days < 0 {
			days = cfg.Sync.LookaheadDays
		}
		var err error
		eventIDs, err = syncer.ListEventIDs(ctx, syncer.Now(), days)
		if err != nil {
			return err
		}
	}

	onlyRelevant := cfg.Sync.OnlyRelevant && !params.All
	report := syncer.CreateEventChats(ctx, eventIDs, onlyRelevant)
	return writeReport(w, report, params.JSONOutput, styled)
}
