// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/communi"
	"github.com/bureau-foundation/eventchat/lib/config"
	"github.com/bureau-foundation/eventchat/lib/eventsync"
)

type eventsParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Days int    `json:"days" flag:"days" desc:"length of the window in days (default: sync.lookahead_days)" default:"-1"`
	Past bool   `json:"past" flag:"past" desc:"look back from --from instead of ahead"`
	From string `json:"from" flag:"from" desc:"reference day as YYYY-MM-DD (default: today)"`
}

// eventEntry is one row of the events listing.
type eventEntry struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Start     time.Time `json:"start"`
	GroupName string    `json:"group_name"`
	// GroupID is the existing chat group, 0 when none exists yet.
	GroupID int `json:"group_id,omitempty"`
}

// EventsCommand returns the "events" command.
func EventsCommand() *cli.Command {
	var params eventsParams

	return &cli.Command{
		Name:    "events",
		Summary: "List events and their chat groups",
		Description: `List the ChurchTools events in a date window with the title of their
chat group and the ID of the group if it already exists.`,
		Usage: "eventchat events [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("events", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			syncer, err := connection.Syncer()
			if err != nil {
				return err
			}
			entries, err := listEvents(ctx, syncer, connection.Communi, connection.Config, params)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(entries); done {
				return err
			}
			location, err := connection.Config.Location()
			if err != nil {
				return err
			}
			writeEvents(os.Stdout, entries, location)
			return nil
		},
	}
}

func listEvents(ctx context.Context, syncer *eventsync.Syncer, chat *communi.Session, cfg *config.Config, params eventsParams) ([]eventEntry, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	reference := syncer.Now()
	if params.From != "" {
		reference, err = time.ParseInLocation("2006-01-02", params.From, location)
		if err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
	}
	days := params.Days
	if days < 0 {
		days = cfg.Sync.LookaheadDays
	}
	if params.Past {
		days = -days
	}

	events, err := syncer.ListEvents(ctx, reference, days)
	if err != nil {
		return nil, err
	}
	groups, err := chat.Groups(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]eventEntry, 0, len(events))
	for index := range events {
		entry := eventEntry{
			ID:        events[index].ID,
			Name:      events[index].Name,
			Start:     events[index].StartDate,
			GroupName: syncer.GroupName(&events[index]),
		}
		if match, _ := eventsync.MatchGroup(groups, entry.GroupName); match != nil {
			entry.GroupID = match.ID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func writeEvents(w io.Writer, entries []eventEntry, location *time.Location) {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ID\tSTART\tGROUP\tCHAT\n")
	for _, entry := range entries {
		chat := "-"
		if entry.GroupID != 0 {
			chat = fmt.Sprintf("%d", entry.GroupID)
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n",
			entry.ID,
			entry.Start.In(location).Format("2006-01-02 15:04"),
			entry.GroupName,
			chat,
		)
	}
	writer.Flush()
}
