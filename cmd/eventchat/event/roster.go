// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/lib/eventsync"
	"github.com/bureau-foundation/eventchat/lib/roster"
)

type rosterParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

// rosterResult is the JSON form of the roster command's output.
type rosterResult struct {
	EventID   int           `json:"event_id"`
	EventName string        `json:"event_name"`
	GroupName string        `json:"group_name"`
	Relevant  bool          `json:"relevant"`
	Roster    roster.Roster `json:"roster"`
}

// RosterCommand returns the "roster" command.
func RosterCommand() *cli.Command {
	var params rosterParams

	return &cli.Command{
		Name:    "roster",
		Summary: "Show who serves in an event",
		Description: `Show the roster of one event as sync sees it: every service group
with its services and the people assigned to them, the chat group
title, and whether the event is relevant.

People who have not confirmed their assignment are marked with "?".`,
		Usage: "eventchat roster <event-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("roster", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one event id")
			}
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
			result, err := loadRoster(ctx, syncer, eventIDs[0])
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			writeRoster(os.Stdout, result)
			return nil
		},
	}
}

func loadRoster(ctx context.Context, syncer *eventsync.Syncer, eventID int) (*rosterResult, error) {
	eventRoster, event, err := syncer.Roster(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &rosterResult{
		EventID:   event.ID,
		EventName: event.Name,
		GroupName: syncer.GroupName(event),
		Relevant:  syncer.IsRelevant(eventRoster),
		Roster:    eventRoster,
	}, nil
}

func writeRoster(w io.Writer, result *rosterResult) {
	relevance := "relevant"
	if !result.Relevant {
		relevance = "not relevant"
	}
	fmt.Fprintf(w, "%s (%s)\n", result.GroupName, relevance)

	for _, group := range result.Roster.Groups {
		if group.Empty() {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", group.Name)
		for _, service := range group.Services {
			fmt.Fprintf(w, "  %s\n", service.Name)
			for _, entry := range service.Entries {
				fmt.Fprintf(w, "    %s <%s>\n", entry.DisplayName, entry.Email)
			}
		}
	}

	if len(result.Roster.UnresolvedPersons) > 0 {
		fmt.Fprintf(w, "\nUnresolved person IDs: %v\n", result.Roster.UnresolvedPersons)
	}
}
