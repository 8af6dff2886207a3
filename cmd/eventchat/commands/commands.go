// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete eventchat command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	chatcmd "github.com/bureau-foundation/eventchat/cmd/eventchat/chat"
	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	eventcmd "github.com/bureau-foundation/eventchat/cmd/eventchat/event"
	secretscmd "github.com/bureau-foundation/eventchat/cmd/eventchat/secrets"
	"github.com/bureau-foundation/eventchat/lib/version"
)

// Root builds and returns the eventchat command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "eventchat",
		Description: `eventchat: ChurchTools event chats in Communi.

Creates one Communi group per upcoming ChurchTools event, keeps the
people on the event's service roster in it, posts the roster into the
group chat, and deletes the groups once the events are over.`,
		Subcommands: []*cli.Command{
			eventcmd.SyncCommand(),
			eventcmd.CleanupCommand(),
			eventcmd.EventsCommand(),
			eventcmd.RosterCommand(),
			cli.WhoAmICommand(),
			chatcmd.GroupCommand(),
			chatcmd.MemberCommand(),
			chatcmd.MessageCommand(),
			chatcmd.RecommendCommand(),
			secretscmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("eventchat %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Check both API tokens",
				Command:     "eventchat whoami --config eventchat.yaml",
			},
			{
				Description: "Sync the chats of the next two weeks",
				Command:     "eventchat sync --config eventchat.yaml --days 14",
			},
			{
				Description: "Sync two events by ID, even if they are not marked relevant",
				Command:     "eventchat sync --all 2626 2630",
			},
			{
				Description: "Delete the chats of events that ended in the last week",
				Command:     "eventchat cleanup --days 7",
			},
			{
				Description: "Show who serves on an event",
				Command:     "eventchat roster 2626",
			},
		},
	}
}
