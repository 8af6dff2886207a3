// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/communi"
)

// GroupCommand returns the "group" parent command.
func GroupCommand() *cli.Command {
	return &cli.Command{
		Name:    "group",
		Summary: "List, create and delete Communi groups",
		Description: `Manage the groups of the Communi app directly.

Event chats are ordinary groups whose title starts with
"_<weekday> <dd.mm> (<hh:mm>) - <event name>". Deleting one by hand is
safe: the next sync creates it again if the event is still upcoming.`,
		Subcommands: []*cli.Command{
			groupListCommand(),
			groupCreateCommand(),
			groupDeleteCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List the event chats",
				Command:     "eventchat group list --prefix _",
			},
			{
				Description: "Delete a group by its exact title",
				Command:     `eventchat group delete "_Sun 01.03 (10:00) - Gottesdienst"`,
			},
		},
	}
}

type groupListParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Prefix string `json:"prefix" flag:"prefix" desc:"only groups whose title starts with this"`
}

func groupListCommand() *cli.Command {
	var params groupListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List groups",
		Usage:   "eventchat group list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			session, _, err := params.ConnectCommuni(ctx, logger)
			if err != nil {
				return err
			}
			groups, err := listGroups(ctx, session, params.Prefix)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(groups); done {
				return err
			}
			writeGroups(os.Stdout, groups)
			return nil
		},
	}
}

func listGroups(ctx context.Context, session *communi.Session, prefix string) ([]communi.Group, error) {
	groups, err := session.Groups(ctx)
	if err != nil {
		return nil, err
	}
	var matches []communi.Group
	for _, group := range groups {
		if strings.HasPrefix(group.Title, prefix) {
			matches = append(matches, group)
		}
	}
	return matches, nil
}

func writeGroups(w io.Writer, groups []communi.Group) {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ID\tTITLE\tACCESS\tCHAT\n")
	for _, group := range groups {
		access := "closed"
		if group.AccessType == communi.AccessOpen {
			access = "open"
		}
		chat := "no"
		if group.HasGroupChat {
			chat = "yes"
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", group.ID, group.Title, access, chat)
	}
	writer.Flush()
}

type groupCreateParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Description string `json:"description" flag:"description" desc:"group description"`
	Open        bool   `json:"open"        flag:"open"        desc:"let every app user join"`
	NoChat      bool   `json:"no_chat"     flag:"no-chat"     desc:"create the group without a chat"`
}

func groupCreateCommand() *cli.Command {
	var params groupCreateParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a group",
		Description: `Create a group with the given title. The group is closed and has a
chat unless --open or --no-chat is given.`,
		Usage: "eventchat group create <title> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("create", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one title")
			}
			session, _, err := params.ConnectCommuni(ctx, logger)
			if err != nil {
				return err
			}
			group, err := session.CreateGroup(ctx, communi.CreateGroupRequest{
				Title:        args[0],
				Description:  params.Description,
				AccessOpen:   params.Open,
				HasGroupChat: !params.NoChat,
			})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(group); done {
				return err
			}
			fmt.Fprintf(os.Stdout, "Created group %d %q\n", group.ID, group.Title)
			return nil
		},
	}
}

type groupDeleteParams struct {
	cli.ConnectionParams
	ID int `json:"id" flag:"id" desc:"delete by group id instead of title"`
}

func groupDeleteCommand() *cli.Command {
	var params groupDeleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a group",
		Description: `Delete the group with the exact title, or the group with --id.
A title shared by several groups is refused.`,
		Usage: "eventchat group delete <title> | --id <group-id>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("delete", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			title := ""
			switch {
			case params.ID != 0 && len(args) == 0:
			case params.ID == 0 && len(args) == 1:
				title = args[0]
			default:
				return fmt.Errorf("expected either a title or --id")
			}
			session, _, err := params.ConnectCommuni(ctx, logger)
			if err != nil {
				return err
			}
			groupID, err := deleteGroup(ctx, session, title, params.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Deleted group %d\n", groupID)
			return nil
		},
	}
}

func deleteGroup(ctx context.Context, session *communi.Session, title string, groupID int) (int, error) {
	if groupID != 0 {
		return groupID, session.DeleteGroup(ctx, groupID)
	}
	return session.DeleteGroupByName(ctx, title)
}
