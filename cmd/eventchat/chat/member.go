// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/communi"
)

// MemberCommand returns the "member" parent command.
func MemberCommand() *cli.Command {
	return &cli.Command{
		Name:    "member",
		Summary: "List, add and remove group members",
		Description: `Manage the members of a Communi group.

Users are given as numeric Communi user IDs or as the email address
they log in with. Removing a member keeps the membership row with the
removed status, as the Communi web client does.`,
		Subcommands: []*cli.Command{
			memberListCommand(),
			memberChangeCommand("add", "Add a user to a group", true),
			memberChangeCommand("remove", "Remove a user from a group", false),
		},
		Examples: []cli.Example{
			{
				Description: "Add a user by email",
				Command:     "eventchat member add 7701 ada@example.org",
			},
		},
	}
}

// memberEntry is one row of the member listing.
type memberEntry struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

type memberListParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Removed bool `json:"removed" flag:"removed" desc:"include removed memberships"`
}

func memberListCommand() *cli.Command {
	var params memberListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the members of a group",
		Usage:   "eventchat member list <group-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one group id")
			}
			groupID, err := parseGroupID(args[0])
			if err != nil {
				return err
			}
			session, _, err := params.ConnectCommuni(ctx, logger)
			if err != nil {
				return err
			}
			members, err := listMembers(ctx, session, groupID, params.Removed)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(members); done {
				return err
			}
			writeMembers(os.Stdout, members)
			return nil
		},
	}
}

func listMembers(ctx context.Context, session *communi.Session, groupID int, removed bool) ([]memberEntry, error) {
	memberships, err := session.Memberships(ctx, communi.MembershipFilter{Group: groupID})
	if err != nil {
		return nil, err
	}
	users, err := session.Users(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]communi.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	var members []memberEntry
	for _, membership := range memberships {
		if !membership.Active() && !removed {
			continue
		}
		user := byID[membership.User]
		members = append(members, memberEntry{
			UserID: membership.User,
			Name:   displayName(user),
			Email:  user.Email,
			Active: membership.Active(),
		})
	}
	return members, nil
}

func writeMembers(w io.Writer, members []memberEntry) {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "USER\tNAME\tEMAIL\tSTATUS\n")
	for _, member := range members {
		status := "active"
		if !member.Active {
			status = "removed"
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", member.UserID, member.Name, member.Email, status)
	}
	writer.Flush()
}

type memberChangeParams struct {
	cli.ConnectionParams
}

func memberChangeCommand(name, summary string, add bool) *cli.Command {
	var params memberChangeParams

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   fmt.Sprintf("eventchat member %s <group-id> <user-id|email> [flags]", name),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams(name, &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected a group id and a user")
			}
			groupID, err := parseGroupID(args[0])
			if err != nil {
				return err
			}
			session, _, err := params.ConnectCommuni(ctx, logger)
			if err != nil {
				return err
			}
			user, err := changeMembership(ctx, session, groupID, args[1], add)
			if err != nil {
				return err
			}
			verb := "Added"
			if !add {
				verb = "Removed"
			}
			fmt.Fprintf(os.Stdout, "%s %s (%d)\n", verb, displayName(*user), user.ID)
			return nil
		},
	}
}

func changeMembership(ctx context.Context, session *communi.Session, groupID int, reference string, add bool) (*communi.User, error) {
	user, err := resolveUser(ctx, session, reference)
	if err != nil {
		return nil, err
	}
	if err := session.SetMembership(ctx, user.ID, groupID, add); err != nil {
		return nil, err
	}
	return user, nil
}
