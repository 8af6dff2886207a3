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
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/communi"
)

type messageParams struct {
	cli.ConnectionParams
}

// MessageCommand returns the "message" command.
func MessageCommand() *cli.Command {
	var params messageParams

	return &cli.Command{
		Name:    "message",
		Summary: "Post a message into a group chat",
		Description: `Post a message into the chat of a group as the integration user.
The remaining arguments are joined with spaces. A single "-" reads
the message from standard input.`,
		Usage: "eventchat message <group-id> <text...> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("message", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 2 {
				return fmt.Errorf("expected a group id and a message")
			}
			groupID, err := parseGroupID(args[0])
			if err != nil {
				return err
			}
			text, err := messageText(args[1:], os.Stdin)
			if err != nil {
				return err
			}
			session, _, err := params.ConnectCommuni(ctx, logger)
			if err != nil {
				return err
			}
			return session.PostMessage(ctx, groupID, text)
		},
	}
}

func messageText(args []string, stdin io.Reader) (string, error) {
	text := strings.Join(args, " ")
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading message: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("message is empty")
	}
	return text, nil
}

type recommendParams struct {
	cli.ConnectionParams
	Title       string `json:"title"       flag:"title"       desc:"title of the post (required)"`
	Description string `json:"description" flag:"description" desc:"text of the post"`
	Picture     string `json:"picture"     flag:"picture"     desc:"URL of a picture shown with the post"`
	Date        string `json:"date"        flag:"date"        desc:"date shown on the post as YYYY-MM-DD HH:MM (default: now)"`
	Official    bool   `json:"official"    flag:"official"    desc:"post as the app instead of the integration user"`
}

// RecommendCommand returns the "recommend" command.
func RecommendCommand() *cli.Command {
	var params recommendParams

	return &cli.Command{
		Name:    "recommend",
		Summary: "Post a recommendation into a group feed",
		Description: `Post a recommendation into the feed of a group. --date is read in
the configured sync.timezone.`,
		Usage: "eventchat recommend <group-id> --title <title> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("recommend", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one group id")
			}
			groupID, err := parseGroupID(args[0])
			if err != nil {
				return err
			}
			session, cfg, err := params.ConnectCommuni(ctx, logger)
			if err != nil {
				return err
			}
			location, err := cfg.Location()
			if err != nil {
				return err
			}
			recommendation, err := buildRecommendation(groupID, params, location, time.Now())
			if err != nil {
				return err
			}
			return session.PostRecommendation(ctx, recommendation)
		},
		Examples: []cli.Example{
			{
				Description: "Announce the sound check",
				Command:     `eventchat recommend 7701 --title "Sound check" --date "2026-03-01 08:30"`,
			},
		},
	}
}

func buildRecommendation(groupID int, params recommendParams, location *time.Location, now time.Time) (communi.Recommendation, error) {
	if params.Title == "" {
		return communi.Recommendation{}, fmt.Errorf("--title is required")
	}
	postDate := now.In(location)
	if params.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02 15:04", params.Date, location)
		if err != nil {
			return communi.Recommendation{}, fmt.Errorf("invalid --date: %w", err)
		}
		postDate = parsed
	}
	return communi.Recommendation{
		GroupID:     groupID,
		Title:       params.Title,
		Description: params.Description,
		PostDate:    postDate,
		PictureURL:  params.Picture,
		Official:    params.Official,
	}, nil
}
