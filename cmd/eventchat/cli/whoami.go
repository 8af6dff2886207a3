// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

type whoamiParams struct {
	ConnectionParams
	JSONOutput
}

// whoamiResult names the account on each side of the sync.
type whoamiResult struct {
	CommuniApp       int    `json:"communi_app"`
	CommuniUserID    int    `json:"communi_user_id"`
	CommuniName      string `json:"communi_name"`
	CommuniEmail     string `json:"communi_email"`
	ChurchToolsID    int    `json:"churchtools_person_id"`
	ChurchToolsName  string `json:"churchtools_name"`
	ChurchToolsEmail string `json:"churchtools_email"`
}

// WhoAmICommand returns the "whoami" command, which checks both API
// tokens by logging in and printing the accounts they belong to.
func WhoAmICommand() *Command {
	var params whoamiParams

	return &Command{
		Name:    "whoami",
		Summary: "Show the accounts the configured tokens belong to",
		Usage:   "eventchat whoami [flags]",
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("whoami", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			result, err := connection.whoami(ctx)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			writeWhoAmI(os.Stdout, result)
			return nil
		},
	}
}

func (c *Connection) whoami(ctx context.Context) (*whoamiResult, error) {
	user, err := c.Communi.WhoAmI(ctx)
	if err != nil {
		return nil, err
	}
	person, err := c.ChurchTools.WhoAmI(ctx)
	if err != nil {
		return nil, err
	}
	return &whoamiResult{
		CommuniApp:       c.Config.Communi.AppID,
		CommuniUserID:    user.ID,
		CommuniName:      strings.TrimSpace(user.FirstName + " " + user.LastName),
		CommuniEmail:     user.Email,
		ChurchToolsID:    person.ID,
		ChurchToolsName:  strings.TrimSpace(person.FirstName + " " + person.LastName),
		ChurchToolsEmail: person.Email,
	}, nil
}

func writeWhoAmI(w io.Writer, result *whoamiResult) {
	fmt.Fprintf(w, "Communi:     %s <%s> (user %d, app %d)\n",
		result.CommuniName, result.CommuniEmail, result.CommuniUserID, result.CommuniApp)
	fmt.Fprintf(w, "ChurchTools: %s <%s> (person %d)\n",
		result.ChurchToolsName, result.ChurchToolsEmail, result.ChurchToolsID)
}
