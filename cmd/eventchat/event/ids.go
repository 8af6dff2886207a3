// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/lib/eventsync"
)

// parseEventIDs parses positional event ID arguments.
func parseEventIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid event id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// writeReport prints report as JSON or styled text and turns failed events
// into exit code 1.
func writeReport(w io.Writer, report *eventsync.Report, output cli.JSONOutput, styled bool) error {
	if output.OutputJSON {
		if err := cli.WriteJSON(w, report); err != nil {
			return err
		}
	} else {
		cli.RenderReport(w, report, styled)
	}
	if !report.AllSucceeded() {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
