// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/eventchat/lib/eventsync"
)

func TestRenderReport_Sync(t *testing.T) {
	report := &eventsync.Report{
		RunID: "run-1",
		Kind:  eventsync.KindSync,
		Outcomes: []eventsync.Outcome{
			{EventID: 2626, GroupName: "_Sun 01.03 (10:00) - Gottesdienst", GroupID: 7701, Relevant: true, Created: true, Added: 2, Missing: 1},
			{EventID: 2630, EventName: "Jugend", GroupName: "_Fri 06.03 (19:00) - Jugend", Skipped: true},
			{EventID: 2631, Err: errors.New("communi: create group failed")},
		},
	}

	var buffer bytes.Buffer
	RenderReport(&buffer, report, false)
	output := buffer.String()

	for _, want := range []string{
		"sync run-1: 3 events, 1 created, 1 skipped, 1 failed",
		"✓ 2626 _Sun 01.03 (10:00) - Gottesdienst  created group 7701, 2 added, 1 missing",
		"- 2630 _Fri 06.03 (19:00) - Jugend  skipped, not relevant",
		"✗ 2631   communi: create group failed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("unstyled output contains escape sequences: %q", output)
	}
}

func TestRenderReport_Cleanup(t *testing.T) {
	report := &eventsync.Report{
		RunID: "run-2",
		Kind:  eventsync.KindCleanup,
		Outcomes: []eventsync.Outcome{
			{EventID: 2600, GroupName: "_Sun 15.02 (10:00) - Gottesdienst", GroupID: 7600, Deleted: true},
			{EventID: 2601, GroupName: "_Mon 16.02 (19:00) - Probe"},
		},
	}

	var buffer bytes.Buffer
	RenderReport(&buffer, report, false)
	output := buffer.String()

	for _, want := range []string{
		"cleanup run-2: 2 events, 1 deleted, 0 failed",
		"deleted group 7600",
		"_Mon 16.02 (19:00) - Probe  no group",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRenderReport_Styled(t *testing.T) {
	report := &eventsync.Report{
		RunID:    "run-3",
		Kind:     eventsync.KindSync,
		Outcomes: []eventsync.Outcome{{EventID: 1, Err: errors.New("boom")}},
	}

	var buffer bytes.Buffer
	RenderReport(&buffer, report, true)
	if !strings.Contains(buffer.String(), "\x1b[") {
		t.Errorf("styled output has no escape sequences: %q", buffer.String())
	}
}
