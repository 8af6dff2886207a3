// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Outcome is the result of one event in a batch.
type Outcome struct {
	EventID   int    `json:"event_id"`
	EventName string `json:"event_name,omitempty"`
	GroupName string `json:"group_name,omitempty"`
	GroupID   int    `json:"group_id,omitempty"`

	Relevant bool `json:"relevant"`
	// Skipped is set for irrelevant events when only relevant events
	// are synced.
	Skipped bool `json:"skipped,omitempty"`
	Created bool `json:"created,omitempty"`
	Deleted bool `json:"deleted,omitempty"`

	Added   int `json:"added,omitempty"`
	Missing int `json:"missing,omitempty"`

	Err error `json:"-"`
}

// MarshalJSON adds the error text as "error".
func (o Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	var message string
	if o.Err != nil {
		message = o.Err.Error()
	}
	return json.Marshal(struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain(o), message})
}

// Report kinds.
const (
	KindSync    = "sync"
	KindCleanup = "cleanup"
)

// Report is the result of a batch operation.
type Report struct {
	// RunID identifies the batch in logs.
	RunID    string    `json:"run_id"`
	Kind     string    `json:"kind"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Outcomes []Outcome `json:"outcomes"`
}

// AllSucceeded reports whether no event failed. An empty report
// succeeded.
func (r *Report) AllSucceeded() bool {
	return len(r.Failed()) == 0
}

// AnySucceeded reports whether at least one event completed without
// error. It hides partial failures; prefer AllSucceeded unless a single
// success is what matters.
func (r *Report) AnySucceeded() bool {
	for _, outcome := range r.Outcomes {
		if outcome.Err == nil {
			return true
		}
	}
	return false
}

// Failed returns the outcomes that carry an error.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Err joins the errors of all failed outcomes, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, outcome := range r.Failed() {
		errs = append(errs, fmt.Errorf("event %d: %w", outcome.EventID, outcome.Err))
	}
	return errors.Join(errs...)
}

// Count returns how many outcomes satisfy match.
func (r *Report) Count(match func(Outcome) bool) int {
	count := 0
	for _, outcome := range r.Outcomes {
		if match(outcome) {
			count++
		}
	}
	return count
}
