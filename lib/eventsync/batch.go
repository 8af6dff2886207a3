// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/eventchat/churchtools"
)

// dateLayout is the calendar-day form the event endpoints accept.
const dateLayout = "2006-01-02"

// ListEvents returns the events starting in the calendar-day window
// between reference and reference plus days, both inclusive and evaluated
// in the configured location. Negative days look backwards. Order is as
// returned by the source.
func (s *Syncer) ListEvents(ctx context.Context, reference time.Time, days int) ([]churchtools.Event, error) {
	from := reference.In(s.location)
	to := from.AddDate(0, 0, days)
	if to.Before(from) {
		from, to = to, from
	}
	fromDate, toDate := from.Format(dateLayout), to.Format(dateLayout)

	events, err := s.source.Events(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("eventsync: listing events %s..%s: %w", fromDate, toDate, err)
	}
	s.logger.Debug("listed events", "from", fromDate, "to", toDate, "count", len(events))
	return events, nil
}

// ListEventIDs is ListEvents reduced to the event IDs.
func (s *Syncer) ListEventIDs(ctx context.Context, reference time.Time, days int) ([]int, error) {
	events, err := s.ListEvents(ctx, reference, days)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	return ids, nil
}

// CreateEventChats syncs the chat group of every event in eventIDs. With
// onlyRelevant set, events the policy rejects are skipped; otherwise every
// event gets a group. A failing event is recorded and the loop continues.
func (s *Syncer) CreateEventChats(ctx context.Context, eventIDs []int, onlyRelevant bool) *Report {
	report := s.newReport(KindSync)
	logger := s.logger.With("run_id", report.RunID)
	logger.Info("syncing event chats", "events", len(eventIDs), "only_relevant", onlyRelevant)

	cat, catalogErr := s.loadCatalog(ctx)
	for _, eventID := range eventIDs {
		outcome := Outcome{EventID: eventID}
		switch {
		case catalogErr != nil:
			outcome.Err = catalogErr
		case ctx.Err() != nil:
			outcome.Err = ctx.Err()
		default:
			s.createEventChat(ctx, &outcome, cat, onlyRelevant)
		}
		if outcome.Err != nil {
			logger.Error("event sync failed", "event_id", eventID, "error", outcome.Err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Finished = s.clock.Now()
	logger.Info("synced event chats",
		"events", len(report.Outcomes),
		"failed", len(report.Failed()),
	)
	return report
}

func (s *Syncer) createEventChat(ctx context.Context, outcome *Outcome, cat *catalog, onlyRelevant bool) {
	eventRoster, event, err := s.buildRoster(ctx, outcome.EventID, cat)
	if event != nil {
		outcome.EventName = event.Name
		outcome.GroupName = s.GroupName(event)
	}
	if err != nil {
		outcome.Err = err
		return
	}

	outcome.Relevant = s.policy.IsRelevant(eventRoster)
	if onlyRelevant && !outcome.Relevant {
		outcome.Skipped = true
		s.logger.Debug("skipping irrelevant event", "event_id", event.ID, "name", event.Name)
		return
	}

	groupID, found, err := s.FindOrCreateGroup(ctx, outcome.GroupName, false)
	if err != nil {
		outcome.Err = err
		return
	}
	outcome.GroupID = groupID
	outcome.Created = !found

	result, err := s.ReconcileMembership(ctx, eventRoster, groupID)
	if result != nil {
		outcome.Added = len(result.Added)
		outcome.Missing = len(result.Missing)
	}
	outcome.Err = err
}

// DeleteEventChats deletes the chat group of every event in eventIDs.
// Events without a group are not failures.
func (s *Syncer) DeleteEventChats(ctx context.Context, eventIDs []int) *Report {
	report := s.newReport(KindCleanup)
	logger := s.logger.With("run_id", report.RunID)
	logger.Info("deleting event chats", "events", len(eventIDs))

	for _, eventID := range eventIDs {
		outcome := Outcome{EventID: eventID}
		if err := ctx.Err(); err != nil {
			outcome.Err = err
		} else {
			s.deleteEventChat(ctx, &outcome)
		}
		if outcome.Err != nil {
			logger.Error("event cleanup failed", "event_id", eventID, "error", outcome.Err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Finished = s.clock.Now()
	logger.Info("deleted event chats",
		"deleted", report.Count(func(o Outcome) bool { return o.Deleted }),
		"failed", len(report.Failed()),
	)
	return report
}

func (s *Syncer) deleteEventChat(ctx context.Context, outcome *Outcome) {
	event, err := s.source.Event(ctx, outcome.EventID)
	if err != nil {
		outcome.Err = fmt.Errorf("eventsync: fetching event %d: %w", outcome.EventID, err)
		return
	}
	outcome.EventName = event.Name
	outcome.GroupName = s.GroupName(event)

	groupID, found, err := s.FindOrCreateGroup(ctx, outcome.GroupName, true)
	outcome.GroupID = groupID
	outcome.Deleted = found && err == nil
	outcome.Err = err
}

func (s *Syncer) newReport(kind string) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Kind:    kind,
		Started: s.clock.Now(),
	}
}
