// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventsync keeps one Communi chat group per upcoming ChurchTools
// event populated with the people serving at it.
//
// A [Syncer] joins a [Source] (the event calendar) to a [Chat] (the chat
// app). The per-event flow is:
//
//   - build the event's [roster.Roster] from its service assignments,
//   - decide relevance with the configured [roster.Policy],
//   - find the event's group by title prefix, creating it when absent
//     ([Syncer.FindOrCreateGroup]),
//   - add every assigned person whose email is known to the chat app and
//     who is not yet an active member, and post a summary per service
//     group ([Syncer.ReconcileMembership]).
//
// Reconciliation is strictly additive: nobody is ever removed from a
// group. Groups of past events are removed as a whole by
// [Syncer.DeleteEventChats].
//
// Batch operations never stop at the first failing event. They return a
// [Report] with one [Outcome] per event; callers choose between
// [Report.AllSucceeded] and [Report.AnySucceeded].
//
// All calls are sequential. A Syncer must not be used concurrently.
package eventsync
