// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster derives the desired chat membership of one event.
//
// A [Roster] maps service groups (e.g. "Technik") to service types (e.g.
// "Sound") to the people assigned to them, as (email, display name)
// [Entry] values. [Build] produces it from an event, the service and
// service-group catalogs, and the assigned persons. Every catalog service
// group appears in the roster even when nobody is assigned to it; service
// types appear only once somebody fills them. All slices keep a stable
// order (catalog order for groups, first appearance on the event for
// service types, assignment order for entries), so everything rendered
// from a roster is deterministic.
//
// [Policy] holds the two organization-specific rules: which rosters
// warrant a chat group at all, and which service types never grant
// access. [GroupName] renders the title prefix that joins an event to
// its chat group across runs.
//
// The package performs no I/O.
package roster
