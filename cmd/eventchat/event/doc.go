// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event implements the event-driven commands: sync, cleanup,
// events and roster. sync and cleanup are the scheduled entry points;
// events and roster inspect what a sync would do.
package event
