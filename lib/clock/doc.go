// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable source of the current time.
//
// eventchat reads the clock in three places: the timestamps in the
// automated status messages, the createdOn field of membership rows, and
// the default reference day of a sync or cleanup run. Each of those takes
// a [Clock] instead of calling time.Now so tests can pin the time.
//
// In production:
//
//	syncer := eventsync.New(eventsync.Config{Clock: clock.Real(), ...})
//
// In tests:
//
//	fake := clock.Fake(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
//	syncer := eventsync.New(eventsync.Config{Clock: fake, ...})
//	fake.Advance(2 * time.Second)
//
// A run is single-threaded and has no timers, so the interface carries
// only Now.
package clock
