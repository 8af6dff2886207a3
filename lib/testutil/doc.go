// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for eventchat packages.
//
// [NewBackend] starts one httptest server that speaks both REST APIs
// eventchat talks to: the Communi API under /rest and the ChurchTools
// API under /api. Tests seed it with groups, users and events, point a
// config at [Backend.Config], and inspect the recorded groups,
// memberships and messages afterwards. Only the endpoints eventchat uses
// are implemented, with the response shapes the real services return.
//
// All helpers call t.Fatalf or t.Errorf on failure rather than returning
// errors, since test setup failures are not recoverable.
package testutil
