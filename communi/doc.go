// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package communi wraps the Communi REST API for eventchat's group
// management and messaging needs.
//
// The package provides two core types. [Client] holds the server URL, the
// app ID, the API token and the HTTP transport. [Client.Login] verifies the
// token against the server and returns an authenticated [Session] carrying
// the logged-in user's ID. Session exposes the typed operations: user
// listing, group create/list/delete, membership listing and toggling,
// chat messages and recommendations.
//
// Every request carries the token in the X-Authorization header and every
// listing carries the communiApp query parameter, so one Client is bound to
// exactly one Communi app. A Session is not safe for concurrent use.
//
// Non-2xx responses are returned as [*APIError] with the HTTP status code
// and the raw body. [IsStatus] tests for a specific status. Responses that
// succeed at the HTTP level but report an error in the payload (an "error"
// key, or "valid": false) are returned as [ErrRejected]. Empty listings are
// not errors; lookups by ID that find nothing return [ErrNotFound].
//
// Memberships are never physically deleted. [Session.SetMembership] toggles
// a membership row between [StatusActive] and [StatusRemoved].
package communi
