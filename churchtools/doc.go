// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package churchtools is a read-only client for the ChurchTools REST API,
// limited to what event chat synchronization needs: events (by ID, with
// their service assignments, or by date range), the service catalog, the
// service-group catalog, and persons.
//
// Requests authenticate with a login token ("Authorization: Login
// <token>"). Every response wraps its payload in {"data": ...}; listing
// endpoints are paginated and [Client] follows meta.pagination.lastPage
// transparently. Non-2xx responses are returned as [*APIError].
package churchtools
