// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package communi

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the Communi server.
// Callers can use errors.As to extract it:
//
//	var apiErr *APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusUnauthorized { ... }
//	}
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Method and Path identify the failed request.
	Method string
	Path   string
	// Body is the raw response body. Communi does not use a structured
	// error shape, so the body is kept verbatim for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("communi: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

var (
	// ErrNotFound is returned by lookups by ID or exact name that match
	// nothing.
	ErrNotFound = errors.New("communi: not found")

	// ErrAmbiguousGroup is returned by DeleteGroupByName when more than
	// one group carries the requested title.
	ErrAmbiguousGroup = errors.New("communi: group name is ambiguous")

	// ErrRejected is returned when the server answers 200 but the payload
	// carries an "error" key or "valid": false.
	ErrRejected = errors.New("communi: request rejected")

	// ErrEmptyApp is returned by Login when the token is accepted but the
	// app has no visible groups, which in practice means the app ID is
	// wrong.
	ErrEmptyApp = errors.New("communi: app returned no groups (wrong app ID or empty app)")
)

// IsStatus checks whether err is an *APIError with the given HTTP status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}
