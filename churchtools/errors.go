// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package churchtools

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from ChurchTools.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	// Message is the "message" field of the error body when present,
	// otherwise the raw body.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("churchtools: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("churchtools: not found")

// IsStatus checks whether err is an *APIError with the given HTTP status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}
