// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secrets implements the "eventchat secrets" commands that create
// age identities and seal dotenv files holding the API tokens.
package secrets
