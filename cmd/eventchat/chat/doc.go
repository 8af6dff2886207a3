// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat implements the manual Communi commands: group, member,
// message and recommend. They operate on any group of the app, not only
// event chats, and need no ChurchTools access.
package chat
