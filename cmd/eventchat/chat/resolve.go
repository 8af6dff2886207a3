// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bureau-foundation/eventchat/communi"
)

func parseGroupID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid group id %q", arg)
	}
	return id, nil
}

// resolveUser accepts a numeric user ID or an email address.
func resolveUser(ctx context.Context, session *communi.Session, reference string) (*communi.User, error) {
	if id, err := strconv.Atoi(reference); err == nil {
		return session.User(ctx, id)
	}
	if !strings.Contains(reference, "@") {
		return nil, fmt.Errorf("%q is neither a user id nor an email address", reference)
	}

	users, err := session.Users(ctx)
	if err != nil {
		return nil, err
	}
	for index := range users {
		if strings.EqualFold(users[index].Email, reference) {
			return &users[index], nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", reference, communi.ErrNotFound)
}

func displayName(user communi.User) string {
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
