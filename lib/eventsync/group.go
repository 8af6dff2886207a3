// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/bureau-foundation/eventchat/communi"
)

// FindOrCreateGroup resolves the group whose title starts with name.
//
//   - found, del false: returns its ID, no mutation.
//   - found, del true: deletes it and returns the deleted ID.
//   - absent, del false: creates a closed group with chat and returns the
//     new ID with found false.
//   - absent, del true: returns 0, false and nil.
//
// When several titles share the prefix a warning is logged and the group
// with the highest ID, the most recently created one, is used.
func (s *Syncer) FindOrCreateGroup(ctx context.Context, name string, del bool) (groupID int, found bool, err error) {
	groups, err := s.chat.Groups(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("eventsync: listing groups: %w", err)
	}

	match, matches := MatchGroup(groups, name)
	if len(matches) > 1 {
		s.logger.Warn("several groups share the event prefix, using the newest",
			"prefix", name,
			"group_ids", matches,
			"chosen", match.ID,
		)
	}

	if match != nil {
		if !del {
			return match.ID, true, nil
		}
		if err := s.chat.DeleteGroup(ctx, match.ID); err != nil {
			return match.ID, true, fmt.Errorf("eventsync: deleting group %q: %w", match.Title, err)
		}
		s.logger.Info("deleted event group", "group_id", match.ID, "title", match.Title)
		return match.ID, true, nil
	}

	if del {
		s.logger.Info("event group not found, nothing to delete", "prefix", name)
		return 0, false, nil
	}

	created, err := s.chat.CreateGroup(ctx, communi.CreateGroupRequest{
		Title:        name,
		Description:  s.description,
		AccessOpen:   false,
		HasGroupChat: true,
	})
	if err != nil {
		return 0, false, fmt.Errorf("eventsync: creating group %q: %w", name, err)
	}
	s.logger.Info("created event group", "group_id", created.ID, "title", name)
	return created.ID, false, nil
}

// MatchGroup returns the group whose title starts with prefix, choosing
// the highest ID when several do, together with the IDs of all matches.
// match is nil when no title matches.
func MatchGroup(groups []communi.Group, prefix string) (match *communi.Group, matches []int) {
	for index := range groups {
		if !strings.HasPrefix(groups[index].Title, prefix) {
			continue
		}
		matches = append(matches, groups[index].ID)
		if match == nil || groups[index].ID > match.ID {
			match = &groups[index]
		}
	}
	return match, matches
}
