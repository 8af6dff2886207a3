// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/eventchat/communi"
	"github.com/bureau-foundation/eventchat/lib/roster"
)

// ReconcileResult describes what ReconcileMembership did.
type ReconcileResult struct {
	GroupID int `json:"group_id"`
	// FirstFill is set when the group had exactly one active member, the
	// creator, before the run.
	FirstFill bool `json:"first_fill"`
	// Added lists the chat user IDs that were added.
	Added []int `json:"added,omitempty"`
	// Missing lists display names whose email is unknown to the chat app.
	Missing []string `json:"missing,omitempty"`
	// Excluded lists display names left out because of their service.
	Excluded []string `json:"excluded,omitempty"`
	// Messages counts the chat messages posted successfully.
	Messages int `json:"messages"`
	// Failures holds the add and post calls that failed.
	Failures []error `json:"-"`
}

// ReconcileMembership adds the roster's people to group groupID and posts
// a summary:
//
//  1. an opening message, worded for a first fill or an update,
//  2. one message per service group with at least one listed person,
//  3. a closing message.
//
// A person is added when their email matches a chat user and either the
// group is being filled for the first time or they are not an active
// member. People in excluded services are only listed. Nobody is removed.
//
// Failing to list users or memberships aborts. Failed add or post calls
// do not: they are collected in the result and returned joined.
func (s *Syncer) ReconcileMembership(ctx context.Context, r roster.Roster, groupID int) (*ReconcileResult, error) {
	users, err := s.chat.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventsync: listing chat users: %w", err)
	}
	userIDs := make(map[string]int, len(users))
	for _, user := range users {
		if user.Email != "" {
			userIDs[user.Email] = user.ID
		}
	}

	memberships, err := s.chat.Memberships(ctx, communi.MembershipFilter{Group: groupID})
	if err != nil {
		return nil, fmt.Errorf("eventsync: listing members of group %d: %w", groupID, err)
	}
	// First fill: the creator holds the only membership row, removed
	// rows included. Adds only skip active members.
	members := make(map[int]bool)
	rowUsers := make(map[int]bool)
	for _, membership := range memberships {
		rowUsers[membership.User] = true
		if membership.Active() {
			members[membership.User] = true
		}
	}

	result := &ReconcileResult{GroupID: groupID, FirstFill: len(rowUsers) == 1}
	post := func(text string) {
		if err := s.chat.PostMessage(ctx, groupID, text); err != nil {
			result.Failures = append(result.Failures, err)
			return
		}
		result.Messages++
	}

	headline := s.wording.Update
	if result.FirstFill {
		headline = s.wording.FirstFill
	}
	post(fmt.Sprintf(s.wording.Opening, s.timestamp()) + headline)

	added := make(map[int]bool)
	for _, group := range r.Groups {
		if group.Empty() {
			continue
		}
		var text strings.Builder
		for _, service := range group.Services {
			var lines strings.Builder
			for _, entry := range service.Entries {
				lines.WriteString(s.reconcileEntry(ctx, result, service.Name, entry, userIDs, members, added))
			}
			if lines.Len() > 0 {
				text.WriteString("\n" + service.Name)
				text.WriteString(lines.String())
			}
		}
		if text.Len() > 0 {
			post(group.Name + ":" + text.String())
		}
	}

	post(fmt.Sprintf(s.wording.Closing, s.timestamp()))

	s.logger.Info("reconciled event group",
		"group_id", groupID,
		"first_fill", result.FirstFill,
		"added", len(result.Added),
		"missing", len(result.Missing),
		"excluded", len(result.Excluded),
		"failures", len(result.Failures),
	)
	return result, errors.Join(result.Failures...)
}

// reconcileEntry handles one roster entry and returns its display line,
// empty when the person is already a member.
func (s *Syncer) reconcileEntry(ctx context.Context, result *ReconcileResult, serviceName string, entry roster.Entry, userIDs map[string]int, members, added map[int]bool) string {
	if s.policy.IsExcluded(serviceName) {
		s.logger.Debug("not adding person of excluded service",
			"service", serviceName,
			"name", entry.DisplayName,
		)
		result.Excluded = append(result.Excluded, entry.DisplayName)
		return s.wording.Bullet + entry.DisplayName + s.wording.Excluded
	}

	userID, known := userIDs[entry.Email]
	if !known {
		s.logger.Debug("person not found in chat app",
			"service", serviceName,
			"name", entry.DisplayName,
			"email", entry.Email,
		)
		result.Missing = append(result.Missing, entry.DisplayName)
		return s.wording.Bullet + entry.DisplayName + s.wording.Missing
	}

	if !result.FirstFill && members[userID] {
		return ""
	}
	if !added[userID] {
		added[userID] = true
		if err := s.chat.SetMembership(ctx, userID, result.GroupID, true); err != nil {
			result.Failures = append(result.Failures, err)
		} else {
			result.Added = append(result.Added, userID)
		}
	}
	return s.wording.Bullet + entry.DisplayName
}
