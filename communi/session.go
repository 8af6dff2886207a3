// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package communi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Session is an authenticated Communi session created by Client.Login.
type Session struct {
	client *Client
	userID int
}

// UserID returns the ID of the logged-in integration user.
func (s *Session) UserID() int {
	return s.userID
}

// Client returns the client the session was created from.
func (s *Session) Client() *Client {
	return s.client
}

// WhoAmI fetches the user record of the logged-in user.
func (s *Session) WhoAmI(ctx context.Context) (*User, error) {
	return s.User(ctx, s.userID)
}

// Users lists all users of the app.
func (s *Session) Users(ctx context.Context) ([]User, error) {
	query := s.client.appQuery()
	query.Set("loadStatus", "1")

	body, err := s.client.doRequest(ctx, http.MethodGet, "/user", query, nil)
	if err != nil {
		return nil, fmt.Errorf("communi: list users failed: %w", err)
	}
	users, err := decodeOneOrMany[User](body)
	if err != nil {
		return nil, fmt.Errorf("communi: failed to parse user list: %w", err)
	}
	s.client.logger.Debug("fetched users", "count", len(users))
	return users, nil
}

// User fetches a single user by ID. Returns ErrNotFound when the app has
// no such user.
func (s *Session) User(ctx context.Context, userID int) (*User, error) {
	query := s.client.appQuery()
	query.Set("loadStatus", "1")
	query.Set("id", strconv.Itoa(userID))

	body, err := s.client.doRequest(ctx, http.MethodGet, "/user", query, nil)
	if err != nil {
		return nil, fmt.Errorf("communi: get user %d failed: %w", userID, err)
	}
	users, err := decodeOneOrMany[User](body)
	if err != nil {
		return nil, fmt.Errorf("communi: failed to parse user %d: %w", userID, err)
	}
	for index := range users {
		if users[index].ID == userID {
			return &users[index], nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
}

// Groups lists all groups of the app visible to the integration user.
func (s *Session) Groups(ctx context.Context) ([]Group, error) {
	query := s.client.appQuery()
	query.Set("loadStatus", "true")

	body, err := s.client.doRequest(ctx, http.MethodGet, "/group", query, nil)
	if err != nil {
		return nil, fmt.Errorf("communi: list groups failed: %w", err)
	}
	groups, err := decodeOneOrMany[Group](body)
	if err != nil {
		return nil, fmt.Errorf("communi: failed to parse group list: %w", err)
	}
	s.client.logger.Debug("fetched groups", "count", len(groups))
	return groups, nil
}

// Group fetches a single group by ID. Returns ErrNotFound when no such
// group is visible.
func (s *Session) Group(ctx context.Context, groupID int) (*Group, error) {
	query := s.client.appQuery()
	query.Set("loadStatus", "true")
	query.Set("id", strconv.Itoa(groupID))

	body, err := s.client.doRequest(ctx, http.MethodGet, "/group", query, nil)
	if err != nil {
		return nil, fmt.Errorf("communi: get group %d failed: %w", groupID, err)
	}
	groups, err := decodeOneOrMany[Group](body)
	if err != nil {
		return nil, fmt.Errorf("communi: failed to parse group %d: %w", groupID, err)
	}
	for index := range groups {
		if groups[index].ID == groupID {
			return &groups[index], nil
		}
	}
	return nil, fmt.Errorf("group %d: %w", groupID, ErrNotFound)
}

// GroupsByName lists the groups whose title equals name exactly. The
// filter is applied client-side.
func (s *Session) GroupsByName(ctx context.Context, name string) ([]Group, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	var matches []Group
	for _, group := range groups {
		if group.Title == name {
			matches = append(matches, group)
		}
	}
	return matches, nil
}

// CreateGroup creates a new group and returns it as stored by the server.
func (s *Session) CreateGroup(ctx context.Context, request CreateGroupRequest) (*Group, error) {
	if request.Title == "" {
		return nil, fmt.Errorf("communi: group title is required")
	}

	accessType := AccessClosed
	if request.AccessOpen {
		accessType = AccessOpen
	}
	body, err := s.client.doRequest(ctx, http.MethodPost, "/group", nil, createGroupBody{
		Title:        request.Title,
		Description:  request.Description,
		Type:         groupTypeEvent,
		AccessType:   accessType,
		HasGroupChat: request.HasGroupChat,
		CommuniApp:   s.client.appID,
	})
	if err != nil {
		return nil, fmt.Errorf("communi: create group %q failed: %w", request.Title, err)
	}

	var group Group
	if err := json.Unmarshal(body, &group); err != nil {
		return nil, fmt.Errorf("communi: failed to parse created group: %w", err)
	}
	if group.ID == 0 {
		return nil, fmt.Errorf("communi: create group %q: %w: response carries no id", request.Title, ErrRejected)
	}

	s.client.logger.Info("created communi group",
		"group_id", group.ID,
		"title", group.Title,
	)
	return &group, nil
}

// DeleteGroup deletes the group with the given ID.
func (s *Session) DeleteGroup(ctx context.Context, groupID int) error {
	path := "/group/" + strconv.Itoa(groupID)
	if _, err := s.client.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("communi: delete group %d failed: %w", groupID, err)
	}
	s.client.logger.Info("deleted communi group", "group_id", groupID)
	return nil
}

// DeleteGroupByName resolves name to exactly one group and deletes it.
// Returns the deleted group's ID. No title match yields ErrNotFound; more
// than one yields ErrAmbiguousGroup and nothing is deleted.
func (s *Session) DeleteGroupByName(ctx context.Context, name string) (int, error) {
	matches, err := s.GroupsByName(ctx, name)
	if err != nil {
		return 0, err
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("group %q: %w", name, ErrNotFound)
	case 1:
		return matches[0].ID, s.DeleteGroup(ctx, matches[0].ID)
	default:
		return 0, fmt.Errorf("%w: %d groups titled %q", ErrAmbiguousGroup, len(matches), name)
	}
}

// Memberships lists membership rows matching filter. Rows with
// StatusRemoved are included; use Membership.Active to filter.
func (s *Session) Memberships(ctx context.Context, filter MembershipFilter) ([]Membership, error) {
	query := s.client.appQuery()
	query.Set("loadStatus", "true")
	if filter.Group != 0 {
		query.Set("group", strconv.Itoa(filter.Group))
	}
	if filter.User != 0 {
		query.Set("user", strconv.Itoa(filter.User))
	}

	body, err := s.client.doRequest(ctx, http.MethodGet, "/UserGroup", query, nil)
	if err != nil {
		return nil, fmt.Errorf("communi: list memberships failed: %w", err)
	}
	memberships, err := decodeOneOrMany[Membership](body)
	if err != nil {
		return nil, fmt.Errorf("communi: failed to parse membership list: %w", err)
	}
	s.client.logger.Debug("fetched memberships",
		"group_id", filter.Group,
		"user_id", filter.User,
		"count", len(memberships),
	)
	return memberships, nil
}

// SetMembership adds (add=true) or removes a user from a group by
// toggling the membership row's status. The app may take a few seconds to
// reflect the change.
func (s *Session) SetMembership(ctx context.Context, userID, groupID int, add bool) error {
	status := StatusRemoved
	if add {
		status = StatusActive
	}
	membershipID := fmt.Sprintf("%d-%d", userID, groupID)

	body, err := s.client.doRequest(ctx, http.MethodPut, "/UserGroup/"+membershipID, nil, membershipRequest{
		RoleID:     DefaultRoleID,
		CreatedOn:  formatCreatedOn(s.client.clock.Now()),
		Status:     status,
		User:       userID,
		Group:      groupID,
		ID:         membershipID,
		RLS:        1,
		LoadStatus: 10,
		Valid:      true,
	})
	if err != nil {
		return fmt.Errorf("communi: set membership %s failed: %w", membershipID, err)
	}
	if err := checkValid(body); err != nil {
		return fmt.Errorf("communi: set membership %s: %w", membershipID, err)
	}

	s.client.logger.Debug("changed membership",
		"user_id", userID,
		"group_id", groupID,
		"status", int(status),
	)
	return nil
}

// PostMessage posts text into the group's chat.
func (s *Session) PostMessage(ctx context.Context, groupID int, text string) error {
	body, err := s.client.doRequest(ctx, http.MethodPost, "/message", nil, messageBody{
		Message:      text,
		Conversation: "group-" + strconv.Itoa(groupID),
	})
	if err != nil {
		return fmt.Errorf("communi: post message to group %d failed: %w", groupID, err)
	}
	if err := checkValid(body); err != nil {
		return fmt.Errorf("communi: post message to group %d: %w", groupID, err)
	}
	s.client.logger.Debug("posted message", "group_id", groupID, "length", len(text))
	return nil
}

// PostRecommendation posts a recommendation into the group's feed.
func (s *Session) PostRecommendation(ctx context.Context, recommendation Recommendation) error {
	if recommendation.Title == "" {
		return fmt.Errorf("communi: recommendation title is required")
	}

	body, err := s.client.doRequest(ctx, http.MethodPost, "/recommendation", nil, recommendationBody{
		Title:       recommendation.Title,
		DateTime:    formatPostDate(recommendation.PostDate),
		Description: recommendation.Description,
		PicURL:      recommendation.PictureURL,
		Group:       strconv.Itoa(recommendation.GroupID),
		IsOfficial:  recommendation.Official,
	})
	if err != nil {
		return fmt.Errorf("communi: post recommendation to group %d failed: %w", recommendation.GroupID, err)
	}
	if err := checkValid(body); err != nil {
		return fmt.Errorf("communi: post recommendation to group %d: %w", recommendation.GroupID, err)
	}
	s.client.logger.Debug("posted recommendation",
		"group_id", recommendation.GroupID,
		"title", recommendation.Title,
	)
	return nil
}
