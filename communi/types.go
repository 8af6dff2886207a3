// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package communi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AccessType controls who may join a group. Communi encodes it as a
// numeric string on write and may return either form on read.
type AccessType int

const (
	// AccessOpen lets every app user join the group.
	AccessOpen AccessType = 2
	// AccessClosed restricts the group to explicitly added members.
	AccessClosed AccessType = 3
)

// MarshalJSON writes the access type as a quoted number ("2", "3").
func (a AccessType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(a)))
}

// UnmarshalJSON accepts both "3" and 3.
func (a *AccessType) UnmarshalJSON(data []byte) error {
	value, err := unmarshalLooseInt(data)
	if err != nil {
		return fmt.Errorf("communi: access type: %w", err)
	}
	*a = AccessType(value)
	return nil
}

// MembershipStatus is the state of a user-group membership row.
type MembershipStatus int

const (
	// StatusActive marks a user as a member of the group.
	StatusActive MembershipStatus = 2
	// StatusRemoved marks a membership that was revoked. The row stays.
	StatusRemoved MembershipStatus = 4
)

// UnmarshalJSON accepts both "2" and 2.
func (s *MembershipStatus) UnmarshalJSON(data []byte) error {
	value, err := unmarshalLooseInt(data)
	if err != nil {
		return fmt.Errorf("communi: membership status: %w", err)
	}
	*s = MembershipStatus(value)
	return nil
}

// DefaultRoleID is the role assigned to every membership this package
// creates (plain member).
const DefaultRoleID = 40

// groupTypeEvent is the group "type" used for every group this package
// creates.
const groupTypeEvent = "2"

// User is a Communi app user.
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	// Email is the login address. Communi calls the field "mailadresse".
	Email string `json:"mailadresse"`
}

// Group is a Communi group with optional group chat.
type Group struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	AccessType   AccessType `json:"accessType,omitempty"`
	HasGroupChat bool       `json:"hasGroupChat"`
}

// CreateGroupRequest holds the parameters for Session.CreateGroup.
type CreateGroupRequest struct {
	Title       string
	Description string
	// AccessOpen makes the group joinable by every app user. The default
	// (false) creates a closed group.
	AccessOpen bool
	// HasGroupChat enables the group's chat conversation.
	HasGroupChat bool
}

// Membership is one user-group allocation row.
type Membership struct {
	// ID is "<user>-<group>".
	ID        string           `json:"id"`
	User      int              `json:"user"`
	Group     int              `json:"group"`
	RoleID    int              `json:"roleId"`
	Status    MembershipStatus `json:"status"`
	CreatedOn string           `json:"createdOn,omitempty"`
}

// Active reports whether the membership currently grants access.
func (m Membership) Active() bool {
	return m.Status == StatusActive
}

// MembershipFilter restricts Session.Memberships. Zero fields are not
// sent.
type MembershipFilter struct {
	Group int
	User  int
}

// Recommendation is a post shown in a group's feed.
type Recommendation struct {
	GroupID     int
	Title       string
	Description string
	// PostDate is shown as the post's date.
	PostDate time.Time
	// PictureURL is optional.
	PictureURL string
	// Official posts the recommendation as the app rather than as the
	// logged-in user.
	Official bool
}

// membershipRequest is the body of PUT /UserGroup/{user}-{group}.
type membershipRequest struct {
	RoleID     int              `json:"roleId"`
	CreatedOn  string           `json:"createdOn"`
	Status     MembershipStatus `json:"status"`
	User       int              `json:"user"`
	Group      int              `json:"group"`
	ID         string           `json:"id"`
	RLS        int              `json:"_rls"`
	LoadStatus int              `json:"_loadStatus"`
	Valid      bool             `json:"valid"`
}

// createGroupBody is the body of POST /group.
type createGroupBody struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	AccessType   AccessType `json:"accessType"`
	HasGroupChat bool       `json:"hasGroupChat"`
	CommuniApp   int        `json:"communiApp"`
}

// messageBody is the body of POST /message.
type messageBody struct {
	Message      string `json:"message"`
	Conversation string `json:"conversation"`
}

// recommendationBody is the body of POST /recommendation.
type recommendationBody struct {
	Title       string `json:"title"`
	DateTime    string `json:"dateTime"`
	Description string `json:"description"`
	PicURL      string `json:"picUrl"`
	Group       string `json:"group"`
	IsOfficial  bool   `json:"isOfficial"`
}

// validResponse is the acknowledgement shape shared by the write
// endpoints.
type validResponse struct {
	Valid *bool           `json:"valid"`
	Error json.RawMessage `json:"error"`
}

// formatPostDate renders t the way the recommendation endpoint expects:
// "2006-01-02 15:04:05 -0700", with a UTC offset written as "+0".
func formatPostDate(t time.Time) string {
	return strings.Replace(t.Format("2006-01-02 15:04:05 -0700"), "+0000", "+0", 1)
}

// formatCreatedOn renders t like the web client does for membership rows.
func formatCreatedOn(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000000")
}

func unmarshalLooseInt(data []byte) (int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return 0, nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return 0, err
		}
		if text == "" {
			return 0, nil
		}
		return strconv.Atoi(text)
	}
	var number int
	if err := json.Unmarshal(data, &number); err != nil {
		return 0, err
	}
	return number, nil
}

// decodeOneOrMany decodes a response body that is either a JSON array of T
// or a single T object. Communi collapses filtered listings to a bare
// object when exactly one row matches.
func decodeOneOrMany[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	if string(trimmed) == "{}" {
		return nil, nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, err
	}
	return []T{item}, nil
}
