// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bureau-foundation/eventchat/churchtools"
	"github.com/bureau-foundation/eventchat/communi"
	"github.com/bureau-foundation/eventchat/lib/clock"
	"github.com/bureau-foundation/eventchat/lib/roster"
)

// integrationUser is the chat user that owns every group the fake
// creates, mirroring the owner membership Communi adds on creation.
const integrationUser = 1

type postedMessage struct {
	groupID int
	text    string
}

type membershipCall struct {
	userID  int
	groupID int
	add     bool
}

// fakeChat is a scripted in-memory Communi app. Every call sees the
// effects of earlier calls.
type fakeChat struct {
	groups      []communi.Group
	users       []communi.User
	memberships map[int][]communi.Membership
	nextGroupID int

	creates        []communi.CreateGroupRequest
	deletes        []int
	membershipSets []membershipCall
	messages       []postedMessage

	failUsers      error
	failPost       error
	failMembership map[int]error
}

func newFakeChat() *fakeChat {
	return &fakeChat{memberships: make(map[int][]communi.Membership), nextGroupID: 9000}
}

func (f *fakeChat) Groups(context.Context) ([]communi.Group, error) {
	return append([]communi.Group(nil), f.groups...), nil
}

func (f *fakeChat) CreateGroup(_ context.Context, request communi.CreateGroupRequest) (*communi.Group, error) {
	f.creates = append(f.creates, request)
	f.nextGroupID++
	group := communi.Group{
		ID:           f.nextGroupID,
		Title:        request.Title,
		Description:  request.Description,
		AccessType:   communi.AccessClosed,
		HasGroupChat: request.HasGroupChat,
	}
	f.groups = append(f.groups, group)
	f.setStatus(integrationUser, group.ID, communi.StatusActive)
	return &group, nil
}

func (f *fakeChat) DeleteGroup(_ context.Context, groupID int) error {
	f.deletes = append(f.deletes, groupID)
	for index, group := range f.groups {
		if group.ID == groupID {
			f.groups = append(f.groups[:index], f.groups[index+1:]...)
			return nil
		}
	}
	return fmt.Errorf("group %d: %w", groupID, communi.ErrNotFound)
}

func (f *fakeChat) Users(context.Context) ([]communi.User, error) {
	if f.failUsers != nil {
		return nil, f.failUsers
	}
	return f.users, nil
}

func (f *fakeChat) Memberships(_ context.Context, filter communi.MembershipFilter) ([]communi.Membership, error) {
	return append([]communi.Membership(nil), f.memberships[filter.Group]...), nil
}

func (f *fakeChat) SetMembership(_ context.Context, userID, groupID int, add bool) error {
	f.membershipSets = append(f.membershipSets, membershipCall{userID, groupID, add})
	if err := f.failMembership[userID]; err != nil {
		return err
	}
	status := communi.StatusRemoved
	if add {
		status = communi.StatusActive
	}
	f.setStatus(userID, groupID, status)
	return nil
}

func (f *fakeChat) PostMessage(_ context.Context, groupID int, text string) error {
	if f.failPost != nil {
		return f.failPost
	}
	f.messages = append(f.messages, postedMessage{groupID, text})
	return nil
}

func (f *fakeChat) setStatus(userID, groupID int, status communi.MembershipStatus) {
	rows := f.memberships[groupID]
	for index := range rows {
		if rows[index].User == userID {
			rows[index].Status = status
			return
		}
	}
	f.memberships[groupID] = append(rows, communi.Membership{
		ID:     fmt.Sprintf("%d-%d", userID, groupID),
		User:   userID,
		Group:  groupID,
		RoleID: communi.DefaultRoleID,
		Status: status,
	})
}

func (f *fakeChat) addsFor(groupID int) []int {
	var users []int
	for _, call := range f.membershipSets {
		if call.groupID == groupID && call.add {
			users = append(users, call.userID)
		}
	}
	return users
}

// fakeSource serves a fixed set of events and master data.
type fakeSource struct {
	events        map[int]churchtools.Event
	order         []int
	services      map[int]churchtools.Service
	serviceGroups []churchtools.ServiceGroup
	persons       map[int]churchtools.Person

	windows      [][2]string
	failServices error
}

func (f *fakeSource) Events(_ context.Context, from, to string) ([]churchtools.Event, error) {
	f.windows = append(f.windows, [2]string{from, to})
	var events []churchtools.Event
	for _, id := range f.order {
		events = append(events, f.events[id])
	}
	return events, nil
}

func (f *fakeSource) Event(_ context.Context, eventID int) (*churchtools.Event, error) {
	event, ok := f.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", eventID, churchtools.ErrNotFound)
	}
	return &event, nil
}

func (f *fakeSource) Services(context.Context) (map[int]churchtools.Service, error) {
	if f.failServices != nil {
		return nil, f.failServices
	}
	return f.services, nil
}

func (f *fakeSource) ServiceGroups(context.Context) ([]churchtools.ServiceGroup, error) {
	return f.serviceGroups, nil
}

func (f *fakeSource) Persons(_ context.Context, ids []int) ([]churchtools.Person, error) {
	var persons []churchtools.Person
	for _, id := range ids {
		if person, ok := f.persons[id]; ok {
			persons = append(persons, person)
		}
	}
	return persons, nil
}

func intPointer(value int) *int { return &value }

var (
	testNow      = time.Date(2026, 3, 1, 8, 15, 30, 0, time.UTC)
	errTransport = errors.New("connection reset")

	// Persons: Ada is known to the chat app, Grace is not, Alan counts
	// offerings.
	ada   = churchtools.Person{ID: 501, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org"}
	grace = churchtools.Person{ID: 502, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org"}
	alan  = churchtools.Person{ID: 503, FirstName: "Alan", LastName: "Turing", Email: "alan@example.org"}

	chatAda  = communi.User{ID: 28101, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org"}
	chatAlan = communi.User{ID: 28103, FirstName: "Alan", LastName: "Turing", Email: "alan@example.org"}
)

// newTestSource returns a source with the catalog
//
//	Programm: Predigt (20)
//	Technik:  Sound (10), Licht (11)
//	Begrüßung: Opfer zählen (30)
//
// and the given events.
func newTestSource(events ...churchtools.Event) *fakeSource {
	source := &fakeSource{
		events: make(map[int]churchtools.Event),
		services: map[int]churchtools.Service{
			10: {ID: 10, Name: "Sound", ServiceGroupID: 3},
			11: {ID: 11, Name: "Licht", ServiceGroupID: 3},
			20: {ID: 20, Name: "Predigt", ServiceGroupID: 1},
			30: {ID: 30, Name: "Opfer zählen", ServiceGroupID: 4},
		},
		serviceGroups: []churchtools.ServiceGroup{
			{ID: 1, Name: "Programm", SortKey: 10},
			{ID: 3, Name: "Technik", SortKey: 20},
			{ID: 4, Name: "Begrüßung", SortKey: 30},
		},
		persons: map[int]churchtools.Person{ada.ID: ada, grace.ID: grace, alan.ID: alan},
	}
	for _, event := range events {
		source.events[event.ID] = event
		source.order = append(source.order, event.ID)
	}
	return source
}

func newTestSyncer(t *testing.T, chat *fakeChat, source *fakeSource) *Syncer {
	t.Helper()
	syncer, err := New(Config{
		Chat:     chat,
		Source:   source,
		Policy:   roster.DefaultPolicy(),
		Location: time.UTC,
		Clock:    clock.Fake(testNow),
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return syncer
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
