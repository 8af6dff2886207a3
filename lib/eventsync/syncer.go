// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/eventchat/churchtools"
	"github.com/bureau-foundation/eventchat/communi"
	"github.com/bureau-foundation/eventchat/lib/clock"
	"github.com/bureau-foundation/eventchat/lib/roster"
)

// Chat is the subset of a Communi session the sync uses.
type Chat interface {
	Groups(ctx context.Context) ([]communi.Group, error)
	CreateGroup(ctx context.Context, request communi.CreateGroupRequest) (*communi.Group, error)
	DeleteGroup(ctx context.Context, groupID int) error
	Users(ctx context.Context) ([]communi.User, error)
	Memberships(ctx context.Context, filter communi.MembershipFilter) ([]communi.Membership, error)
	SetMembership(ctx context.Context, userID, groupID int, add bool) error
	PostMessage(ctx context.Context, groupID int, text string) error
}

// Source is the subset of the ChurchTools client the sync uses.
type Source interface {
	Events(ctx context.Context, from, to string) ([]churchtools.Event, error)
	Event(ctx context.Context, eventID int) (*churchtools.Event, error)
	Services(ctx context.Context) (map[int]churchtools.Service, error)
	ServiceGroups(ctx context.Context) ([]churchtools.ServiceGroup, error)
	Persons(ctx context.Context, ids []int) ([]churchtools.Person, error)
}

var (
	_ Chat   = (*communi.Session)(nil)
	_ Source = (*churchtools.Client)(nil)
)

// Config holds the dependencies and settings of a Syncer.
type Config struct {
	// Chat and Source are required.
	Chat   Chat
	Source Source

	// Policy decides relevance and excluded services. The zero value
	// behaves like roster.DefaultPolicy without exclusions; pass
	// roster.DefaultPolicy() for the full defaults.
	Policy roster.Policy

	// Location converts event start times and "now" for group names,
	// timestamps and date windows. If nil, time.Local is used.
	Location *time.Location
	// Locale selects weekday abbreviations. Empty means English.
	Locale roster.Locale
	// Wording overrides the message texts. If nil, WordingFor(Locale).
	Wording *Wording
	// GroupDescription overrides the description of created groups.
	GroupDescription string

	// Clock stamps status messages. If nil, the real clock is used.
	Clock clock.Clock
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Syncer reconciles chat groups with event rosters.
type Syncer struct {
	chat        Chat
	source      Source
	policy      roster.Policy
	location    *time.Location
	locale      roster.Locale
	wording     Wording
	description string
	clock       clock.Clock
	logger      *slog.Logger
}

// New creates a Syncer.
func New(config Config) (*Syncer, error) {
	if config.Chat == nil {
		return nil, fmt.Errorf("eventsync: Chat is required")
	}
	if config.Source == nil {
		return nil, fmt.Errorf("eventsync: Source is required")
	}

	locale := config.Locale
	if locale == "" {
		locale = roster.LocaleEnglish
	}
	location := config.Location
	if location == nil {
		location = time.Local
	}
	wording := WordingFor(locale)
	if config.Wording != nil {
		wording = *config.Wording
	}
	description := config.GroupDescription
	if description == "" {
		description = wording.GroupDescription
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Syncer{
		chat:        config.Chat,
		source:      config.Source,
		policy:      config.Policy,
		location:    location,
		locale:      locale,
		wording:     wording,
		description: description,
		clock:       clk,
		logger:      logger,
	}, nil
}

// GroupName returns the chat group title prefix of event.
func (s *Syncer) GroupName(event *churchtools.Event) string {
	return roster.GroupName(event, s.location, s.locale)
}

// IsRelevant applies the configured policy to r.
func (s *Syncer) IsRelevant(r roster.Roster) bool {
	return s.policy.IsRelevant(r)
}

// catalog is the service and service-group master data, fetched once per
// batch.
type catalog struct {
	services map[int]churchtools.Service
	groups   []churchtools.ServiceGroup
}

func (s *Syncer) loadCatalog(ctx context.Context) (*catalog, error) {
	services, err := s.source.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventsync: loading service catalog: %w", err)
	}
	groups, err := s.source.ServiceGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventsync: loading service groups: %w", err)
	}
	return &catalog{services: services, groups: groups}, nil
}

// Roster fetches event eventID with its assignments and builds its roster.
func (s *Syncer) Roster(ctx context.Context, eventID int) (roster.Roster, *churchtools.Event, error) {
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return roster.Roster{}, nil, err
	}
	return s.buildRoster(ctx, eventID, cat)
}

func (s *Syncer) buildRoster(ctx context.Context, eventID int, cat *catalog) (roster.Roster, *churchtools.Event, error) {
	event, err := s.source.Event(ctx, eventID)
	if err != nil {
		return roster.Roster{}, nil, fmt.Errorf("eventsync: fetching event %d: %w", eventID, err)
	}

	persons := make(map[int]churchtools.Person)
	if ids := roster.PersonIDs(event); len(ids) > 0 {
		found, err := s.source.Persons(ctx, ids)
		if err != nil {
			return roster.Roster{}, event, fmt.Errorf("eventsync: fetching persons of event %d: %w", eventID, err)
		}
		for _, person := range found {
			persons[person.ID] = person
		}
	}

	result, err := roster.Build(event, cat.services, cat.groups, persons)
	if err != nil {
		return roster.Roster{}, event, fmt.Errorf("eventsync: event %d: %w", eventID, err)
	}
	if len(result.UnresolvedPersons) > 0 {
		s.logger.Warn("assigned persons not visible to the API user",
			"event_id", eventID,
			"person_ids", result.UnresolvedPersons,
		)
	}
	return result, event, nil
}

func (s *Syncer) timestamp() string {
	return s.locale.FormatSecond(s.clock.Now().In(s.location))
}

// Now returns the current time of the syncer's clock. Callers use it as
// the reference day of event windows so that windows and message
// timestamps agree.
func (s *Syncer) Now() time.Time {
	return s.clock.Now()
}
