// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/eventchat/churchtools"
)

// UnconfirmedMarker prefixes the display name of a person who has not yet
// agreed to an assignment.
const UnconfirmedMarker = "?"

// ErrUnknownService is returned by Build when an assignment refers to a
// service or service group missing from the catalogs.
var ErrUnknownService = errors.New("roster: unknown service")

// Entry is one assigned person.
type Entry struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Service lists the people assigned to one service type.
type Service struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Group lists the service types of one service group that have at least
// one assigned person.
type Group struct {
	Name     string    `json:"name"`
	Services []Service `json:"services"`
}

// Empty reports whether nobody is assigned to any service of the group.
func (g Group) Empty() bool {
	return len(g.Services) == 0
}

// Roster is the desired state of one event's chat group.
type Roster struct {
	Groups []Group `json:"groups"`
	// UnresolvedPersons lists person IDs referenced by assignments that
	// the person lookup did not return. They produce no entry.
	UnresolvedPersons []int `json:"unresolved_persons,omitempty"`
}

// Group returns the service group with the given name.
func (r Roster) Group(name string) (Group, bool) {
	for _, group := range r.Groups {
		if group.Name == name {
			return group, true
		}
	}
	return Group{}, false
}

// Size returns the number of entries across all groups and services.
func (r Roster) Size() int {
	size := 0
	for _, group := range r.Groups {
		for _, service := range group.Services {
			size += len(service.Entries)
		}
	}
	return size
}

// DisplayName formats a person for chat messages, marking unconfirmed
// assignments.
func DisplayName(person churchtools.Person, agreed bool) string {
	name := person.FirstName + " " + person.LastName
	if !agreed {
		return UnconfirmedMarker + " " + name
	}
	return name
}

// Build derives the roster of event. services is the service catalog by
// ID; groups is the service-group catalog in display order; persons holds
// the assigned persons by ID.
//
// Unfilled slots (nil PersonID) are skipped without creating the service
// type. Persons missing from persons are skipped and listed in
// UnresolvedPersons.
func Build(event *churchtools.Event, services map[int]churchtools.Service, groups []churchtools.ServiceGroup, persons map[int]churchtools.Person) (Roster, error) {
	var result Roster
	groupIndex := make(map[int]int, len(groups))
	nameIndex := make(map[string]int, len(groups))
	for _, group := range groups {
		if index, ok := nameIndex[group.Name]; ok {
			groupIndex[group.ID] = index
			continue
		}
		nameIndex[group.Name] = len(result.Groups)
		groupIndex[group.ID] = len(result.Groups)
		result.Groups = append(result.Groups, Group{Name: group.Name})
	}

	for _, assignment := range event.Services {
		service, ok := services[assignment.ServiceID]
		if !ok {
			return Roster{}, fmt.Errorf("%w: service %d on event %d", ErrUnknownService, assignment.ServiceID, event.ID)
		}
		index, ok := groupIndex[service.ServiceGroupID]
		if !ok {
			return Roster{}, fmt.Errorf("%w: service group %d of service %q", ErrUnknownService, service.ServiceGroupID, service.Name)
		}
		if assignment.PersonID == nil {
			continue
		}
		person, ok := persons[*assignment.PersonID]
		if !ok {
			result.UnresolvedPersons = append(result.UnresolvedPersons, *assignment.PersonID)
			continue
		}

		group := &result.Groups[index]
		entry := Entry{Email: person.Email, DisplayName: DisplayName(person, assignment.Agreed)}
		group.add(service.Name, entry)
	}

	return result, nil
}

func (g *Group) add(serviceName string, entry Entry) {
	for index := range g.Services {
		if g.Services[index].Name == serviceName {
			g.Services[index].Entries = append(g.Services[index].Entries, entry)
			return
		}
	}
	g.Services = append(g.Services, Service{Name: serviceName, Entries: []Entry{entry}})
}

// PersonIDs returns the distinct person IDs assigned on event, in
// assignment order.
func PersonIDs(event *churchtools.Event) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, assignment := range event.Services {
		if assignment.PersonID == nil || seen[*assignment.PersonID] {
			continue
		}
		seen[*assignment.PersonID] = true
		ids = append(ids, *assignment.PersonID)
	}
	return ids
}
