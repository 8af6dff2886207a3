// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

// DefaultRelevantGroup is the service group whose staffing makes an event
// worth a chat group by default.
const DefaultRelevantGroup = "Technik"

// DefaultExcludedServices are the service types whose people are listed in
// the chat but never added to the group by default.
var DefaultExcludedServices = []string{"Begrüßung & Opferzählen", "Opfer zählen"}

// Policy holds the organization-specific rules of a sync.
type Policy struct {
	// Relevant decides whether an event gets a chat group. Nil means
	// RequireServiceGroups(DefaultRelevantGroup).
	Relevant func(Roster) bool
	// Excluded holds service type names that never grant membership.
	Excluded map[string]bool
}

// DefaultPolicy returns the policy the sync shipped with: events need
// someone in "Technik", and greeting/offering services are excluded.
func DefaultPolicy() Policy {
	return NewPolicy([]string{DefaultRelevantGroup}, DefaultExcludedServices)
}

// NewPolicy builds a policy from configuration: an event is relevant when
// any of relevantGroups is staffed; excludedServices never grant access.
// An empty relevantGroups makes every event relevant.
func NewPolicy(relevantGroups, excludedServices []string) Policy {
	excluded := make(map[string]bool, len(excludedServices))
	for _, name := range excludedServices {
		excluded[name] = true
	}
	relevant := func(Roster) bool { return true }
	if len(relevantGroups) > 0 {
		relevant = RequireServiceGroups(relevantGroups...)
	}
	return Policy{Relevant: relevant, Excluded: excluded}
}

// RequireServiceGroups returns a relevance predicate that holds when at
// least one of the named service groups exists in the roster and is not
// empty.
func RequireServiceGroups(names ...string) func(Roster) bool {
	return func(r Roster) bool {
		for _, name := range names {
			if group, ok := r.Group(name); ok && !group.Empty() {
				return true
			}
		}
		return false
	}
}

// IsRelevant applies the policy's relevance predicate.
func (p Policy) IsRelevant(r Roster) bool {
	if p.Relevant == nil {
		return RequireServiceGroups(DefaultRelevantGroup)(r)
	}
	return p.Relevant(r)
}

// IsExcluded reports whether people assigned to serviceName must not be
// added to the chat group.
func (p Policy) IsExcluded(serviceName string) bool {
	return p.Excluded[serviceName]
}
