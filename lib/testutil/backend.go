// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/eventchat/churchtools"
	"github.com/bureau-foundation/eventchat/communi"
	"github.com/bureau-foundation/eventchat/lib/config"
)

// IntegrationUserID is the Communi user the backend logs everybody in as.
// It owns every group it creates.
const IntegrationUserID = 1

// Backend is a fake Communi and ChurchTools server. Its fields may be
// seeded before the first request; afterwards use the accessor methods.
type Backend struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	groups      []communi.Group
	nextGroupID int
	users       []communi.User
	memberships map[string]communi.Membership
	messages    map[int][]string
	recommended []map[string]any

	events        map[int]churchtools.Event
	eventOrder    []int
	services      []churchtools.Service
	serviceGroups []churchtools.ServiceGroup
	persons       map[int]churchtools.Person
	windows       [][2]string
}

// NewBackend starts a backend with one app group ("Gemeinde", ID 100),
// owned by the integration user like every other group, so that Communi
// logins succeed. The server is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	backend := &Backend{
		t:           t,
		groups:      []communi.Group{{ID: 100, Title: "Gemeinde", AccessType: communi.AccessOpen}},
		nextGroupID: 7700,
		users:       []communi.User{{ID: IntegrationUserID, FirstName: "Event", LastName: "Bot", Email: "bot@example.org"}},
		memberships: make(map[string]communi.Membership),
		messages:    make(map[int][]string),
		events:      make(map[int]churchtools.Event),
		persons:     make(map[int]churchtools.Person),
	}
	backend.putMembership(IntegrationUserID, 100, communi.StatusActive)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/login", backend.login)
	mux.HandleFunc("GET /rest/user", backend.listUsers)
	mux.HandleFunc("GET /rest/group", backend.listGroups)
	mux.HandleFunc("POST /rest/group", backend.createGroup)
	mux.HandleFunc("DELETE /rest/group/{id}", backend.deleteGroup)
	mux.HandleFunc("GET /rest/UserGroup", backend.listMemberships)
	mux.HandleFunc("PUT /rest/UserGroup/{id}", backend.setMembership)
	mux.HandleFunc("POST /rest/message", backend.postMessage)
	mux.HandleFunc("POST /rest/recommendation", backend.postRecommendation)

	mux.HandleFunc("GET /api/whoami", backend.whoami)
	mux.HandleFunc("GET /api/events", backend.listEvents)
	mux.HandleFunc("GET /api/events/{id}", backend.getEvent)
	mux.HandleFunc("GET /api/services", backend.listServices)
	mux.HandleFunc("GET /api/event/masterdata", backend.masterdata)
	mux.HandleFunc("GET /api/persons", backend.listPersons)

	backend.server = httptest.NewServer(mux)
	t.Cleanup(backend.server.Close)
	return backend
}

// Config returns a valid configuration pointing at the backend, with the
// default sync settings and UTC as the timezone.
func (b *Backend) Config() *config.Config {
	cfg := config.Default()
	cfg.Communi.Server = b.server.URL + "/rest"
	cfg.Communi.AppID = 2406
	cfg.Communi.Token = "communi-token"
	cfg.ChurchTools.URL = b.server.URL
	cfg.ChurchTools.Token = "churchtools-token"
	cfg.Sync.Timezone = "UTC"
	return cfg
}

// AddUser registers a Communi app user.
func (b *Backend) AddUser(user communi.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, user)
}

// AddGroup registers an existing Communi group with the integration user
// as its only member.
func (b *Backend) AddGroup(group communi.Group) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups = append(b.groups, group)
	b.putMembership(IntegrationUserID, group.ID, communi.StatusActive)
}

// AddMember makes userID an active member of groupID.
func (b *Backend) AddMember(groupID, userID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.putMembership(userID, groupID, communi.StatusActive)
}

// AddEvent registers a ChurchTools event. Events are listed in the order
// they were added, whatever window is requested.
func (b *Backend) AddEvent(event churchtools.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.events[event.ID]; !exists {
		b.eventOrder = append(b.eventOrder, event.ID)
	}
	b.events[event.ID] = event
}

// AddService registers a service type and, when new, its service group.
func (b *Backend) AddService(service churchtools.Service, group churchtools.ServiceGroup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.services = append(b.services, service)
	for _, existing := range b.serviceGroups {
		if existing.ID == group.ID {
			return
		}
	}
	b.serviceGroups = append(b.serviceGroups, group)
}

// AddPerson registers a ChurchTools person.
func (b *Backend) AddPerson(person churchtools.Person) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.persons[person.ID] = person
}

// Groups returns the current Communi groups.
func (b *Backend) Groups() []communi.Group {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.groups)
}

// GroupByTitle returns the group with the exact title.
func (b *Backend) GroupByTitle(title string) (communi.Group, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, group := range b.groups {
		if group.Title == title {
			return group, true
		}
	}
	return communi.Group{}, false
}

// Members returns the active members of groupID in ascending order.
func (b *Backend) Members(groupID int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var members []int
	for _, membership := range b.memberships {
		if membership.Group == groupID && membership.Active() {
			members = append(members, membership.User)
		}
	}
	slices.Sort(members)
	return members
}

// Messages returns the messages posted into groupID's chat.
func (b *Backend) Messages(groupID int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.messages[groupID])
}

// Recommendations returns the decoded bodies of posted recommendations.
func (b *Backend) Recommendations() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.recommended)
}

// Windows returns the from/to dates of every event listing request.
func (b *Backend) Windows() [][2]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.windows)
}

func (b *Backend) putMembership(userID, groupID int, status communi.MembershipStatus) {
	id := fmt.Sprintf("%d-%d", userID, groupID)
	b.memberships[id] = communi.Membership{
		ID:     id,
		User:   userID,
		Group:  groupID,
		RoleID: communi.DefaultRoleID,
		Status: status,
	}
}

func (b *Backend) writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(value); err != nil {
		b.t.Errorf("backend: encoding response: %v", err)
	}
}

func (b *Backend) decode(writer http.ResponseWriter, request *http.Request, value any) bool {
	if err := json.NewDecoder(request.Body).Decode(value); err != nil {
		b.t.Errorf("backend: decoding %s %s: %v", request.Method, request.URL.Path, err)
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(writer http.ResponseWriter, request *http.Request) (int, bool) {
	id, err := strconv.Atoi(request.PathValue("id"))
	if err != nil {
		http.Error(writer, "bad id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// Communi endpoints.

func (b *Backend) login(writer http.ResponseWriter, request *http.Request) {
	if request.Header.Get("X-Authorization") == "" {
		writer.WriteHeader(http.StatusUnauthorized)
		return
	}
	b.writeJSON(writer, map[string]any{"id": IntegrationUserID})
}

func (b *Backend) listUsers(writer http.ResponseWriter, request *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id := request.URL.Query().Get("id"); id != "" {
		for _, user := range b.users {
			if strconv.Itoa(user.ID) == id {
				b.writeJSON(writer, user)
				return
			}
		}
		b.writeJSON(writer, []communi.User{})
		return
	}
	b.writeJSON(writer, b.users)
}

func (b *Backend) listGroups(writer http.ResponseWriter, request *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id := request.URL.Query().Get("id"); id != "" {
		for _, group := range b.groups {
			if strconv.Itoa(group.ID) == id {
				b.writeJSON(writer, group)
				return
			}
		}
		b.writeJSON(writer, []communi.Group{})
		return
	}
	b.writeJSON(writer, b.groups)
}

func (b *Backend) createGroup(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Title        string             `json:"title"`
		Description  string             `json:"description"`
		AccessType   communi.AccessType `json:"accessType"`
		HasGroupChat bool               `json:"hasGroupChat"`
	}
	if !b.decode(writer, request, &body) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextGroupID++
	group := communi.Group{
		ID:           b.nextGroupID,
		Title:        body.Title,
		Description:  body.Description,
		AccessType:   body.AccessType,
		HasGroupChat: body.HasGroupChat,
	}
	b.groups = append(b.groups, group)
	b.putMembership(IntegrationUserID, group.ID, communi.StatusActive)
	b.writeJSON(writer, group)
}

func (b *Backend) deleteGroup(writer http.ResponseWriter, request *http.Request) {
	id, ok := pathID(writer, request)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	index := slices.IndexFunc(b.groups, func(group communi.Group) bool { return group.ID == id })
	if index < 0 {
		http.Error(writer, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	b.groups = slices.Delete(b.groups, index, index+1)
	b.writeJSON(writer, map[string]any{"valid": true})
}

func (b *Backend) listMemberships(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	b.mu.Lock()
	defer b.mu.Unlock()
	matches := []communi.Membership{}
	for _, membership := range b.memberships {
		if group := query.Get("group"); group != "" && strconv.Itoa(membership.Group) != group {
			continue
		}
		if user := query.Get("user"); user != "" && strconv.Itoa(membership.User) != user {
			continue
		}
		matches = append(matches, membership)
	}
	slices.SortFunc(matches, func(x, y communi.Membership) int { return strings.Compare(x.ID, y.ID) })
	b.writeJSON(writer, matches)
}

func (b *Backend) setMembership(writer http.ResponseWriter, request *http.Request) {
	var body communi.Membership
	if !b.decode(writer, request, &body) {
		return
	}
	if want := fmt.Sprintf("%d-%d", body.User, body.Group); request.PathValue("id") != want {
		b.t.Errorf("backend: membership path %q does not match body %q", request.PathValue("id"), want)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.putMembership(body.User, body.Group, body.Status)
	b.writeJSON(writer, map[string]any{"valid": true})
}

func (b *Backend) postMessage(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Message      string `json:"message"`
		Conversation string `json:"conversation"`
	}
	if !b.decode(writer, request, &body) {
		return
	}
	groupID, err := strconv.Atoi(strings.TrimPrefix(body.Conversation, "group-"))
	if err != nil {
		b.t.Errorf("backend: bad conversation %q", body.Conversation)
		http.Error(writer, "bad conversation", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[groupID] = append(b.messages[groupID], body.Message)
	b.writeJSON(writer, map[string]any{"valid": true})
}

func (b *Backend) postRecommendation(writer http.ResponseWriter, request *http.Request) {
	var body map[string]any
	if !b.decode(writer, request, &body) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recommended = append(b.recommended, body)
	b.writeJSON(writer, map[string]any{"valid": true})
}

// ChurchTools endpoints.

func (b *Backend) writeData(writer http.ResponseWriter, data any, paged bool) {
	response := map[string]any{"data": data}
	if paged {
		response["meta"] = map[string]any{
			"pagination": map[string]int{"current": 1, "lastPage": 1},
		}
	}
	b.writeJSON(writer, response)
}

func (b *Backend) whoami(writer http.ResponseWriter, _ *http.Request) {
	b.writeData(writer, churchtools.Person{ID: 1, FirstName: "API", LastName: "User", Email: "api@example.org"}, false)
}

func (b *Backend) listEvents(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = append(b.windows, [2]string{query.Get("from"), query.Get("to")})
	events := []churchtools.Event{}
	for _, id := range b.eventOrder {
		event := b.events[id]
		event.Services = nil
		events = append(events, event)
	}
	b.writeData(writer, events, true)
}

func (b *Backend) getEvent(writer http.ResponseWriter, request *http.Request) {
	id, ok := pathID(writer, request)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	event, exists := b.events[id]
	if !exists {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		writer.Write([]byte(`{"message":"Event not found"}`))
		return
	}
	b.writeData(writer, event, false)
}

func (b *Backend) listServices(writer http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeData(writer, b.services, false)
}

func (b *Backend) masterdata(writer http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeData(writer, map[string]any{"serviceGroups": b.serviceGroups}, false)
}

func (b *Backend) listPersons(writer http.ResponseWriter, request *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	persons := []churchtools.Person{}
	for _, id := range request.URL.Query()["ids[]"] {
		personID, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		if person, ok := b.persons[personID]; ok {
			persons = append(persons, person)
		}
	}
	b.writeData(writer, persons, true)
}
