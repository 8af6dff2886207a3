// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package communi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestUsers(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet || request.URL.Path != "/user" {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		if got := request.URL.Query().Get("loadStatus"); got != "1" {
			t.Errorf("loadStatus = %q, want 1", got)
		}
		writer.Write([]byte(`[
			{"id": 1, "firstName": "Ada", "lastName": "Lovelace", "mailadresse": "ada@example.org"},
			{"id": 2, "firstName": "Alan", "lastName": "Turing", "mailadresse": "alan@example.org"}
		]`))
	})

	users, err := session.Users(context.Background())
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Email != "ada@example.org" || users[1].LastName != "Turing" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestUser(t *testing.T) {
	t.Run("single object response", func(t *testing.T) {
		session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
			if got := request.URL.Query().Get("id"); got != "28057" {
				t.Errorf("id = %q, want 28057", got)
			}
			writer.Write([]byte(`{"id": 28057, "firstName": "Admin", "lastName": "User", "mailadresse": "admin@example.org"}`))
		})

		user, err := session.WhoAmI(context.Background())
		if err != nil {
			t.Fatalf("WhoAmI failed: %v", err)
		}
		if user.ID != 28057 || user.Email != "admin@example.org" {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("not found", func(t *testing.T) {
		session := testSession(t, func(writer http.ResponseWriter, _ *http.Request) {
			writer.Write([]byte(`[]`))
		})

		_, err := session.User(context.Background(), 5)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("User error = %v, want ErrNotFound", err)
		}
	})
}

func TestGroups(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("id") == "7525" {
			writer.Write([]byte(`{"id": 7525, "title": "Gemeinde", "accessType": "2", "hasGroupChat": true}`))
			return
		}
		writer.Write([]byte(`[
			{"id": 7525, "title": "Gemeinde"},
			{"id": 7676, "title": "Admins"},
			{"id": 7700, "title": "Admins"}
		]`))
	})
	ctx := context.Background()

	group, err := session.Group(ctx, 7525)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if group.Title != "Gemeinde" || group.AccessType != AccessOpen || !group.HasGroupChat {
		t.Errorf("unexpected group: %+v", group)
	}

	matches, err := session.GroupsByName(ctx, "Admins")
	if err != nil {
		t.Fatalf("GroupsByName failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("GroupsByName matched %d groups, want 2", len(matches))
	}

	none, err := session.GroupsByName(ctx, "Admin")
	if err != nil {
		t.Fatalf("GroupsByName failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("GroupsByName must match exactly, got %+v", none)
	}
}

func TestCreateGroup(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || request.URL.Path != "/group" {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["title"] != "_Sun 01.03 (10:00) - Gottesdienst" {
			t.Errorf("title = %v", body["title"])
		}
		if body["accessType"] != "3" {
			t.Errorf("accessType = %v, want \"3\" (closed)", body["accessType"])
		}
		if body["type"] != "2" {
			t.Errorf("type = %v, want \"2\"", body["type"])
		}
		if body["hasGroupChat"] != true {
			t.Errorf("hasGroupChat = %v, want true", body["hasGroupChat"])
		}
		if body["communiApp"] != float64(2406) {
			t.Errorf("communiApp = %v, want 2406", body["communiApp"])
		}
		writer.Write([]byte(`{"id": 21037, "title": "_Sun 01.03 (10:00) - Gottesdienst", "accessType": 3, "hasGroupChat": true}`))
	})

	group, err := session.CreateGroup(context.Background(), CreateGroupRequest{
		Title:        "_Sun 01.03 (10:00) - Gottesdienst",
		Description:  "test",
		HasGroupChat: true,
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID != 21037 || group.AccessType != AccessClosed {
		t.Errorf("unexpected group: %+v", group)
	}

	if _, err := session.CreateGroup(context.Background(), CreateGroupRequest{}); err == nil {
		t.Error("expected error for empty title")
	}
}

func TestDeleteGroupByName(t *testing.T) {
	var deleted []string
	session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
		switch request.Method {
		case http.MethodDelete:
			deleted = append(deleted, request.URL.Path)
			writer.Write([]byte(`[]`))
		case http.MethodGet:
			writer.Write([]byte(`[
				{"id": 1, "title": "Test1"},
				{"id": 2, "title": "Twin"},
				{"id": 3, "title": "Twin"}
			]`))
		}
	})
	ctx := context.Background()

	id, err := session.DeleteGroupByName(ctx, "Test1")
	if err != nil {
		t.Fatalf("DeleteGroupByName failed: %v", err)
	}
	if id != 1 {
		t.Errorf("deleted id = %d, want 1", id)
	}

	if _, err := session.DeleteGroupByName(ctx, "Twin"); !errors.Is(err, ErrAmbiguousGroup) {
		t.Errorf("ambiguous name error = %v, want ErrAmbiguousGroup", err)
	}
	if _, err := session.DeleteGroupByName(ctx, "Missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing name error = %v, want ErrNotFound", err)
	}

	if len(deleted) != 1 || deleted[0] != "/group/1" {
		t.Errorf("delete requests = %v, want [/group/1]", deleted)
	}
}

func TestDeleteGroupFailure(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
	})

	err := session.DeleteGroup(context.Background(), 9)
	if !IsStatus(err, http.StatusForbidden) {
		t.Errorf("DeleteGroup error = %v, want 403 APIError", err)
	}
}

func TestMemberships(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/UserGroup" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		query := request.URL.Query()
		if query.Get("group") != "21037" {
			t.Errorf("group = %q, want 21037", query.Get("group"))
		}
		if query.Has("user") {
			t.Errorf("user filter sent although zero: %q", query.Get("user"))
		}
		writer.Write([]byte(`[
			{"id": "28057-21037", "user": 28057, "group": 21037, "roleId": 40, "status": 2},
			{"id": "11-21037", "user": 11, "group": 21037, "roleId": 40, "status": "4"}
		]`))
	})

	memberships, err := session.Memberships(context.Background(), MembershipFilter{Group: 21037})
	if err != nil {
		t.Fatalf("Memberships failed: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("got %d memberships, want 2", len(memberships))
	}
	if !memberships[0].Active() {
		t.Error("first membership should be active")
	}
	if memberships[1].Active() || memberships[1].Status != StatusRemoved {
		t.Errorf("second membership should be removed, got status %d", memberships[1].Status)
	}
}

func TestSetMembership(t *testing.T) {
	for _, test := range []struct {
		name       string
		add        bool
		wantStatus float64
	}{
		{"add", true, 2},
		{"remove", false, 4},
	} {
		t.Run(test.name, func(t *testing.T) {
			session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
				if request.Method != http.MethodPut || request.URL.Path != "/UserGroup/28057-21037" {
					t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
				}
				var body map[string]any
				if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
					t.Fatalf("decoding body: %v", err)
				}
				if body["status"] != test.wantStatus {
					t.Errorf("status = %v, want %v", body["status"], test.wantStatus)
				}
				if body["roleId"] != float64(DefaultRoleID) {
					t.Errorf("roleId = %v, want %d", body["roleId"], DefaultRoleID)
				}
				if body["id"] != "28057-21037" {
					t.Errorf("id = %v", body["id"])
				}
				if body["createdOn"] != "2026-03-01 09:30:00.000000" {
					t.Errorf("createdOn = %v, want fake clock time", body["createdOn"])
				}
				writer.Write([]byte(`{"valid": true}`))
			})

			if err := session.SetMembership(context.Background(), 28057, 21037, test.add); err != nil {
				t.Fatalf("SetMembership failed: %v", err)
			}
		})
	}

	t.Run("rejected", func(t *testing.T) {
		session := testSession(t, func(writer http.ResponseWriter, _ *http.Request) {
			writer.Write([]byte(`{"error": "unknown user"}`))
		})
		err := session.SetMembership(context.Background(), 0, 0, false)
		if !errors.Is(err, ErrRejected) {
			t.Errorf("SetMembership error = %v, want ErrRejected", err)
		}
	})
}

func TestPostMessage(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || request.URL.Path != "/message" {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		var body messageBody
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Conversation != "group-21037" {
			t.Errorf("conversation = %q, want group-21037", body.Conversation)
		}
		if body.Message != "Hello World" {
			t.Errorf("message = %q", body.Message)
		}
		writer.Write([]byte(`{"valid": true, "id": 99}`))
	})

	if err := session.PostMessage(context.Background(), 21037, "Hello World"); err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
}

func TestPostMessageNotValid(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, _ *http.Request) {
		writer.Write([]byte(`{"valid": false}`))
	})

	err := session.PostMessage(context.Background(), 1, "x")
	if !errors.Is(err, ErrRejected) {
		t.Errorf("PostMessage error = %v, want ErrRejected", err)
	}
}

func TestPostRecommendation(t *testing.T) {
	session := testSession(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/recommendation" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		var body recommendationBody
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.Group != "21037" {
			t.Errorf("group = %q, want \"21037\"", body.Group)
		}
		if body.DateTime != "2026-03-01 09:30:00 +0" {
			t.Errorf("dateTime = %q", body.DateTime)
		}
		if !body.IsOfficial || body.PicURL != "https://example.org/p.png" {
			t.Errorf("unexpected body: %+v", body)
		}
		writer.Write([]byte(`{"valid": true}`))
	})

	err := session.PostRecommendation(context.Background(), Recommendation{
		GroupID:     21037,
		Title:       "Sommerfest",
		Description: "Bitte vormerken",
		PostDate:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		PictureURL:  "https://example.org/p.png",
		Official:    true,
	})
	if err != nil {
		t.Fatalf("PostRecommendation failed: %v", err)
	}

	if err := session.PostRecommendation(context.Background(), Recommendation{GroupID: 1}); err == nil {
		t.Error("expected error for empty title")
	}
}
