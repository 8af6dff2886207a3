// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package communi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bureau-foundation/eventchat/lib/clock"
)

const testToken = "test-token"

// newTestClient starts an httptest server with handler and returns a
// client for it with app ID 2406. The server is closed when the test ends.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		ServerURL: server.URL,
		AppID:     2406,
		Token:     testToken,
		Clock:     clock.Fake(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

// testSession returns a Session without going through Login.
func testSession(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()
	return &Session{client: newTestClient(t, handler), userID: 28057}
}

func writeJSON(t *testing.T, writer http.ResponseWriter, value any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(value); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := NewClient(ClientConfig{ServerURL: DefaultServerURL, AppID: 1, Token: "x"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.AppID() != 1 {
			t.Errorf("AppID() = %d, want 1", client.AppID())
		}
	})

	for _, test := range []struct {
		name   string
		config ClientConfig
	}{
		{"empty URL", ClientConfig{AppID: 1, Token: "x"}},
		{"invalid URL", ClientConfig{ServerURL: "://invalid", AppID: 1, Token: "x"}},
		{"missing app", ClientConfig{ServerURL: DefaultServerURL, Token: "x"}},
		{"missing token", ClientConfig{ServerURL: DefaultServerURL, AppID: 1}},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewClient(test.config); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestClientStringHidesToken(t *testing.T) {
	client, err := NewClient(ClientConfig{ServerURL: DefaultServerURL, AppID: 7, Token: "very-secret"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if got := client.String(); got != "communi app 7 at "+DefaultServerURL {
		t.Errorf("String() = %q", got)
	}
}

func TestLogin(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			if got := request.Header.Get("X-Authorization"); got != "Bearer "+testToken {
				t.Errorf("X-Authorization = %q", got)
			}
			switch request.URL.Path {
			case "/login":
				writeJSON(t, writer, map[string]any{"id": 28057, "firstName": "Admin"})
			case "/group":
				if got := request.URL.Query().Get("communiApp"); got != "2406" {
					t.Errorf("communiApp = %q, want 2406", got)
				}
				writeJSON(t, writer, []Group{{ID: 7525, Title: "Gemeinde"}, {ID: 7676, Title: "Admins"}})
			default:
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
			}
		})

		session, err := client.Login(context.Background())
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if session.UserID() != 28057 {
			t.Errorf("UserID() = %d, want 28057", session.UserID())
		}
	})

	t.Run("wrong app id", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/login":
				writeJSON(t, writer, map[string]any{"id": 28057})
			case "/group":
				writeJSON(t, writer, []Group{})
			}
		})

		_, err := client.Login(context.Background())
		if !errors.Is(err, ErrEmptyApp) {
			t.Fatalf("Login error = %v, want ErrEmptyApp", err)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
			writer.Write([]byte(`{"message":"invalid token"}`))
		})

		_, err := client.Login(context.Background())
		if err == nil {
			t.Fatal("expected error for bad token")
		}
		if !IsStatus(err, http.StatusUnauthorized) {
			t.Errorf("expected 401 APIError, got %v", err)
		}
	})
}

func TestIsStatus(t *testing.T) {
	err := &APIError{StatusCode: http.StatusNotFound, Method: "GET", Path: "/group"}
	wrapped := errors.Join(errors.New("context"), err)
	if !IsStatus(wrapped, http.StatusNotFound) {
		t.Error("IsStatus should see through wrapping")
	}
	if IsStatus(wrapped, http.StatusForbidden) {
		t.Error("IsStatus matched the wrong status")
	}
	if IsStatus(errors.New("plain"), http.StatusNotFound) {
		t.Error("IsStatus matched a non-API error")
	}
}

func TestDecodeOneOrMany(t *testing.T) {
	for _, test := range []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"id":1},{"id":2}]`, 2},
		{"single object", `{"id":1}`, 1},
		{"empty array", `[]`, 0},
		{"empty object", `{}`, 0},
		{"null", `null`, 0},
		{"empty body", ``, 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			users, err := decodeOneOrMany[User]([]byte(test.body))
			if err != nil {
				t.Fatalf("decodeOneOrMany: %v", err)
			}
			if len(users) != test.want {
				t.Errorf("got %d items, want %d", len(users), test.want)
			}
		})
	}
}

func TestAccessTypeJSON(t *testing.T) {
	encoded, err := json.Marshal(AccessClosed)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(encoded) != `"3"` {
		t.Errorf("Marshal(AccessClosed) = %s, want \"3\"", encoded)
	}

	var group Group
	if err := json.Unmarshal([]byte(`{"id":1,"accessType":2}`), &group); err != nil {
		t.Fatalf("Unmarshal numeric: %v", err)
	}
	if group.AccessType != AccessOpen {
		t.Errorf("numeric accessType = %d, want %d", group.AccessType, AccessOpen)
	}
	if err := json.Unmarshal([]byte(`{"id":1,"accessType":"3"}`), &group); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if group.AccessType != AccessClosed {
		t.Errorf("string accessType = %d, want %d", group.AccessType, AccessClosed)
	}
}

func TestFormatPostDate(t *testing.T) {
	utc := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if got := formatPostDate(utc); got != "2026-03-01 09:30:00 +0" {
		t.Errorf("formatPostDate(UTC) = %q", got)
	}

	berlin := time.FixedZone("CET", 3600)
	if got := formatPostDate(utc.In(berlin)); got != "2026-03-01 10:30:00 +0100" {
		t.Errorf("formatPostDate(CET) = %q", got)
	}
}
