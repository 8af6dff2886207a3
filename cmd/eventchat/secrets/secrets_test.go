// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/eventchat/lib/sealed"
)

var created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestKeygenToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.txt")
	publicKey, err := keygen(path, nil, created)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if err := sealed.ParsePublicKey(publicKey); err != nil {
		t.Errorf("keygen returned a bad public key: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("identity mode = %o, want 600", mode)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	for _, want := range []string{"# created: 2026-03-01T09:00:00Z", "# public key: " + publicKey, "AGE-SECRET-KEY-1"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("identity file lacks %q:\n%s", want, content)
		}
	}

	if _, err := keygen(path, nil, created); err == nil {
		t.Error("keygen should refuse to overwrite an identity")
	}
}

func TestKeygenToWriter(t *testing.T) {
	var output bytes.Buffer
	publicKey, err := keygen("", &output, created)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	if !strings.Contains(output.String(), publicKey) || !strings.Contains(output.String(), "AGE-SECRET-KEY-1") {
		t.Errorf("unexpected output:\n%s", output.String())
	}
}

func TestSealAndKeys(t *testing.T) {
	directory := t.TempDir()
	identityPath := filepath.Join(directory, "identity.txt")
	publicKey, err := keygen(identityPath, nil, created)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	input := strings.NewReader("EVENTCHAT_COMMUNI_TOKEN=communi-secret\nEVENTCHAT_CHURCHTOOLS_TOKEN=ct-secret\n")
	ciphertext, names, err := seal(input, []string{publicKey})
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if len(names) != 2 || names[0] != "EVENTCHAT_CHURCHTOOLS_TOKEN" {
		t.Errorf("names = %v", names)
	}
	if bytes.Contains(ciphertext, []byte("communi-secret")) {
		t.Fatal("ciphertext contains the plaintext token")
	}

	secretsPath := filepath.Join(directory, "tokens.age")
	if err := os.WriteFile(secretsPath, ciphertext, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	listed, err := keys(secretsPath, identityPath)
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if strings.Join(listed, ",") != "EVENTCHAT_CHURCHTOOLS_TOKEN,EVENTCHAT_COMMUNI_TOKEN" {
		t.Errorf("keys = %v", listed)
	}

	t.Run("identity from environment", func(t *testing.T) {
		t.Setenv("EVENTCHAT_IDENTITY", identityPath)
		if _, err := keys(secretsPath, ""); err != nil {
			t.Errorf("keys failed: %v", err)
		}
	})
	t.Run("wrong identity", func(t *testing.T) {
		otherPath := filepath.Join(t.TempDir(), "other.txt")
		if _, err := keygen(otherPath, nil, created); err != nil {
			t.Fatalf("keygen failed: %v", err)
		}
		if _, err := keys(secretsPath, otherPath); err == nil {
			t.Error("expected error opening with the wrong identity")
		}
	})
}

func TestSealRejects(t *testing.T) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	for _, test := range []struct {
		name       string
		input      string
		recipients []string
	}{
		{"no recipient", "A=1\n", nil},
		{"bad recipient", "A=1\n", []string{"age1notakey"}},
		{"empty input", "", []string{keypair.PublicKey}},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, _, err := seal(strings.NewReader(test.input), test.recipients); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestKeysRequiresPaths(t *testing.T) {
	t.Setenv("EVENTCHAT_IDENTITY", "")
	if _, err := keys("", "identity.txt"); err == nil {
		t.Error("expected error without --secrets")
	}
	if _, err := keys("tokens.age", ""); err == nil {
		t.Error("expected error without identity")
	}
}
