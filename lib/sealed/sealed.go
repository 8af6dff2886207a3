// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/joho/godotenv"
)

// Keypair holds an age x25519 keypair.
type Keypair struct {
	// PrivateKey is the identity in AGE-SECRET-KEY-1... format. It must
	// never be logged or passed on a command line.
	PrivateKey string

	// PublicKey is the recipient in age1... format. Safe to publish.
	PublicKey string
}

// GenerateKeypair generates a new age x25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}
	return &Keypair{
		PrivateKey: identity.String(),
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// Seal encrypts plaintext to the given recipient public keys and returns
// the armored ciphertext. At least one recipient is required.
func Seal(plaintext []byte, recipientKeys []string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	armorWriter := armor.NewWriter(&ciphertext)
	writer, err := age.Encrypt(armorWriter, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Open decrypts ciphertext, armored or binary, with the identities read
// from identities (the content of an age identity file: one key per line,
// # comments allowed).
func Open(ciphertext []byte, identities io.Reader) ([]byte, error) {
	parsed, err := age.ParseIdentities(identities)
	if err != nil {
		return nil, fmt.Errorf("parsing identities: %w", err)
	}

	var source io.Reader = bytes.NewReader(ciphertext)
	if bytes.HasPrefix(bytes.TrimSpace(ciphertext), []byte(armor.Header)) {
		source = armor.NewReader(bytes.NewReader(bytes.TrimSpace(ciphertext)))
	}

	reader, err := age.Decrypt(source, parsed...)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}

// LoadEnv decrypts the sealed dotenv file at path with the identity file at
// identityPath and returns its variables.
func LoadEnv(path, identityPath string) (map[string]string, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sealed file: %w", err)
	}
	identityFile, err := os.Open(identityPath)
	if err != nil {
		return nil, fmt.Errorf("opening identity file: %w", err)
	}
	defer identityFile.Close()

	plaintext, err := Open(ciphertext, identityFile)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zero(plaintext)

	variables, err := godotenv.UnmarshalBytes(plaintext)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return variables, nil
}

// ParsePublicKey validates an age public key string.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}

func zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
