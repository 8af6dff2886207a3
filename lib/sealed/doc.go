// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed stores eventchat's API tokens in an age-encrypted dotenv
// file, so the scheduled sync host needs only an identity file instead of
// plaintext tokens.
//
// A sealed file is the ASCII-armored age encryption of dotenv text:
//
//	COMMUNI_TOKEN=...
//	CT_TOKEN=...
//
// [Seal] produces it for one or more x25519 recipients, [Open] reverses it,
// and [LoadEnv] decrypts a file and parses the dotenv content with
// github.com/joho/godotenv. The CLI exports the variables before the
// configuration is loaded, where ${COMMUNI_TOKEN} style references pick
// them up.
package sealed
