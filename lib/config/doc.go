// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for eventchat.
//
// Configuration is loaded from a single file specified by either the
// EVENTCHAT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no search path.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed; everything else is YAML.
//
// The file may contain environment-specific sections (development,
// staging, production) whose communi and churchtools blocks override the
// base values when [Config].Environment matches.
//
// After loading, ${VAR} and ${VAR:-default} patterns in server URLs and
// tokens are expanded from the process environment, so tokens can live in
// a dotenv or sealed secrets file instead of the config itself.
//
// This package depends on no other eventchat packages.
package config
