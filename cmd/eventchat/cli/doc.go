// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework of the eventchat binary.
//
// [Command] is a tree of named commands with lazily built pflag flag
// sets, help output, and "did you mean" suggestions for mistyped commands
// and flags. Parameters are declared as tagged structs and bound with
// [FlagsFromParams]:
//
//	type syncParams struct {
//	    cli.ConnectionParams
//	    cli.JSONOutput
//	    Days int `json:"days" flag:"days" desc:"days to look ahead" default:"14"`
//	}
//
// [ConnectionParams] carries the flags every command that talks to
// Communi or ChurchTools needs (--config, --env-file, --secrets,
// --identity) and turns them into a validated configuration and connected
// clients. [JSONOutput] adds --json. [RenderReport] prints batch reports
// with lipgloss styles.
//
// Commands that want a non-zero exit status without an extra error line
// return an [ExitError].
package cli
