// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_Types(t *testing.T) {
	var params struct {
		Name     string        `flag:"name" desc:"group name"`
		All      bool          `flag:"all,a" desc:"every event"`
		Days     int           `flag:"days" desc:"window" default:"14"`
		Timeout  time.Duration `flag:"timeout" desc:"timeout" default:"30s"`
		Excluded []string      `flag:"exclude" desc:"excluded services" default:"Opfer zählen"`
		Ignored  string
	}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	if params.Days != 14 || params.Timeout != 30*time.Second {
		t.Errorf("defaults not applied: days=%d timeout=%s", params.Days, params.Timeout)
	}
	if len(params.Excluded) != 1 || params.Excluded[0] != "Opfer zählen" {
		t.Errorf("Excluded default = %v", params.Excluded)
	}
	if flagSet.Lookup("ignored") != nil {
		t.Error("untagged field was bound")
	}

	err := flagSet.Parse([]string{"--name", "Technik", "-a", "--days", "3", "--timeout", "5s", "--exclude", "a,b", "rest"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if params.Name != "Technik" || !params.All || params.Days != 3 || params.Timeout != 5*time.Second {
		t.Errorf("parsed params = %+v", params)
	}
	if len(params.Excluded) != 2 || params.Excluded[1] != "b" {
		t.Errorf("Excluded = %v, want [a b]", params.Excluded)
	}
	if args := flagSet.Args(); len(args) != 1 || args[0] != "rest" {
		t.Errorf("positional args = %v, want [rest]", args)
	}
}

func TestBindFlags_EmbeddedStructs(t *testing.T) {
	var params struct {
		ConnectionParams
		JSONOutput
		Days int `flag:"days" default:"7"`
	}

	flagSet := FlagsFromParams("sync", &params)
	if err := flagSet.Parse([]string{"-c", "/etc/eventchat.yaml", "--json", "--secrets", "secrets.age"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if params.ConfigPath != "/etc/eventchat.yaml" {
		t.Errorf("ConfigPath = %q", params.ConfigPath)
	}
	if params.SecretsFile != "secrets.age" {
		t.Errorf("SecretsFile = %q", params.SecretsFile)
	}
	if !params.OutputJSON {
		t.Error("OutputJSON not set")
	}
	if params.Days != 7 {
		t.Errorf("Days = %d, want 7", params.Days)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notStruct int
	if err := BindFlags(&notStruct, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for pointer to non-struct")
	}

	var value struct{}
	if err := BindFlags(value, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for non-pointer")
	}

	var badDefault struct {
		Days int `flag:"days" default:"many"`
	}
	if err := BindFlags(&badDefault, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for unparseable default")
	}

	var unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&unsupported, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic on invalid params")
		}
	}()
	FlagsFromParams("bad", 42)
}
