package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestServeCmd(t *testing.T) {
	cmd := serveCmd()
	if cmd.Use != "serve" {
		t.Errorf("expected serve, got %s", cmd.Use)
	}
	if cmd.RunE == nil {
		t.Error("expected serve to be runnable")
	}
}

func TestMigrateCmdSubcommands(t *testing.T) {
	cmd := migrateCmd()
	want := map[string]bool{"up": false, "status": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Use]; ok {
			want[sub.Use] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing migrate subcommand %s", name)
		}
	}
}

func TestIdentityCmdFlags(t *testing.T) {
	cmd := identityCmd()
	var create *cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.Use == "create" {
			create = sub
		}
	}
	if create == nil {
		t.Fatal("missing identity create subcommand")
	}
	for _, flag := range []string{"login-id", "secret", "superuser"} {
		if create.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}
