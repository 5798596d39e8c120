package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"testing"

	"github.com/trezcool/kipimo/core/attempt"
	logsvc "github.com/trezcool/kipimo/services/logger"
	inmemkv "github.com/trezcool/kipimo/storage/kv/inmem"
)

func setup() *commandLine {
	kv := inmemkv.New()
	return &commandLine{
		db:     new(sql.DB), // migrate mock never touches it
		kv:     kv,
		attSvc: attempt.NewService(kv, logsvc.NewStdLogger(log.New(os.Stdout, "", 0))),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup()

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version", "fix": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_migrate_requiresPostgres(t *testing.T) {
	cli := setup()
	cli.db = nil

	err := cli.run([]string{"admin", "migrate", "up"})
	if err == nil || err.Error() != "migrate requires the postgres storage engine" {
		t.Errorf("cli.run() error = %v, want engine error", err)
	}
}

func Test_commandLine_clearAttempts(t *testing.T) {
	cli := setup()

	for _, owner := range []string{"jdoe", "jdoe2"} {
		if _, err := cli.attSvc.Create(owner, 7, 3); err != nil {
			t.Fatalf("Create(%s) failed: %v", owner, err)
		}
	}

	tests := []cliTest{
		{name: "no command", args: []string{}, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no owner", args: []string{"clearattempts"}, wantErr: errHelp},
		{name: "clear jdoe", args: []string{"clearattempts", "-owner", "jdoe"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil && err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := cli.attSvc.Get("jdoe", 7); err != attempt.ErrNoAttempt {
		t.Errorf("jdoe's attempt not cleared: %v", err)
	}
	if _, err := cli.attSvc.Get("jdoe2", 7); err != nil {
		t.Errorf("jdoe2's attempt wrongly cleared: %v", err)
	}
}
