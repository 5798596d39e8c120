package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/attempt"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *sql.DB // set only for the postgres storage engine
	kv     core.KeyValueStore
	attSvc attempt.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run attempt store migrations (postgres engine only)")
	fmt.Println("  clearattempts -owner OWNER - remove all of an owner's stored attempts")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	clearCmd := flag.NewFlagSet("clearattempts", flag.ExitOnError)
	clearOwner := clearCmd.String("owner", "", "The owner whose stored attempts will be removed: a username, or anon-<deviceID>.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if cli.db == nil {
			return errors.New("migrate requires the postgres storage engine")
		}
		return cli.migrate(args[2:])
	case "clearattempts":
		if err := clearCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *clearOwner == "" {
			clearCmd.Usage()
			return errHelp
		}
		return cli.clearAttempts(*clearOwner)
	default:
		cli.printUsage()
		return errHelp
	}
}
