package main

import (
	"log"
	"os"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/attempt"
	logsvc "github.com/trezcool/kipimo/services/logger"
	inmemkv "github.com/trezcool/kipimo/storage/kv/inmem"
	pgkv "github.com/trezcool/kipimo/storage/kv/postgres"
	sqlitekv "github.com/trezcool/kipimo/storage/kv/sqlite"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up the configured attempt store
	cli := commandLine{}
	switch conf.Storage.Engine {
	case "postgres":
		db, err := pgkv.Open(conf)
		errAndDie(err)
		defer func() { _ = db.Close() }()
		errAndDie(pgkv.Ping(db))
		cli.db = db
		cli.kv = pgkv.NewStore(db)
	case "sqlite":
		store, err := sqlitekv.Open(conf.Storage.SqlitePath)
		errAndDie(err)
		defer func() { _ = store.Close() }()
		cli.kv = store
	default:
		cli.kv = inmemkv.New()
	}
	cli.attSvc = attempt.NewService(cli.kv, logsvc.NewStdLogger(logger))

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
