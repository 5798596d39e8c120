package main

import (
	stdlog "log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/kipimo/apps/api/echo"
	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/attempt"
	emailsvc "github.com/trezcool/kipimo/services/email"
	gradersvc "github.com/trezcool/kipimo/services/grader"
	logsvc "github.com/trezcool/kipimo/services/logger"
	inmemkv "github.com/trezcool/kipimo/storage/kv/inmem"
	pgkv "github.com/trezcool/kipimo/storage/kv/postgres"
	sqlitekv "github.com/trezcool/kipimo/storage/kv/sqlite"
)

func main() {
	conf := core.NewConfig()

	std := stdlog.New(os.Stdout, "API : ", stdlog.LstdFlags|stdlog.Lmicroseconds|stdlog.Lshortfile)

	// set up logging
	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewStdLogger(std)
	}
	logger.Enable(!conf.Debug)

	// set up validation
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	attempt.RegisterValidators(validate, translator)

	// set up attempt storage
	var kv core.KeyValueStore
	switch conf.Storage.Engine {
	case "postgres":
		db, err := pgkv.Open(conf)
		errAndDie(std, err)
		defer func() { _ = db.Close() }()
		errAndDie(std, pgkv.Ping(db))
		kv = pgkv.NewStore(db)
	case "sqlite":
		store, err := sqlitekv.Open(conf.Storage.SqlitePath)
		errAndDie(std, err)
		defer func() { _ = store.Close() }()
		kv = store
	default:
		kv = inmemkv.New()
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	grader := gradersvc.NewHTTPService(conf)
	attSvc := attempt.NewService(kv, logger)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:    conf.Server.Address(),
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			AttemptSvc: attSvc,
			Fetcher:    grader,
			Submitter:  grader,
			MailSvc:    mailSvc,
		},
	)
	app.Start()
}

func errAndDie(std *stdlog.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
