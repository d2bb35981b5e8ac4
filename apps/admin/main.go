package main

import (
	"context"
	"log"
	"os"

	"github.com/courseflow/backend/core"
	"github.com/courseflow/backend/core/course"
	"github.com/courseflow/backend/core/syllabus"
	logsvc "github.com/courseflow/backend/services/logger"
	"github.com/courseflow/backend/storage"
	"github.com/courseflow/backend/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	cli := commandLine{
		rules: syllabus.DefaultRules(),
		in:    os.Stdin,
		out:   os.Stdout,
		stdin: int(os.Stdin.Fd()),
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		// migrations run against the raw DB; opening the store would migrate up first
		db, err := database.Open(conf)
		errAndDie(err)
		defer db.Close()
		errAndDie(db.Ping())
		cli.db = db
	} else {
		store, closeStore, err := storage.Open(conf)
		errAndDie(err)
		defer func() { errAndDie(closeStore()) }()
		cli.ledger = course.Open(context.Background(), store, logsvc.NewRollbarLogger(logger, conf))
	}

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
