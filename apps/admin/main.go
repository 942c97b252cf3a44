package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sarvashiksha/backend/core"
	logsvc "github.com/sarvashiksha/backend/services/logger"
	"github.com/sarvashiksha/backend/storage/database"
	sqlxrepos "github.com/sarvashiksha/backend/storage/database/sqlx"
)

func main() {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		&core.Config{},
	)

	conf, err := core.NewConfig()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading config: %v", err), err)
	}
	if conf.Database.Engine != "postgres" {
		logger.Fatal(fmt.Sprintf("the admin tool needs the postgres engine, got %q", conf.Database.Engine))
	}

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: sqlxrepos.NewUserRepository(db),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
