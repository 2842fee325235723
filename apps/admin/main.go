package main

import (
	"context"
	"os"

	"github.com/trezcool/lumina/core"
	logsvc "github.com/trezcool/lumina/services/logger"
	"github.com/trezcool/lumina/storage/database"
	sqlxrepos "github.com/trezcool/lumina/storage/database/sqlx"
)

func main() {
	logger := logsvc.New(os.Stdout, core.Conf)
	ctx := context.Background()

	// set up DB
	db, err := database.Open(ctx, core.Conf.Database)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: sqlxrepos.NewUserRepository(db),
	}
	err = cli.run(ctx, os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
