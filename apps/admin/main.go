package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/mahudhurio/apps/api/di"
	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	"github.com/trezcool/mahudhurio/storage/database"
	sqlxrepos "github.com/trezcool/mahudhurio/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile, conf)

	// set up DB
	ctx := context.Background()
	errAndDie(database.CreateIfNotExist(ctx, conf))
	db, err := database.Open(conf)
	errAndDie(err)
	errAndDie(database.Ping(ctx, db))

	// start CLI
	cli := newCommandLine(conf, db)
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}

func newCommandLine(conf *core.Config, db *sqlx.DB) *commandLine {
	translator := core.NewTranslator()
	validate := di.NewValidator(translator)
	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db), validate, translator, conf)
	return &commandLine{
		db:     db,
		out:    os.Stdout,
		stdSvc: stdSvc,
		attSvc: attendance.NewService(sqlxrepos.NewAttendanceRepository(db), stdSvc, validate, translator, conf),
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
