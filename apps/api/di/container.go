package di

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/mahudhurio/apps/api/echo"
	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	"github.com/trezcool/mahudhurio/storage/database"
	inmemdb "github.com/trezcool/mahudhurio/storage/database/inmem"
	sqlxrepos "github.com/trezcool/mahudhurio/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage holds the repositories and a func releasing the underlying database.
	Storage struct {
		dig.Out
		Students   student.Repository
		Attendance attendance.Repository
		Close      CloseDBFunc
	}

	CloseDBFunc func() error

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		Translator    ut.Translator
		StudentSvc    student.ServiceInterface
		AttendanceSvc attendance.ServiceInterface
	}
)

func newLogger(conf *core.Config) core.Logger {
	return logsvc.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile, conf)
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.InMemory {
		loggerParam.Logger.Info("using in-memory storage")
		db := inmemdb.Open()
		return Storage{
			Students:   inmemdb.NewStudentRepository(db),
			Attendance: inmemdb.NewAttendanceRepository(db),
			Close:      func() error { return nil },
		}
	}

	setUp := func() (core.DB, CloseDBFunc, error) {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Ping(ctx, db); err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(db); err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}

	db, closeDB, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{
		Students:   sqlxrepos.NewStudentRepository(db),
		Attendance: sqlxrepos.NewAttendanceRepository(db),
		Close:      closeDB,
	}
}

// NewValidator returns a validator with all custom validations and translations registered.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Translator:    p.Translator,
		StudentSvc:    p.StudentSvc,
		AttendanceSvc: p.AttendanceSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(NewValidator))
	must(c.Provide(student.NewService, dig.As(new(student.ServiceInterface))))
	must(c.Provide(attendance.NewService, dig.As(new(attendance.ServiceInterface))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
