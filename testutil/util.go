// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/apps/api/di"
	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	"github.com/trezcool/mahudhurio/storage/database"
	inmemdb "github.com/trezcool/mahudhurio/storage/database/inmem"
	sqlxrepos "github.com/trezcool/mahudhurio/storage/database/sqlx"
)

// DatabaseURLEnv names the env var holding the PostgreSQL URL used by integration tests.
const DatabaseURLEnv = "TEST_DATABASE_URL"

type Services struct {
	Conf           *core.Config
	Validate       *validator.Validate
	Translator     ut.Translator
	StudentRepo    student.Repository
	AttendanceRepo attendance.Repository
	Students       *student.Service
	Attendance     *attendance.Service
}

func NewConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		AppName:  "Mahudhurio",
		Build:    "test",
		TestMode: true,
		TimeZone: "UTC",
		PageSize: student.DefaultPageSize,
		Server: core.ServerConfig{
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.New(io.Discard, "TEST : ", 0, conf)
}

func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	return di.NewValidator(translator), translator
}

// NewServicesWith wires the domain services on top of the given repositories.
func NewServicesWith(stdRepo student.Repository, attRepo attendance.Repository) Services {
	conf := NewConfig()
	validate, translator := NewValidator()
	stdSvc := student.NewService(stdRepo, validate, translator, conf)
	return Services{
		Conf:           conf,
		Validate:       validate,
		Translator:     translator,
		StudentRepo:    stdRepo,
		AttendanceRepo: attRepo,
		Students:       stdSvc,
		Attendance:     attendance.NewService(attRepo, stdSvc, validate, translator, conf),
	}
}

// NewServices wires the domain services on a fresh in-memory database.
func NewServices() Services {
	db := inmemdb.Open()
	return NewServicesWith(inmemdb.NewStudentRepository(db), inmemdb.NewAttendanceRepository(db))
}

// PrepareDB returns services backed by a migrated, emptied PostgreSQL database.
// The test is skipped when TEST_DATABASE_URL is not set.
func PrepareDB(t *testing.T) Services {
	t.Helper()
	dbURL := os.Getenv(DatabaseURLEnv)
	if dbURL == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}

	db, err := database.OpenURL(dbURL)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = database.Ping(ctx, db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if _, err = db.ExecContext(ctx, "TRUNCATE students, attendances RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return NewServicesWith(sqlxrepos.NewStudentRepository(db), sqlxrepos.NewAttendanceRepository(db))
}

func CreateStudent(t *testing.T, repo student.Repository, studentID, name string, createdAt ...time.Time) student.Student {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(context.Background(), student.Student{
		StudentID: studentID,
		Name:      name,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

// Mark upserts statuses for date, failing the test on error.
func Mark(t *testing.T, repo attendance.Repository, date core.Date, marks ...attendance.Mark) {
	t.Helper()
	if err := repo.UpsertRecords(context.Background(), date, marks); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
}
