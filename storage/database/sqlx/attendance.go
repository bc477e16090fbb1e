package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

const (
	recordColumns = "id, student_id, attendance_date, status, created_at, updated_at"

	upsertRecordQuery = `
		INSERT INTO attendances (student_id, attendance_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (student_id, attendance_date)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
)

type attendanceRepository struct {
	db core.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db core.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryByDate(ctx context.Context, date core.Date) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0)
	err := repo.db.SelectContext(ctx, &records, "SELECT "+recordColumns+" FROM attendances WHERE attendance_date = $1", date)
	if err != nil {
		return nil, errors.Wrap(err, "selecting records by date")
	}
	return records, nil
}

func (repo *attendanceRepository) QueryByStudent(ctx context.Context, studentID int64) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0)
	err := repo.db.SelectContext(
		ctx, &records,
		"SELECT "+recordColumns+" FROM attendances WHERE student_id = $1"+
			core.OrderByClause(core.DBOrdering{Field: "attendance_date", Ascending: false}),
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting records by student")
	}
	return records, nil
}

// UpsertRecords runs one INSERT ... ON CONFLICT per mark in a single transaction.
func (repo *attendanceRepository) UpsertRecords(ctx context.Context, date core.Date, marks []attendance.Mark) error {
	now := time.Now().UTC()
	return core.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		for _, m := range marks {
			if _, err := tx.ExecContext(ctx, upsertRecordQuery, m.StudentID, date, string(m.Status), now); err != nil {
				return trapConstraintErr(err, "upserting record")
			}
		}
		return nil
	})
}
