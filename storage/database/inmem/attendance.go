package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryByDate(_ context.Context, date core.Date) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	day := date.String()
	records := make([]attendance.Record, 0)
	for key, rec := range repo.db.records {
		if key.date == day {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (repo *attendanceRepository) QueryByStudent(_ context.Context, studentID int64) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for key, rec := range repo.db.records {
		if key.studentID == studentID {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (repo *attendanceRepository) UpsertRecords(_ context.Context, date core.Date, marks []attendance.Mark) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	// all or nothing
	for _, m := range marks {
		if _, ok := repo.db.students[m.StudentID]; !ok {
			return student.ErrNotFound
		}
	}

	now := time.Now().UTC()
	day := date.String()
	for _, m := range marks {
		key := recordKey{studentID: m.StudentID, date: day}
		if rec, ok := repo.db.records[key]; ok {
			rec.Status = m.Status
			rec.UpdatedAt = now
			continue
		}
		repo.db.recordSeq++
		repo.db.records[key] = &attendance.Record{
			ID:        repo.db.recordSeq,
			StudentID: m.StudentID,
			Date:      date,
			Status:    m.Status,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return nil
}
