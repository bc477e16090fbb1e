package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/student"
)

const studentColumns = "id, student_id, name, created_at, updated_at"

var studentOrdering = []core.DBOrdering{
	{Field: "name", Ascending: true},
	{Field: "id", Ascending: true},
}

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckStudentIDUniqueness(ctx context.Context, studentID string, excludedIDs ...int64) error {
	if excludedIDs == nil {
		excludedIDs = []int64{} // ANY(NULL) would never match
	}
	var exists bool
	err := repo.db.GetContext(
		ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM students WHERE student_id = $1 AND NOT (id = ANY($2)))",
		studentID, pq.Array(excludedIDs),
	)
	if err != nil {
		return errors.Wrap(err, "checking student_id uniqueness")
	}
	if exists {
		return student.ErrStudentIDExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	var created student.Student
	err := repo.db.GetContext(
		ctx, &created,
		"INSERT INTO students (student_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING "+studentColumns,
		std.StudentID, std.Name, std.CreatedAt.UTC(), std.UpdatedAt.UTC(),
	)
	if err != nil {
		return student.Student{}, trapConstraintErr(err, "inserting student")
	}
	return created, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, limit, offset int) ([]student.Student, error) {
	q := "SELECT " + studentColumns + " FROM students" + core.OrderByClause(studentOrdering...)
	args := make([]interface{}, 0, 2)
	if limit > 0 {
		q += " LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	students := make([]student.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}

func (repo *studentRepository) CountStudents(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return n, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int64) (student.Student, error) {
	var std student.Student
	if err := repo.db.GetContext(ctx, &std, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return student.Student{}, trapNoRowsErr(err, "selecting student")
	}
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	var updated student.Student
	err := repo.db.GetContext(
		ctx, &updated,
		"UPDATE students SET student_id = $1, name = $2, updated_at = $3 WHERE id = $4 RETURNING "+studentColumns,
		std.StudentID, std.Name, std.UpdatedAt.UTC(), std.ID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, trapConstraintErr(err, "updating student")
	}
	return updated, nil
}

// DeleteStudent relies on ON DELETE CASCADE to remove the student's records.
func (repo *studentRepository) DeleteStudent(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	found := make([]int64, 0, len(ids))
	if err := repo.db.SelectContext(ctx, &found, "SELECT id FROM students WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting student ids")
	}
	existing := make(map[int64]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}
