package sqlxrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/student"
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapConstraintErr maps constraint violations to domain errors.
// A duplicate student_id becomes student.ErrStudentIDExists, a dangling student reference student.ErrNotFound.
func trapConstraintErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		switch pqErr.Code {
		case uniqueViolation:
			return student.ErrStudentIDExists
		case foreignKeyViolation:
			return student.ErrNotFound
		}
	}
	return errors.Wrap(err, msg)
}
