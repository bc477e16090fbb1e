package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/student"
)

type (
	Repository interface {
		QueryByDate(ctx context.Context, date core.Date) ([]Record, error)
		QueryByStudent(ctx context.Context, studentID int64) ([]Record, error)
		// UpsertRecords writes all marks for date atomically, keyed by (student, date).
		// It returns student.ErrNotFound if a mark references a missing student.
		UpsertRecords(ctx context.Context, date core.Date, marks []Mark) error
	}

	ServiceInterface interface {
		Today() core.Date
		DaySheet(ctx context.Context, date core.Date) ([]SheetRow, error)
		Record(ctx context.Context, sub Submission) (core.Date, error)
		StudentHistory(ctx context.Context, id int64) (History, error)
	}

	Service struct {
		repo       Repository
		students   student.ServiceInterface
		validate   *validator.Validate
		translator ut.Translator
		loc        *time.Location
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	students student.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
	conf *core.Config,
) *Service {
	loc := time.UTC
	if conf != nil {
		loc = conf.Location()
	}
	return &Service{
		repo:       repo,
		students:   students,
		validate:   validate,
		translator: translator,
		loc:        loc,
	}
}

// ParseDateOrToday parses a "YYYY-MM-DD" date, falling back to today in loc when s is empty or invalid.
func ParseDateOrToday(s string, loc *time.Location) core.Date {
	if d, err := core.ParseDate(core.CleanString(s)); err == nil {
		return d
	}
	return core.Today(loc)
}

func (svc *Service) Today() core.Date {
	return core.Today(svc.loc)
}

// DaySheet lists every student, ordered by name, with its status on date.
// Students without a record are reported present; nothing is written.
func (svc *Service) DaySheet(ctx context.Context, date core.Date) ([]SheetRow, error) {
	var students []student.Student
	var records []Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = svc.students.QueryAll(gctx)
		return errors.Wrap(err, "querying students")
	})
	g.Go(func() (err error) {
		records, err = svc.repo.QueryByDate(gctx, date)
		return errors.Wrap(err, "querying records")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byStudent := make(map[int64]Status, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec.Status
	}

	rows := make([]SheetRow, 0, len(students))
	for _, std := range students {
		status, ok := byStudent[std.ID]
		if !ok {
			status = DefaultStatus
		}
		rows = append(rows, SheetRow{
			ID:        std.ID,
			StudentID: std.StudentID,
			Name:      std.Name,
			Status:    status,
		})
	}
	return rows, nil
}

// Record validates a submission and upserts all its marks, or none of them.
// When a student appears more than once, its last mark wins.
func (svc *Service) Record(ctx context.Context, sub Submission) (core.Date, error) {
	sub.AttendanceDate = core.CleanString(sub.AttendanceDate)
	if err := svc.validateSubmission(ctx, sub); err != nil {
		return core.Date{}, err
	}
	date, err := core.ParseDate(sub.AttendanceDate)
	if err != nil {
		return core.Date{}, errors.Wrap(err, "parsing attendance date")
	}

	marks := lastMarkWins(sub.Attendances)
	if len(marks) == 0 {
		return date, nil
	}
	if err = svc.repo.UpsertRecords(ctx, date, marks); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return core.Date{}, core.NewValidationError(err, core.FieldError{Field: "attendances", Error: StudentNotFoundText})
		}
		return core.Date{}, errors.Wrap(err, "upserting records")
	}
	return date, nil
}

func (svc *Service) validateSubmission(ctx context.Context, sub Submission) error {
	var fields []core.FieldError
	var vErr error
	if err := svc.validate.Struct(sub); err != nil {
		translated, ok := core.TranslateValidationErrors(err, svc.translator).(*core.ValidationError)
		if !ok {
			return errors.Wrap(err, "validating submission")
		}
		vErr = err
		fields = append(fields, translated.Fields...)
	}

	// reference checks, for marks whose student_id passed the struct rules
	ids := make([]int64, 0, len(sub.Attendances))
	for _, m := range sub.Attendances {
		if m.StudentID != 0 {
			ids = append(ids, m.StudentID)
		}
	}
	if len(ids) > 0 {
		existing, err := svc.students.ExistingIDs(ctx, ids)
		if err != nil {
			return errors.Wrap(err, "checking students")
		}
		for i, m := range sub.Attendances {
			if m.StudentID != 0 && !existing[m.StudentID] {
				fields = append(fields, core.FieldError{
					Field: fmt.Sprintf("attendances[%d].student_id", i),
					Error: StudentNotFoundText,
				})
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	if vErr == nil {
		vErr = errors.New("invalid attendance data")
	}
	return core.NewValidationError(vErr, fields...)
}

// lastMarkWins drops all but the last mark of each student, keeping submission order.
func lastMarkWins(marks []Mark) []Mark {
	last := make(map[int64]int, len(marks))
	for i, m := range marks {
		last[m.StudentID] = i
	}
	out := make([]Mark, 0, len(last))
	for i, m := range marks {
		if last[m.StudentID] == i {
			out = append(out, m)
		}
	}
	return out
}

func (svc *Service) StudentHistory(ctx context.Context, id int64) (History, error) {
	var std student.Student
	var records []Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		std, err = svc.students.GetByID(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		records, err = svc.repo.QueryByStudent(gctx, id)
		return errors.Wrap(err, "querying records")
	})
	if err := g.Wait(); err != nil {
		return History{}, err
	}
	if records == nil {
		records = []Record{}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[j].Date.Before(records[i].Date) })

	return History{
		Student:     std,
		Attendances: records,
		Stats:       Summarize(records),
	}, nil
}
