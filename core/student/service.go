package student

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

const DefaultPageSize = 20

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrStudentIDExists = errors.New("a student with this student ID already exists")
)

type (
	Repository interface {
		// CheckStudentIDUniqueness returns ErrStudentIDExists if another student, not in excludedIDs, holds studentID.
		CheckStudentIDUniqueness(ctx context.Context, studentID string, excludedIDs ...int64) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		// QueryStudents returns students ordered by name then id. A limit <= 0 returns all of them.
		QueryStudents(ctx context.Context, limit, offset int) ([]Student, error)
		CountStudents(ctx context.Context) (int, error)
		GetStudent(ctx context.Context, id int64) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent removes the student and all its attendance records.
		DeleteStudent(ctx context.Context, id int64) error
		// ExistingIDs returns the subset of ids that belong to a student.
		ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	}

	ServiceInterface interface {
		QueryAll(ctx context.Context) ([]Student, error)
		Paginate(ctx context.Context, page int) (Page, error)
		Create(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id int64) (Student, error)
		Update(ctx context.Context, id int64, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id int64) error
		ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
		pageSize   int
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator, conf *core.Config) *Service {
	pageSize := DefaultPageSize
	if conf != nil && conf.PageSize > 0 {
		pageSize = conf.PageSize
	}
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
		pageSize:   pageSize,
	}
}

// trapUniquenessErr maps ErrStudentIDExists to a field-level core.ValidationError.
func trapUniquenessErr(err error) error {
	if errors.Cause(err) == ErrStudentIDExists {
		return core.NewValidationError(ErrStudentIDExists, core.FieldError{Field: "student_id", Error: ErrStudentIDExists.Error()})
	}
	return err
}

func (svc *Service) checkUniqueness(ctx context.Context, studentID string, excludedIDs ...int64) error {
	return trapUniquenessErr(svc.repo.CheckStudentIDUniqueness(ctx, studentID, excludedIDs...))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, 0, 0)
}

// Paginate returns the given page of students. Pages below 1 are treated as 1.
func (svc *Service) Paginate(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	total, err := svc.repo.CountStudents(ctx)
	if err != nil {
		return Page{}, errors.Wrap(err, "counting students")
	}
	data, err := svc.repo.QueryStudents(ctx, svc.pageSize, (page-1)*svc.pageSize)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying students")
	}
	if data == nil {
		data = []Student{}
	}
	return newPage(data, page, svc.pageSize, total), nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate, svc.translator); err != nil {
		return Student{}, err
	}
	if err := svc.checkUniqueness(ctx, ns.StudentID); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	std, err := svc.repo.CreateStudent(ctx, Student{
		StudentID: ns.StudentID,
		Name:      ns.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Student{}, trapUniquenessErr(err)
	}
	return std, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int64, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err = us.Validate(svc.validate, svc.translator); err != nil {
		return Student{}, err
	}
	if err = svc.checkUniqueness(ctx, us.StudentID, id); err != nil {
		return Student{}, err
	}

	std.StudentID = us.StudentID
	std.Name = us.Name
	std.UpdatedAt = time.Now().UTC()
	std, err = svc.repo.UpdateStudent(ctx, std)
	if err != nil {
		return Student{}, trapUniquenessErr(err)
	}
	return std, nil
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *Service) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	if len(ids) == 0 {
		return map[int64]bool{}, nil
	}
	return svc.repo.ExistingIDs(ctx, ids)
}
