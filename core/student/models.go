package student

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

type Student struct {
	ID        int64     `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	StudentID string `json:"student_id" form:"student_id" validate:"required,notblank,max=255"`
	Name      string `json:"name" form:"name" validate:"required,notblank,max=255"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.Name = core.CleanString(ns.Name)
	if err := validate.Struct(ns); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	StudentID string `json:"student_id" form:"student_id" validate:"required,notblank,max=255"`
	Name      string `json:"name" form:"name" validate:"required,notblank,max=255"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	us.StudentID = core.CleanString(us.StudentID)
	us.Name = core.CleanString(us.Name)
	if err := validate.Struct(us); err != nil {
		return core.TranslateValidationErrors(err, translator)
	}
	return nil
}

// Page is one page of students ordered by name, with paginator metadata.
type Page struct {
	Data        []Student `json:"data"`
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
	PerPage     int       `json:"per_page"`
	Total       int       `json:"total"`
	From        *int      `json:"from"` // nil when Data is empty
	To          *int      `json:"to"`
}

func newPage(data []Student, page, perPage, total int) Page {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	p := Page{
		Data:        data,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
	if n := len(data); n > 0 {
		from := (page-1)*perPage + 1
		to := from + n - 1
		p.From, p.To = &from, &to
	}
	return p
}
