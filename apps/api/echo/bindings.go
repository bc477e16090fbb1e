package echoapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

const (
	pageParam = "page"
	dateParam = "date"
	idParam   = "id"
)

// Pagination binds the `page` query param; missing or invalid values give page 1.
type Pagination struct {
	Page int
}

func (p *Pagination) Bind(ctx echo.Context) {
	p.Page = 1
	if n, err := strconv.Atoi(strings.TrimSpace(ctx.QueryParam(pageParam))); err == nil && n > 0 {
		p.Page = n
	}
}

// typeErrorTexts are the field errors reported when a JSON value has the wrong type.
var typeErrorTexts = map[string]string{
	"attendances":     attendance.NotAnArrayText,
	"attendance_date": "please provide a valid date",
}

// bind is ctx.Bind, with JSON type mismatches reported as a core.ValidationError on the offending field.
func bind(ctx echo.Context, dest interface{}) error {
	err := ctx.Bind(dest)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return err
	}
	field := typeErr.Field
	text, ok := typeErrorTexts[field]
	if !ok {
		if root := strings.SplitN(field, ".", 2)[0]; root == "attendances" {
			field, text = root, "invalid attendance data"
		} else {
			text = "invalid value"
		}
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: text})
}

func parseID(ctx echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(idParam), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
