package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/student"
)

const ctxStudentKey = "student"

var errStdNotFoundInCtx = errors.New("student object not found in echo.Context")

// studentCtxMiddleware loads the student referenced by the `:id` path param into the context.
// Unknown or malformed ids answer 404.
func studentCtxMiddleware(svc student.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, ok := parseID(ctx)
			if !ok {
				return errHttpNotFound
			}
			std, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == student.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "getting student")
			}
			ctx.Set(ctxStudentKey, std)
			return next(ctx)
		}
	}
}

func getContextStudent(ctx echo.Context) (student.Student, error) {
	if std, ok := ctx.Get(ctxStudentKey).(student.Student); ok {
		return std, nil
	}
	return student.Student{}, errStdNotFoundInCtx
}
