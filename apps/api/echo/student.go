package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

const (
	studentCreatedText = "Student created successfully."
	studentUpdatedText = "Student updated successfully."
	studentDeletedText = "Student deleted successfully."
)

type studentApi struct {
	svc    student.ServiceInterface
	attSvc attendance.ServiceInterface
}

// studentDetail is a student with its attendance records, most recent first.
type studentDetail struct {
	student.Student
	Attendances []attendance.Record `json:"attendances"`
}

func registerStudentAPI(e *echo.Echo, svc student.ServiceInterface, attSvc attendance.ServiceInterface) {
	api := studentApi{svc: svc, attSvc: attSvc}

	sg := e.Group("/students")
	sg.GET("", api.index)
	sg.GET("/create", api.createPage)
	sg.POST("", api.store)

	// detail endpoints
	dg := sg.Group("/:id", studentCtxMiddleware(api.svc))
	dg.GET("", api.show)
	dg.GET("/edit", api.editPage)
	dg.PUT("", api.update)
	dg.PATCH("", api.update)
	dg.DELETE("", api.destroy)
}

func studentPath(id int64) string {
	return "/students/" + strconv.FormatInt(id, 10)
}

// Handlers

func (api *studentApi) index(ctx echo.Context) error {
	var p Pagination
	p.Bind(ctx)

	page, err := api.svc.Paginate(ctx.Request().Context(), p.Page)
	if err != nil {
		return errors.Wrap(err, "paginating students")
	}
	return render(ctx, "students/index", echo.Map{"students": page})
}

func (api *studentApi) createPage(ctx echo.Context) error {
	return render(ctx, "students/create", nil)
}

func (api *studentApi) store(ctx echo.Context) error {
	var data student.NewStudent
	if err := bind(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return redirectWithFlash(ctx, studentPath(std.ID), studentCreatedText)
}

func (api *studentApi) show(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	history, err := api.attSvc.StudentHistory(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "getting student history")
	}
	return render(ctx, "students/show", echo.Map{
		"student": studentDetail{Student: history.Student, Attendances: history.Attendances},
		"stats":   history.Stats,
	})
}

func (api *studentApi) editPage(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return render(ctx, "students/edit", echo.Map{"student": std})
}

func (api *studentApi) update(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = bind(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if std, err = api.svc.Update(ctx.Request().Context(), std.ID, data); err != nil {
		return errors.Wrap(err, "updating student")
	}
	return redirectWithFlash(ctx, studentPath(std.ID), studentUpdatedText)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	std, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return redirectWithFlash(ctx, "/students", studentDeletedText)
}
