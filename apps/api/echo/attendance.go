package echoapi

import (
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

const attendanceSavedText = "Attendance records have been saved successfully."

type attendanceApi struct {
	svc attendance.ServiceInterface
	loc *time.Location
}

func registerAttendanceAPI(e *echo.Echo, svc attendance.ServiceInterface, loc *time.Location) {
	api := attendanceApi{svc: svc, loc: loc}

	e.GET("/", api.index)
	e.GET("/attendance", api.index)
	e.POST("/attendance", api.store)
}

// Handlers

func (api *attendanceApi) index(ctx echo.Context) error {
	date := attendance.ParseDateOrToday(ctx.QueryParam(dateParam), api.loc)
	rows, err := api.svc.DaySheet(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "building day sheet")
	}

	return render(ctx, "attendance/index", echo.Map{
		"students":           rows,
		"selectedDate":       date.String(),
		"attendanceStatuses": attendance.StatusOptions(),
		"stats":              attendance.TallyRows(rows),
	})
}

func (api *attendanceApi) store(ctx echo.Context) error {
	var data attendance.Submission
	if err := bind(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}

	date, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}

	q := make(url.Values)
	q.Set(dateParam, date.String())
	return redirectWithFlash(ctx, "/attendance?"+q.Encode(), attendanceSavedText)
}
