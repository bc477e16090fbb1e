package echoapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/mahudhurio/apps/api/echo"
	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
	"github.com/trezcool/mahudhurio/testutil"
)

var errNotFound = httpErr{Error: "not found"}

func Test_studentApi_index(t *testing.T) {
	app, svcs := setup(t)

	for i := 1; i <= 21; i++ {
		testutil.CreateStudent(t, svcs.StudentRepo, fmt.Sprintf("STU%03d", i), fmt.Sprintf("Student %02d", i))
	}

	type pageResp struct {
		Component string `json:"component"`
		Props     struct {
			Students student.Page `json:"students"`
		} `json:"props"`
	}

	tests := []struct {
		name        string
		path        string
		wantPage    int
		wantLen     int
		wantFirstID string
	}{
		{name: "default page", path: "/students", wantPage: 1, wantLen: 20, wantFirstID: "STU001"},
		{name: "trailing slash", path: "/students/", wantPage: 1, wantLen: 20, wantFirstID: "STU001"},
		{name: "second page", path: "/students?page=2", wantPage: 2, wantLen: 1, wantFirstID: "STU021"},
		{name: "invalid page", path: "/students?page=lol", wantPage: 1, wantLen: 20, wantFirstID: "STU001"},
		{name: "past the end", path: "/students?page=9", wantPage: 9, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var got pageResp
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, "students/index", got.Component)
			assert.Equal(t, tt.wantPage, got.Props.Students.CurrentPage)
			assert.Equal(t, 2, got.Props.Students.LastPage)
			assert.Equal(t, 21, got.Props.Students.Total)
			assert.Len(t, got.Props.Students.Data, tt.wantLen)
			if tt.wantFirstID != "" {
				assert.Equal(t, tt.wantFirstID, got.Props.Students.Data[0].StudentID)
			}
		})
	}
}

func Test_studentApi_forms(t *testing.T) {
	app, svcs := setup(t)

	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")

	runHTTPTests(t, app, []httpTest{
		{
			name: "create page",
			path: "/students/create",
			wantData: marchallObj(t, echoapi.Page{
				Component: "students/create",
				URL:       "/students/create",
				Props:     echo.Map{"flash": map[string]string{}},
			}),
		},
		{
			name: "edit page",
			path: fmt.Sprintf("/students/%d/edit", alice.ID),
			wantData: marchallObj(t, echoapi.Page{
				Component: "students/edit",
				URL:       fmt.Sprintf("/students/%d/edit", alice.ID),
				Props:     echo.Map{"student": alice, "flash": map[string]string{}},
			}),
		},
		{name: "edit unknown", path: "/students/999/edit", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "show unknown", path: "/students/999", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "show non-numeric", path: "/students/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	})
}

func Test_studentApi_store(t *testing.T) {
	app, svcs := setup(t)

	req, rec := newRequest(http.MethodPost, "/students", []byte(`{"student_id": " STU001 ", "name": "Alice Johnson"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	all, err := svcs.Students.QueryAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "STU001", all[0].StudentID)
	assert.Equal(t, "/students/"+strconv.FormatInt(all[0].ID, 10), rec.Header().Get(echo.HeaderLocation))
	require.NotNil(t, flashCookie(rec))

	runHTTPTests(t, app, []httpTest{
		{
			name:     "duplicate student_id",
			method:   http.MethodPost,
			path:     "/students",
			body:     []byte(`{"student_id": "STU001", "name": "Someone Else"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "a student with this student ID already exists"}),
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/students",
			body:     []byte(`{"name": "  "}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "this field is required", "name": "this field is required"}),
		},
	})

	all, err = svcs.Students.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func Test_studentApi_show(t *testing.T) {
	app, svcs := setup(t)

	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")
	jan1 := core.NewDate(2024, time.January, 1)
	testutil.Mark(t, svcs.AttendanceRepo, jan1, attendance.Mark{StudentID: alice.ID, Status: attendance.StatusPresent})
	testutil.Mark(t, svcs.AttendanceRepo, jan1.AddDays(1), attendance.Mark{StudentID: alice.ID, Status: attendance.StatusAbsent})

	req, rec := newRequest(http.MethodGet, fmt.Sprintf("/students/%d", alice.ID))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Component string `json:"component"`
		Props     struct {
			Student struct {
				ID          int64               `json:"id"`
				StudentID   string              `json:"student_id"`
				Name        string              `json:"name"`
				Attendances []attendance.Record `json:"attendances"`
			} `json:"student"`
			Stats attendance.Summary `json:"stats"`
		} `json:"props"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "students/show", got.Component)
	assert.Equal(t, alice.ID, got.Props.Student.ID)
	assert.Equal(t, "STU001", got.Props.Student.StudentID)
	require.Len(t, got.Props.Student.Attendances, 2)
	assert.Equal(t, "2024-01-02", got.Props.Student.Attendances[0].Date.String())
	assert.Equal(t, attendance.StatusAbsent, got.Props.Student.Attendances[0].Status)
	assert.Equal(t, attendance.Summary{Total: 2, Present: 1, Absent: 1, AttendanceRate: 50}, got.Props.Stats)
}

func Test_studentApi_update(t *testing.T) {
	app, svcs := setup(t)

	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")
	testutil.CreateStudent(t, svcs.StudentRepo, "STU002", "Bob Smith")
	path := fmt.Sprintf("/students/%d", alice.ID)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "student_id taken",
			method:   http.MethodPatch,
			path:     path,
			body:     []byte(`{"student_id": "STU002", "name": "Alice Johnson"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "a student with this student ID already exists"}),
		},
		{
			name:     "unknown",
			method:   http.MethodPatch,
			path:     "/students/999",
			body:     []byte(`{"student_id": "STU999", "name": "Nobody"}`),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{name: "patch", method: http.MethodPatch, path: path, body: []byte(`{"student_id": "STU001", "name": "Alice J."}`), wantCode: http.StatusSeeOther},
		{name: "put", method: http.MethodPut, path: path, body: []byte(`{"student_id": "STU010", "name": "Alice J."}`), wantCode: http.StatusSeeOther},
	})

	got, err := svcs.Students.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "STU010", got.StudentID)
	assert.Equal(t, "Alice J.", got.Name)
}

func Test_studentApi_destroy(t *testing.T) {
	app, svcs := setup(t)

	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")
	bob := testutil.CreateStudent(t, svcs.StudentRepo, "STU002", "Bob Smith")
	testutil.Mark(t, svcs.AttendanceRepo, core.NewDate(2024, time.January, 1), attendance.Mark{StudentID: alice.ID, Status: attendance.StatusLate})

	t.Run("delete", func(t *testing.T) {
		req, rec := newRequest(http.MethodDelete, fmt.Sprintf("/students/%d", alice.ID))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/students", rec.Header().Get(echo.HeaderLocation))

		_, err := svcs.Students.GetByID(context.Background(), alice.ID)
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
		records, err := svcs.AttendanceRepo.QueryByStudent(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("method override", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, fmt.Sprintf("/students/%d", bob.ID))
		req.Header.Set(echo.HeaderXHTTPMethodOverride, http.MethodDelete)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		_, err := svcs.Students.GetByID(context.Background(), bob.ID)
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	})

	runHTTPTests(t, app, []httpTest{
		{name: "already deleted", method: http.MethodDelete, path: fmt.Sprintf("/students/%d", alice.ID), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	})
}
