package student_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
	"github.com/trezcool/mahudhurio/testutil"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.Truef(t, ok, "want *core.ValidationError, got %T (%v)", err, err)
	return vErr.FieldMap()
}

func TestService_Create(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	std, err := svcs.Students.Create(ctx, student.NewStudent{StudentID: "  STU001 ", Name: " Alice Johnson"})
	require.NoError(t, err)
	assert.NotZero(t, std.ID)
	assert.Equal(t, "STU001", std.StudentID)
	assert.Equal(t, "Alice Johnson", std.Name)
	assert.False(t, std.CreatedAt.IsZero())
	assert.Equal(t, std.CreatedAt, std.UpdatedAt)

	tooLong := strings.Repeat("x", 256)
	tests := []struct {
		name       string
		data       student.NewStudent
		wantFields map[string]string
	}{
		{
			name: "empty",
			data: student.NewStudent{},
			wantFields: map[string]string{
				"student_id": "this field is required",
				"name":       "this field is required",
			},
		},
		{
			name:       "blank name",
			data:       student.NewStudent{StudentID: "STU002", Name: "   "},
			wantFields: map[string]string{"name": "this field is required"},
		},
		{
			name:       "duplicate student_id",
			data:       student.NewStudent{StudentID: "STU001", Name: "Alice Again"},
			wantFields: map[string]string{"student_id": "a student with this student ID already exists"},
		},
		{
			name:       "too long",
			data:       student.NewStudent{StudentID: "STU003", Name: tooLong},
			wantFields: map[string]string{"name": "name must be a maximum of 255 characters in length"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svcs.Students.Create(ctx, tt.data)
			require.Error(t, err)
			assert.Equal(t, tt.wantFields, fieldErrors(t, err))
		})
	}

	// rejected creates leave no record
	all, err := svcs.Students.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// racyRepo reports student_id as free, so uniqueness is only caught at insert time.
type racyRepo struct {
	student.Repository
}

func (racyRepo) CheckStudentIDUniqueness(context.Context, string, ...int64) error { return nil }

func TestService_Create_insertRace(t *testing.T) {
	base := testutil.NewServices()
	svcs := testutil.NewServicesWith(racyRepo{base.StudentRepo}, base.AttendanceRepo)
	ctx := context.Background()

	_, err := svcs.Students.Create(ctx, student.NewStudent{StudentID: "STU001", Name: "Alice"})
	require.NoError(t, err)

	_, err = svcs.Students.Create(ctx, student.NewStudent{StudentID: "STU001", Name: "Bob"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"student_id": student.ErrStudentIDExists.Error()}, fieldErrors(t, err))
}

func TestService_QueryAll(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	all, err := svcs.Students.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	charlie := testutil.CreateStudent(t, svcs.StudentRepo, "STU003", "Charlie Brown")
	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")
	bob := testutil.CreateStudent(t, svcs.StudentRepo, "STU002", "Bob Smith")
	alice2 := testutil.CreateStudent(t, svcs.StudentRepo, "STU004", "Alice Johnson")

	all, err = svcs.Students.QueryAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []student.Student{alice, alice2, bob, charlie}, all)
}

func TestService_Paginate(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	empty, err := svcs.Students.Paginate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, student.Page{Data: []student.Student{}, CurrentPage: 1, LastPage: 1, PerPage: 20}, empty)

	for i := 1; i <= 25; i++ {
		testutil.CreateStudent(t, svcs.StudentRepo, fmt.Sprintf("STU%03d", i), fmt.Sprintf("Student %02d", i))
	}

	intPtr := func(n int) *int { return &n }
	tests := []struct {
		name     string
		page     int
		wantPage int
		wantLen  int
		wantFrom *int
		wantTo   *int
		wantName string
	}{
		{name: "first page", page: 1, wantPage: 1, wantLen: 20, wantFrom: intPtr(1), wantTo: intPtr(20), wantName: "Student 01"},
		{name: "zero is first page", page: 0, wantPage: 1, wantLen: 20, wantFrom: intPtr(1), wantTo: intPtr(20), wantName: "Student 01"},
		{name: "negative is first page", page: -3, wantPage: 1, wantLen: 20, wantFrom: intPtr(1), wantTo: intPtr(20), wantName: "Student 01"},
		{name: "last page", page: 2, wantPage: 2, wantLen: 5, wantFrom: intPtr(21), wantTo: intPtr(25), wantName: "Student 21"},
		{name: "past the end", page: 3, wantPage: 3, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svcs.Students.Paginate(ctx, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.CurrentPage)
			assert.Equal(t, 2, page.LastPage)
			assert.Equal(t, 20, page.PerPage)
			assert.Equal(t, 25, page.Total)
			assert.Len(t, page.Data, tt.wantLen)
			assert.NotNil(t, page.Data)
			assert.Equal(t, tt.wantFrom, page.From)
			assert.Equal(t, tt.wantTo, page.To)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, page.Data[0].Name)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")
	bob := testutil.CreateStudent(t, svcs.StudentRepo, "STU002", "Bob Smith")

	t.Run("not found", func(t *testing.T) {
		_, err := svcs.Students.Update(ctx, 999, student.UpdateStudent{StudentID: "STU999", Name: "Nobody"})
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	})

	t.Run("student_id taken by another student", func(t *testing.T) {
		_, err := svcs.Students.Update(ctx, bob.ID, student.UpdateStudent{StudentID: "STU001", Name: "Bob Smith"})
		require.Error(t, err)
		assert.Equal(t, map[string]string{"student_id": "a student with this student ID already exists"}, fieldErrors(t, err))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svcs.Students.Update(ctx, bob.ID, student.UpdateStudent{StudentID: "STU002", Name: ""})
		require.Error(t, err)
		assert.Equal(t, map[string]string{"name": "this field is required"}, fieldErrors(t, err))
	})

	t.Run("keep own student_id", func(t *testing.T) {
		updated, err := svcs.Students.Update(ctx, alice.ID, student.UpdateStudent{StudentID: "STU001", Name: "Alice J."})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, updated.ID)
		assert.Equal(t, "Alice J.", updated.Name)
		assert.Equal(t, alice.CreatedAt, updated.CreatedAt)
		assert.True(t, !updated.UpdatedAt.Before(alice.UpdatedAt))
	})

	t.Run("change student_id", func(t *testing.T) {
		updated, err := svcs.Students.Update(ctx, bob.ID, student.UpdateStudent{StudentID: "STU020", Name: "Bob Smith"})
		require.NoError(t, err)
		assert.Equal(t, "STU020", updated.StudentID)

		got, err := svcs.Students.GetByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})
}

func TestService_Delete(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")
	bob := testutil.CreateStudent(t, svcs.StudentRepo, "STU002", "Bob Smith")
	day := core.NewDate(2024, 1, 1)
	testutil.Mark(t, svcs.AttendanceRepo, day,
		attendance.Mark{StudentID: alice.ID, Status: attendance.StatusAbsent},
		attendance.Mark{StudentID: bob.ID, Status: attendance.StatusLate},
	)

	assert.Equal(t, student.ErrNotFound, errors.Cause(svcs.Students.Delete(ctx, 999)))

	require.NoError(t, svcs.Students.Delete(ctx, alice.ID))

	_, err := svcs.Students.GetByID(ctx, alice.ID)
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	// records cascade
	records, err := svcs.AttendanceRepo.QueryByStudent(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = svcs.AttendanceRepo.QueryByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, bob.ID, records[0].StudentID)
}

func TestService_ExistingIDs(t *testing.T) {
	svcs := testutil.NewServices()
	ctx := context.Background()

	alice := testutil.CreateStudent(t, svcs.StudentRepo, "STU001", "Alice Johnson")

	existing, err := svcs.Students.ExistingIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, existing)

	existing, err = svcs.Students.ExistingIDs(ctx, []int64{alice.ID, 42})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{alice.ID: true}, existing)
}
