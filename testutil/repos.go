package testutil

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

// RunRepositoryTests checks a storage backend against the repository contracts.
// newServices must return services on an empty database each time it is called.
func RunRepositoryTests(t *testing.T, newServices func(t *testing.T) Services) {
	t.Run("students", func(t *testing.T) { testStudentRepository(t, newServices(t).StudentRepo) })
	t.Run("attendance", func(t *testing.T) {
		svcs := newServices(t)
		testAttendanceRepository(t, svcs.StudentRepo, svcs.AttendanceRepo)
	})
}

func testStudentRepository(t *testing.T, repo student.Repository) {
	ctx := context.Background()

	bob := CreateStudent(t, repo, "STU002", "Bob Smith")
	alice := CreateStudent(t, repo, "STU001", "Alice Johnson")
	carol := CreateStudent(t, repo, "STU003", "Carol White")
	assert.True(t, alice.ID > bob.ID)

	t.Run("create duplicate", func(t *testing.T) {
		_, err := repo.CreateStudent(ctx, student.Student{StudentID: "STU001", Name: "Other", CreatedAt: time.Now(), UpdatedAt: time.Now()})
		assert.Equal(t, student.ErrStudentIDExists, errors.Cause(err))
	})

	t.Run("uniqueness", func(t *testing.T) {
		assert.Equal(t, student.ErrStudentIDExists, errors.Cause(repo.CheckStudentIDUniqueness(ctx, "STU001")))
		assert.NoError(t, repo.CheckStudentIDUniqueness(ctx, "STU001", alice.ID))
		assert.NoError(t, repo.CheckStudentIDUniqueness(ctx, "STU999"))
	})

	t.Run("query", func(t *testing.T) {
		all, err := repo.QueryStudents(ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{alice.ID, bob.ID, carol.ID}, studentIDs(all))

		page, err := repo.QueryStudents(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{bob.ID, carol.ID}, studentIDs(page))

		n, err := repo.CountStudents(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetStudent(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "STU002", got.StudentID)
		assert.Equal(t, "Bob Smith", got.Name)

		_, err = repo.GetStudent(ctx, 9999)
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	})

	t.Run("update", func(t *testing.T) {
		upd := bob
		upd.Name = "Robert Smith"
		upd.UpdatedAt = time.Now()
		got, err := repo.UpdateStudent(ctx, upd)
		require.NoError(t, err)
		assert.Equal(t, "Robert Smith", got.Name)
		assert.Equal(t, bob.ID, got.ID)

		upd.StudentID = "STU001"
		_, err = repo.UpdateStudent(ctx, upd)
		assert.Equal(t, student.ErrStudentIDExists, errors.Cause(err))

		upd.ID = 9999
		upd.StudentID = "STU999"
		_, err = repo.UpdateStudent(ctx, upd)
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))
	})

	t.Run("existing ids", func(t *testing.T) {
		got, err := repo.ExistingIDs(ctx, []int64{alice.ID, 9999, carol.ID})
		require.NoError(t, err)
		assert.Equal(t, map[int64]bool{alice.ID: true, carol.ID: true}, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteStudent(ctx, carol.ID))
		assert.Equal(t, student.ErrNotFound, errors.Cause(repo.DeleteStudent(ctx, carol.ID)))

		n, err := repo.CountStudents(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func testAttendanceRepository(t *testing.T, stdRepo student.Repository, repo attendance.Repository) {
	ctx := context.Background()
	jan1 := core.NewDate(2024, time.January, 1)
	jan2 := jan1.AddDays(1)

	alice := CreateStudent(t, stdRepo, "STU001", "Alice Johnson")
	bob := CreateStudent(t, stdRepo, "STU002", "Bob Smith")

	Mark(t, repo, jan1,
		attendance.Mark{StudentID: alice.ID, Status: attendance.StatusPresent},
		attendance.Mark{StudentID: bob.ID, Status: attendance.StatusAbsent},
	)
	Mark(t, repo, jan2, attendance.Mark{StudentID: alice.ID, Status: attendance.StatusLate})

	t.Run("by date", func(t *testing.T) {
		records, err := repo.QueryByDate(ctx, jan1)
		require.NoError(t, err)
		assert.Equal(t, map[int64]attendance.Status{
			alice.ID: attendance.StatusPresent,
			bob.ID:   attendance.StatusAbsent,
		}, statusesByStudent(records))
		for _, rec := range records {
			assert.True(t, rec.Date.Equal(jan1))
		}

		records, err = repo.QueryByDate(ctx, jan2.AddDays(1))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		Mark(t, repo, jan1, attendance.Mark{StudentID: bob.ID, Status: attendance.StatusExcused})

		records, err := repo.QueryByDate(ctx, jan1)
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, attendance.StatusExcused, statusesByStudent(records)[bob.ID])
	})

	t.Run("unknown student rolls back", func(t *testing.T) {
		err := repo.UpsertRecords(ctx, jan1, []attendance.Mark{
			{StudentID: alice.ID, Status: attendance.StatusAbsent},
			{StudentID: 9999, Status: attendance.StatusPresent},
		})
		assert.Equal(t, student.ErrNotFound, errors.Cause(err))

		records, err := repo.QueryByDate(ctx, jan1)
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusPresent, statusesByStudent(records)[alice.ID])
	})

	t.Run("by student", func(t *testing.T) {
		records, err := repo.QueryByStudent(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		sort.Slice(records, func(i, j int) bool { return records[j].Date.Before(records[i].Date) })
		assert.True(t, records[0].Date.Equal(jan2))
		assert.Equal(t, attendance.StatusLate, records[0].Status)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		day := core.NewDate(2024, time.January, 5)
		submitted := make(map[attendance.Status]bool)

		var g errgroup.Group
		for i := 0; i < 20; i++ {
			status := attendance.Statuses[i%len(attendance.Statuses)]
			submitted[status] = true
			g.Go(func() error {
				return repo.UpsertRecords(ctx, day, []attendance.Mark{{StudentID: bob.ID, Status: status}})
			})
		}
		require.NoError(t, g.Wait())

		records, err := repo.QueryByDate(ctx, day)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, bob.ID, records[0].StudentID)
		assert.True(t, submitted[records[0].Status], "unexpected status %q", records[0].Status)
	})

	t.Run("first calendar day", func(t *testing.T) {
		day := core.NewDate(1, time.January, 1)
		Mark(t, repo, day, attendance.Mark{StudentID: bob.ID, Status: attendance.StatusLate})

		records, err := repo.QueryByDate(ctx, day)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "0001-01-01", records[0].Date.String())
		assert.Equal(t, attendance.StatusLate, records[0].Status)
	})

	t.Run("cascade", func(t *testing.T) {
		require.NoError(t, stdRepo.DeleteStudent(ctx, alice.ID))

		records, err := repo.QueryByStudent(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, records)

		records, err = repo.QueryByDate(ctx, jan1)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

func studentIDs(students []student.Student) []int64 {
	ids := make([]int64, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}

func statusesByStudent(records []attendance.Record) map[int64]attendance.Status {
	m := make(map[int64]attendance.Status, len(records))
	for _, rec := range records {
		m[rec.StudentID] = rec.Status
	}
	return m
}
