package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mahudhurio/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// sorted must be called with the lock held.
func (repo *studentRepository) sorted() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students
}

// studentIDTaken must be called with the lock held.
func (repo *studentRepository) studentIDTaken(studentID string, excludedIDs ...int64) bool {
	for _, s := range repo.db.students {
		if s.StudentID == studentID && !isExcluded(s.ID, excludedIDs) {
			return true
		}
	}
	return false
}

func (repo *studentRepository) CheckStudentIDUniqueness(_ context.Context, studentID string, excludedIDs ...int64) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.studentIDTaken(studentID, excludedIDs...) {
		return student.ErrStudentIDExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.studentIDTaken(std.StudentID) {
		return student.Student{}, student.ErrStudentIDExists
	}
	repo.db.studentSeq++
	std.ID = repo.db.studentSeq
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, limit, offset int) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.sorted()
	if offset > len(students) {
		offset = len(students)
	}
	students = students[offset:]
	if limit > 0 && limit < len(students) {
		students = students[:limit]
	}
	return students, nil
}

func (repo *studentRepository) CountStudents(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.students), nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id int64) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.students[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if repo.studentIDTaken(std.StudentID, std.ID) {
		return student.Student{}, student.ErrStudentIDExists
	}
	orig.StudentID = std.StudentID
	orig.Name = std.Name
	orig.UpdatedAt = std.UpdatedAt
	return *orig, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	for key := range repo.db.records {
		if key.studentID == id {
			delete(repo.db.records, key)
		}
	}
	return nil
}

func (repo *studentRepository) ExistingIDs(_ context.Context, ids []int64) (map[int64]bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	existing := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := repo.db.students[id]; ok {
			existing[id] = true
		}
	}
	return existing, nil
}

func isExcluded(id int64, excludedIDs []int64) bool {
	for _, excl := range excludedIDs {
		if excl == id {
			return true
		}
	}
	return false
}
