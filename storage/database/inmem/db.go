package inmemdb

import (
	"sync"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

type (
	// DB is a process-local store. One lock guards both tables so that
	// cascades and batch upserts are atomic.
	DB struct {
		sync.RWMutex
		students   map[int64]*student.Student
		records    map[recordKey]*attendance.Record
		studentSeq int64
		recordSeq  int64
	}

	recordKey struct {
		studentID int64
		date      string
	}
)

func Open() *DB {
	return &DB{
		students: make(map[int64]*student.Student),
		records:  make(map[recordKey]*attendance.Record),
	}
}

// Reset empties all tables and restarts the primary key sequences.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.students = make(map[int64]*student.Student)
	db.records = make(map[recordKey]*attendance.Record)
	db.studentSeq = 0
	db.recordSeq = 0
}
