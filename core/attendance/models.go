package attendance

import (
	"math"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/student"
)

type Status string

// Statuses
const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"

	DefaultStatus = StatusPresent
)

var (
	// Statuses in display order.
	Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

	statusLabels = map[Status]string{
		StatusPresent: "Present",
		StatusAbsent:  "Absent",
		StatusLate:    "Late",
		StatusExcused: "Excused",
	}
)

func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	return statusLabels[s]
}

type StatusOption struct {
	Value Status `json:"value"`
	Label string `json:"label"`
}

// StatusOptions returns the {value, label} pairs of all Statuses, in display order.
func StatusOptions() []StatusOption {
	opts := make([]StatusOption, 0, len(Statuses))
	for _, s := range Statuses {
		opts = append(opts, StatusOption{Value: s, Label: s.Label()})
	}
	return opts
}

// Record is one ledger entry: the status of a student on a date.
type Record struct {
	ID        int64     `json:"id" db:"id"`
	StudentID int64     `json:"student_id" db:"student_id"`
	Date      core.Date `json:"attendance_date" db:"attendance_date"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// SheetRow is one line of a day sheet.
type SheetRow struct {
	ID        int64  `json:"id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Status    Status `json:"status"`
}

// Mark is a submitted status for one student, referenced by its surrogate id.
type Mark struct {
	StudentID int64  `json:"student_id" validate:"required"`
	Status    Status `json:"status" validate:"required,attendance_status"`
}

// Submission is a batch of marks for a single date.
type Submission struct {
	AttendanceDate string `json:"attendance_date" validate:"required,datetime=2006-01-02"`
	Attendances    []Mark `json:"attendances" validate:"required,dive"`
}

// Tally counts statuses. All Statuses are always present.
type Tally map[Status]int

func TallyRows(rows []SheetRow) Tally {
	t := make(Tally, len(Statuses))
	for _, s := range Statuses {
		t[s] = 0
	}
	for _, row := range rows {
		t[row.Status]++
	}
	return t
}

type Summary struct {
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Excused        int     `json:"excused"`
	AttendanceRate float64 `json:"attendance_rate"` // percent, one decimal
}

func Summarize(records []Record) Summary {
	var sum Summary
	for _, rec := range records {
		sum.Total++
		switch rec.Status {
		case StatusPresent:
			sum.Present++
		case StatusAbsent:
			sum.Absent++
		case StatusLate:
			sum.Late++
		case StatusExcused:
			sum.Excused++
		}
	}
	if sum.Total > 0 {
		rate := float64(sum.Present) / float64(sum.Total) * 100
		sum.AttendanceRate = math.Round(rate*10) / 10
	}
	return sum
}

// History is a student with all its records, most recent first.
type History struct {
	Student     student.Student `json:"student"`
	Attendances []Record        `json:"attendances"`
	Stats       Summary         `json:"stats"`
}
