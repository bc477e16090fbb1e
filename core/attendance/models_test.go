package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, []StatusOption{
		{Value: StatusPresent, Label: "Present"},
		{Value: StatusAbsent, Label: "Absent"},
		{Value: StatusLate, Label: "Late"},
		{Value: StatusExcused, Label: "Excused"},
	}, StatusOptions())

	assert.True(t, StatusLate.IsValid())
	assert.False(t, Status("sick").IsValid())
	assert.False(t, Status("").IsValid())
	assert.Equal(t, "", Status("sick").Label())
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    Summary
	}{
		{name: "no records", want: Summary{}},
		{
			name:    "all present",
			records: []Record{{Status: StatusPresent}, {Status: StatusPresent}},
			want:    Summary{Total: 2, Present: 2, AttendanceRate: 100},
		},
		{
			name:    "rounded to one decimal",
			records: []Record{{Status: StatusPresent}, {Status: StatusAbsent}, {Status: StatusLate}},
			want:    Summary{Total: 3, Present: 1, Absent: 1, Late: 1, AttendanceRate: 33.3},
		},
		{
			name:    "two thirds",
			records: []Record{{Status: StatusPresent}, {Status: StatusPresent}, {Status: StatusExcused}},
			want:    Summary{Total: 3, Present: 2, Excused: 1, AttendanceRate: 66.7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.records))
		})
	}
}

func TestTallyRows(t *testing.T) {
	assert.Equal(t, Tally{StatusPresent: 0, StatusAbsent: 0, StatusLate: 0, StatusExcused: 0}, TallyRows(nil))
	assert.Equal(t,
		Tally{StatusPresent: 2, StatusAbsent: 1, StatusLate: 0, StatusExcused: 0},
		TallyRows([]SheetRow{{Status: StatusPresent}, {Status: StatusAbsent}, {Status: StatusPresent}}),
	)
}

func Test_lastMarkWins(t *testing.T) {
	got := lastMarkWins([]Mark{
		{StudentID: 1, Status: StatusAbsent},
		{StudentID: 2, Status: StatusLate},
		{StudentID: 1, Status: StatusExcused},
	})
	assert.Equal(t, []Mark{
		{StudentID: 2, Status: StatusLate},
		{StudentID: 1, Status: StatusExcused},
	}, got)
}
