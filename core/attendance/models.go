package attendance

import (
	"math"
	"strings"

	"github.com/trezcool/lumina/core"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
)

// Label is the status as shown in exports; late counts as present.
func (s Status) Label() string {
	if s == StatusLate {
		return "Late (Present)"
	}
	return string(s)
}

type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Record struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	CourseID    string `json:"course_id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Status      Status `json:"status"`
}

type Stats struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Late       int `json:"late"`
	Absent     int `json:"absent"`
	Percentage int `json:"percentage"`
}

// ComputeStats summarises records; late counts toward the percentage.
func ComputeStats(records []Record) Stats {
	var st Stats
	for _, r := range records {
		st.Total++
		switch r.Status {
		case StatusPresent:
			st.Present++
		case StatusLate:
			st.Late++
		case StatusAbsent:
			st.Absent++
		}
	}
	if st.Total > 0 {
		st.Percentage = int(math.Round(float64(st.Present+st.Late) / float64(st.Total) * 100))
	}
	return st
}

// NewRegister is one finalized day of attendance for a course.
// Students missing from Statuses are marked present.
type NewRegister struct {
	CourseID string            `json:"course_id" validate:"required,notblank"`
	Date     string            `json:"date" validate:"required,isodate"`
	Statuses map[string]Status `json:"statuses" validate:"omitempty,dive,keys,required,endkeys,oneof=PRESENT ABSENT LATE"`
}

func (nr *NewRegister) Validate() error {
	nr.CourseID = core.CleanString(nr.CourseID)
	nr.Date = core.CleanString(nr.Date)
	for id, st := range nr.Statuses {
		nr.Statuses[id] = Status(strings.ToUpper(string(st)))
	}
	return core.Validate.Struct(nr)
}

type RecordFilter struct {
	StudentID string `query:"student_id"`
	CourseID  string `query:"course_id"`
	Date      string `query:"date"`
}

func (rf *RecordFilter) Clean() {
	rf.StudentID = core.CleanString(rf.StudentID)
	rf.CourseID = core.CleanString(rf.CourseID)
	rf.Date = core.CleanString(rf.Date)
}

func (rf RecordFilter) Match(r Record) bool {
	return (rf.StudentID == "" || r.StudentID == rf.StudentID) &&
		(rf.CourseID == "" || r.CourseID == rf.CourseID) &&
		(rf.Date == "" || r.Date == rf.Date)
}

// Finalized is the payload of the attendance.finalized event.
type Finalized struct {
	CourseID string `json:"course_id"`
	Date     string `json:"date"`
	Stats
}
