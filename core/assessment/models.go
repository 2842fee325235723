package assessment

import (
	"math"
	"strings"
	"time"

	"github.com/trezcool/lumina/core"
)

type Type string

const (
	TypeMCQ     Type = "MCQ"
	TypeProject Type = "PROJECT"
	TypeCoding  Type = "CODING"
	TypeEssay   Type = "ESSAY"

	DefaultTotalMarks = 100
)

type Grade string

const (
	GradeExcellent Grade = "EXCELLENT"
	GradeGood      Grade = "GOOD"
	GradePass      Grade = "PASS"
	GradeFail      Grade = "FAIL"
)

// GradeFor maps a score to its band: >=90% excellent, >=75% good, >=40% pass.
func GradeFor(score, total int) Grade {
	if total <= 0 {
		return GradeFail
	}
	pct := float64(score) / float64(total) * 100
	switch {
	case pct >= 90:
		return GradeExcellent
	case pct >= 75:
		return GradeGood
	case pct >= 40:
		return GradePass
	default:
		return GradeFail
	}
}

type Assessment struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Title      string    `json:"title"`
	Type       Type      `json:"type"`
	DueDate    string    `json:"due_date"` // YYYY-MM-DD
	TotalMarks int       `json:"total_marks"`
	CreatedAt  time.Time `json:"created_at"`
}

// Pending reports whether the assessment is still due on day.
func (a Assessment) Pending(day time.Time) bool {
	return a.DueDate >= day.Format(core.DateLayout)
}

type NewAssessment struct {
	CourseID   string `json:"course_id" validate:"required,notblank"`
	Title      string `json:"title" validate:"required,notblank"`
	Type       Type   `json:"type" validate:"oneof=MCQ PROJECT CODING ESSAY"`
	DueDate    string `json:"due_date" validate:"required,isodate"`
	TotalMarks int    `json:"total_marks" validate:"gt=0"`
}

func (na *NewAssessment) Clean() {
	na.CourseID = core.CleanString(na.CourseID)
	na.Title = core.CleanString(na.Title)
	na.DueDate = core.CleanString(na.DueDate)
	na.Type = Type(strings.ToUpper(core.CleanString(string(na.Type))))
	if na.Type == "" {
		na.Type = TypeMCQ
	}
	if na.TotalMarks == 0 {
		na.TotalMarks = DefaultTotalMarks
	}
}

func (na *NewAssessment) Validate() error {
	na.Clean()
	return core.Validate.Struct(na)
}

type Result struct {
	ID              string    `json:"id"`
	AssessmentTitle string    `json:"assessment_title"`
	CourseName      string    `json:"course_name"`
	StudentID       string    `json:"student_id"`
	Score           int       `json:"score"`
	TotalMarks      int       `json:"total_marks"`
	Grade           Grade     `json:"status"`
	Date            time.Time `json:"date"`
}

type Performance struct {
	AverageScore     int      `json:"average_score"`
	TotalAssessments int      `json:"total_assessments"`
	Results          []Result `json:"results"`
}

// ComputePerformance averages the score ratios of results, as a rounded percentage.
func ComputePerformance(results []Result) Performance {
	perf := Performance{TotalAssessments: len(results), Results: results}
	if len(results) == 0 {
		perf.Results = []Result{}
		return perf
	}
	var total float64
	for _, r := range results {
		if r.TotalMarks > 0 {
			total += float64(r.Score) / float64(r.TotalMarks)
		}
	}
	perf.AverageScore = int(math.Round(total / float64(len(results)) * 100))
	return perf
}
