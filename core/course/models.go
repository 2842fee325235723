package course

import (
	"math"
	"time"

	"github.com/trezcool/lumina/core"
)

const (
	// CategoryAll disables the category / instructor filters.
	CategoryAll     = "All"
	DefaultCategory = "General"
)

type Lesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Duration    string `json:"duration"`
	IsCompleted bool   `json:"is_completed"`
}

type Course struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	InstructorID   string     `json:"instructor_id"`
	InstructorName string     `json:"instructor_name"`
	Category       string     `json:"category"`
	Image          string     `json:"image"`
	Enrolled       bool       `json:"enrolled"`
	Progress       int        `json:"progress"`
	Lessons        []Lesson   `json:"lessons"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Progress returns the share of completed lessons as a rounded percentage; 0 for no lessons.
func Progress(lessons []Lesson) int {
	if len(lessons) == 0 {
		return 0
	}
	var completed int
	for _, l := range lessons {
		if l.IsCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(lessons)) * 100))
}

// Recompute refreshes the cached Progress after a lesson change and stamps CompletedAt when the
// course reaches 100 (cleared again when it drops below).
func (c *Course) Recompute(now time.Time) {
	c.Progress = Progress(c.Lessons)
	if c.Progress == 100 {
		if c.CompletedAt == nil {
			t := now.UTC()
			c.CompletedAt = &t
		}
	} else {
		c.CompletedAt = nil
	}
}

func (c Course) CertificateEligible() bool {
	return c.Progress == 100
}

func (c Course) clone() Course {
	cp := c
	cp.Lessons = append([]Lesson(nil), c.Lessons...)
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		cp.CompletedAt = &t
	}
	return cp
}

// NewCourse contains information needed to publish a new Course.
type NewCourse struct {
	Title          string      `json:"title" validate:"required,notblank"`
	Description    string      `json:"description" validate:"required,notblank"`
	Category       string      `json:"category"`
	InstructorName string      `json:"instructor_name"`
	Image          string      `json:"image" validate:"omitempty,url"`
	Lessons        []NewLesson `json:"lessons" validate:"omitempty,dive"`
}

type NewLesson struct {
	Title    string `json:"title" validate:"required,notblank"`
	Duration string `json:"duration" validate:"required,notblank"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	if nc.Category == "" {
		nc.Category = DefaultCategory
	}
	nc.InstructorName = core.CleanString(nc.InstructorName)
	nc.Image = core.CleanString(nc.Image)
	for i := range nc.Lessons {
		nc.Lessons[i].Title = core.CleanString(nc.Lessons[i].Title)
		nc.Lessons[i].Duration = core.CleanString(nc.Lessons[i].Duration)
	}
	return core.Validate.Struct(nc)
}

type QueryFilter struct {
	Search     string `query:"search"`
	Category   string `query:"category"`
	Instructor string `query:"instructor"`
	Enrolled   *bool  `query:"enrolled"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	qf.Instructor = core.CleanString(qf.Instructor)
	if qf.Category == CategoryAll {
		qf.Category = ""
	}
	if qf.Instructor == CategoryAll {
		qf.Instructor = ""
	}
}

func (qf QueryFilter) match(c Course) bool {
	if qf.Search != "" && !(core.Contains(c.Title, qf.Search) || core.Contains(c.Description, qf.Search)) {
		return false
	}
	if qf.Category != "" && c.Category != qf.Category {
		return false
	}
	if qf.Instructor != "" && c.InstructorName != qf.Instructor {
		return false
	}
	if qf.Enrolled != nil && c.Enrolled != *qf.Enrolled {
		return false
	}
	return true
}
