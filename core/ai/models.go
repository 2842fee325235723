package ai

import (
	"strings"

	"github.com/trezcool/lumina/core"
)

type QuizKind string

const (
	QuizMCQ    QuizKind = "MCQ"
	QuizCoding QuizKind = "CODING"
	QuizTheory QuizKind = "THEORY"

	QuizLength          = 10
	OptionsPerQuestion  = 4
	RecommendationCount = 3
)

// ParseQuizKind normalises s, defaulting to MCQ.
func ParseQuizKind(s string) QuizKind {
	switch k := QuizKind(strings.ToUpper(core.CleanString(s))); k {
	case QuizCoding, QuizTheory:
		return k
	default:
		return QuizMCQ
	}
}

type (
	Step struct {
		Title         string `json:"title" validate:"required,notblank"`
		Description   string `json:"description" validate:"required,notblank"`
		EstimatedTime string `json:"estimatedTime" validate:"required,notblank"`
	}

	Roadmap struct {
		PathTitle string `json:"pathTitle" validate:"required,notblank"`
		Steps     []Step `json:"steps" validate:"dive"`
	}

	Question struct {
		Question      string   `json:"question" validate:"required,notblank"`
		Options       []string `json:"options" validate:"len=4,dive,required"`
		CorrectAnswer int      `json:"correctAnswer" validate:"min=0,max=3"`
		Explanation   string   `json:"explanation" validate:"required,notblank"`
	}

	Recommendation struct {
		Title       string `json:"title" validate:"required,notblank"`
		Description string `json:"description" validate:"required,notblank"`
		Reason      string `json:"reason" validate:"required,notblank"`
	}

	// CourseProgress is a course the student has started.
	CourseProgress struct {
		Title    string `json:"title"`
		Progress int    `json:"progress"`
	}
)

type RoadmapRequest struct {
	Interest string `json:"interest" validate:"required,notblank"`
	Level    string `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
}

func (rr *RoadmapRequest) Validate() error {
	rr.Interest = core.CleanString(rr.Interest)
	rr.Level = core.CleanString(rr.Level)
	if rr.Level == "" {
		rr.Level = "Beginner"
	}
	return core.Validate.Struct(rr)
}
