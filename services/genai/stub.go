package genaisvc

import (
	"context"
	"fmt"

	"github.com/trezcool/lumina/core/ai"
)

// Stub answers every prompt with canned content derived from its inputs.
// Used when no API key is configured.
type Stub struct{}

var _ ai.Generator = Stub{}

func NewStub() Stub { return Stub{} }

func (Stub) GenerateLearningPath(_ context.Context, interest, level string) (ai.Roadmap, error) {
	titles := []string{
		"Absolute Basics", "Core Terminology", "Fundamental Tools", "Guided Practice",
		"Intermediate Patterns", "Advanced Techniques", "Industry Best Practices", "Capstone Project",
	}
	rm := ai.Roadmap{PathTitle: fmt.Sprintf("%s: %s to Hero", interest, level)}
	for i, t := range titles {
		rm.Steps = append(rm.Steps, ai.Step{
			Title:         fmt.Sprintf("%s of %s", t, interest),
			Description:   fmt.Sprintf("Step %d of your %s journey: %s.", i+1, interest, t),
			EstimatedTime: fmt.Sprintf("%d weeks", i/2+1),
		})
	}
	return rm, nil
}

// GenerateQuiz always places the correct answer at index i%4 for question i.
func (Stub) GenerateQuiz(_ context.Context, topic string, kind ai.QuizKind) ([]ai.Question, error) {
	questions := make([]ai.Question, 0, ai.QuizLength)
	for i := 0; i < ai.QuizLength; i++ {
		correct := i % ai.OptionsPerQuestion
		options := make([]string, ai.OptionsPerQuestion)
		for o := range options {
			options[o] = fmt.Sprintf("Option %c", 'A'+o)
		}
		questions = append(questions, ai.Question{
			Question:      fmt.Sprintf("%s %s question #%d", topic, kind, i+1),
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   fmt.Sprintf("Option %c is correct.", 'A'+correct),
		})
	}
	return questions, nil
}

func (Stub) RecommendCourses(_ context.Context, branch string, courses []ai.CourseProgress) ([]ai.Recommendation, error) {
	recs := make([]ai.Recommendation, 0, ai.RecommendationCount)
	for i := 0; i < ai.RecommendationCount; i++ {
		reason := fmt.Sprintf("A natural next step for %s students.", branch)
		if i < len(courses) {
			reason = fmt.Sprintf("Builds on your %d%% progress in %s.", courses[i].Progress, courses[i].Title)
		}
		recs = append(recs, ai.Recommendation{
			Title:       fmt.Sprintf("%s Elective %d", branch, i+1),
			Description: fmt.Sprintf("Deepen your %s skills.", branch),
			Reason:      reason,
		})
	}
	return recs, nil
}
