package ai_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lumina/core"
	. "github.com/trezcool/lumina/core/ai"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
	"github.com/trezcool/lumina/tests"
)

type fakeGenerator struct {
	roadmap   Roadmap
	questions []Question
	recs      []Recommendation
	err       error

	gotBranch  string
	gotCourses []CourseProgress
}

func (g *fakeGenerator) GenerateLearningPath(context.Context, string, string) (Roadmap, error) {
	return g.roadmap, g.err
}

func (g *fakeGenerator) GenerateQuiz(context.Context, string, QuizKind) ([]Question, error) {
	return g.questions, g.err
}

func (g *fakeGenerator) RecommendCourses(_ context.Context, branch string, courses []CourseProgress) ([]Recommendation, error) {
	g.gotBranch, g.gotCourses = branch, courses
	return g.recs, g.err
}

func validQuestion() Question {
	return Question{
		Question:      "What does useState return?",
		Options:       []string{"A value", "A tuple of value and setter", "A ref", "Nothing"},
		CorrectAnswer: 1,
		Explanation:   "It returns the current state and a setter.",
	}
}

func TestParseQuizKind(t *testing.T) {
	assert.Equal(t, QuizCoding, ParseQuizKind(" coding "))
	assert.Equal(t, QuizTheory, ParseQuizKind("THEORY"))
	assert.Equal(t, QuizMCQ, ParseQuizKind(""))
	assert.Equal(t, QuizMCQ, ParseQuizKind("essay"))
}

func TestService_Quiz(t *testing.T) {
	ctx := context.Background()

	missingOption := validQuestion()
	missingOption.Options = missingOption.Options[:3]
	outOfRange := validQuestion()
	outOfRange.CorrectAnswer = 4
	noExplanation := validQuestion()
	noExplanation.Explanation = " "

	tests := []struct {
		name      string
		questions []Question
		err       error
		wantErr   error
		wantLen   int
	}{
		{"valid", []Question{validQuestion(), validQuestion()}, nil, nil, 2},
		{"empty", nil, nil, nil, 0},
		{"wrong option count", []Question{validQuestion(), missingOption}, nil, core.ErrMalformedResponse, 0},
		{"correct index out of range", []Question{outOfRange}, nil, core.ErrMalformedResponse, 0},
		{"missing explanation", []Question{noExplanation}, nil, core.ErrMalformedResponse, 0},
		{"upstream", nil, core.ErrUpstream, core.ErrUpstream, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeGenerator{questions: tc.questions, err: tc.err}, testutil.Logger{})
			questions, err := svc.Quiz(ctx, "React Hooks", QuizMCQ)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, questions)
			assert.Len(t, questions, tc.wantLen)
		})
	}
}

func TestService_LearningPath(t *testing.T) {
	ctx := context.Background()

	gen := &fakeGenerator{roadmap: Roadmap{
		PathTitle: "Go from zero",
		Steps:     []Step{{Title: "Syntax", Description: "Types and funcs", EstimatedTime: "1 week"}},
	}}
	svc := NewService(gen, testutil.Logger{})

	rm, err := svc.LearningPath(ctx, RoadmapRequest{Interest: "Go"})
	require.NoError(t, err)
	assert.Equal(t, "Go from zero", rm.PathTitle)

	_, err = svc.LearningPath(ctx, RoadmapRequest{Interest: " "})
	assert.Error(t, err)
	_, err = svc.LearningPath(ctx, RoadmapRequest{Interest: "Go", Level: "Expert"})
	assert.Error(t, err)

	gen.roadmap.PathTitle = ""
	_, err = svc.LearningPath(ctx, RoadmapRequest{Interest: "Go"})
	assert.Equal(t, core.ErrMalformedResponse, errors.Cause(err))

	gen.roadmap = Roadmap{PathTitle: "Empty"}
	rm, err = svc.LearningPath(ctx, RoadmapRequest{Interest: "Go"})
	require.NoError(t, err)
	assert.NotNil(t, rm.Steps)
}

func TestService_Recommendations(t *testing.T) {
	ctx := context.Background()
	courses := []course.Course{
		{Title: "Advanced React Architecture", Progress: 43},
		{Title: "UI/UX Design Systems", Progress: 0},
	}
	usr := user.User{Name: "Ada", Branch: "Computer Science"}

	gen := &fakeGenerator{recs: []Recommendation{
		{Title: "Rust", Description: "Systems", Reason: "Performance"},
		{Title: "Broken"},
	}}
	svc := NewService(gen, testutil.Logger{})

	recs := svc.Recommendations(ctx, usr, courses)
	require.Len(t, recs, 1)
	assert.Equal(t, "Rust", recs[0].Title)
	assert.Equal(t, "Computer Science", gen.gotBranch)
	assert.Equal(t, []CourseProgress{{Title: "Advanced React Architecture", Progress: 43}}, gen.gotCourses)

	gen.err = core.ErrUpstream
	recs = svc.Recommendations(ctx, user.User{}, courses)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Equal(t, user.DefaultBranch, gen.gotBranch)
}
