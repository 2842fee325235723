package genaisvc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/ai"
)

func TestQuizPrompt(t *testing.T) {
	coding := quizPrompt("Go", ai.QuizCoding)
	assert.Contains(t, coding, "exactly 10 comprehensive CODING questions for the topic: Go.")
	assert.Contains(t, coding, "code snippets")

	theory := quizPrompt("Go", ai.QuizTheory)
	assert.Contains(t, theory, "conceptual understanding")
}

func TestLearningPathPrompt(t *testing.T) {
	p := learningPathPrompt("Robotics", "Advanced")
	assert.Contains(t, p, "for a Advanced student interested in Robotics")
	assert.Contains(t, p, "8-10 logical steps")
}

func TestRecommendationsPrompt(t *testing.T) {
	p, err := recommendationsPrompt("Data Science", nil)
	require.NoError(t, err)
	assert.Contains(t, p, "Academic Focus/Interests: Data Science")
	assert.Contains(t, p, "Progress in current courses: []")

	p, err = recommendationsPrompt("Data Science", []ai.CourseProgress{{Title: "ML", Progress: 40}})
	require.NoError(t, err)
	assert.Contains(t, p, `[{"title":"ML","progress":40}]`)
	assert.Contains(t, p, "Suggest 3 unique courses")
}

func TestSchemas(t *testing.T) {
	assert.Equal(t, []string{"pathTitle", "steps"}, roadmapSchema.Required)
	assert.Len(t, quizSchema.Items.Properties, 4)
	assert.Len(t, recommendationsSchema.Items.Required, 3)
}

func TestStub(t *testing.T) {
	ctx := context.Background()
	stub := NewStub()

	rm, err := stub.GenerateLearningPath(ctx, "Go", "Beginner")
	require.NoError(t, err)
	assert.Len(t, rm.Steps, 8)
	require.NoError(t, core.Validate.Struct(rm))

	questions, err := stub.GenerateQuiz(ctx, "React Hooks", ai.QuizMCQ)
	require.NoError(t, err)
	require.Len(t, questions, ai.QuizLength)
	for i, q := range questions {
		require.NoError(t, core.Validate.Struct(q))
		assert.Equal(t, i%4, q.CorrectAnswer)
	}

	recs, err := stub.RecommendCourses(ctx, "Design", []ai.CourseProgress{{Title: "UI", Progress: 50}})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Builds on your 50% progress in UI.", recs[0].Reason)

	// the stub's output survives a JSON round trip through the wire types
	raw, err := json.Marshal(questions[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"correctAnswer":0`)
}
