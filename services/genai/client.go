package genaisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/ai"
)

// Client asks a Gemini model for structured JSON answers.
type Client struct {
	client *genai.Client
	model  string
	logger core.Logger
}

var _ ai.Generator = (*Client)(nil)

func NewClient(ctx context.Context, conf core.GenAIConfig, logger core.Logger) (*Client, error) {
	if conf.APIKey == "" {
		return nil, errors.New("genai API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}
	return &Client{client: client, model: conf.Model, logger: logger}, nil
}

func (c *Client) GenerateLearningPath(ctx context.Context, interest, level string) (ai.Roadmap, error) {
	var rm ai.Roadmap
	err := c.generate(ctx, learningPathPrompt(interest, level), roadmapSchema, "{}", &rm)
	return rm, err
}

func (c *Client) GenerateQuiz(ctx context.Context, topic string, kind ai.QuizKind) ([]ai.Question, error) {
	var questions []ai.Question
	err := c.generate(ctx, quizPrompt(topic, kind), quizSchema, "[]", &questions)
	return questions, err
}

func (c *Client) RecommendCourses(ctx context.Context, branch string, courses []ai.CourseProgress) ([]ai.Recommendation, error) {
	prompt, err := recommendationsPrompt(branch, courses)
	if err != nil {
		return nil, err
	}
	var recs []ai.Recommendation
	err = c.generate(ctx, prompt, recommendationsSchema, "[]", &recs)
	return recs, err
}

// generate issues a single request; there is no retry.
func (c *Client) generate(ctx context.Context, prompt string, schema *genai.Schema, empty string, dest interface{}) error {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return errors.Wrap(core.ErrUpstream, err.Error())
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		text = empty
	}
	if err := json.Unmarshal([]byte(text), dest); err != nil {
		c.logger.Debug("undecodable genai response", map[string]interface{}{"response": text})
		return errors.Wrap(core.ErrMalformedResponse, err.Error())
	}
	return nil
}

func learningPathPrompt(interest, level string) string {
	return fmt.Sprintf(`Generate a comprehensive "Zero to Hero" structured learning path for a %s student interested in %s.
The path must be thorough and include everything from the absolute basics/fundamentals to advanced techniques and industry-best practices.
Provide 8-10 logical steps that build upon each other.
Each step must have a clear title, a detailed description of what will be learned, and a realistic estimated time to master that specific module.`,
		level, interest)
}

func quizPrompt(topic string, kind ai.QuizKind) string {
	focus := "Focus on conceptual understanding and theoretical knowledge."
	if kind == ai.QuizCoding {
		focus = "Focus on code snippets, syntax, and algorithmic logic."
	}
	return fmt.Sprintf("Generate exactly %d comprehensive %s questions for the topic: %s. %s Ensure questions vary in difficulty.",
		ai.QuizLength, kind, topic, focus)
}

func recommendationsPrompt(branch string, courses []ai.CourseProgress) (string, error) {
	if courses == nil {
		courses = []ai.CourseProgress{}
	}
	progress, err := json.Marshal(courses)
	if err != nil {
		return "", errors.Wrap(err, "encoding course progress")
	}
	return fmt.Sprintf(`Based on the following student context:
- Academic Focus/Interests: %s
- Progress in current courses: %s
Suggest %d unique courses that would be logically perfect next steps for this student's academic growth.
Do not suggest courses they are already enrolled in.
For each course, provide a title, a short catchy description, and a compelling reason why it's recommended for them specifically.`,
		branch, progress, ai.RecommendationCount), nil
}

func stringSchema(desc ...string) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeString}
	if len(desc) > 0 {
		s.Description = desc[0]
	}
	return s
}

var (
	roadmapSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"pathTitle": stringSchema(),
			"steps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":         stringSchema(),
						"description":   stringSchema(),
						"estimatedTime": stringSchema(),
					},
				},
			},
		},
		Required: []string{"pathTitle", "steps"},
	}

	quizSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": stringSchema(),
				"options": {
					Type:        genai.TypeArray,
					Items:       stringSchema(),
					Description: "Exactly 4 options",
				},
				"correctAnswer": {Type: genai.TypeInteger, Description: "Index of the correct option (0-3)"},
				"explanation":   stringSchema("Short explanation of why this is correct"),
			},
			Required: []string{"question", "options", "correctAnswer", "explanation"},
		},
	}

	recommendationsSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":       stringSchema(),
				"description": stringSchema(),
				"reason":      stringSchema(),
			},
			Required: []string{"title", "description", "reason"},
		},
	}
)
