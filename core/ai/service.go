package ai

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
)

type (
	// Generator is any generative model able to answer the three structured prompts.
	// Implementations return core.ErrUpstream on transport failures and
	// core.ErrMalformedResponse when the payload cannot be decoded.
	Generator interface {
		GenerateLearningPath(ctx context.Context, interest, level string) (Roadmap, error)
		GenerateQuiz(ctx context.Context, topic string, kind QuizKind) ([]Question, error)
		RecommendCourses(ctx context.Context, branch string, courses []CourseProgress) ([]Recommendation, error)
	}

	Service interface {
		LearningPath(ctx context.Context, rr RoadmapRequest) (Roadmap, error)
		Quiz(ctx context.Context, topic string, kind QuizKind) ([]Question, error)
		// Recommendations never fails: errors are logged and yield no recommendations.
		Recommendations(ctx context.Context, usr user.User, courses []course.Course) []Recommendation
	}

	service struct {
		gen    Generator
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(gen Generator, logger core.Logger) Service {
	return &service{gen: gen, logger: logger}
}

func (svc *service) LearningPath(ctx context.Context, rr RoadmapRequest) (Roadmap, error) {
	if err := rr.Validate(); err != nil {
		return Roadmap{}, err
	}
	rm, err := svc.gen.GenerateLearningPath(ctx, rr.Interest, rr.Level)
	if err != nil {
		svc.logger.Error("generating learning path", err, map[string]interface{}{"interest": rr.Interest})
		return Roadmap{}, err
	}
	if err := core.Validate.Struct(rm); err != nil {
		svc.logger.Warn("invalid learning path", err)
		return Roadmap{}, errors.Wrap(core.ErrMalformedResponse, err.Error())
	}
	if rm.Steps == nil {
		rm.Steps = []Step{}
	}
	return rm, nil
}

func (svc *service) Quiz(ctx context.Context, topic string, kind QuizKind) ([]Question, error) {
	questions, err := svc.gen.GenerateQuiz(ctx, topic, kind)
	if err != nil {
		svc.logger.Error("generating quiz", err, map[string]interface{}{"topic": topic, "type": kind})
		return nil, err
	}
	for i := range questions {
		if err := core.Validate.Struct(questions[i]); err != nil {
			svc.logger.Warn("invalid quiz question", err)
			return nil, errors.Wrapf(core.ErrMalformedResponse, "question %d: %v", i+1, err)
		}
	}
	if questions == nil {
		questions = []Question{}
	}
	return questions, nil
}

func (svc *service) Recommendations(ctx context.Context, usr user.User, courses []course.Course) []Recommendation {
	progress := make([]CourseProgress, 0)
	for _, c := range courses {
		if c.Progress > 0 {
			progress = append(progress, CourseProgress{Title: c.Title, Progress: c.Progress})
		}
	}

	branch := usr.Branch
	if branch == "" {
		branch = user.DefaultBranch
	}
	recs, err := svc.gen.RecommendCourses(ctx, branch, progress)
	if err != nil {
		svc.logger.Error("generating recommendations", err, usr)
		return []Recommendation{}
	}

	valid := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if err := core.Validate.Struct(r); err != nil {
			svc.logger.Warn("dropping invalid recommendation", err, usr)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}
