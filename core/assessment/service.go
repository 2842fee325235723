package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/course"
)

var (
	nowFunc = time.Now // mockable

	ErrUnknownCourse = errors.New("unknown course")
)

const unknownCourse = "Unknown Course"

type (
	Repository interface {
		CreateAssessment(ctx context.Context, a Assessment) (Assessment, error)
		// QueryAssessments returns assessments newest first.
		QueryAssessments(ctx context.Context) ([]Assessment, error)
		CreateResult(ctx context.Context, r Result) (Result, error)
		// QueryResults returns the results of a student, oldest first.
		QueryResults(ctx context.Context, studentID string) ([]Result, error)
	}

	// CourseCatalog resolves the courses assessments belong to.
	CourseCatalog interface {
		Catalog(ctx context.Context) ([]course.Course, error)
	}

	Service interface {
		Create(ctx context.Context, na NewAssessment) (Assessment, error)
		List(ctx context.Context) ([]Assessment, error)
		// RecordResult grades and stores a submitted attempt.
		RecordResult(ctx context.Context, studentID, title, courseID string, score, total int) (Result, error)
		Performance(ctx context.Context, studentID string) (Performance, error)
	}

	service struct {
		repo    Repository
		catalog CourseCatalog
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, catalog CourseCatalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (svc *service) Create(ctx context.Context, na NewAssessment) (Assessment, error) {
	if err := na.Validate(); err != nil {
		return Assessment{}, err
	}
	if _, ok, err := svc.courseTitle(ctx, na.CourseID); err != nil {
		return Assessment{}, err
	} else if !ok {
		return Assessment{}, core.NewValidationError(
			ErrUnknownCourse,
			core.FieldError{Field: "course_id", Error: ErrUnknownCourse.Error()},
		)
	}

	return svc.repo.CreateAssessment(ctx, Assessment{
		ID:         uuid.NewString(),
		CourseID:   na.CourseID,
		Title:      na.Title,
		Type:       na.Type,
		DueDate:    na.DueDate,
		TotalMarks: na.TotalMarks,
		CreatedAt:  nowFunc().UTC(),
	})
}

func (svc *service) List(ctx context.Context) ([]Assessment, error) {
	return svc.repo.QueryAssessments(ctx)
}

func (svc *service) RecordResult(ctx context.Context, studentID, title, courseID string, score, total int) (Result, error) {
	name, ok, err := svc.courseTitle(ctx, courseID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		name = unknownCourse
	}
	return svc.repo.CreateResult(ctx, Result{
		ID:              uuid.NewString(),
		AssessmentTitle: title,
		CourseName:      name,
		StudentID:       studentID,
		Score:           score,
		TotalMarks:      total,
		Grade:           GradeFor(score, total),
		Date:            nowFunc().UTC(),
	})
}

func (svc *service) Performance(ctx context.Context, studentID string) (Performance, error) {
	results, err := svc.repo.QueryResults(ctx, studentID)
	if err != nil {
		return Performance{}, errors.Wrap(err, "querying results")
	}
	return ComputePerformance(results), nil
}

func (svc *service) courseTitle(ctx context.Context, id string) (string, bool, error) {
	if id == "" {
		return "", false, nil
	}
	courses, err := svc.catalog.Catalog(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "querying catalog")
	}
	for _, c := range courses {
		if c.ID == id {
			return c.Title, true, nil
		}
	}
	return "", false, nil
}
