package inmemdb

import (
	"context"

	"github.com/trezcool/lumina/core/assessment"
)

type assessmentRepository struct {
	db *assessmentTable
}

var _ assessment.Repository = (*assessmentRepository)(nil)

func NewAssessmentRepository(db *DB) assessment.Repository {
	return &assessmentRepository{db: db.assessment}
}

func (repo *assessmentRepository) CreateAssessment(_ context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows = append([]assessment.Assessment{a}, repo.db.rows...)
	return a, nil
}

func (repo *assessmentRepository) QueryAssessments(context.Context) ([]assessment.Assessment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]assessment.Assessment(nil), repo.db.rows...), nil
}

func (repo *assessmentRepository) CreateResult(_ context.Context, r assessment.Result) (assessment.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.results = append(repo.db.results, r)
	return r, nil
}

func (repo *assessmentRepository) QueryResults(_ context.Context, studentID string) ([]assessment.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	results := make([]assessment.Result, 0)
	for _, r := range repo.db.results {
		if r.StudentID == studentID {
			results = append(results, r)
		}
	}
	return results, nil
}
