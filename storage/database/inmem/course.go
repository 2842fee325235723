package inmemdb

import (
	"context"

	"github.com/trezcool/lumina/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows = append([]course.Course{c}, repo.db.rows...)
	return c, nil
}

func (repo *courseRepository) QueryCourses(context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]course.Course(nil), repo.db.rows...), nil
}
