package inmemdb

import (
	"context"

	"github.com/trezcool/lumina/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) QueryStudents(context.Context) ([]attendance.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]attendance.Student(nil), repo.db.students...), nil
}

func (repo *attendanceRepository) CreateStudents(_ context.Context, students ...attendance.Student) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.students = append(repo.db.students, students...)
	return nil
}

func (repo *attendanceRepository) CreateRecords(_ context.Context, records ...attendance.Record) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rows := make([]attendance.Record, 0, len(records)+len(repo.db.records))
	rows = append(rows, records...)
	repo.db.records = append(rows, repo.db.records...)
	return nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.records {
		if filter.Match(r) {
			records = append(records, r)
		}
	}
	return records, nil
}
