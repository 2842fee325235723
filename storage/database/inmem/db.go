package inmemdb

import (
	"sync"

	"github.com/trezcool/lumina/core/assessment"
	"github.com/trezcool/lumina/core/attendance"
	"github.com/trezcool/lumina/core/certificate"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
)

type (
	// DB holds every table in process memory; nothing survives a restart.
	DB struct {
		user        *userTable
		course      *courseTable
		certificate *certificateTable
		attendance  *attendanceTable
		assessment  *assessmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		rows []course.Course // newest first
	}

	certificateTable struct {
		sync.RWMutex
		table map[string]certificate.Certificate // {code: cert}
	}

	attendanceTable struct {
		sync.RWMutex
		students []attendance.Student
		records  []attendance.Record // newest first
	}

	assessmentTable struct {
		sync.RWMutex
		rows    []assessment.Assessment // newest first
		results []assessment.Result
	}
)

// Open returns a DB seeded with the course catalog, the student roster and the sample assessments.
func Open() *DB {
	return &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		course:      &courseTable{rows: course.Fixtures()},
		certificate: &certificateTable{table: make(map[string]certificate.Certificate)},
		attendance:  &attendanceTable{students: attendance.Roster()},
		assessment:  &assessmentTable{rows: assessment.Fixtures()},
	}
}
