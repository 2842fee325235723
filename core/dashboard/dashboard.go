// Package dashboard aggregates the headline figures shown on each role's home page.
package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/assessment"
	"github.com/trezcool/lumina/core/attendance"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
)

var nowFunc = time.Now // mockable

type (
	StudentStats struct {
		CoursesEnrolled      int `json:"courses_enrolled"`
		MasteryScore         int `json:"mastery_score"`
		PendingAssessments   int `json:"pending_assessments"`
		AttendancePercentage int `json:"attendance_percentage"`
		CertificatesEarned   int `json:"certificates_earned"`
	}

	InstructorStats struct {
		ActiveCohorts      int `json:"active_cohorts"`
		RosterSize         int `json:"roster_size"`
		AssessmentsCreated int `json:"assessments_created"`
	}

	AdminStats struct {
		UsersByRole       map[string]int `json:"users_by_role"`
		Courses           int            `json:"courses"`
		Assessments       int            `json:"assessments"`
		AttendanceRecords int            `json:"attendance_records"`
	}

	// Stats holds the figures of exactly one role.
	Stats struct {
		Role       string           `json:"role"`
		Student    *StudentStats    `json:"student,omitempty"`
		Instructor *InstructorStats `json:"instructor,omitempty"`
		Admin      *AdminStats      `json:"admin,omitempty"`
	}

	Service interface {
		// Stats computes the figures of usr; shelf holds usr's courses.
		Stats(ctx context.Context, usr user.User, shelf *course.Shelf) (Stats, error)
	}

	service struct {
		users       user.Service
		courses     course.Service
		attendance  attendance.Service
		assessments assessment.Service
	}
)

var _ Service = (*service)(nil)

func NewService(
	users user.Service,
	courses course.Service,
	attendanceSvc attendance.Service,
	assessments assessment.Service,
) Service {
	return &service{
		users:       users,
		courses:     courses,
		attendance:  attendanceSvc,
		assessments: assessments,
	}
}

func (svc *service) Stats(ctx context.Context, usr user.User, shelf *course.Shelf) (Stats, error) {
	stats := Stats{Role: usr.Role}
	var err error
	switch {
	case usr.IsAdmin():
		stats.Admin, err = svc.adminStats(ctx)
	case usr.IsInstructor():
		stats.Instructor, err = svc.instructorStats(ctx)
	default:
		stats.Student, err = svc.studentStats(ctx, usr, shelf)
	}
	return stats, err
}

func (svc *service) studentStats(ctx context.Context, usr user.User, shelf *course.Shelf) (*StudentStats, error) {
	st := new(StudentStats)

	enrolled := shelf.Enrolled()
	st.CoursesEnrolled = len(enrolled)
	enrolledIDs := make(map[string]bool, len(enrolled))
	progress := 0
	for _, c := range enrolled {
		enrolledIDs[c.ID] = true
		progress += c.Progress
		if c.CertificateEligible() {
			st.CertificatesEarned++
		}
	}
	if len(enrolled) > 0 {
		st.MasteryScore = int(math.Round(float64(progress) / float64(len(enrolled))))
	}

	list, err := svc.assessments.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing assessments")
	}
	today := nowFunc()
	for _, a := range list {
		if enrolledIDs[a.CourseID] && a.Pending(today) {
			st.PendingAssessments++
		}
	}

	student, err := svc.attendance.StudentFor(ctx, usr)
	if err != nil {
		return nil, err
	}
	att, err := svc.attendance.Stats(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	st.AttendancePercentage = att.Percentage
	return st, nil
}

func (svc *service) instructorStats(ctx context.Context) (*InstructorStats, error) {
	st := new(InstructorStats)

	records, err := svc.attendance.Records(ctx, attendance.RecordFilter{})
	if err != nil {
		return nil, err
	}
	cohorts := make(map[string]bool)
	for _, r := range records {
		cohorts[r.CourseID] = true
	}
	st.ActiveCohorts = len(cohorts)

	students, err := svc.attendance.Students(ctx)
	if err != nil {
		return nil, err
	}
	st.RosterSize = len(students)

	list, err := svc.assessments.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing assessments")
	}
	st.AssessmentsCreated = len(list)
	return st, nil
}

func (svc *service) adminStats(ctx context.Context) (*AdminStats, error) {
	st := new(AdminStats)
	var err error

	if st.UsersByRole, err = svc.users.CountByRole(ctx); err != nil {
		return nil, errors.Wrap(err, "counting users")
	}
	catalog, err := svc.courses.Catalog(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying catalog")
	}
	st.Courses = len(catalog)

	list, err := svc.assessments.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing assessments")
	}
	st.Assessments = len(list)

	records, err := svc.attendance.Records(ctx, attendance.RecordFilter{})
	if err != nil {
		return nil, err
	}
	st.AttendanceRecords = len(records)
	return st, nil
}
