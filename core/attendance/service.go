package attendance

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
)

var (
	ErrNoRecordsForDate = core.NewNotFoundError("No records found for this date")
	ErrNoAttendanceData = core.NewNotFoundError("No attendance data available")
	ErrEmptyRoster      = core.NewStateError("no students found in the uploaded file")
	ErrUnknownCourse    = errors.New("unknown course")
	ErrInvalidCSV       = errors.New("invalid csv file")
)

const unknownStudent = "Unknown"

type (
	Repository interface {
		QueryStudents(ctx context.Context) ([]Student, error)
		CreateStudents(ctx context.Context, students ...Student) error
		// CreateRecords stores records ahead of existing ones, newest first.
		CreateRecords(ctx context.Context, records ...Record) error
		QueryRecords(ctx context.Context, filter RecordFilter) ([]Record, error)
	}

	// CourseCatalog resolves the courses attendance is taken for.
	CourseCatalog interface {
		Catalog(ctx context.Context) ([]course.Course, error)
	}

	Service interface {
		Students(ctx context.Context) ([]Student, error)
		// ImportRoster appends the students of a `name,email` CSV file to the roster.
		ImportRoster(ctx context.Context, r io.Reader) ([]Student, error)
		Finalize(ctx context.Context, nr NewRegister) ([]Record, error)
		Records(ctx context.Context, filter RecordFilter) ([]Record, error)
		Stats(ctx context.Context, studentID string) (Stats, error)
		// StudentFor returns the roster entry matching usr's e-mail, falling back to usr's ID.
		StudentFor(ctx context.Context, usr user.User) (Student, error)
		ExportDaily(ctx context.Context, w io.Writer, date, courseID string) error
		Export(ctx context.Context, w io.Writer) error
		EmailReport(ctx context.Context, to user.User) error
	}

	service struct {
		repo      Repository
		catalog   CourseCatalog
		mailSvc   core.EmailService
		publisher core.EventPublisher
		logger    core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	catalog CourseCatalog,
	mailSvc core.EmailService,
	publisher core.EventPublisher,
	logger core.Logger,
) Service {
	return &service{
		repo:      repo,
		catalog:   catalog,
		mailSvc:   mailSvc,
		publisher: publisher,
		logger:    logger,
	}
}

func (svc *service) Students(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx)
}

func (svc *service) ImportRoster(ctx context.Context, r io.Reader) ([]Student, error) {
	students, err := parseRoster(r)
	if err != nil {
		return nil, core.NewValidationError(ErrInvalidCSV, core.FieldError{Field: "file", Error: ErrInvalidCSV.Error()})
	}
	if len(students) == 0 {
		return nil, ErrEmptyRoster
	}
	if err := svc.repo.CreateStudents(ctx, students...); err != nil {
		return nil, errors.Wrap(err, "creating students")
	}
	return students, nil
}

func (svc *service) Finalize(ctx context.Context, nr NewRegister) ([]Record, error) {
	if err := nr.Validate(); err != nil {
		return nil, err
	}
	titles, err := svc.courseTitles(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := titles[nr.CourseID]; !ok {
		return nil, core.NewValidationError(ErrUnknownCourse, core.FieldError{Field: "course_id", Error: ErrUnknownCourse.Error()})
	}

	students, err := svc.repo.QueryStudents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.ID] = s.Name
	}

	records := make([]Record, 0, len(students))
	for _, s := range students {
		status, ok := nr.Statuses[s.ID]
		if !ok {
			status = StatusPresent
		}
		records = append(records, Record{
			ID:          uuid.NewString(),
			StudentID:   s.ID,
			StudentName: s.Name,
			CourseID:    nr.CourseID,
			Date:        nr.Date,
			Status:      status,
		})
	}
	// marks for students no longer on the roster are kept, in ID order
	orphans := make([]string, 0)
	for id := range nr.Statuses {
		if _, ok := names[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		records = append(records, Record{
			ID:          uuid.NewString(),
			StudentID:   id,
			StudentName: unknownStudent,
			CourseID:    nr.CourseID,
			Date:        nr.Date,
			Status:      nr.Statuses[id],
		})
	}

	if err := svc.repo.CreateRecords(ctx, records...); err != nil {
		return nil, errors.Wrap(err, "creating records")
	}

	evt := Finalized{CourseID: nr.CourseID, Date: nr.Date, Stats: ComputeStats(records)}
	if err := svc.publisher.Publish(ctx, core.EventAttendanceFinalized, evt); err != nil {
		svc.logger.Error("publishing attendance.finalized", errors.Wrap(err, "publishing event"))
	}
	return records, nil
}

func (svc *service) Records(ctx context.Context, filter RecordFilter) ([]Record, error) {
	filter.Clean()
	return svc.repo.QueryRecords(ctx, filter)
}

func (svc *service) Stats(ctx context.Context, studentID string) (Stats, error) {
	records, err := svc.repo.QueryRecords(ctx, RecordFilter{StudentID: studentID})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying records")
	}
	return ComputeStats(records), nil
}

func (svc *service) StudentFor(ctx context.Context, usr user.User) (Student, error) {
	students, err := svc.repo.QueryStudents(ctx)
	if err != nil {
		return Student{}, errors.Wrap(err, "querying students")
	}
	for _, s := range students {
		if s.ID == usr.ID || (s.Email != "" && strings.EqualFold(s.Email, usr.Email)) {
			return s, nil
		}
	}
	return Student{ID: usr.ID, Name: usr.Name, Email: usr.Email}, nil
}

func (svc *service) ExportDaily(ctx context.Context, w io.Writer, date, courseID string) error {
	records, err := svc.Records(ctx, RecordFilter{Date: date, CourseID: courseID})
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if len(records) == 0 {
		return ErrNoRecordsForDate
	}
	titles, err := svc.courseTitles(ctx)
	if err != nil {
		return err
	}
	return writeWorkbook(w, []sheet{{name: dailySheet, records: records}}, titles)
}

func (svc *service) Export(ctx context.Context, w io.Writer) error {
	_, err := svc.export(ctx, w)
	return err
}

func (svc *service) export(ctx context.Context, w io.Writer) ([]sheet, error) {
	records, err := svc.repo.QueryRecords(ctx, RecordFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	if len(records) == 0 {
		return nil, ErrNoAttendanceData
	}
	titles, err := svc.courseTitles(ctx)
	if err != nil {
		return nil, err
	}
	sheets := splitByDate(records)
	return sheets, writeWorkbook(w, sheets, titles)
}

type reportData struct {
	Name    string
	Records int
	Days    int
}

func (svc *service) EmailReport(ctx context.Context, to user.User) error {
	var buf bytes.Buffer
	sheets, err := svc.export(ctx, &buf)
	if err != nil {
		return err
	}
	data := reportData{Name: to.Name, Days: len(sheets)}
	for _, sh := range sheets {
		data.Records += len(sh.records)
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: to.Name, Address: to.Email}},
		Subject:      "Complete Attendance Report",
		TemplateName: "attendance_report",
		TemplateData: data,
	}
	if err := msg.Attach(&buf, ReportFilename, XLSXMimeType); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

func (svc *service) courseTitles(ctx context.Context) (map[string]string, error) {
	courses, err := svc.catalog.Catalog(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying catalog")
	}
	titles := make(map[string]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}
	return titles, nil
}
