package course

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/user"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound       = core.NewNotFoundError("course not found")
	ErrLessonNotFound = core.NewNotFoundError("lesson not found")
	ErrNotEnrolled    = core.NewStateError("enroll in this course to track its lessons")
)

type (
	// Repository stores the catalog shared by every user.
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// QueryCourses returns the catalog, most recently published first.
		QueryCourses(ctx context.Context) ([]Course, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse, author user.User) (Course, error)
		Catalog(ctx context.Context) ([]Course, error)
		NewShelf(ctx context.Context) (*Shelf, error)
		List(ctx context.Context, shelf *Shelf, filter QueryFilter) ([]Course, error)
		Get(ctx context.Context, shelf *Shelf, id string) (Course, error)
		Enroll(ctx context.Context, shelf *Shelf, id string) (Course, error)
		ToggleLesson(ctx context.Context, shelf *Shelf, courseID, lessonID string) (Course, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse, author user.User) (Course, error) {
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}
	c := Course{
		ID:             uuid.NewString(),
		Title:          nc.Title,
		Description:    nc.Description,
		InstructorID:   author.ID,
		InstructorName: nc.InstructorName,
		Category:       nc.Category,
		Image:          nc.Image,
	}
	if c.InstructorName == "" {
		c.InstructorName = author.Name
	}
	if c.Image == "" {
		c.Image = fmt.Sprintf("https://picsum.photos/seed/%s/400/250", c.ID)
	}
	if len(nc.Lessons) == 0 {
		c.Lessons = starterLessons()
	} else {
		c.Lessons = make([]Lesson, 0, len(nc.Lessons))
		for i, l := range nc.Lessons {
			c.Lessons = append(c.Lessons, Lesson{ID: fmt.Sprintf("l%d", i+1), Title: l.Title, Duration: l.Duration})
		}
	}
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *service) Catalog(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *service) NewShelf(ctx context.Context) (*Shelf, error) {
	shelf := new(Shelf)
	if err := svc.sync(ctx, shelf); err != nil {
		return nil, err
	}
	return shelf, nil
}

// sync must be called with shelf.mu held (or before the shelf is shared).
func (svc *service) sync(ctx context.Context, shelf *Shelf) error {
	catalog, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return errors.Wrap(err, "querying catalog")
	}
	shelf.sync(catalog)
	return nil
}

func (svc *service) List(ctx context.Context, shelf *Shelf, filter QueryFilter) ([]Course, error) {
	shelf.mu.Lock()
	defer shelf.mu.Unlock()

	if err := svc.sync(ctx, shelf); err != nil {
		return nil, err
	}
	filter.Clean()
	courses := make([]Course, 0, len(shelf.courses))
	for _, c := range shelf.courses {
		if filter.match(c) {
			courses = append(courses, c.clone())
		}
	}
	return courses, nil
}

func (svc *service) Get(ctx context.Context, shelf *Shelf, id string) (Course, error) {
	shelf.mu.Lock()
	defer shelf.mu.Unlock()

	if err := svc.sync(ctx, shelf); err != nil {
		return Course{}, err
	}
	c, err := shelf.find(id)
	if err != nil {
		return Course{}, err
	}
	return c.clone(), nil
}

// Enroll marks the course as enrolled; enrolling twice is a no-op and there is no way back.
func (svc *service) Enroll(ctx context.Context, shelf *Shelf, id string) (Course, error) {
	shelf.mu.Lock()
	defer shelf.mu.Unlock()

	if err := svc.sync(ctx, shelf); err != nil {
		return Course{}, err
	}
	c, err := shelf.find(id)
	if err != nil {
		return Course{}, err
	}
	if !c.Enrolled {
		c.Enrolled = true
		c.Progress = 0
	}
	return c.clone(), nil
}

// ToggleLesson flips a lesson's completion and recomputes the course progress.
func (svc *service) ToggleLesson(ctx context.Context, shelf *Shelf, courseID, lessonID string) (Course, error) {
	shelf.mu.Lock()
	defer shelf.mu.Unlock()

	if err := svc.sync(ctx, shelf); err != nil {
		return Course{}, err
	}
	c, err := shelf.find(courseID)
	if err != nil {
		return Course{}, err
	}
	if !c.Enrolled {
		return Course{}, ErrNotEnrolled
	}
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			c.Lessons[i].IsCompleted = !c.Lessons[i].IsCompleted
			c.Recompute(nowFunc())
			return c.clone(), nil
		}
	}
	return Course{}, ErrLessonNotFound
}

// Shelf is one user's view of the catalog: enrollment and lesson progress.
type Shelf struct {
	mu      sync.Mutex
	courses []Course
}

// Courses returns a snapshot of the shelf.
func (s *Shelf) Courses() []Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses := make([]Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c.clone())
	}
	return courses
}

// Enrolled returns a snapshot of the enrolled courses.
func (s *Shelf) Enrolled() []Course {
	var enrolled []Course
	for _, c := range s.Courses() {
		if c.Enrolled {
			enrolled = append(enrolled, c)
		}
	}
	return enrolled
}

// sync lays the shelf out in catalog order, keeping the user's state for known courses.
func (s *Shelf) sync(catalog []Course) {
	idx := make(map[string]int, len(s.courses))
	for i, c := range s.courses {
		idx[c.ID] = i
	}
	synced := make([]Course, 0, len(catalog))
	for _, c := range catalog {
		if i, ok := idx[c.ID]; ok {
			synced = append(synced, s.courses[i])
		} else {
			synced = append(synced, c.clone())
		}
	}
	s.courses = synced
}

func (s *Shelf) find(id string) (*Course, error) {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return &s.courses[i], nil
		}
	}
	return nil, ErrNotFound
}
