package course

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/user"
)

type memRepo struct {
	mu      sync.Mutex
	courses []Course
}

func (r *memRepo) CreateCourse(_ context.Context, c Course) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses = append([]Course{c}, r.courses...)
	return c, nil
}

func (r *memRepo) QueryCourses(context.Context) ([]Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Course(nil), r.courses...), nil
}

func setup(t *testing.T) (Service, *Shelf) {
	svc := NewService(&memRepo{courses: Fixtures()})
	shelf, err := svc.NewShelf(context.Background())
	require.NoError(t, err)
	return svc, shelf
}

func TestProgress(t *testing.T) {
	lessons := func(done ...bool) []Lesson {
		ls := make([]Lesson, 0, len(done))
		for _, d := range done {
			ls = append(ls, Lesson{IsCompleted: d})
		}
		return ls
	}
	tests := []struct {
		name    string
		lessons []Lesson
		want    int
	}{
		{name: "no lessons", want: 0},
		{name: "none completed", lessons: lessons(false, false, false), want: 0},
		{name: "1 of 3", lessons: lessons(true, false, false), want: 33},
		{name: "2 of 3", lessons: lessons(true, true, false), want: 67},
		{name: "1 of 2", lessons: lessons(true, false), want: 50},
		{name: "1 of 7", lessons: lessons(true, false, false, false, false, false, false), want: 14},
		{name: "all completed", lessons: lessons(true, true), want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.lessons))
		})
	}
}

func TestFixtures(t *testing.T) {
	courses := Fixtures()
	require.Len(t, courses, 10)
	assert.Equal(t, "Advanced React Architecture", courses[0].Title)
	assert.Len(t, courses[0].Lessons, 7)
	assert.Len(t, courses[1].Lessons, 6)
	for _, c := range courses {
		assert.False(t, c.Enrolled, c.ID)
		assert.Zero(t, c.Progress, c.ID)
	}

	// default lessons are not shared between courses
	courses[2].Lessons[0].IsCompleted = true
	assert.False(t, courses[3].Lessons[0].IsCompleted)
}

func Test_service_Enroll(t *testing.T) {
	svc, shelf := setup(t)
	ctx := context.Background()

	c, err := svc.Enroll(ctx, shelf, "1")
	require.NoError(t, err)
	assert.True(t, c.Enrolled)
	assert.Zero(t, c.Progress)

	// idempotent
	_, err = svc.ToggleLesson(ctx, shelf, "1", "l1")
	require.NoError(t, err)
	c, err = svc.Enroll(ctx, shelf, "1")
	require.NoError(t, err)
	assert.True(t, c.Enrolled)
	assert.Equal(t, 14, c.Progress)

	_, err = svc.Enroll(ctx, shelf, "404")
	assert.True(t, core.IsNotFound(err))
}

func Test_service_ToggleLesson(t *testing.T) {
	svc, shelf := setup(t)
	ctx := context.Background()

	_, err := svc.ToggleLesson(ctx, shelf, "2", "d1")
	assert.Equal(t, ErrNotEnrolled, err)

	_, err = svc.Enroll(ctx, shelf, "2")
	require.NoError(t, err)

	_, err = svc.ToggleLesson(ctx, shelf, "2", "nope")
	assert.Equal(t, ErrLessonNotFound, err)

	completedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return completedAt }
	defer func() { nowFunc = time.Now }()

	var c Course
	for _, id := range []string{"d1", "d2", "d3", "d4", "d5", "d6"} {
		c, err = svc.ToggleLesson(ctx, shelf, "2", id)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, c.Progress)
	assert.True(t, c.CertificateEligible())
	require.NotNil(t, c.CompletedAt)
	assert.Equal(t, completedAt, *c.CompletedAt)

	// toggling back removes eligibility
	c, err = svc.ToggleLesson(ctx, shelf, "2", "d6")
	require.NoError(t, err)
	assert.Equal(t, 83, c.Progress)
	assert.False(t, c.CertificateEligible())
	assert.Nil(t, c.CompletedAt)

	// progress is always derived from lessons
	for _, c := range shelf.Courses() {
		assert.Equal(t, Progress(c.Lessons), c.Progress, c.ID)
	}
}

func Test_service_List(t *testing.T) {
	svc, shelf := setup(t)
	ctx := context.Background()
	_, err := svc.Enroll(ctx, shelf, "3")
	require.NoError(t, err)

	ids := func(courses []Course) []string {
		out := make([]string, 0, len(courses))
		for _, c := range courses {
			out = append(out, c.ID)
		}
		return out
	}
	bPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{name: "all", want: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}},
		{name: "category All", filter: QueryFilter{Category: "All"}, want: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}},
		{name: "category", filter: QueryFilter{Category: "Cloud"}, want: []string{"3", "8"}},
		{name: "search title (case insensitive)", filter: QueryFilter{Search: "DESIGN"}, want: []string{"2"}},
		{name: "search description", filter: QueryFilter{Search: "kubernetes"}, want: []string{"3"}},
		{name: "instructor", filter: QueryFilter{Instructor: "Tutor 7"}, want: []string{"7"}},
		{name: "enrolled", filter: QueryFilter{Enrolled: bPtr(true)}, want: []string{"3"}},
		{name: "no match", filter: QueryFilter{Category: "Design", Search: "cloud"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := svc.List(ctx, shelf, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(courses))
		})
	}
}

func Test_service_Create(t *testing.T) {
	svc, shelf := setup(t)
	ctx := context.Background()
	tutor := user.User{ID: "u-1", Name: "Grace Hopper", Role: user.RoleInstructor}

	nc := NewCourse{Title: "  Compilers ", Description: "From source to machine code."}
	require.NoError(t, nc.Validate())
	assert.Equal(t, DefaultCategory, nc.Category)

	c, err := svc.Create(ctx, nc, tutor)
	require.NoError(t, err)
	assert.Equal(t, "Compilers", c.Title)
	assert.Equal(t, tutor.ID, c.InstructorID)
	assert.Equal(t, tutor.Name, c.InstructorName)
	assert.Len(t, c.Lessons, 2)
	assert.NotEmpty(t, c.Image)

	// existing shelves pick new courses up, first in line
	courses, err := svc.List(ctx, shelf, QueryFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 11)
	assert.Equal(t, c.ID, courses[0].ID)

	invalid := NewCourse{Title: " "}
	assert.Error(t, invalid.Validate())
}
