package certificate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lumina/core"
	. "github.com/trezcool/lumina/core/certificate"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
	"github.com/trezcool/lumina/storage/database/inmem"
	"github.com/trezcool/lumina/tests"
)

func completed(id, title string, at time.Time) course.Course {
	c := course.Course{
		ID:             id,
		Title:          title,
		InstructorName: "Tutor 1",
		Enrolled:       true,
		Lessons:        []course.Lesson{{ID: "l1", IsCompleted: true}, {ID: "l2", IsCompleted: true}},
	}
	c.Recompute(at)
	return c
}

func TestCode(t *testing.T) {
	at := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

	code := Code("u1", "1", at)
	assert.Len(t, code, 8)
	assert.Equal(t, code, Code("u1", "1", at), "stable across renders")
	assert.Equal(t, code, Code("u1", "1", at.In(time.FixedZone("WAT", 3600))), "timezone independent")
	assert.NotEqual(t, code, Code("u1", "1", at.Add(time.Second)))
	assert.NotEqual(t, code, Code("u2", "1", at))
	assert.NotEqual(t, code, Code("u1", "2", at))
}

func TestNew(t *testing.T) {
	usr := user.User{ID: "u1", Name: "Ada King Lovelace"}
	at := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

	cert, ok := New(usr, completed("1", "Advanced React Architecture", at))
	require.True(t, ok)
	assert.Equal(t, "CERT-1-ADV", cert.ID)
	assert.Equal(t, "AKL", cert.StudentInitials)
	assert.Equal(t, "PASS", cert.Grade)
	assert.Equal(t, "May 4, 2024", cert.IssueDate)
	assert.Equal(t, Code("u1", "1", at), cert.VerificationCode)

	partial := completed("2", "UI/UX Design Systems", at)
	partial.Lessons[1].IsCompleted = false
	partial.Recompute(at)
	_, ok = New(usr, partial)
	assert.False(t, ok)
}

func Test_service_Sync(t *testing.T) {
	ctx := context.Background()
	pub := new(testutil.Publisher)
	svc := NewService(inmemdb.NewCertificateRepository(inmemdb.Open()), pub, testutil.Logger{})

	usr := user.User{ID: "u1", Name: "Ada Lovelace"}
	at := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	react := completed("1", "Advanced React Architecture", at)
	design := completed("2", "UI/UX Design Systems", at)
	design.Lessons[0].IsCompleted = false
	design.Recompute(at)

	certs, err := svc.Sync(ctx, usr, []course.Course{react, design})
	require.NoError(t, err)
	require.Len(t, certs, 1)
	code := certs[0].VerificationCode
	assert.Len(t, pub.Events(core.EventCertificateIssued), 1)

	// re-rendering yields the same code and does not re-issue
	certs, err = svc.Sync(ctx, usr, []course.Course{react, design})
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, code, certs[0].VerificationCode)
	assert.Len(t, pub.Events(core.EventCertificateIssued), 1)

	verified, err := svc.Verify(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "1", verified.CourseID)
	_, err = svc.Verify(ctx, "  "+code+" ")
	assert.NoError(t, err)

	// dropping below 100 revokes the code
	react.Lessons[0].IsCompleted = false
	react.Recompute(at)
	certs, err = svc.Sync(ctx, usr, []course.Course{react, design})
	require.NoError(t, err)
	assert.Empty(t, certs)
	_, err = svc.Verify(ctx, code)
	assert.Equal(t, ErrNotFound, err)

	// completing again issues a new code
	later := at.Add(time.Hour)
	react.Lessons[0].IsCompleted = true
	react.Recompute(later)
	certs, err = svc.Sync(ctx, usr, []course.Course{react, design})
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.NotEqual(t, code, certs[0].VerificationCode)
	assert.Len(t, pub.Events(core.EventCertificateIssued), 2)

	_, err = svc.Verify(ctx, "nope")
	assert.Equal(t, ErrNotFound, err)
}
