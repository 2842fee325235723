package certificate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
)

const (
	codeLen      = 8
	gradePass    = "PASS"
	issuedLayout = "January 2, 2006"
)

var salt = []byte("lumina.core.certificate")

type Certificate struct {
	ID               string    `json:"id"`
	CourseID         string    `json:"course_id"`
	CourseTitle      string    `json:"course_title"`
	StudentID        string    `json:"student_id"`
	StudentName      string    `json:"student_name"`
	StudentInitials  string    `json:"student_initials"`
	InstructorName   string    `json:"instructor_name"`
	Grade            string    `json:"grade"`
	IssuedAt         time.Time `json:"issued_at"`
	IssueDate        string    `json:"issue_date"`
	VerificationCode string    `json:"verification_code"`
}

// New builds the certificate of a completed course. ok is false when the course is not eligible.
func New(usr user.User, c course.Course) (cert Certificate, ok bool) {
	if !c.CertificateEligible() || c.CompletedAt == nil {
		return Certificate{}, false
	}
	issuedAt := c.CompletedAt.UTC()
	return Certificate{
		ID:               fmt.Sprintf("CERT-%s-%s", c.ID, titlePrefix(c.Title)),
		CourseID:         c.ID,
		CourseTitle:      c.Title,
		StudentID:        usr.ID,
		StudentName:      usr.Name,
		StudentInitials:  initials(usr.Name),
		InstructorName:   c.InstructorName,
		Grade:            gradePass,
		IssuedAt:         issuedAt,
		IssueDate:        issuedAt.Format(issuedLayout),
		VerificationCode: Code(usr.ID, c.ID, issuedAt),
	}, true
}

// Code derives the verification code of a course completion. The same completion always yields
// the same code; a new completion time yields a new one.
func Code(userID, courseID string, completedAt time.Time) string {
	key := sha256.Sum256(append(salt, core.Conf.SecretKey...))
	h := hmac.New(sha256.New, key[:])
	_, _ = fmt.Fprintf(h, "%s|%s|%s", userID, courseID, completedAt.UTC().Format(time.RFC3339Nano))
	sum := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(h.Sum(nil))
	return sum[:codeLen]
}

func titlePrefix(title string) string {
	r := []rune(strings.ToUpper(title))
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

func initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(string([]rune(part)[0])))
	}
	return b.String()
}
