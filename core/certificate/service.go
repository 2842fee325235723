package certificate

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/user"
)

var ErrNotFound = core.NewNotFoundError("certificate not found")

type (
	// Repository is the registry of issued verification codes.
	Repository interface {
		SaveCertificate(ctx context.Context, cert Certificate) error
		DeleteCertificate(ctx context.Context, studentID, courseID string) error
		GetCertificateByCode(ctx context.Context, code string) (Certificate, error)
		QueryCertificates(ctx context.Context, studentID string) ([]Certificate, error)
	}

	Service interface {
		// Sync renders the certificates of usr from their courses and updates the registry:
		// new completions are issued, courses that dropped below 100 are revoked.
		Sync(ctx context.Context, usr user.User, courses []course.Course) ([]Certificate, error)
		Verify(ctx context.Context, code string) (Certificate, error)
	}

	service struct {
		repo      Repository
		publisher core.EventPublisher
		logger    core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, publisher core.EventPublisher, logger core.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (svc *service) Sync(ctx context.Context, usr user.User, courses []course.Course) ([]Certificate, error) {
	issued, err := svc.repo.QueryCertificates(ctx, usr.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying certificates")
	}
	known := make(map[string]string, len(issued)) // {courseID: code}
	for _, cert := range issued {
		known[cert.CourseID] = cert.VerificationCode
	}

	certs := make([]Certificate, 0)
	for _, c := range courses {
		cert, ok := New(usr, c)
		if !ok {
			continue
		}
		certs = append(certs, cert)

		code, exists := known[c.ID]
		delete(known, c.ID)
		if exists && code == cert.VerificationCode {
			continue
		}
		if err := svc.repo.SaveCertificate(ctx, cert); err != nil {
			return nil, errors.Wrap(err, "saving certificate")
		}
		svc.publishIssued(ctx, usr, cert)
	}

	// whatever is left is no longer earned
	for courseID := range known {
		if err := svc.repo.DeleteCertificate(ctx, usr.ID, courseID); err != nil {
			return nil, errors.Wrap(err, "revoking certificate")
		}
	}
	return certs, nil
}

func (svc *service) publishIssued(ctx context.Context, usr user.User, cert Certificate) {
	if err := svc.publisher.Publish(ctx, core.EventCertificateIssued, cert); err != nil {
		svc.logger.Error("publishing certificate.issued", errors.Wrap(err, "publishing event"), usr)
	}
}

func (svc *service) Verify(ctx context.Context, code string) (Certificate, error) {
	code = strings.ToUpper(core.CleanString(code))
	if len(code) != codeLen {
		return Certificate{}, ErrNotFound
	}
	return svc.repo.GetCertificateByCode(ctx, code)
}
