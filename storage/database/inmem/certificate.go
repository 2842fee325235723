package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/lumina/core/certificate"
)

type certificateRepository struct {
	db *certificateTable
}

var _ certificate.Repository = (*certificateRepository)(nil)

func NewCertificateRepository(db *DB) certificate.Repository {
	return &certificateRepository{db: db.certificate}
}

// SaveCertificate replaces any certificate the student holds for the same course.
func (repo *certificateRepository) SaveCertificate(_ context.Context, cert certificate.Certificate) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.delete(cert.StudentID, cert.CourseID)
	repo.db.table[cert.VerificationCode] = cert
	return nil
}

func (repo *certificateRepository) DeleteCertificate(_ context.Context, studentID, courseID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.delete(studentID, courseID)
	return nil
}

func (repo *certificateRepository) delete(studentID, courseID string) {
	for code, c := range repo.db.table {
		if c.StudentID == studentID && c.CourseID == courseID {
			delete(repo.db.table, code)
		}
	}
}

func (repo *certificateRepository) GetCertificateByCode(_ context.Context, code string) (certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cert, ok := repo.db.table[code]; ok {
		return cert, nil
	}
	return certificate.Certificate{}, certificate.ErrNotFound
}

func (repo *certificateRepository) QueryCertificates(_ context.Context, studentID string) ([]certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	certs := make([]certificate.Certificate, 0)
	for _, c := range repo.db.table {
		if c.StudentID == studentID {
			certs = append(certs, c)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].IssuedAt.Before(certs[j].IssuedAt) })
	return certs, nil
}
