package attendance

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// parseRoster reads `name,email` rows. The first row is a header; blank lines and rows without a
// name are skipped.
func parseRoster(r io.Reader) ([]Student, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	students := make([]Student, 0)
	header := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading roster csv")
		}
		if header {
			header = false
			continue
		}

		var name, email string
		if len(row) > 0 {
			name = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			email = strings.ToLower(strings.TrimSpace(row[1]))
		}
		if name == "" {
			continue
		}
		students = append(students, Student{ID: uuid.NewString(), Name: name, Email: email})
	}
	return students, nil
}
