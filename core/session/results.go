package session

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/assessment"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/quiz"
)

const recordTimeout = 5 * time.Second

// RecordResults returns a QuizHook storing each submitted quiz as an assessment result.
// The result belongs to the catalog course titled like the quiz topic, if there is one.
func RecordResults(courses course.Service, results assessment.Service, logger core.Logger) QuizHook {
	return func(userID string, res quiz.Result) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		var courseID string
		catalog, err := courses.Catalog(ctx)
		if err != nil {
			logger.Warn("loading catalog for quiz result", err)
		}
		for _, c := range catalog {
			if strings.EqualFold(c.Title, res.Topic) {
				courseID = c.ID
				break
			}
		}

		if _, err := results.RecordResult(ctx, userID, res.Topic+" Quiz", courseID, res.Score, res.Total); err != nil {
			logger.Error("recording quiz result", errors.Wrap(err, "recording result"), map[string]interface{}{"user_id": userID})
		}
	}
}
