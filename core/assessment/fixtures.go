package assessment

import "time"

// Fixtures returns the seeded assessments, newest first.
func Fixtures() []Assessment {
	return []Assessment{
		{
			ID:         "a2",
			CourseID:   "2",
			Title:      "Design System Documentation",
			Type:       TypeProject,
			DueDate:    "2023-11-25",
			TotalMarks: 100,
			CreatedAt:  time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:         "a1",
			CourseID:   "1",
			Title:      "Midterm Architecture Quiz",
			Type:       TypeMCQ,
			DueDate:    "2023-11-20",
			TotalMarks: 50,
			CreatedAt:  time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}
