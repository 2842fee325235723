package course

func defaultLessons() []Lesson {
	return []Lesson{
		{ID: "l1", Title: "Absolute Basics & Terminology", Duration: "30m"},
		{ID: "l2", Title: "Historical Context & Fundamentals", Duration: "45m"},
		{ID: "l3", Title: "Core Mechanics Deep Dive", Duration: "1h 15m"},
		{ID: "l4", Title: "Intermediate Application & Tools", Duration: "1h 45m"},
		{ID: "l5", Title: "Advanced Optimization Techniques", Duration: "2h 10m"},
		{ID: "l6", Title: "Industry Best Practices", Duration: "1h 30m"},
		{ID: "l7", Title: "Real-world Capstone Project", Duration: "4h 00m"},
	}
}

// starterLessons are given to staff-created courses published without a syllabus.
func starterLessons() []Lesson {
	return []Lesson{
		{ID: "l1", Title: "Introduction", Duration: "10m"},
		{ID: "l2", Title: "Deep Dive", Duration: "30m"},
	}
}

// Fixtures returns the seeded course catalog.
func Fixtures() []Course {
	return []Course{
		{
			ID:             "1",
			Title:          "Advanced React Architecture",
			Description:    "Master the patterns used in enterprise-scale React apps including Compound Components and Render Props.",
			InstructorID:   "i1",
			InstructorName: "Tutor 1",
			Category:       "Engineering",
			Image:          "https://picsum.photos/seed/react/400/250",
			Lessons: []Lesson{
				{ID: "l1", Title: "React Fundamentals Refresher", Duration: "45m"},
				{ID: "l2", Title: "Component Lifecycle & Essential Hooks", Duration: "30m"},
				{ID: "l3", Title: "Advanced State Management", Duration: "55m"},
				{ID: "l4", Title: "Compound Component Pattern", Duration: "1h 15m"},
				{ID: "l5", Title: "Render Props & HOCs", Duration: "1h"},
				{ID: "l6", Title: "Server Components Mastery", Duration: "2h"},
				{ID: "l7", Title: "Performance Profiling & Optimization", Duration: "1h 30m"},
			},
		},
		{
			ID:             "2",
			Title:          "UI/UX Design Systems",
			Description:    "Building scalable design tokens and accessible components for modern web platforms.",
			InstructorID:   "i2",
			InstructorName: "Tutor 2",
			Category:       "Design",
			Image:          "https://picsum.photos/seed/design/400/250",
			Lessons: []Lesson{
				{ID: "d1", Title: "Intro to Design Thinking", Duration: "40m"},
				{ID: "d2", Title: "Color Theory & Accessibility Fundamentals", Duration: "50m"},
				{ID: "d3", Title: "Typography Systems from Scratch", Duration: "1h"},
				{ID: "d4", Title: "Grid Systems & Layout Logic", Duration: "45m"},
				{ID: "d5", Title: "Atomic Design Principles", Duration: "1h 15m"},
				{ID: "d6", Title: "Documentation with Storybook", Duration: "2h"},
			},
		},
		{
			ID:             "3",
			Title:          "Cloud Native Development",
			Description:    "Kubernetes, Docker, and AWS fundamentals for the modern infrastructure engineer.",
			InstructorID:   "i3",
			InstructorName: "Tutor 3",
			Category:       "Cloud",
			Image:          "https://picsum.photos/seed/cloud/400/250",
			Lessons:        defaultLessons(),
		},
		{
			ID:             "4",
			Title:          "Machine Learning Essentials",
			Description:    "A mathematical introduction to supervised and unsupervised learning algorithms.",
			InstructorID:   "i4",
			InstructorName: "Tutor 4",
			Category:       "AI",
			Image:          "https://picsum.photos/seed/ml/400/250",
			Lessons:        defaultLessons(),
		},
		{
			ID:             "5",
			Title:          "Product Management 101",
			Description:    "From ideation to launch: how to manage a modern software product lifecycle.",
			InstructorID:   "i5",
			InstructorName: "Tutor 5",
			Category:       "Business",
			Image:          "https://picsum.photos/seed/business/400/250",
			Lessons:        defaultLessons(),
		},
		{
			ID:             "6",
			Title:          "Digital Illustration Mastery",
			Description:    "Learn professional techniques for digital art using industry standard tools.",
			InstructorID:   "i6",
			InstructorName: "Tutor 6",
			Category:       "Design",
			Image:          "https://picsum.photos/seed/art/400/250",
			Lessons:        defaultLessons(),
		},
		{
			ID:             "7",
			Title:          "Cybersecurity Fundamentals",
			Description:    "Protecting digital assets through network security and ethical hacking basics.",
			InstructorID:   "i7",
			InstructorName: "Tutor 7",
			Category:       "Security",
			Image:          "https://picsum.photos/seed/sec/400/250",
			Lessons:        defaultLessons(),
		},
		{
			ID:             "8",
			Title:          "DevOps CI/CD Pipelines",
			Description:    "Automating the software delivery process with GitHub Actions and Jenkins.",
			InstructorID:   "i8",
			InstructorName: "Tutor 8",
			Category:       "Cloud",
			Image:          "https://picsum.photos/seed/devops/400/250",
			Lessons:        defaultLessons(),
		},
		{
			ID:             "9",
			Title:          "Digital Marketing Strategy",
			Description:    "Growth hacking and performance marketing for digital-first companies.",
			InstructorID:   "i9",
			InstructorName: "Tutor 9",
			Category:       "Business",
			Image:          "https://picsum.photos/seed/marketing/400/250",
			Lessons:        defaultLessons(),
		},
		{
			ID:             "10",
			Title:          "Blockchain Architecture",
			Description:    "Deep dive into decentralized consensus mechanisms and smart contract logic.",
			InstructorID:   "i10",
			InstructorName: "Tutor 10",
			Category:       "Engineering",
			Image:          "https://picsum.photos/seed/blockchain/400/250",
			Lessons:        defaultLessons(),
		},
	}
}
