// Package session keeps the per-user learning workspace alive between requests.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/quiz"
)

// Workspace is the mutable state of one signed-in user.
type Workspace struct {
	UserID  string
	Courses *course.Shelf
	Quiz    *quiz.Session
}

// QuizHook is called when a user's quiz is submitted, by hand or by its countdown.
type QuizHook func(userID string, res quiz.Result)

type Store struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace

	courses  course.Service
	onSubmit QuizHook
	quizOpts []quiz.Option
}

func NewStore(courses course.Service, onSubmit QuizHook, quizOpts ...quiz.Option) *Store {
	return &Store{
		workspaces: make(map[string]*Workspace),
		courses:    courses,
		onSubmit:   onSubmit,
		quizOpts:   quizOpts,
	}
}

// Open returns the workspace of userID, creating it from the catalog on first access.
func (s *Store) Open(ctx context.Context, userID string) (*Workspace, error) {
	if ws, ok := s.Get(userID); ok {
		return ws, nil
	}

	shelf, err := s.courses.NewShelf(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "creating shelf")
	}
	opts := s.quizOpts
	if s.onSubmit != nil {
		hook := s.onSubmit
		opts = append(append([]quiz.Option(nil), opts...), quiz.OnSubmit(func(res quiz.Result) { hook(userID, res) }))
	}
	ws := &Workspace{UserID: userID, Courses: shelf, Quiz: quiz.NewSession(opts...)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.workspaces[userID]; ok { // lost a race with a concurrent Open
		return existing, nil
	}
	s.workspaces[userID] = ws
	return ws, nil
}

func (s *Store) Get(userID string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[userID]
	return ws, ok
}

// Close tears the workspace of userID down. Its quiz is closed, so a generation still in flight
// can no longer start a countdown.
func (s *Store) Close(userID string) {
	s.mu.Lock()
	ws, ok := s.workspaces[userID]
	delete(s.workspaces, userID)
	s.mu.Unlock()

	if ok {
		ws.Quiz.Close()
	}
}

// CloseAll tears every workspace down.
func (s *Store) CloseAll() {
	s.mu.Lock()
	workspaces := s.workspaces
	s.workspaces = make(map[string]*Workspace)
	s.mu.Unlock()

	for _, ws := range workspaces {
		ws.Quiz.Close()
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}
