package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/trezcool/lumina/core/ai"
	"github.com/trezcool/lumina/core/course"
	"github.com/trezcool/lumina/core/quiz"
	. "github.com/trezcool/lumina/core/session"
	"github.com/trezcool/lumina/storage/database/inmem"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStore(hook QuizHook, opts ...quiz.Option) *Store {
	return NewStore(course.NewService(inmemdb.NewCourseRepository(inmemdb.Open())), hook, opts...)
}

func TestStore_Open(t *testing.T) {
	ctx := context.Background()
	store := newStore(nil)

	ws, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", ws.UserID)
	assert.Len(t, ws.Courses.Courses(), 10)
	assert.Equal(t, quiz.StateSelecting, ws.Quiz.State())

	again, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, ws, again)

	other, err := store.Open(ctx, "u2")
	require.NoError(t, err)
	assert.NotSame(t, ws.Courses, other.Courses, "workspaces are isolated")
	assert.Equal(t, 2, store.Len())
}

func TestStore_Open_concurrent(t *testing.T) {
	ctx := context.Background()
	store := newStore(nil)

	var wg sync.WaitGroup
	got := make([]*Workspace, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws, err := store.Open(ctx, "u1")
			assert.NoError(t, err)
			got[i] = ws
		}(i)
	}
	wg.Wait()
	for _, ws := range got {
		assert.Same(t, got[0], ws)
	}
}

func TestStore_Close(t *testing.T) {
	ctx := context.Background()
	store := newStore(nil, quiz.WithTick(time.Millisecond))

	ws, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	attempt, err := ws.Quiz.Begin("Go", ai.QuizMCQ)
	require.NoError(t, err)
	require.NoError(t, ws.Quiz.Load(attempt, []ai.Question{{Question: "q", Options: []string{"a", "b", "c", "d"}}}))

	store.Close("u1")
	_, ok := store.Get("u1")
	assert.False(t, ok)
	store.Close("u1") // no-op

	// goleak in TestMain verifies the countdown goroutine is gone
}

func TestStore_Close_whileGenerating(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	var submitted []string
	store := newStore(func(userID string, _ quiz.Result) {
		mu.Lock()
		defer mu.Unlock()
		submitted = append(submitted, userID)
	}, quiz.WithTick(time.Millisecond), quiz.WithSecondsPerQuestion(1))

	ws, err := store.Open(ctx, "u1")
	require.NoError(t, err)
	attempt, err := ws.Quiz.Begin("Go", ai.QuizMCQ)
	require.NoError(t, err)

	store.Close("u1")
	err = ws.Quiz.Load(attempt, []ai.Question{{Question: "q", Options: []string{"a", "b", "c", "d"}}})
	assert.Equal(t, quiz.ErrNotLoading, err)
	assert.Equal(t, quiz.StateSelecting, ws.Quiz.State())

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Empty(t, submitted, "no result is recorded after sign-out")
	mu.Unlock()
}

func TestStore_quizHook(t *testing.T) {
	ctx := context.Background()
	type submission struct {
		userID string
		res    quiz.Result
	}
	got := make(chan submission, 1)
	store := newStore(func(userID string, res quiz.Result) { got <- submission{userID, res} }, quiz.WithTick(time.Hour))
	defer store.CloseAll()

	ws, err := store.Open(ctx, "u7")
	require.NoError(t, err)
	attempt, err := ws.Quiz.Begin("Go", ai.QuizMCQ)
	require.NoError(t, err)
	require.NoError(t, ws.Quiz.Load(attempt, []ai.Question{{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2}}))
	require.NoError(t, ws.Quiz.Answer(0, 2))
	_, err = ws.Quiz.Submit()
	require.NoError(t, err)

	s := <-got
	assert.Equal(t, "u7", s.userID)
	assert.Equal(t, 1, s.res.Score)
	assert.Equal(t, quiz.OutcomeMastery, s.res.Outcome)
}
