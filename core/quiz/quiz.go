// Package quiz drives a timed practice quiz through its states:
// SELECTING -> LOADING -> ACTIVE -> SUBMITTED.
package quiz

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lumina/core"
	"github.com/trezcool/lumina/core/ai"
)

type State string

const (
	StateSelecting State = "SELECTING"
	StateLoading   State = "LOADING"
	StateActive    State = "ACTIVE"
	StateSubmitted State = "SUBMITTED"
)

const (
	OutcomeTimeUp  = "Time Up!"
	OutcomeMastery = "Mastery Unlocked!"
	OutcomeGreat   = "Great Performance!"
	OutcomeLearn   = "Keep Learning!"
)

var (
	ErrTopicRequired = errors.New("please enter or select a topic first")

	ErrBusy          = core.NewStateError("a quiz is already being generated")
	ErrNotLoading    = core.NewStateError("no quiz is being generated")
	ErrNotActive     = core.NewStateError("no quiz in progress")
	ErrIncomplete    = core.NewStateError("answer every question before submitting")
	ErrInvalidAnswer = core.NewStateError("no such question or option")
	ErrClosed        = core.NewStateError("the quiz session has ended")
)

type Result struct {
	Topic      string      `json:"topic"`
	Kind       ai.QuizKind `json:"type"`
	Score      int         `json:"score"`
	Total      int         `json:"total"`
	Percentage int         `json:"percentage"`
	Outcome    string      `json:"outcome"`
	Expired    bool        `json:"expired"`
}

// Score counts exact matches; there is no partial credit.
func Score(questions []ai.Question, answers map[int]int) int {
	score := 0
	for i, q := range questions {
		if a, ok := answers[i]; ok && a == q.CorrectAnswer {
			score++
		}
	}
	return score
}

func Outcome(score, total int, expired bool) string {
	switch {
	case expired && score < total:
		return OutcomeTimeUp
	case score == total:
		return OutcomeMastery
	case float64(score) >= 0.7*float64(total):
		return OutcomeGreat
	default:
		return OutcomeLearn
	}
}

func percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Attempt identifies one Begin call; Load and Fail only act on the attempt still in progress.
type Attempt uint64

type Option func(*Session)

// WithTick sets the countdown resolution; one tick removes one second.
func WithTick(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithSecondsPerQuestion sets the time budget per question.
func WithSecondsPerQuestion(n int) Option {
	return func(s *Session) { s.perQuestion = n }
}

// OnSubmit registers fn to run once per submitted quiz, outside of the session lock.
func OnSubmit(fn func(Result)) Option {
	return func(s *Session) { s.onSubmit = fn }
}

// Session is a single user's quiz; safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	state       State
	topic       string
	kind        ai.QuizKind
	questions   []ai.Question
	answers     map[int]int
	remaining   int
	result      *Result
	timer       *countdown
	interval    time.Duration
	perQuestion int
	onSubmit    func(Result)
	attempt     Attempt
	closed      bool
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		state:       StateSelecting,
		answers:     make(map[int]int),
		interval:    time.Second,
		perQuestion: core.Conf.QuizSecondsPerQuestion,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.perQuestion <= 0 {
		s.perQuestion = 60
	}
	return s
}

// Begin discards any previous quiz and waits for questions on topic. The returned Attempt must be
// handed to Load or Fail once generation is over.
func (s *Session) Begin(topic string, kind ai.QuizKind) (Attempt, error) {
	topic = core.CleanString(topic)
	if topic == "" {
		return 0, core.NewValidationError(ErrTopicRequired, core.FieldError{Field: "topic", Error: ErrTopicRequired.Error()})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	if s.state == StateLoading {
		s.mu.Unlock()
		return 0, ErrBusy
	}
	timer := s.reset(StateLoading)
	s.topic, s.kind = topic, kind
	attempt := s.attempt
	s.mu.Unlock()

	timer.halt()
	return attempt, nil
}

// Load activates the quiz of attempt and starts its countdown. An empty question list returns to
// SELECTING. Questions of an attempt that was reset, replaced or closed meanwhile are dropped with
// ErrNotLoading.
func (s *Session) Load(attempt Attempt, questions []ai.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLoading || s.attempt != attempt {
		return ErrNotLoading
	}
	if len(questions) == 0 {
		s.state = StateSelecting
		return nil
	}

	s.questions = questions
	s.state = StateActive
	s.remaining = s.perQuestion * len(questions)
	s.timer = startCountdown(s.interval, func() bool { return s.countDown(false) })
	return nil
}

// Fail abandons the generation of attempt and returns to SELECTING.
func (s *Session) Fail(attempt Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading && s.attempt == attempt {
		s.state = StateSelecting
	}
}

func (s *Session) Answer(question, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotActive
	}
	if question < 0 || question >= len(s.questions) || option < 0 || option >= len(s.questions[question].Options) {
		return ErrInvalidAnswer
	}
	s.answers[question] = option
	return nil
}

func (s *Session) Submit() (Result, error) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return Result{}, ErrNotActive
	}
	if len(s.answers) < len(s.questions) {
		s.mu.Unlock()
		return Result{}, ErrIncomplete
	}
	res := s.submit(false)
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	timer.halt()
	s.notify(res)
	return res, nil
}

// Tick removes one second from the countdown. Reaching zero submits the quiz whatever its
// completeness. It reports whether the countdown is over.
func (s *Session) Tick() bool {
	return s.countDown(true)
}

// countDown runs a tick; the countdown goroutine passes halt=false as it exits by itself.
func (s *Session) countDown(halt bool) bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return true
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}
	res := s.submit(true)
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	if halt {
		timer.halt()
	}
	s.notify(res)
	return true
}

// Close stops the countdown and ends the session for good: the quiz in flight is discarded and
// later calls to Begin fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	timer := s.reset(StateSelecting)
	s.closed = true
	s.mu.Unlock()
	timer.halt()
}

// Reset stops the countdown and goes back to SELECTING.
func (s *Session) Reset() {
	s.mu.Lock()
	timer := s.reset(StateSelecting)
	s.mu.Unlock()
	timer.halt()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// reset must be called with s.mu held; the returned countdown must be halted after unlocking.
// Any attempt in flight is invalidated.
func (s *Session) reset(state State) *countdown {
	timer := s.timer
	s.timer = nil
	s.attempt++
	s.state = state
	s.topic, s.kind = "", ""
	s.questions = nil
	s.answers = make(map[int]int)
	s.remaining = 0
	s.result = nil
	return timer
}

// submit must be called with s.mu held.
func (s *Session) submit(expired bool) Result {
	score := Score(s.questions, s.answers)
	total := len(s.questions)
	res := Result{
		Topic:      s.topic,
		Kind:       s.kind,
		Score:      score,
		Total:      total,
		Percentage: percentage(score, total),
		Outcome:    Outcome(score, total, expired),
		Expired:    expired,
	}
	s.state = StateSubmitted
	s.result = &res
	return res
}

func (s *Session) notify(res Result) {
	if s.onSubmit != nil {
		s.onSubmit(res)
	}
}

type countdown struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func startCountdown(interval time.Duration, tick func() bool) *countdown {
	c := &countdown{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if tick() {
					return
				}
			}
		}
	}()
	return c
}

// halt stops the countdown goroutine and waits for it to exit. Safe on nil and when called twice.
func (c *countdown) halt() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
	<-c.done
}
