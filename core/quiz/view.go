package quiz

import "github.com/trezcool/lumina/core/ai"

type QuestionView struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// View is a read-only snapshot of a Session. Correct answers and explanations are only
// included once the quiz is submitted.
type View struct {
	State     State          `json:"state"`
	Topic     string         `json:"topic,omitempty"`
	Kind      ai.QuizKind    `json:"type,omitempty"`
	Questions []QuestionView `json:"questions"`
	Answers   map[int]int    `json:"answers"`
	Answered  int            `json:"answered"`
	Progress  int            `json:"progress"`
	TimeLeft  int            `json:"time_left"`
	Result    *Result        `json:"result,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:     s.state,
		Topic:     s.topic,
		Kind:      s.kind,
		Questions: make([]QuestionView, 0, len(s.questions)),
		Answers:   make(map[int]int, len(s.answers)),
		Answered:  len(s.answers),
		TimeLeft:  s.remaining,
	}
	revealed := s.state == StateSubmitted
	for _, q := range s.questions {
		qv := QuestionView{Question: q.Question, Options: append([]string(nil), q.Options...)}
		if revealed {
			correct := q.CorrectAnswer
			qv.CorrectAnswer = &correct
			qv.Explanation = q.Explanation
		}
		v.Questions = append(v.Questions, qv)
	}
	for q, a := range s.answers {
		v.Answers[q] = a
	}
	if n := len(s.questions); n > 0 {
		v.Progress = percentage(len(s.answers), n)
	}
	if s.result != nil {
		res := *s.result
		v.Result = &res
	}
	return v
}
