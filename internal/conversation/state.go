// internal/conversation/state.go
package conversation

import (
	"slices"

	"onboarding-chat/internal/backend"
)

// Stage is the current step of the onboarding script.
type Stage int

const (
	StageWelcome Stage = iota
	StageBusinessType
	StageBusinessSize
	StageGoals
	StageRecommendation
	StageFAQ
)

func (s Stage) String() string {
	switch s {
	case StageWelcome:
		return "welcome"
	case StageBusinessType:
		return "business_type"
	case StageBusinessSize:
		return "business_size"
	case StageGoals:
		return "goals"
	case StageRecommendation:
		return "recommendation"
	case StageFAQ:
		return "faq"
	default:
		return "unknown"
	}
}

// AnswerKey names the slot an answer is stored under. The values match the
// JSON keys of the recommendation request.
type AnswerKey string

const (
	KeyBusinessType AnswerKey = "business_type"
	KeyBusinessSize AnswerKey = "business_size"
	KeyGoals        AnswerKey = "goals"
)

// State is one conversation. The machine never mutates a State it was
// given; it returns a new one.
type State struct {
	Stage   Stage
	Answers backend.Answers

	// Asking is the question whose option chips are on screen, empty when
	// none is. Offered holds their labels.
	Asking  AnswerKey
	Offered []string
	// Pending is the one request whose result will be applied.
	Pending *Request
	// Retry is the last failed request, re-issued by the Retry chip.
	Retry  *Request
	Typing bool

	started bool
	nextID  uint64
}

func NewState() State {
	return State{Stage: StageWelcome}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s State) Clone() State {
	out := s
	out.Answers = cloneAnswers(s.Answers)
	out.Offered = slices.Clone(s.Offered)
	if s.Pending != nil {
		p := s.Pending.clone()
		out.Pending = &p
	}
	if s.Retry != nil {
		r := s.Retry.clone()
		out.Retry = &r
	}
	return out
}

// HasGoal reports whether g is already in the goals set.
func (s State) HasGoal(g string) bool {
	return slices.Contains(s.Answers.Goals, g)
}

func (s State) offers(label string) bool {
	return slices.Contains(s.Offered, label)
}

func (s *State) closeQuestion() {
	s.Asking = ""
	s.Offered = nil
}

func (s State) awaiting(id uint64, kind RequestKind) bool {
	return s.Pending != nil && s.Pending.ID == id && s.Pending.Kind == kind
}

func cloneAnswers(a backend.Answers) backend.Answers {
	a.Goals = slices.Clone(a.Goals)
	return a
}
