package conversation

import (
	"time"

	"onboarding-chat/internal/backend"
)

// Event is anything the machine reacts to: user input, a backend result or a
// failed request.
type Event interface {
	isEvent()
}

type Started struct{}

type OptionsLoaded struct {
	RequestID uint64
	Options   backend.OnboardingOptions
}

type ChipClicked struct {
	Chip Chip
}

type TextSubmitted struct {
	Text string
}

type RecommendationLoaded struct {
	RequestID      uint64
	Recommendation backend.Recommendation
}

type FAQsLoaded struct {
	RequestID uint64
	FAQs      []backend.FAQ
}

type FAQAnswered struct {
	RequestID uint64
	Answer    backend.FAQAnswer
}

type RequestFailed struct {
	RequestID uint64
	Err       error
}

func (Started) isEvent()              {}
func (OptionsLoaded) isEvent()        {}
func (ChipClicked) isEvent()          {}
func (TextSubmitted) isEvent()        {}
func (RecommendationLoaded) isEvent() {}
func (FAQsLoaded) isEvent()           {}
func (FAQAnswered) isEvent()          {}
func (RequestFailed) isEvent()        {}

type RequestKind int

const (
	RequestOptions RequestKind = iota
	RequestRecommendation
	RequestFAQs
	RequestFAQAnswer
)

func (k RequestKind) String() string {
	switch k {
	case RequestOptions:
		return "options"
	case RequestRecommendation:
		return "recommendation"
	case RequestFAQs:
		return "faqs"
	case RequestFAQAnswer:
		return "faq_answer"
	default:
		return "unknown"
	}
}

// Request asks the controller to call the backend, optionally after Delay.
// Only the fields relevant to Kind are set.
type Request struct {
	ID       uint64
	Kind     RequestKind
	Key      AnswerKey
	Answers  backend.Answers
	Question string
	Delay    time.Duration
}

func (r Request) clone() Request {
	r.Answers = cloneAnswers(r.Answers)
	return r
}
