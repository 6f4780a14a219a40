// internal/conversation/machine.go
package conversation

import (
	"math/rand/v2"
	"strings"
	"time"

	"onboarding-chat/internal/backend"
	apperrors "onboarding-chat/internal/common/errors"
)

const (
	DefaultWelcomeDelay    = 1500 * time.Millisecond
	DefaultStepDelay       = 800 * time.Millisecond
	DefaultSuggestionCount = 3
)

// Options configures pacing, copy and randomness of a conversation.
type Options struct {
	WelcomeDelay    time.Duration
	StepDelay       time.Duration
	SuggestionCount int
	Script          Script
	// Seed drives FAQ sampling. Zero picks a random seed.
	Seed uint64
}

func DefaultOptions() Options {
	return Options{
		WelcomeDelay:    DefaultWelcomeDelay,
		StepDelay:       DefaultStepDelay,
		SuggestionCount: DefaultSuggestionCount,
		Script:          DefaultScript(),
	}
}

// Outcome is the result of one transition.
type Outcome struct {
	State    State
	Commands []Command
	Requests []Request
	// Stale is set when the event was a result nobody is waiting for.
	Stale bool
}

func (o *Outcome) emit(cmds ...Command) {
	o.Commands = append(o.Commands, cmds...)
}

func (o *Outcome) say(sender Sender, text string) {
	o.emit(AppendMessage{Sender: sender, Text: text})
}

// Machine holds the conversation rules. It keeps no conversation state of
// its own apart from the sampling RNG, so one Machine serves one controller.
type Machine struct {
	opts Options
	rng  *rand.Rand
}

func NewMachine(opts Options) *Machine {
	if opts.SuggestionCount <= 0 {
		opts.SuggestionCount = DefaultSuggestionCount
	}
	if opts.Script == (Script{}) {
		opts.Script = DefaultScript()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Machine{
		opts: opts,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Transition applies ev to s. The input state is left untouched.
func (m *Machine) Transition(s State, ev Event) Outcome {
	out := Outcome{State: s.Clone()}
	st := &out.State

	switch e := ev.(type) {
	case Started:
		m.start(st, &out)
	case OptionsLoaded:
		if !st.awaiting(e.RequestID, RequestOptions) {
			out.Stale = true
			break
		}
		m.showOptions(st, &out, e.Options)
	case ChipClicked:
		m.click(st, &out, e.Chip)
	case TextSubmitted:
		m.submit(st, &out, e.Text)
	case RecommendationLoaded:
		if !st.awaiting(e.RequestID, RequestRecommendation) {
			out.Stale = true
			break
		}
		m.recommend(st, &out, e.Recommendation)
	case FAQsLoaded:
		if !st.awaiting(e.RequestID, RequestFAQs) {
			out.Stale = true
			break
		}
		m.suggest(st, &out, e.FAQs)
	case FAQAnswered:
		if !st.awaiting(e.RequestID, RequestFAQAnswer) {
			out.Stale = true
			break
		}
		m.answer(st, &out, e.Answer)
	case RequestFailed:
		if st.Pending == nil || st.Pending.ID != e.RequestID {
			out.Stale = true
			break
		}
		m.fail(st, &out, e.Err)
	}

	return out
}

func (m *Machine) start(st *State, out *Outcome) {
	if st.started {
		return
	}
	st.started = true
	out.say(SenderBot, m.opts.Script.Greeting)
	m.issue(st, out, Request{Kind: RequestOptions, Key: KeyBusinessType, Delay: m.opts.WelcomeDelay})
}

func (m *Machine) showOptions(st *State, out *Outcome, opts backend.OnboardingOptions) {
	key := st.Pending.Key

	var labels []string
	switch key {
	case KeyBusinessType:
		labels = opts.BusinessTypes
	case KeyBusinessSize:
		labels = opts.BusinessSizes
	case KeyGoals:
		labels = opts.Goals
	}
	offered := dedupe(labels)
	if len(offered) == 0 {
		// nothing to pick means the question can never be answered
		m.fail(st, out, apperrors.NewMalformedResponseError("GET /api/onboarding", "no options for "+string(key)))
		return
	}

	st.Pending = nil
	if key == KeyBusinessType {
		st.Stage = StageBusinessType
	}
	st.Asking = key
	st.Offered = offered
	chips := make([]Chip, 0, len(st.Offered)+1)
	for _, label := range st.Offered {
		chips = append(chips, Chip{
			Label:    label,
			Action:   ActionSelect,
			Value:    label,
			Selected: key == KeyGoals && st.HasGoal(label),
		})
	}
	if key == KeyGoals {
		chips = append(chips, Chip{Label: m.opts.Script.DoneLabel, Action: ActionConfirm})
	}

	out.say(SenderBot, m.opts.Script.prompt(key))
	out.emit(ShowChips{Chips: chips})
}

func (m *Machine) click(st *State, out *Outcome, chip Chip) {
	switch chip.Action {
	case ActionSelect:
		m.pick(st, out, chip.Value)
	case ActionConfirm:
		m.confirmGoals(st, out)
	case ActionAskFAQ:
		if st.Stage == StageFAQ {
			m.ask(st, out, chip.Value)
		}
	case ActionRetry:
		m.retry(st, out)
	}
}

func (m *Machine) pick(st *State, out *Outcome, value string) {
	if st.Asking == "" || !st.offers(value) {
		return
	}

	switch st.Stage {
	case StageBusinessType:
		st.Answers.BusinessType = value
		m.advance(st, out, KeyBusinessType, StageBusinessSize, KeyBusinessSize, value)
	case StageBusinessSize:
		st.Answers.BusinessSize = value
		m.advance(st, out, KeyBusinessSize, StageGoals, KeyGoals, value)
	case StageGoals:
		if st.HasGoal(value) {
			return
		}
		st.Answers.Goals = append(st.Answers.Goals, value)
		out.emit(MarkChip{Value: value})
	}
}

// advance commits a single-select answer and schedules the next question.
func (m *Machine) advance(st *State, out *Outcome, answered AnswerKey, next Stage, nextKey AnswerKey, value string) {
	st.closeQuestion()
	st.Stage = next
	out.emit(ClearChips{})
	out.say(SenderUser, echo(answered, value))
	m.issue(st, out, Request{Kind: RequestOptions, Key: nextKey, Delay: m.opts.StepDelay})
}

func (m *Machine) confirmGoals(st *State, out *Outcome) {
	if st.Stage != StageGoals || st.Asking != KeyGoals {
		return
	}
	if len(st.Answers.Goals) == 0 {
		out.emit(AppendWarning{Text: apperrors.UserMessage(apperrors.NewEmptySelectionError(string(KeyGoals)))})
		return
	}

	st.closeQuestion()
	st.Stage = StageRecommendation
	out.emit(ClearChips{})
	out.say(SenderUser, echo(KeyGoals, st.Answers.Goals...))
	m.showTyping(st, out)
	m.issue(st, out, Request{Kind: RequestRecommendation, Answers: cloneAnswers(st.Answers)})
}

func (m *Machine) submit(st *State, out *Outcome, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if st.Stage != StageFAQ {
		out.say(SenderUser, text)
		return
	}
	m.ask(st, out, text)
}

// ask sends a FAQ question. A newer question supersedes one still in flight.
func (m *Machine) ask(st *State, out *Outcome, question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}
	out.emit(ClearChips{})
	out.say(SenderUser, question)
	m.showTyping(st, out)
	m.issue(st, out, Request{Kind: RequestFAQAnswer, Question: question})
}

func (m *Machine) recommend(st *State, out *Outcome, rec backend.Recommendation) {
	st.Pending = nil
	m.hideTyping(st, out)

	script := m.opts.Script
	out.say(SenderBot, recommendedLine(rec.Recommendation))
	if rec.Product.Description != "" {
		out.say(SenderBot, rec.Product.Description)
	}
	if rec.MatchReason != "" {
		out.say(SenderBot, "Why this fits: "+rec.MatchReason)
	}
	if len(rec.Product.KeyFeatures) > 0 {
		out.say(SenderBot, featureList(rec.Product.KeyFeatures))
	}
	if rec.Product.Pricing != "" {
		out.say(SenderBot, "Pricing: "+rec.Product.Pricing)
	}
	if rec.Product.DemoLink != "" {
		out.emit(AppendLink{Link: Link{Label: script.DemoLabel, URL: rec.Product.DemoLink}})
	}

	st.Stage = StageFAQ
	m.issue(st, out, Request{Kind: RequestFAQs})
}

func (m *Machine) suggest(st *State, out *Outcome, faqs []backend.FAQ) {
	st.Pending = nil

	picks := SampleFAQs(m.rng, faqs, m.opts.SuggestionCount)
	if len(picks) == 0 {
		out.emit(ClearChips{})
		return
	}
	chips := make([]Chip, len(picks))
	for i, f := range picks {
		chips[i] = Chip{Label: f.Question, Action: ActionAskFAQ, Value: f.Question}
	}
	out.emit(ShowChips{Chips: chips})
}

func (m *Machine) answer(st *State, out *Outcome, ans backend.FAQAnswer) {
	st.Pending = nil
	m.hideTyping(st, out)

	out.say(SenderBot, ans.Answer)
	if c := ans.Contact; c != nil {
		script := m.opts.Script
		card := AppendContactCard{Prompt: script.ContactPrompt, Note: c.Action}
		if c.Email != "" {
			card.Actions = append(card.Actions, Link{Label: script.EmailLabel, URL: "mailto:" + c.Email})
		}
		if c.Phone != "" {
			card.Actions = append(card.Actions, Link{Label: script.CallLabel, URL: "tel:" + c.Phone})
		}
		out.emit(card)
	}

	m.issue(st, out, Request{Kind: RequestFAQs})
}

// fail reports err inline. Only retryable errors keep the request for the
// Retry chip.
func (m *Machine) fail(st *State, out *Outcome, err error) {
	failed := st.Pending.clone()
	st.Pending = nil
	m.hideTyping(st, out)

	out.emit(AppendError{Text: apperrors.UserMessage(err)})
	if !apperrors.IsRetryable(err) {
		return
	}
	st.Retry = &failed
	out.emit(ShowChips{Chips: []Chip{{Label: m.opts.Script.RetryLabel, Action: ActionRetry}}})
}

func (m *Machine) retry(st *State, out *Outcome) {
	if st.Retry == nil || st.Pending != nil {
		return
	}
	req := st.Retry.clone()
	req.Delay = 0

	out.emit(ClearChips{})
	if req.Kind == RequestRecommendation || req.Kind == RequestFAQAnswer {
		m.showTyping(st, out)
	}
	m.issue(st, out, req)
}

func (m *Machine) issue(st *State, out *Outcome, req Request) {
	st.nextID++
	req.ID = st.nextID
	st.Retry = nil
	pending := req.clone()
	st.Pending = &pending
	out.Requests = append(out.Requests, req)
}

func (m *Machine) showTyping(st *State, out *Outcome) {
	if st.Typing {
		return
	}
	st.Typing = true
	out.emit(ShowTyping{})
}

func (m *Machine) hideTyping(st *State, out *Outcome) {
	if !st.Typing {
		return
	}
	st.Typing = false
	out.emit(HideTyping{})
}

func dedupe(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
