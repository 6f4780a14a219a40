// internal/conversation/controller.go
package conversation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"onboarding-chat/internal/backend"
	apperrors "onboarding-chat/internal/common/errors"
	"onboarding-chat/internal/common/logger"
	"onboarding-chat/internal/common/metrics"
)

var (
	ErrClosed         = errors.New("conversation closed")
	ErrAlreadyRunning = errors.New("conversation already running")
)

// Backend is what the controller needs from the onboarding service.
type Backend interface {
	Onboarding(ctx context.Context) (*backend.OnboardingOptions, error)
	Recommend(ctx context.Context, answers backend.Answers) (*backend.Recommendation, error)
	FAQs(ctx context.Context) ([]backend.FAQ, error)
	AskFAQ(ctx context.Context, question string) (*backend.FAQAnswer, error)
}

// Renderer receives the commands of every transition, in order, from the
// controller's event loop goroutine.
type Renderer interface {
	Render(cmds []Command)
}

// RequestObserver is told about every backend request that completed.
type RequestObserver interface {
	RecordRequest(ctx context.Context, kind string, duration time.Duration, status string)
}

type ControllerConfig struct {
	SessionID string
	// RequestTimeout bounds each backend call. Zero means no extra bound.
	RequestTimeout time.Duration
	Options        Options
	Observer       RequestObserver
}

// Controller runs one conversation. All state changes happen on the Run
// goroutine; Click, Submit and State are safe from any goroutine.
type Controller struct {
	id       string
	machine  *Machine
	backend  Backend
	renderer Renderer
	logger   logger.Logger
	observer RequestObserver
	timeout  time.Duration

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	running   atomic.Bool
	runDone   chan struct{}

	mu    sync.RWMutex
	state State

	flightMu sync.Mutex
	closed   bool
	timer    *time.Timer
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewController(be Backend, r Renderer, cfg ControllerConfig, log logger.Logger) *Controller {
	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	return &Controller{
		id:       id,
		machine:  NewMachine(cfg.Options),
		backend:  be,
		renderer: r,
		logger: log.With(map[string]interface{}{
			"component": "conversation",
			"session":   id,
		}),
		observer: cfg.Observer,
		timeout:  cfg.RequestTimeout,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
		runDone:  make(chan struct{}),
		state:    NewState(),
	}
}

func (c *Controller) ID() string {
	return c.id
}

// State returns a snapshot of the conversation.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Click delivers a chip click.
func (c *Controller) Click(chip Chip) error {
	return c.post(ChipClicked{Chip: chip})
}

// Submit delivers a line of free text.
func (c *Controller) Submit(text string) error {
	return c.post(TextSubmitted{Text: text})
}

// Run greets the visitor and processes events until ctx is done or Close is
// called. Pending timers and requests are abandoned on return.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	metrics.ActiveConversations.Inc()

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.shutdown()
		metrics.ActiveConversations.Dec()
		close(c.runDone)
	}()

	c.logger.Info("conversation started", nil)
	c.apply(ctx, Started{})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("conversation stopped", map[string]interface{}{"reason": ctx.Err().Error()})
			return ctx.Err()
		case <-c.done:
			c.logger.Info("conversation closed", nil)
			return nil
		case ev := <-c.events:
			c.apply(ctx, ev)
		}
	}
}

// Close stops the conversation and waits for Run to return. Timers that
// have not fired never issue their request, and results still in flight are
// dropped.
func (c *Controller) Close() error {
	c.shutdown()
	if c.running.Load() {
		<-c.runDone
	}
	return nil
}

func (c *Controller) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)

		c.flightMu.Lock()
		c.closed = true
		c.abortLocked()
		c.flightMu.Unlock()

		c.wg.Wait()
	})
}

func (c *Controller) post(ev Event) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.events <- ev:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Controller) apply(ctx context.Context, ev Event) {
	c.mu.RLock()
	prev := c.state
	c.mu.RUnlock()

	out := c.machine.Transition(prev, ev)

	c.mu.Lock()
	c.state = out.State
	c.mu.Unlock()

	if out.Stale {
		metrics.StaleResults.Inc()
		c.logger.Debug("dropped stale result", map[string]interface{}{"stage": prev.Stage.String()})
		return
	}
	if prev.Stage != out.State.Stage {
		c.logger.Debug("stage advanced", map[string]interface{}{
			"from": prev.Stage.String(),
			"to":   out.State.Stage.String(),
		})
	}

	if len(out.Commands) > 0 {
		c.renderer.Render(out.Commands)
	}
	for _, req := range out.Requests {
		c.schedule(ctx, req)
	}
}

// schedule replaces whatever request is outstanding with req.
func (c *Controller) schedule(ctx context.Context, req Request) {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()

	if c.closed {
		return
	}
	c.abortLocked()

	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)

	if req.Delay <= 0 {
		go c.execute(reqCtx, req)
		return
	}
	c.timer = time.AfterFunc(req.Delay, func() {
		c.execute(reqCtx, req)
	})
}

// abortLocked stops the pending timer and cancels the in-flight request.
// Callers hold flightMu.
func (c *Controller) abortLocked() {
	if c.timer != nil {
		if c.timer.Stop() {
			c.wg.Done()
		}
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) execute(ctx context.Context, req Request) {
	defer c.wg.Done()

	if ctx.Err() != nil {
		return
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("issuing request", map[string]interface{}{
		"requestId": req.ID,
		"kind":      req.Kind.String(),
	})

	start := time.Now()
	ev := c.perform(ctx, req)
	if errors.Is(ctx.Err(), context.Canceled) {
		// superseded or shut down
		return
	}

	status := metrics.OutcomeSuccess
	if failed, ok := ev.(RequestFailed); ok {
		status = metrics.OutcomeFailure
		c.logger.Warn("request failed", map[string]interface{}{
			"requestId": req.ID,
			"kind":      req.Kind.String(),
			"category":  apperrors.GetErrorCategory(apperrors.CodeOf(failed.Err)),
			"error":     failed.Err.Error(),
		})
	}
	if c.observer != nil {
		c.observer.RecordRequest(ctx, req.Kind.String(), time.Since(start), status)
	}
	// A dropped post means the conversation is gone; nothing to do.
	_ = c.post(ev)
}

func (c *Controller) perform(ctx context.Context, req Request) Event {
	switch req.Kind {
	case RequestOptions:
		opts, err := c.backend.Onboarding(ctx)
		if err != nil {
			return RequestFailed{RequestID: req.ID, Err: err}
		}
		return OptionsLoaded{RequestID: req.ID, Options: *opts}
	case RequestRecommendation:
		rec, err := c.backend.Recommend(ctx, req.Answers)
		if err != nil {
			return RequestFailed{RequestID: req.ID, Err: err}
		}
		return RecommendationLoaded{RequestID: req.ID, Recommendation: *rec}
	case RequestFAQs:
		faqs, err := c.backend.FAQs(ctx)
		if err != nil {
			return RequestFailed{RequestID: req.ID, Err: err}
		}
		return FAQsLoaded{RequestID: req.ID, FAQs: faqs}
	case RequestFAQAnswer:
		ans, err := c.backend.AskFAQ(ctx, req.Question)
		if err != nil {
			return RequestFailed{RequestID: req.ID, Err: err}
		}
		return FAQAnswered{RequestID: req.ID, Answer: *ans}
	default:
		return RequestFailed{RequestID: req.ID, Err: errors.New("unknown request kind")}
	}
}
