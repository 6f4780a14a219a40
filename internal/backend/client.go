package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "onboarding-chat/internal/common/errors"
	commonhttp "onboarding-chat/internal/common/http"
	"onboarding-chat/internal/common/logger"
	"onboarding-chat/internal/common/metrics"
	"onboarding-chat/internal/common/validation"
)

const (
	PathOnboarding = "/api/onboarding"
	PathRecommend  = "/api/recommend"
	PathFAQ        = "/api/faq"

	maxBodyBytes = 1 << 20
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the onboarding / recommendation / FAQ service.
type Client struct {
	config *Config
	get    *commonhttp.Client
	post   *commonhttp.Client
	logger logger.Logger
	tracer trace.Tracer
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		get:    commonhttp.NewClient(config.Timeout, commonhttp.WithRetries(config.MaxRetries)),
		// POSTs are never retried automatically; the visitor decides.
		post:   commonhttp.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{"component": "backend"}),
		tracer: otel.Tracer("onboarding-chat/backend"),
	}
}

func (c *Client) Onboarding(ctx context.Context) (*OnboardingOptions, error) {
	var out OnboardingOptions
	if err := c.call(ctx, http.MethodGet, PathOnboarding, nil, validation.OnboardingResponse, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Recommend(ctx context.Context, answers Answers) (*Recommendation, error) {
	var out Recommendation
	if err := c.call(ctx, http.MethodPost, PathRecommend, answers, validation.RecommendResponse, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FAQs(ctx context.Context) ([]FAQ, error) {
	var out []FAQ
	if err := c.call(ctx, http.MethodGet, PathFAQ, nil, validation.FAQListResponse, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AskFAQ(ctx context.Context, question string) (*FAQAnswer, error) {
	var out FAQAnswer
	if err := c.call(ctx, http.MethodPost, PathFAQ, faqQuestion{Question: question}, validation.FAQAnswerResponse, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, validator *validation.Validator, out interface{}) (err error) {
	endpoint := method + " " + path
	ctx, span := c.tracer.Start(ctx, endpoint, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	))
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
			c.logger.Warn("backend request failed", map[string]interface{}{
				"endpoint":  endpoint,
				"errorCode": string(apperrors.CodeOf(err)),
				"error":     err.Error(),
			})
		}
		metrics.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
		span.End()
	}()

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
	}

	build := func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.config.BaseURL, "/")+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}

	requester := c.get
	if method != http.MethodGet {
		requester = c.post
	}

	resp, err := requester.Retry(ctx, build)
	if err != nil {
		if isTimeout(err) {
			return apperrors.NewBackendTimeoutError(endpoint, err)
		}
		return apperrors.NewBackendUnavailableError(endpoint, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewBackendStatusError(endpoint, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return apperrors.NewBackendTimeoutError(endpoint, err)
		}
		return apperrors.NewBackendUnavailableError(endpoint, err)
	}

	result, err := validator.Validate(raw)
	if err != nil {
		return apperrors.NewMalformedResponseError(endpoint, err.Error())
	}
	if !result.Valid {
		return apperrors.NewMalformedResponseError(endpoint, result.Summary())
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewMalformedResponseError(endpoint, fmt.Sprintf("decode error: %v", err))
	}

	c.logger.Debug("backend request completed", map[string]interface{}{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"bytes":    len(raw),
	})
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
