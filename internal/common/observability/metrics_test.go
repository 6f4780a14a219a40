package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-chat/internal/common/logger"
)

func newTestObservability(t *testing.T) (*Observability, *promclient.Registry) {
	t.Helper()
	reg := promclient.NewRegistry()
	obs := New("onboarding-chat-test", reg, logger.NewTestLogger(t))
	t.Cleanup(obs.Shutdown)
	return obs, reg
}

func TestRecordRequest_GatheredFamilies(t *testing.T) {
	obs, reg := newTestObservability(t)

	obs.RecordRequest(context.Background(), "options", 12*time.Millisecond, "success")
	obs.RecordRequest(context.Background(), "faq_answer", 40*time.Millisecond, "failure")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["conversation_requests_total"], names)
	assert.True(t, names["conversation_request_duration_milliseconds"], names)
}

func TestRecordRequest_Exposition(t *testing.T) {
	obs, reg := newTestObservability(t)
	obs.RecordRequest(context.Background(), "recommendation", 5*time.Millisecond, "success")

	server := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "# TYPE conversation_requests_total counter")
	assert.Contains(t, text, "# TYPE conversation_request_duration_milliseconds histogram")
	assert.Contains(t, text, `kind="recommendation"`)
	assert.Contains(t, text, `status="success"`)
}

func TestRecordRequest_ZeroValueIsSafe(t *testing.T) {
	var obs Observability
	assert.NotPanics(t, func() {
		obs.RecordRequest(context.Background(), "faqs", time.Millisecond, "success")
		obs.Shutdown()
	})
}
