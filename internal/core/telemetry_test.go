// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
)

const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestTelemetryDisabledIsNoop(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), config.OtelConfig{}, config.AppConfig{})
	require.NoError(t, err)

	assert.False(t, tel.Enabled())
	assert.NoError(t, tel.Shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "noop")
	SetSpanError(ctx, errors.New("ignored"))
	AddSpanEvent(ctx, "ignored")
	span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestStartRequestSpanContinuesInboundTrace(t *testing.T) {
	_, err := NewTelemetry(context.Background(), config.OtelConfig{}, config.AppConfig{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set("traceparent", traceparent)

	ctx, span := StartRequestSpan(req)
	defer span.End()

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", TraceIDFromContext(ctx))
}

func TestSampleRateBounds(t *testing.T) {
	assert.InDelta(t, defaultSampleRate, sampleRate(0), 0)
	assert.InDelta(t, defaultSampleRate, sampleRate(1.5), 0)
	assert.InDelta(t, 0.5, sampleRate(0.5), 0)
}
