package infrastructure

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"

	"users-api/internal/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(&config.Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestNewTracerProvider_StdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := &config.Config{
		App:     config.AppConfig{Env: "production"},
		Logger:  config.LoggerConfig{ServiceName: "users-api"},
		Tracing: config.TracingConfig{Enabled: true, Exporter: "stdout"},
	}

	var out bytes.Buffer
	tp, err := newTracerProvider(cfg, &out, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := otel.Tracer("test").Start(context.Background(), "UserRepo.Create")
	assert.True(t, span.IsRecording())
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))
	assert.Contains(t, out.String(), "UserRepo.Create")
	assert.Contains(t, out.String(), "users-api")
}

func TestNewTracerProvider_UnknownExporter(t *testing.T) {
	cfg := &config.Config{Tracing: config.TracingConfig{Enabled: true, Exporter: "zipkin"}}

	_, err := newTracerProvider(cfg, &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "unsupported trace exporter")
}
