package infrastructure

import (
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"users-api/internal/config"
)

// NewTracerProvider builds the trace pipeline and installs it as the global
// provider. It returns nil when tracing is disabled. The caller owns Shutdown.
func NewTracerProvider(cfg *config.Config, l *zap.Logger) (*sdktrace.TracerProvider, error) {
	return newTracerProvider(cfg, os.Stdout, l)
}

func newTracerProvider(cfg *config.Config, out io.Writer, l *zap.Logger) (*sdktrace.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return nil, nil
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.Logger.ServiceName),
		attribute.String("service.version", cfg.Logger.ServiceVersion),
		attribute.String("deployment.environment", cfg.App.Env),
	)

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	switch cfg.Tracing.Exporter {
	case "stdout":
		exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
		if cfg.App.Env != "production" {
			exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
		}
		exp, err := stdouttrace.New(exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	case "none":
	default:
		return nil, fmt.Errorf("unsupported trace exporter %q", cfg.Tracing.Exporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	l.Info("tracing enabled", zap.String("exporter", cfg.Tracing.Exporter))
	return tp, nil
}
