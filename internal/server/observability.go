package server

import (
	"context"

	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/pkg/tracer"
)

// ObservabilityShutdownFunc is returned by InitObservability to release
// the tracer provider at shutdown.
type ObservabilityShutdownFunc func(context.Context) error

// InitObservability starts OpenTelemetry tracing; Prometheus counters
// register themselves at package init via promauto, so there is nothing
// else to start here.
func InitObservability(serviceName, otlpEndpoint string, logger *zap.Logger) (ObservabilityShutdownFunc, error) {
	shutdown, err := tracer.Init(serviceName, otlpEndpoint)
	if err != nil {
		return nil, err
	}
	logger.Info("observability initialized", zap.String("otlp_endpoint", otlpEndpoint))
	return ObservabilityShutdownFunc(shutdown), nil
}
