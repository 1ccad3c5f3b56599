package metrics

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(protocol) {
	case "http":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported metrics exporter protocol %q", protocol)
	}
}

// SettlementMetrics exposes instruments for the settlement runner and fee engine.
type SettlementMetrics struct {
	runs        metric.Int64Counter
	runErrors   metric.Int64Counter
	feesApplied metric.Int64Counter
	runDuration metric.Float64Histogram
}

var (
	settlementOnce sync.Once
	settlement     *SettlementMetrics
)

// Settlement returns the process-wide settlement instruments, creating them
// lazily against the registered meter provider.
func Settlement() *SettlementMetrics {
	settlementOnce.Do(func() {
		meter := otel.Meter("payops/settlement")
		runs, _ := meter.Int64Counter("settlement_runs_total")
		runErrors, _ := meter.Int64Counter("settlement_errors_total")
		feesApplied, _ := meter.Int64Counter("fees_applied_total")
		runDuration, _ := meter.Float64Histogram("settlement_run_duration_seconds")
		settlement = &SettlementMetrics{
			runs:        runs,
			runErrors:   runErrors,
			feesApplied: feesApplied,
			runDuration: runDuration,
		}
	})
	return settlement
}

func (m *SettlementMetrics) IncRun() {
	m.runs.Add(context.Background(), 1)
}

func (m *SettlementMetrics) IncRunError(scope string) {
	m.runErrors.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("scope", scope)))
}

func (m *SettlementMetrics) AddFeesApplied(feeType string, n int64) {
	m.feesApplied.Add(context.Background(), n,
		metric.WithAttributes(attribute.String("fee_type", feeType)))
}

func (m *SettlementMetrics) ObserveRunDuration(d time.Duration) {
	m.runDuration.Record(context.Background(), d.Seconds())
}
