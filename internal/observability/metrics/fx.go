package metrics

import (
	"github.com/clearvia/payops/internal/config"
	"go.uber.org/fx"
)

func configFromApp(cfg config.Config) Config {
	endpoint := cfg.Metrics.Endpoint
	if endpoint == "" {
		endpoint = cfg.OTLPEndpoint
	}
	return Config{
		Enabled:          cfg.Metrics.Enabled,
		ExporterEndpoint: endpoint,
		ExporterProtocol: cfg.Metrics.Exporter,
		ServiceName:      cfg.AppName,
		Environment:      cfg.Environment,
	}
}

var Module = fx.Module("observability.metrics",
	fx.Provide(
		configFromApp,
		NewProvider,
	),
)
