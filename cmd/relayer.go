package cmd

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/spyro-labs/spyro-relayer/config"
	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/otelcore"
	"github.com/spyro-labs/spyro-relayer/server"
	"github.com/spyro-labs/spyro-relayer/store/postgres"
	"github.com/spyro-labs/spyro-relayer/wormhole"
)

const tracerName = "github.com/spyro-labs/spyro-relayer/otelcore"

// relayer is a fully wired relay pipeline built from a config.
type relayer struct {
	service   *core.RelayService
	publisher *core.Publisher
	results   *server.ResultCache
	ledger    *postgres.Ledger
}

func buildRelayer(ctx context.Context, cfg *config.Config) (*relayer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tracer := otel.Tracer(tracerName)

	source, err := cfg.Source.Build(ctx)
	if err != nil {
		return nil, err
	}
	target, err := cfg.Target.Build(ctx)
	if err != nil {
		return nil, err
	}
	guardians, err := wormhole.NewGuardianClient(cfg.Wormhole.GuardianClientConfig())
	if err != nil {
		return nil, err
	}
	verifier, err := wormhole.NewGuardianVerifier(cfg.Wormhole.GuardianSetKeys())
	if err != nil {
		return nil, err
	}

	r := &relayer{}
	if r.results, err = server.NewResultCache(cfg.API.CacheSize); err != nil {
		return nil, err
	}
	sinks := core.MultiSink{core.LogSink{}, core.MetricsSink{}, r.results}
	if dsn := cfg.Reporting.PostgresDSN; dsn != "" {
		if r.ledger, err = postgres.Open(ctx, dsn); err != nil {
			return nil, err
		}
		if err := r.ledger.Migrate(ctx); err != nil {
			r.ledger.Close()
			return nil, err
		}
		sinks = append(sinks, r.ledger)
	}

	watcher := core.NewWatcher(source, cfg.Source.EmitterAddress(), otelcore.NewFetcher(guardians, tracer))
	r.publisher = core.NewPublisher(otelcore.NewTarget(target, tracer), watcher.Binding(), cfg.Target.ConfirmationTimeout)
	r.service = core.NewRelayService(
		watcher,
		otelcore.NewVerifier(verifier, tracer),
		r.publisher,
		sinks,
		cfg.Retry.Policy(),
		cfg.Service.RestartPolicy(),
	)
	return r, nil
}

func (r *relayer) Close() error {
	if r.ledger != nil {
		return r.ledger.Close()
	}
	return nil
}
