package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spyro-labs/spyro-relayer/chains/ethereum"
	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/coreutil"
	"github.com/spyro-labs/spyro-relayer/internal/telemetry"
	"github.com/spyro-labs/spyro-relayer/log"
	"github.com/spyro-labs/spyro-relayer/server"
)

func serviceCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Relay Service Commands",
		Long:  "Commands to manage the relay service",
	}
	cmd.AddCommand(
		startCmd(ctx),
	)
	return cmd
}

func startCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Watch the configured emitter and relay every message to the target chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := buildRelayer(cmd.Context(), ctx.Config)
			if err != nil {
				return err
			}
			defer r.Close()

			logger := core.GetEmitterLogger(r.publisher.Binding(), "cmd.service")
			if target, err := coreutil.UnwrapTarget[*ethereum.Target](r.publisher.Target()); err == nil {
				logger = logger.WithChainID(target.ChainID())
				logger.InfoContext(cmd.Context(), "starting relay service", "relayer", target.Address().Hex())
			}

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return r.service.Start(gctx)
			})
			var opts []server.Option
			if ctx.Telemetry != nil && ctx.Telemetry.MetricsHandler() != nil {
				opts = append(opts, server.WithMetrics(ctx.Telemetry.MetricsHandler()))
			}
			switch addr := ctx.Config.API.Addr; {
			case addr != "":
				g.Go(func() error {
					return server.NewAPIServer(r.results, opts...).Start(gctx, addr)
				})
			case len(opts) > 0:
				g.Go(func() error {
					return server.NewAPIServer(nil, opts...).Start(gctx, telemetry.PrometheusAddr())
				})
			}
			if err := g.Wait(); err != nil {
				log.GetLogger().WithModule("cmd.service").Error("relay service stopped", err)
				return err
			}
			return nil
		},
	}
	return cmd
}
