package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spyro-labs/spyro-relayer/config"
	"github.com/spyro-labs/spyro-relayer/internal/telemetry"
	"github.com/spyro-labs/spyro-relayer/log"
)

var defaultHome = filepath.Join(os.Getenv("HOME"), ".srly")

// Context is shared by all commands. Config is loaded before any command runs.
type Context struct {
	HomePath string
	Config   *config.Config
	// Telemetry is nil unless --enable-telemetry is set
	Telemetry *telemetry.SDK
}

// NewRootCmd returns the srly command tree.
func NewRootCmd() *cobra.Command {
	ctx := &Context{}

	rootCmd := &cobra.Command{
		Use:          "srly",
		Short:        "This application relays Wormhole messages from a source chain to a target chain",
		SilenceUsage: true,
	}
	cobra.EnableCommandSorting = false

	rootCmd.PersistentFlags().String(flagHome, defaultHome, "set home directory")
	rootCmd.PersistentFlags().String(flagDotEnv, ".env", "dotenv file loaded into the environment before the config")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "text", "log format (text, json)")
	rootCmd.PersistentFlags().String(flagLogOutput, "stderr", "log output (stdout, stderr)")
	rootCmd.PersistentFlags().Bool(flagEnableTelemetry, false, "enable the OpenTelemetry SDK configured by OTEL_* variables")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		enableTelemetry := viper.GetBool(flagEnableTelemetry)
		if err := log.InitLogger(
			viper.GetString(flagLogLevel),
			viper.GetString(flagLogFormat),
			viper.GetString(flagLogOutput),
			enableTelemetry,
		); err != nil {
			return err
		}

		if err := config.LoadDotEnv(viper.GetString(flagDotEnv)); err != nil {
			return err
		}
		ctx.HomePath = viper.GetString(flagHome)
		cfg, err := config.Load(config.ConfigPath(ctx.HomePath))
		if err != nil {
			return err
		}
		ctx.Config = cfg

		if enableTelemetry {
			sdk, err := telemetry.SetupOTelSDK(cmd.Context(), telemetry.Config{Resource: cfg.TelemetryResource()})
			if err != nil {
				return errors.Wrap(err, "failed to set up the OpenTelemetry SDK")
			}
			ctx.Telemetry = sdk
		}
		return telemetry.InitializeMetrics()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		if ctx.Telemetry == nil {
			return nil
		}
		return ctx.Telemetry.Shutdown(context.WithoutCancel(cmd.Context()))
	}

	rootCmd.AddCommand(
		configCmd(ctx),
		serviceCmd(ctx),
		transactionCmd(ctx),
		queryCmd(ctx),
	)
	return rootCmd
}

// Execute runs the root command until it completes or ctx is done.
// This is called by main.main().
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
