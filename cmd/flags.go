package cmd

import (
	"github.com/spf13/cobra"
)

const (
	flagHome            = "home"
	flagDotEnv          = "dotenv"
	flagLogLevel        = "log-level"
	flagLogFormat       = "log-format"
	flagLogOutput       = "log-output"
	flagEnableTelemetry = "enable-telemetry"

	flagJSON     = "json"
	flagYAML     = "yaml"
	flagSequence = "sequence"
)

func yamlFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagYAML, "y", false, "output using yaml")
	return cmd
}

func jsonFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagJSON, "j", false, "returns the response in json format")
	return cmd
}

func sequenceFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().Uint64(flagSequence, 0, "sequence of the message emitted by the configured emitter")
	if err := cmd.MarkFlagRequired(flagSequence); err != nil {
		panic(err)
	}
	return cmd
}
