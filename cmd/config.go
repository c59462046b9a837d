package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/spyro-labs/spyro-relayer/config"
)

func configCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "manage configuration file",
	}

	cmd.AddCommand(
		configShowCmd(ctx),
		configInitCmd(ctx),
	)

	return cmd
}

// Command for inititalizing a default config at the --home location
func configInitCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Creates a default home directory at path defined by --home",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.ConfigPath(ctx.HomePath)
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			} else if !os.IsNotExist(err) {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, config.DefaultYAML(), 0o600); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfgPath)
			return nil
		},
	}
	return cmd
}

// Command for printing current configuration
func configShowCmd(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"s", "list", "l"},
		Short:   "Prints current configuration with secrets redacted",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			useYAML, err := cmd.Flags().GetBool(flagYAML)
			if err != nil {
				return err
			}
			redacted := ctx.Config.Redacted()

			var out []byte
			if useYAML {
				out, err = yaml.Marshal(redacted)
			} else {
				out, err = json.MarshalIndent(redacted, "", "  ")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	return yamlFlag(cmd)
}
