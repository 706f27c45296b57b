package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect evalctl configuration",
	}
	cmd.AddCommand(configValidateCmd(flags), configShowCmd(flags))
	return cmd
}

func configValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration valid: %d provider(s), cache %s\n",
				len(cfg.Providers), cacheSummary(cfg.Cache.Enabled, cfg.Cache.Type))
			return nil
		},
	}
}

func configShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			redacted := *cfg
			redacted.Cache.Postgres.DSN = redact(redacted.Cache.Postgres.DSN)
			redacted.Cache.Redis.Password = redact(redacted.Cache.Redis.Password)
			redacted.Providers = nil
			for _, p := range cfg.Providers {
				p.Config.APIKey = redact(p.Config.APIKey)
				redacted.Providers = append(redacted.Providers, p)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(&redacted); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func cacheSummary(enabled bool, typ string) string {
	if !enabled {
		return "disabled"
	}
	return typ
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
