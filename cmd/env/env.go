package env

import (
	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()
			return command.PrintJSON(cmd.OutOrStdout(), cfg.Redacted())
		},
	}
}
