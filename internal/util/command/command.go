package command

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/util"
)

// NewSubcommandGroup returns a command that only groups subcommands and prints its help when run.
func NewSubcommandGroup(name string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: name + " related subcommands",
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(subCommands...)
	return cmd
}

// WithServer configures the logger, initializes a server from config and runs f with it.
// The server is closed once f returns.
func WithServer(ctx context.Context, config config.Server, f func(ctx context.Context, s *api.Server) error) error {
	util.ConfigureLogger(config.Logger.Level, config.Logger.PrettyPrintConsole)

	s := api.NewServer(config)
	if err := s.Init(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return errors.Wrap(err, "failed to initialize server")
	}
	defer s.Close()

	return f(ctx, s)
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	return nil
}
