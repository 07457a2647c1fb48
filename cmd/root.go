package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-bridge/cmd/bridge"
	"github/chapool/go-bridge/cmd/chain"
	"github/chapool/go-bridge/cmd/env"
	"github/chapool/go-bridge/cmd/exchange"
	"github/chapool/go-bridge/cmd/keystore"
	"github/chapool/go-bridge/cmd/probe"
	"github/chapool/go-bridge/cmd/transfer"
	"github/chapool/go-bridge/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

A multi-chain agent that deposits to, trades on and withdraws from a centralized exchange.
Requires configuration through ENV or an optional .env file.`, config.ModuleName),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cobra.OnInitialize(func() {
		config.LoadDotEnv()
	})

	// attach the subcommands
	rootCmd.AddCommand(
		bridge.New(),
		chain.New(),
		env.New(),
		exchange.New(),
		keystore.New(),
		probe.New(),
		transfer.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
