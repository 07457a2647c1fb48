package bridge

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/util/command"
	"github/chapool/go-bridge/internal/wallet/bridge"
	"github/chapool/go-bridge/internal/wallet/chain"
)

func New() *cobra.Command {
	var (
		fromNetwork, fromToken, amount string
		targetToken, toNetwork, toAddr string
		privateKey                     string
	)

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Deposits, buys the target token on the exchange and withdraws it to the destination network",
		Long: `Runs deposit, market buy and withdraw in sequence. Completed steps are never rolled back:
on failure the trace of completed steps and the failed step are printed before the error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := chain.ParseNetwork(fromNetwork)
			if err != nil {
				return err
			}
			to, err := chain.ParseNetwork(toNetwork)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				trace, err := s.Bridge.SwapAndBridge(ctx, &bridge.Request{
					FromNetwork: from,
					FromToken:   fromToken,
					Amount:      amount,
					TargetToken: targetToken,
					ToNetwork:   to,
					ToAddress:   toAddr,
					PrivateKey:  privateKey,
				})
				if trace != nil {
					if perr := command.PrintJSON(cmd.OutOrStdout(), trace); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&fromNetwork, "from-network", "", "source network")
	cmd.Flags().StringVar(&fromToken, "from-token", "", "token deposited and spent on the market buy")
	cmd.Flags().StringVar(&amount, "amount", "", "decimal amount of from-token")
	cmd.Flags().StringVar(&targetToken, "target-token", "", "token bought and withdrawn")
	cmd.Flags().StringVar(&toNetwork, "to-network", "", "destination EVM network")
	cmd.Flags().StringVar(&toAddr, "to-address", "", "destination address")
	cmd.Flags().StringVar(&privateKey, "private-key", "", "deposit signing key for this call only")
	for _, f := range []string{"from-network", "from-token", "amount", "target-token", "to-network", "to-address"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}
