package chain

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/util/command"
	walletchain "github/chapool/go-bridge/internal/wallet/chain"
)

const (
	networkFlag = "network"
	tokenFlag   = "token"
	ownerFlag   = "owner"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("chain",
		newBalance(),
		newAccounts(),
		newNetworks(),
	)
}

func newBalance() *cobra.Command {
	var network, token, owner string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Reads an on-chain token balance",
		Long:  "Reads the balance of a native coin or registered token. The owner defaults to the configured account of the network.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := walletchain.ParseNetwork(network)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				bal, err := s.Balance.ChainBalance(ctx, n, token, owner)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), bal)
			})
		},
	}

	cmd.Flags().StringVar(&network, networkFlag, "", "network name (ethereum, arbitrum, bsc, solana)")
	cmd.Flags().StringVar(&token, tokenFlag, "", "token symbol or contract/mint address")
	cmd.Flags().StringVar(&owner, ownerFlag, "", "owner address")
	_ = cmd.MarkFlagRequired(networkFlag)
	_ = cmd.MarkFlagRequired(tokenFlag)

	return cmd
}

func newAccounts() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Lists the addresses of every network with configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				accounts, err := s.Wallet.Accounts(ctx)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), accounts)
			})
		},
	}
}

type networkOutput struct {
	Network         walletchain.Network `json:"network"`
	ChainID         int64               `json:"chainId,omitempty"`
	DepositContract string              `json:"depositContract,omitempty"`
	Tokens          []string            `json:"tokens"`
}

func newNetworks() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "Lists the supported networks and their registered tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(_ context.Context, s *api.Server) error {
				out := make([]networkOutput, 0)
				for _, info := range s.Registry.Networks() {
					n := networkOutput{
						Network:         info.Name,
						ChainID:         info.ChainID,
						DepositContract: info.DepositContract,
						Tokens:          make([]string, 0),
					}
					for _, t := range s.Registry.Tokens(info.Name) {
						n.Tokens = append(n.Tokens, t.Symbol)
					}
					out = append(out, n)
				}
				return command.PrintJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}
