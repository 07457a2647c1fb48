package transfer

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/util/command"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/deposit"
	"github/chapool/go-bridge/internal/wallet/withdraw"
)

const (
	networkFlag    = "network"
	tokenFlag      = "token"
	amountFlag     = "amount"
	privateKeyFlag = "private-key"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("transfer",
		newDeposit(),
		newWithdraw(),
	)
}

func newDeposit() *cobra.Command {
	var network, token, amount, privateKey string

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposits a token from the network account into the exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := chain.ParseNetwork(network)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				result, err := s.Deposit.Deposit(ctx, &deposit.Request{
					Network:    n,
					Token:      token,
					Amount:     amount,
					PrivateKey: privateKey,
				})
				if result != nil {
					if perr := command.PrintJSON(cmd.OutOrStdout(), result); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}

	addTransferFlags(cmd, &network, &token, &amount, &privateKey)

	return cmd
}

func newWithdraw() *cobra.Command {
	var network, token, amount, receiver, privateKey string

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraws a token from the exchange to an address",
		Long:  "Withdraws a token from the exchange. The receiver defaults to the address of the signing key.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := chain.ParseNetwork(network)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				result, err := s.Withdraw.Withdraw(ctx, &withdraw.Request{
					Network:    n,
					Token:      token,
					Amount:     amount,
					Receiver:   receiver,
					PrivateKey: privateKey,
				})
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	addTransferFlags(cmd, &network, &token, &amount, &privateKey)
	cmd.Flags().StringVar(&receiver, "receiver", "", "destination address")

	return cmd
}

func addTransferFlags(cmd *cobra.Command, network, token, amount, privateKey *string) {
	cmd.Flags().StringVar(network, networkFlag, "", "network name (ethereum, arbitrum, bsc, solana)")
	cmd.Flags().StringVar(token, tokenFlag, "", "token symbol or contract/mint address")
	cmd.Flags().StringVar(amount, amountFlag, "", "decimal amount, e.g. 12.5")
	cmd.Flags().StringVar(privateKey, privateKeyFlag, "", "signing key for this call only, overrides the configured credential")
	_ = cmd.MarkFlagRequired(networkFlag)
	_ = cmd.MarkFlagRequired(tokenFlag)
	_ = cmd.MarkFlagRequired(amountFlag)
}
