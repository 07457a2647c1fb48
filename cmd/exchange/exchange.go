package exchange

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/util/command"
	"github/chapool/go-bridge/internal/wallet/chain"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("exchange",
		newPrice(),
		newAccount(),
		newExchangeInfo(),
		newWithdrawFee(),
	)
}

func newPrice() *cobra.Command {
	return &cobra.Command{
		Use:   "price <base> [quote]",
		Short: "Prints the last price of a trading pair, quote defaults to USDT",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quote := ""
			if len(args) == 2 {
				quote = args[1]
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				price, err := s.Balance.Price(ctx, args[0], quote)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), price)
			})
		},
	}
}

func newAccount() *cobra.Command {
	var asset string

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Prints the non-zero exchange balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				if asset != "" {
					free, err := s.Balance.ExchangeBalance(ctx, asset)
					if err != nil {
						return err
					}
					return command.PrintJSON(cmd.OutOrStdout(), exchange.Balance{Asset: strings.ToUpper(asset), Free: free})
				}

				balances, err := s.Balance.ExchangeBalances(ctx)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), balances)
			})
		},
	}

	cmd.Flags().StringVar(&asset, "asset", "", "print the free balance of one asset only")

	return cmd
}

func newExchangeInfo() *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "exchange-info",
		Short: "Prints trading symbols and their filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				info, err := s.Exchange.ExchangeInfo(ctx)
				if err != nil {
					return err
				}

				if symbol == "" {
					return command.PrintJSON(cmd.OutOrStdout(), info)
				}

				si, ok := info.Symbol(symbol)
				if !ok {
					return errs.New(errs.KindUnsupportedToken, "symbol %q is not listed", symbol)
				}
				return command.PrintJSON(cmd.OutOrStdout(), si)
			})
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "print a single symbol, e.g. ETHUSDT")

	return cmd
}

func newWithdrawFee() *cobra.Command {
	var network, token string

	cmd := &cobra.Command{
		Use:   "withdraw-fee",
		Short: "Quotes the current exchange withdrawal fee of a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := chain.ParseNetwork(network)
			if err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				quote, err := s.Withdraw.QuoteFee(ctx, n, token)
				if err != nil {
					return err
				}
				return command.PrintJSON(cmd.OutOrStdout(), quote)
			})
		},
	}

	cmd.Flags().StringVar(&network, "network", "", "destination network")
	cmd.Flags().StringVar(&token, "token", "", "token symbol")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}
