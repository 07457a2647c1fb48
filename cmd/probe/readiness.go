package probe

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/util/command"
	"github/chapool/go-bridge/internal/wallet/chain"
	"golang.org/x/sync/errgroup"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Checks every configured RPC endpoint and the exchange API",
		Long: `Checks every configured RPC endpoint and the exchange API.
EVM endpoints must report the expected chain id. Exits non-zero if any check fails.`,
		Args: cobra.NoArgs,
		RunE: readinessCmdFunc,
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

type check struct {
	Target string `json:"target"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

func readinessCmdFunc(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool(verboseFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse args")
	}

	return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
		checks := runReadiness(ctx, s)

		failed := 0
		for _, c := range checks {
			if !c.OK {
				failed++
			}
		}

		if verbose || failed > 0 {
			if err := command.PrintJSON(cmd.OutOrStdout(), checks); err != nil {
				return err
			}
		}

		if failed > 0 {
			return errors.Errorf("%d of %d readiness checks failed", failed, len(checks))
		}
		return nil
	})
}

func runReadiness(ctx context.Context, s *api.Server) []check {
	var (
		mu     sync.Mutex
		checks []check
	)
	record := func(target string, err error) {
		mu.Lock()
		defer mu.Unlock()
		c := check{Target: target, OK: err == nil}
		if err != nil {
			c.Error = err.Error()
		}
		checks = append(checks, c)
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, info := range s.Registry.Networks() {
		if info.IsEVM() {
			client, err := s.Clients.EVMClient(info.Name)
			if err != nil {
				continue
			}
			g.Go(func() error {
				id, err := client.ChainID(gctx)
				if err == nil && id.Int64() != info.ChainID {
					err = errs.New(errs.KindNetworkTransport, "endpoint reports chain id %d, expected %d", id.Int64(), info.ChainID)
				}
				record(string(info.Name), err)
				return nil
			})
			continue
		}

		rpc, err := s.Clients.SolanaRPC()
		if err != nil {
			continue
		}
		g.Go(func() error {
			_, err := rpc.LatestBlockhash(gctx)
			record(string(chain.Solana), err)
			return nil
		})
	}

	g.Go(func() error {
		_, err := s.Exchange.ExchangeInfo(gctx)
		record("exchange", err)
		return nil
	})

	_ = g.Wait()

	sort.Slice(checks, func(i, j int) bool { return checks[i].Target < checks[j].Target })
	return checks
}
