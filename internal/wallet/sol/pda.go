package sol

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/util"
)

// PayerPlaceholder in a seed pattern is replaced by the payer's public key bytes.
const PayerPlaceholder = "{payer}"

// DefaultPDASeeds is tried in order when no patterns are configured.
var DefaultPDASeeds = [][]string{
	{"user", PayerPlaceholder},
	{PayerPlaceholder},
}

// PDA is a derived program address and the seed pattern that produced it.
type PDA struct {
	Address solana.PublicKey
	Bump    uint8
	Pattern []string
}

func seedBytes(pattern []string, payer solana.PublicKey) [][]byte {
	seeds := make([][]byte, 0, len(pattern))
	for _, part := range pattern {
		if part == PayerPlaceholder {
			seeds = append(seeds, payer.Bytes())
			continue
		}
		seeds = append(seeds, []byte(part))
	}
	return seeds
}

// DerivePDA derives the program address of the first pattern that yields one.
func DerivePDA(programID, payer solana.PublicKey, patterns [][]string) (*PDA, error) {
	for _, pattern := range patternsOrDefault(patterns) {
		addr, bump, err := solana.FindProgramAddress(seedBytes(pattern, payer), programID)
		if err != nil {
			continue
		}
		return &PDA{Address: addr, Bump: bump, Pattern: pattern}, nil
	}
	return nil, errors.New("no seed pattern produced a program address")
}

// ResolvePDA walks the patterns in order and prefers the first derived address that already
// exists on chain. When none exists the first derivable address is used. The matched pattern is logged.
func ResolvePDA(ctx context.Context, client RPC, programID, payer solana.PublicKey, patterns [][]string) (*PDA, error) {
	log := util.LogFromContext(ctx)

	var fallback *PDA
	for _, pattern := range patternsOrDefault(patterns) {
		addr, bump, err := solana.FindProgramAddress(seedBytes(pattern, payer), programID)
		if err != nil {
			log.Debug().Err(err).Str("pattern", formatPattern(pattern)).Msg("Seed pattern did not derive, trying next")
			continue
		}

		candidate := &PDA{Address: addr, Bump: bump, Pattern: pattern}
		if fallback == nil {
			fallback = candidate
		}

		exists, err := client.AccountExists(ctx, addr)
		if err != nil {
			return nil, err
		}
		if exists {
			log.Info().Str("pattern", formatPattern(pattern)).Str("pda", addr.String()).Msg("Matched existing program account")
			return candidate, nil
		}
	}

	if fallback == nil {
		return nil, errors.New("no seed pattern produced a program address")
	}

	log.Info().Str("pattern", formatPattern(fallback.Pattern)).Str("pda", fallback.Address.String()).Msg("No program account exists yet, using first derivable pattern")
	return fallback, nil
}

func patternsOrDefault(patterns [][]string) [][]string {
	if len(patterns) == 0 {
		return DefaultPDASeeds
	}
	return patterns
}

func formatPattern(pattern []string) string {
	return "[" + strings.Join(pattern, ",") + "]"
}
