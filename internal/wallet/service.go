package wallet

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
)

// Service reports the accounts the agent can sign for.
type Service interface {
	// Account resolves the signing address of one network. explicit overrides configuration.
	Account(ctx context.Context, network chain.Network, explicit string) (*Account, error)

	// Accounts lists the address of every network that has credentials configured.
	Accounts(ctx context.Context) ([]*Account, error)
}

type service struct {
	registry *chain.Registry
	resolver *credential.Resolver
}

// NewService creates the account service
//
//nolint:ireturn
func NewService(registry *chain.Registry, resolver *credential.Resolver) Service {
	return &service{
		registry: registry,
		resolver: resolver,
	}
}

func (s *service) Account(ctx context.Context, network chain.Network, explicit string) (*Account, error) {
	info, err := s.registry.Network(string(network))
	if err != nil {
		return nil, err
	}

	key, err := s.resolver.Resolve(ctx, info, explicit)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	addr, err := key.Address()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to derive %s address", network)
	}

	return &Account{Network: info.Name, Address: addr, Tier: key.Tier}, nil
}

func (s *service) Accounts(ctx context.Context) ([]*Account, error) {
	log := util.LogFromContext(ctx)

	accounts := make([]*Account, 0)
	for _, n := range s.registry.Networks() {
		if !s.resolver.HasCredentials(n.Name) {
			log.Debug().Str("network", string(n.Name)).Msg("No credentials configured, skipping")
			continue
		}

		acc, err := s.Account(ctx, n.Name, "")
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, nil
}
