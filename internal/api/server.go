package api

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/metrics"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/address"
	"github/chapool/go-bridge/internal/wallet/balance"
	"github/chapool/go-bridge/internal/wallet/bridge"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
	"github/chapool/go-bridge/internal/wallet/deposit"
	"github/chapool/go-bridge/internal/wallet/evm"
	"github/chapool/go-bridge/internal/wallet/keystore"
	"github/chapool/go-bridge/internal/wallet/sol"
	"github/chapool/go-bridge/internal/wallet/withdraw"
)

// Server is a central struct keeping all the dependencies of the agent.
// It is built once from config.Server by Init and torn down with Close.
type Server struct {
	Config   config.Server
	Registry *chain.Registry
	Metrics  *metrics.Recorder
	Exchange *exchange.Client
	Clients  *wallet.Clients

	Wallet   wallet.Service
	Balance  balance.Service
	Deposit  deposit.Service
	Withdraw withdraw.Service
	Bridge   bridge.Service

	evmClients []*evm.RPCClient
}

func NewServer(config config.Server) *Server {
	return &Server{
		Config: config,
	}
}

// Init builds the registry, the network clients and every service. RPC clients are only
// created for networks with at least one configured endpoint.
func (s *Server) Init(ctx context.Context) error {
	if err := s.Config.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	registry, err := s.initRegistry()
	if err != nil {
		return err
	}
	s.Registry = registry

	s.Metrics = metrics.New()
	s.Exchange = exchange.NewClient(exchange.Config{
		BaseURL:    s.Config.Exchange.BaseURL,
		APIKey:     s.Config.Exchange.APIKey,
		APISecret:  s.Config.Exchange.APISecret,
		RecvWindow: s.Config.Exchange.RecvWindow,
		Timeout:    s.Config.Exchange.Timeout,
		Debug:      s.Config.Bridge.Debug,
	}, exchange.WithMetrics(s.Metrics))

	if err := s.initClients(ctx); err != nil {
		s.Close()
		return err
	}

	if err := s.initServices(); err != nil {
		s.Close()
		return err
	}

	return nil
}

func (s *Server) initRegistry() (*chain.Registry, error) {
	registry := chain.DefaultRegistry()

	overlay, err := chain.LoadOverlay(s.Config.Bridge.RegistryFile)
	if err != nil {
		return nil, err
	}
	if err := registry.Apply(overlay); err != nil {
		return nil, errors.Wrap(err, "failed to apply registry file")
	}

	// environment overrides the registry file
	for _, n := range sortedNetworks(s.Config.Networks) {
		cfg := s.Config.Networks[n]
		if cfg.DepositContract != "" {
			if err := registry.SetDepositContract(n, cfg.DepositContract); err != nil {
				return nil, errors.Wrapf(err, "deposit contract of %s", n)
			}
		}
		if cfg.Treasury != "" {
			if err := registry.SetTreasury(n, cfg.Treasury); err != nil {
				return nil, errors.Wrapf(err, "treasury of %s", n)
			}
		}
	}

	return registry, nil
}

func (s *Server) initClients(_ context.Context) error {
	clients := &wallet.Clients{EVM: make(map[chain.Network]evm.Client)}

	for _, info := range s.Registry.Networks() {
		urls := s.Config.Networks[info.Name].RPCURLs
		if len(urls) == 0 {
			log.Debug().Str("network", string(info.Name)).Msg("No RPC endpoint configured, skipping network")
			continue
		}

		if !info.IsEVM() {
			clients.Solana = sol.NewRPC(urls[0])
			continue
		}

		client, err := evm.NewRPCClient(urls)
		if err != nil {
			return errors.Wrapf(err, "failed to create RPC client for %s", info.Name)
		}
		s.evmClients = append(s.evmClients, client)
		clients.EVM[info.Name] = client
	}

	s.Clients = clients
	return nil
}

func (s *Server) initServices() error {
	var shared string
	if s.Config.Bridge.KeystoreFile != "" {
		mnemonic, err := keystore.ReadFile(s.Config.Bridge.KeystoreFile, s.Config.Bridge.KeystorePassword)
		if err != nil {
			return errors.Wrap(err, "failed to open keystore")
		}
		shared = mnemonic
	}

	sources := make(map[chain.Network]credential.Source, len(s.Config.Networks))
	for n, cfg := range s.Config.Networks {
		src := credential.Source{
			PrivateKey: cfg.PrivateKey,
			Mnemonic:   cfg.Mnemonic,
			Passphrase: cfg.Passphrase,
			Path:       cfg.Path,
		}
		if src.PrivateKey == "" && src.Mnemonic == "" {
			src.Mnemonic = shared
		}
		sources[n] = src
	}
	resolver := credential.NewResolver(address.NewService(), sources)

	s.Wallet = wallet.NewService(s.Registry, resolver)
	s.Balance = balance.NewService(s.Registry, s.Clients, s.Wallet, s.Exchange)
	s.Deposit = deposit.NewService(s.Registry, s.Clients, resolver, deposit.Config{
		Broker:         s.Config.Bridge.BrokerID,
		SolanaOpcode:   s.Config.Bridge.SolanaOpcode,
		ApproveTimeout: s.Config.Bridge.ApproveTimeout,
		ConfirmTimeout: s.Config.Bridge.ConfirmTimeout,
		PollInterval:   s.Config.Bridge.PollInterval,
	}, s.Metrics)
	s.Withdraw = withdraw.NewService(s.Registry, resolver, s.Exchange, s.Metrics)
	s.Bridge = bridge.NewService(s.Registry, s.Deposit, s.Withdraw, s.Exchange, s.settler(), s.Metrics)

	return nil
}

//nolint:ireturn
func (s *Server) settler() bridge.Settler {
	if s.Config.Bridge.SettleMode == config.SettleModePoll {
		return bridge.NewPollSettler(s.Exchange, s.Config.Bridge.SettlePollInterval, s.Config.Bridge.SettleTimeout)
	}
	return &bridge.FixedSettler{
		AfterDeposit: s.Config.Bridge.DepositSettleDelay,
		AfterSwap:    s.Config.Bridge.SwapSettleDelay,
	}
}

// Close releases every RPC connection. It is safe to call on a partially initialized server.
func (s *Server) Close() {
	for _, c := range s.evmClients {
		c.Close()
	}
	s.evmClients = nil
}

func sortedNetworks(m map[chain.Network]config.Network) []chain.Network {
	out := make([]chain.Network, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
