package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet/bridge"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/deposit"
)

const (
	SettleModeFixed = "fixed"
	SettleModePoll  = "poll"

	masked = "****"
)

type LoggerServer struct {
	Level              string `json:"level"`
	PrettyPrintConsole bool   `json:"prettyPrintConsole"`
}

// Network is the per-chain connection and signing configuration.
type Network struct {
	RPCURLs    []string `json:"rpcUrls"`
	PrivateKey string   `json:"privateKey"`
	Mnemonic   string   `json:"mnemonic"`
	Passphrase string   `json:"passphrase"`
	Path       string   `json:"derivationPath"`

	// exchange deposit contract (EVM) or program id (Solana)
	DepositContract string `json:"depositContract"`
	Treasury        string `json:"treasury"`
}

type Exchange struct {
	BaseURL    string        `json:"baseUrl"`
	APIKey     string        `json:"apiKey"`
	APISecret  string        `json:"apiSecret"`
	RecvWindow int64         `json:"recvWindow"`
	Timeout    time.Duration `json:"timeout"`
}

type Bridge struct {
	Debug        bool   `json:"debug"`
	RegistryFile string `json:"registryFile"`

	// encrypted mnemonic used by networks without their own key or mnemonic
	KeystoreFile     string `json:"keystoreFile"`
	KeystorePassword string `json:"keystorePassword"`

	BrokerID     uint64 `json:"brokerId"`
	SolanaOpcode uint8  `json:"solanaOpcode"`

	ApproveTimeout time.Duration `json:"approveTimeout"`
	ConfirmTimeout time.Duration `json:"confirmTimeout"`
	PollInterval   time.Duration `json:"pollInterval"`

	SettleMode         string        `json:"settleMode"`
	DepositSettleDelay time.Duration `json:"depositSettleDelay"`
	SwapSettleDelay    time.Duration `json:"swapSettleDelay"`
	SettlePollInterval time.Duration `json:"settlePollInterval"`
	SettleTimeout      time.Duration `json:"settleTimeout"`
}

// Server is the complete agent configuration. It is built once at startup and passed
// explicitly to every constructor.
type Server struct {
	Logger   LoggerServer              `json:"logger"`
	Networks map[chain.Network]Network `json:"networks"`
	Exchange Exchange                  `json:"exchange"`
	Bridge   Bridge                    `json:"bridge"`
}

var networkEnvPrefixes = map[chain.Network]string{
	chain.Ethereum: "ETHEREUM",
	chain.Arbitrum: "ARBITRUM",
	chain.BSC:      "BSC",
	chain.Solana:   "SOLANA",
}

// LoadDotEnv exports the variables of the given .env files (default ".env") without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := gotenv.Load(p); err != nil {
			log.Debug().Str("path", p).Err(err).Msg("No env file loaded")
		}
	}
}

// DefaultServiceConfigFromEnv builds the configuration from the process environment.
func DefaultServiceConfigFromEnv() Server {
	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper reads every key from v, falling back to defaults.
func FromViper(v *viper.Viper) Server {
	setDefaults(v)

	debug := v.GetBool("BRIDGE_DEBUG")
	level := v.GetString("LOGGER_LEVEL")
	if debug {
		level = "debug"
	}

	cfg := Server{
		Logger: LoggerServer{
			Level:              level,
			PrettyPrintConsole: v.GetBool("LOGGER_PRETTY_PRINT_CONSOLE"),
		},
		Networks: make(map[chain.Network]Network, len(networkEnvPrefixes)),
		Exchange: Exchange{
			BaseURL:    v.GetString("EXCHANGE_BASE_URL"),
			APIKey:     v.GetString("EXCHANGE_API_KEY"),
			APISecret:  v.GetString("EXCHANGE_API_SECRET"),
			RecvWindow: v.GetInt64("EXCHANGE_RECV_WINDOW"),
			Timeout:    v.GetDuration("EXCHANGE_TIMEOUT"),
		},
		Bridge: Bridge{
			Debug:              debug,
			RegistryFile:       v.GetString("BRIDGE_REGISTRY_FILE"),
			KeystoreFile:       v.GetString("BRIDGE_KEYSTORE_FILE"),
			KeystorePassword:   v.GetString("BRIDGE_KEYSTORE_PASSWORD"),
			BrokerID:           v.GetUint64("BRIDGE_BROKER_ID"),
			SolanaOpcode:       uint8(v.GetUint("BRIDGE_SOLANA_OPCODE")), //nolint:gosec
			ApproveTimeout:     v.GetDuration("BRIDGE_APPROVE_TIMEOUT"),
			ConfirmTimeout:     v.GetDuration("BRIDGE_CONFIRM_TIMEOUT"),
			PollInterval:       v.GetDuration("BRIDGE_POLL_INTERVAL"),
			SettleMode:         strings.ToLower(v.GetString("BRIDGE_SETTLE_MODE")),
			DepositSettleDelay: v.GetDuration("BRIDGE_DEPOSIT_SETTLE_DELAY"),
			SwapSettleDelay:    v.GetDuration("BRIDGE_SWAP_SETTLE_DELAY"),
			SettlePollInterval: v.GetDuration("BRIDGE_SETTLE_POLL_INTERVAL"),
			SettleTimeout:      v.GetDuration("BRIDGE_SETTLE_TIMEOUT"),
		},
	}

	for n, prefix := range networkEnvPrefixes {
		cfg.Networks[n] = Network{
			RPCURLs:         util.SplitAndTrim(v.GetString(prefix + "_RPC_URL")),
			PrivateKey:      strings.TrimSpace(v.GetString(prefix + "_PRIVATE_KEY")),
			Mnemonic:        strings.TrimSpace(v.GetString(prefix + "_MNEMONIC")),
			Passphrase:      v.GetString(prefix + "_MNEMONIC_PASSPHRASE"),
			Path:            v.GetString(prefix + "_DERIVATION_PATH"),
			DepositContract: v.GetString(prefix + "_DEPOSIT_CONTRACT"),
			Treasury:        v.GetString(prefix + "_TREASURY"),
		}
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_PRETTY_PRINT_CONSOLE", false)

	v.SetDefault("ETHEREUM_RPC_URL", "https://eth.llamarpc.com")
	v.SetDefault("ARBITRUM_RPC_URL", "https://arb1.arbitrum.io/rpc")
	v.SetDefault("BSC_RPC_URL", "https://bsc-dataseed.bnbchain.org")
	v.SetDefault("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")

	v.SetDefault("EXCHANGE_BASE_URL", exchange.DefaultBaseURL)
	v.SetDefault("EXCHANGE_RECV_WINDOW", exchange.DefaultRecvWindow)
	v.SetDefault("EXCHANGE_TIMEOUT", 30*time.Second)

	v.SetDefault("BRIDGE_BROKER_ID", deposit.DefaultBroker)
	v.SetDefault("BRIDGE_SOLANA_OPCODE", 1)
	v.SetDefault("BRIDGE_APPROVE_TIMEOUT", deposit.DefaultApproveTimeout)
	v.SetDefault("BRIDGE_CONFIRM_TIMEOUT", deposit.DefaultConfirmTimeout)
	v.SetDefault("BRIDGE_SETTLE_MODE", SettleModeFixed)
	v.SetDefault("BRIDGE_DEPOSIT_SETTLE_DELAY", bridge.DefaultDepositSettleDelay)
	v.SetDefault("BRIDGE_SWAP_SETTLE_DELAY", bridge.DefaultSwapSettleDelay)
	v.SetDefault("BRIDGE_SETTLE_POLL_INTERVAL", bridge.DefaultSettlePollInterval)
	v.SetDefault("BRIDGE_SETTLE_TIMEOUT", bridge.DefaultSettleTimeout)
}

// Validate checks values that have no usable fallback.
func (s Server) Validate() error {
	switch s.Bridge.SettleMode {
	case SettleModeFixed, SettleModePoll:
	default:
		return errors.Errorf("BRIDGE_SETTLE_MODE must be %q or %q, got %q", SettleModeFixed, SettleModePoll, s.Bridge.SettleMode)
	}

	if s.Exchange.RecvWindow <= 0 || s.Exchange.RecvWindow > 60000 {
		return errors.Errorf("EXCHANGE_RECV_WINDOW must be within (0, 60000], got %d", s.Exchange.RecvWindow)
	}

	if s.Bridge.KeystoreFile != "" && s.Bridge.KeystorePassword == "" {
		return errors.New("BRIDGE_KEYSTORE_PASSWORD is required with BRIDGE_KEYSTORE_FILE")
	}

	return nil
}

// Redacted returns a copy safe to print. Keys and mnemonics are masked entirely.
func (s Server) Redacted() Server {
	out := s
	out.Networks = make(map[chain.Network]Network, len(s.Networks))
	for n, cfg := range s.Networks {
		cfg.PrivateKey = mask(cfg.PrivateKey)
		cfg.Mnemonic = mask(cfg.Mnemonic)
		cfg.Passphrase = mask(cfg.Passphrase)
		out.Networks[n] = cfg
	}
	out.Exchange.APIKey = util.Redact(s.Exchange.APIKey)
	out.Exchange.APISecret = mask(s.Exchange.APISecret)
	out.Bridge.KeystorePassword = mask(s.Bridge.KeystorePassword)
	return out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return masked
}
