package chain

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/errs"
	"gopkg.in/yaml.v3"
)

// Overlay models the optional registry file. Every field is optional.
//
//	networks:
//	  arbitrum:
//	    deposit_contract: "0x..."
//	    explorer_tx_url: "https://arbiscan.io/tx/"
//	  solana:
//	    deposit_contract: "<program id>"
//	    treasury: "<treasury account>"
//	    pda_seeds:
//	      - ["user", "{payer}"]
//	      - ["{payer}"]
//	tokens:
//	  - network: bsc
//	    symbol: CAKE
//	    address: "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"
type Overlay struct {
	Networks map[string]NetworkOverlay `yaml:"networks"`
	Tokens   []TokenOverlay            `yaml:"tokens"`
}

type NetworkOverlay struct {
	DepositContract string     `yaml:"deposit_contract"`
	ExplorerTxURL   string     `yaml:"explorer_tx_url"`
	Treasury        string     `yaml:"treasury"`
	PDASeeds        [][]string `yaml:"pda_seeds"`
}

type TokenOverlay struct {
	Network    string `yaml:"network"`
	Symbol     string `yaml:"symbol"`
	Name       string `yaml:"name"`
	Address    string `yaml:"address"`
	Decimals   *int32 `yaml:"decimals"`
	Stablecoin bool   `yaml:"stablecoin"`
}

// LoadOverlay parses the registry file at path. An empty path yields an empty overlay.
func LoadOverlay(path string) (*Overlay, error) {
	if strings.TrimSpace(path) == "" {
		return &Overlay{}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry file")
	}

	return ParseOverlay(content)
}

// ParseOverlay decodes registry YAML.
func ParseOverlay(content []byte) (*Overlay, error) {
	var o Overlay
	if err := yaml.Unmarshal(content, &o); err != nil {
		return nil, errors.Wrap(err, "failed to parse registry file")
	}
	return &o, nil
}

// Apply merges an overlay into the registry. Apply is meant to run once at startup.
func (r *Registry) Apply(o *Overlay) error {
	if o == nil {
		return nil
	}

	for name, no := range o.Networks {
		info, err := r.Network(name)
		if err != nil {
			return err
		}

		if no.DepositContract != "" {
			if err := validateAddress(info, no.DepositContract); err != nil {
				return errors.Wrapf(err, "deposit contract of %s", info.Name)
			}
			info.DepositContract = no.DepositContract
		}
		if no.ExplorerTxURL != "" {
			info.ExplorerTxURL = no.ExplorerTxURL
		}
		if no.Treasury != "" {
			if err := validateAddress(info, no.Treasury); err != nil {
				return errors.Wrapf(err, "treasury of %s", info.Name)
			}
			info.Treasury = no.Treasury
		}
		if len(no.PDASeeds) > 0 {
			info.PDASeeds = no.PDASeeds
		}
	}

	for _, to := range o.Tokens {
		info, err := r.Network(to.Network)
		if err != nil {
			return err
		}
		if to.Symbol == "" {
			return errs.Validation("token overlay on %s has no symbol", info.Name)
		}

		t := &Token{
			Network:    info.Name,
			Symbol:     strings.ToUpper(to.Symbol),
			Name:       to.Name,
			Decimals:   DecimalsUnknown,
			Stablecoin: to.Stablecoin,
		}
		if to.Decimals != nil {
			t.Decimals = *to.Decimals
		}

		switch {
		case to.Address == "":
			return errs.Validation("token %s on %s has no address", to.Symbol, info.Name)
		case info.IsEVM():
			t.Kind = KindFungibleEVM
		default:
			t.Kind = KindFungibleOther
		}
		if err := validateAddress(info, to.Address); err != nil {
			return errors.Wrapf(err, "token %s on %s", to.Symbol, info.Name)
		}
		t.Address = to.Address

		r.addToken(t)
	}

	return nil
}

// SetDepositContract overrides the deposit contract of a network.
func (r *Registry) SetDepositContract(n Network, addr string) error {
	info, ok := r.networks[n]
	if !ok {
		return errs.New(errs.KindUnsupportedNetwork, "network %q is not configured", n)
	}
	if err := validateAddress(info, addr); err != nil {
		return err
	}
	info.DepositContract = addr
	return nil
}

// SetTreasury overrides the exchange treasury of a Solana network.
func (r *Registry) SetTreasury(n Network, addr string) error {
	info, ok := r.networks[n]
	if !ok {
		return errs.New(errs.KindUnsupportedNetwork, "network %q is not configured", n)
	}
	if info.IsEVM() {
		return errs.Validation("%s has no treasury", n)
	}
	if err := validateAddress(info, addr); err != nil {
		return err
	}
	info.Treasury = addr
	return nil
}

func validateAddress(info *NetworkInfo, addr string) error {
	if info.IsEVM() {
		if !common.IsHexAddress(addr) {
			return errs.New(errs.KindInvalidAddress, "invalid EVM address %q", addr)
		}
		return nil
	}

	if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return errs.Wrap(errs.KindInvalidAddress, err, "invalid Solana address %q", addr)
	}
	return nil
}
