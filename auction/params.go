package auction

import (
	"github.com/pkg/errors"
	"time"
)

// Protocol constants. The engine is a fixed two-party auction.
const (
	MinBidders    = 2
	MaxBidders    = 2
	MaxBid        = 1000
	BidDuration   = 10
	CheckDuration = 10
)

type Params struct {
	Name          string        `yaml:"name"`
	AddressHRP    string        `yaml:"address_hrp"`
	APIPort       int           `yaml:"api_port"`
	BlockInterval time.Duration `yaml:"block_interval"`
	AllowFaucet   bool          `yaml:"allow_faucet"`
	MinBidders    int           `yaml:"min_bidders"`
	MaxBidders    int           `yaml:"max_bidders"`
	MaxBid        uint64        `yaml:"max_bid"`
	BidDuration   int           `yaml:"bid_duration"`
	CheckDuration int           `yaml:"check_duration"`
}

// ParamsMain follows heights from an external chain, so BlockInterval is
// zero and nobody can mint balances.
var ParamsMain = &Params{
	Name:          "main",
	AddressHRP:    "vk",
	APIPort:       12139,
	MinBidders:    MinBidders,
	MaxBidders:    MaxBidders,
	MaxBid:        MaxBid,
	BidDuration:   BidDuration,
	CheckDuration: CheckDuration,
}

var ParamsRegtest = &Params{
	Name:          "regtest",
	AddressHRP:    "rvk",
	APIPort:       14139,
	BlockInterval: 5 * time.Second,
	AllowFaucet:   true,
	MinBidders:    MinBidders,
	MaxBidders:    MaxBidders,
	MaxBid:        MaxBid,
	BidDuration:   BidDuration,
	CheckDuration: CheckDuration,
}

func ParamsFromName(name string) (*Params, error) {
	switch name {
	case ParamsMain.Name:
		return ParamsMain, nil
	case ParamsRegtest.Name:
		return ParamsRegtest, nil
	default:
		return nil, errors.Errorf("invalid network %s", name)
	}
}

func (p *Params) Validate() error {
	if p.MinBidders != MinBidders || p.MaxBidders != MaxBidders {
		return errors.Errorf("only %d-party auctions are supported", MaxBidders)
	}
	if p.MaxBid == 0 {
		return errors.New("max bid must be positive")
	}
	if p.BidDuration <= 0 || p.CheckDuration <= 0 {
		return errors.New("phase durations must be positive")
	}
	if p.AddressHRP == "" {
		return errors.New("address HRP must be set")
	}
	if p.BlockInterval < 0 {
		return errors.New("block interval cannot be negative")
	}
	return nil
}

// Copy returns a shallow copy so that callers can apply overrides without
// touching the shared presets.
func (p *Params) Copy() *Params {
	out := *p
	return &out
}
