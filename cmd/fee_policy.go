package cmd

import (
	"fmt"
	"os"
	"strings"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/services"

	"gopkg.in/yaml.v3"
)

// feePolicyEntry mirrors one policy in the fee policy file.
type feePolicyEntry struct {
	FlatFee int64 `yaml:"flat_fee"`
	Bps     int64 `yaml:"bps"`
}

type feePolicyFile struct {
	Default feePolicyEntry            `yaml:"default"`
	Assets  map[string]feePolicyEntry `yaml:"assets"`
}

// FeePolicies is the parsed fee policy file.
type FeePolicies struct {
	Default  services.FeePolicy
	PerAsset map[string]services.FeePolicy
}

// LoadFeePolicies reads the fee schedule from a YAML file:
//
//	default:
//	  bps: 100
//	assets:
//	  USDC: {bps: 50, flat_fee: 10}
//
// An empty path yields a fee-free schedule.
func LoadFeePolicies(path string) (FeePolicies, error) {
	if strings.TrimSpace(path) == "" {
		return FeePolicies{}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return FeePolicies{}, fmt.Errorf("open fee policies: %w", err)
	}
	defer file.Close()

	var raw feePolicyFile
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err = dec.Decode(&raw); err != nil {
		return FeePolicies{}, fmt.Errorf("decode fee policies: %w", err)
	}

	out := FeePolicies{PerAsset: make(map[string]services.FeePolicy, len(raw.Assets))}
	if out.Default, err = raw.Default.policy(); err != nil {
		return FeePolicies{}, fmt.Errorf("default fee policy: %w", err)
	}
	for asset, entry := range raw.Assets {
		policy, err := entry.policy()
		if err != nil {
			return FeePolicies{}, fmt.Errorf("fee policy %s: %w", asset, err)
		}
		out.PerAsset[asset] = policy
	}
	return out, nil
}

func (e feePolicyEntry) policy() (services.FeePolicy, error) {
	flat, err := kernel.NewAmount(e.FlatFee)
	if err != nil {
		return services.FeePolicy{}, err
	}
	p := services.FeePolicy{FlatFee: flat, Bps: e.Bps}
	return p, p.Validate()
}
