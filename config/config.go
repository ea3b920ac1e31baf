package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/resolverai/roast-somnia-contracts/crypto"
	"github.com/resolverai/roast-somnia-contracts/native/rewards"
)

const defaultConfig = `# roast settlement configuration
DataDir = "./roast-data"
# Backend selects the state store: "memory", "leveldb" or "bolt".
Backend = "bolt"
# Administrator identity (bech32, roast prefix). Privileged operations are
# rejected until this is set.
Admin = ""
EvaluatorTreasury = ""
PlatformTreasury = ""
# Module custody accounts holding funds in flight.
RegistryAccount = ""
RewardsAccount = ""
PauseAtBoot = false

# Per-tier referral rate overrides in basis points, e.g.:
# [TierRates.GOLD]
# DirectBps = 750
# GrandBps = 375
`

// TierRateOverride adjusts one tier's referral percentages at boot.
type TierRateOverride struct {
	DirectBps uint32 `toml:"DirectBps"`
	GrandBps  uint32 `toml:"GrandBps"`
}

// Config carries the operator-supplied settlement wiring.
type Config struct {
	DataDir           string                      `toml:"DataDir"`
	Backend           string                      `toml:"Backend"`
	Admin             string                      `toml:"Admin"`
	EvaluatorTreasury string                      `toml:"EvaluatorTreasury"`
	PlatformTreasury  string                      `toml:"PlatformTreasury"`
	RegistryAccount   string                      `toml:"RegistryAccount"`
	RewardsAccount    string                      `toml:"RewardsAccount"`
	PauseAtBoot       bool                        `toml:"PauseAtBoot"`
	TierRates         map[string]TierRateOverride `toml:"TierRates"`
}

// Load reads the configuration from the given path, creating a commented
// default file when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func createDefault(path string) (*Config, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write default config: %w", err)
	}
	cfg := &Config{}
	if _, err := toml.Decode(defaultConfig, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./roast-data"
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = "bolt"
	}
}

// Validate checks backend selection, address encodings and tier overrides.
// Empty addresses pass; operations requiring them fail at the engine level
// instead, so a fresh config remains loadable.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "memory", "leveldb", "bolt":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	for name, value := range map[string]string{
		"Admin":             c.Admin,
		"EvaluatorTreasury": c.EvaluatorTreasury,
		"PlatformTreasury":  c.PlatformTreasury,
		"RegistryAccount":   c.RegistryAccount,
		"RewardsAccount":    c.RewardsAccount,
	} {
		if _, err := c.address(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for tierName, override := range c.TierRates {
		if _, err := rewards.ParseTier(tierName); err != nil {
			return err
		}
		if override.DirectBps > rewards.MaxDirectBps || override.GrandBps > rewards.MaxGrandBps {
			return fmt.Errorf("tier %s rates exceed ceilings", tierName)
		}
	}
	return nil
}

func (c *Config) address(value string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return out, nil
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return out, err
	}
	if addr.Prefix() != crypto.RoastPrefix {
		return out, fmt.Errorf("unexpected address prefix %q", addr.Prefix())
	}
	return addr.Bytes20(), nil
}

// AdminAddress decodes the administrator identity; zero when unset.
func (c *Config) AdminAddress() ([20]byte, error) { return c.address(c.Admin) }

// EvaluatorAddress decodes the evaluator treasury; zero when unset.
func (c *Config) EvaluatorAddress() ([20]byte, error) { return c.address(c.EvaluatorTreasury) }

// PlatformAddress decodes the platform treasury; zero when unset.
func (c *Config) PlatformAddress() ([20]byte, error) { return c.address(c.PlatformTreasury) }

// RegistryCustody decodes the registry custody account; zero when unset.
func (c *Config) RegistryCustody() ([20]byte, error) { return c.address(c.RegistryAccount) }

// RewardsCustody decodes the rewards custody account; zero when unset.
func (c *Config) RewardsCustody() ([20]byte, error) { return c.address(c.RewardsAccount) }
