package rewards

import (
	"fmt"
	"strings"
)

// Tier is one of the ordered referral commission levels. Higher tiers map to
// higher direct/grand referrer payout percentages.
type Tier uint8

const (
	TierSilver Tier = iota
	TierGold
	TierPlatinum
	TierEmerald
	TierDiamond
	TierUnicorn
)

const (
	// bpsDenominator scales integer percentages to two decimal places.
	bpsDenominator = 10_000

	// Base revenue split applied to every processed purchase.
	minerShareBps     = 5_000
	evaluatorShareBps = 2_000
	platformShareBps  = 3_000

	// MaxDirectBps and MaxGrandBps are the hard ceilings on referral rates.
	// Keeping direct+grand below the platform share guarantees the residual
	// platform leg never goes negative. Exported so configuration validation
	// enforces the same bounds as the engine.
	MaxDirectBps uint32 = 1_000
	MaxGrandBps  uint32 = 500
)

var tierNames = map[Tier]string{
	TierSilver:   "SILVER",
	TierGold:     "GOLD",
	TierPlatinum: "PLATINUM",
	TierEmerald:  "EMERALD",
	TierDiamond:  "DIAMOND",
	TierUnicorn:  "UNICORN",
}

// Valid reports whether the tier is one of the defined levels.
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TIER(%d)", uint8(t))
}

// ParseTier resolves a case-insensitive tier name.
func ParseTier(s string) (Tier, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for tier, name := range tierNames {
		if name == normalized {
			return tier, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// TierRates holds the referral bonus percentages for a tier in basis points.
type TierRates struct {
	DirectBps uint32 `json:"directBps"`
	GrandBps  uint32 `json:"grandBps"`
}

// DefaultRates returns the construction-time rate table.
func DefaultRates() map[Tier]TierRates {
	return map[Tier]TierRates{
		TierSilver:   {DirectBps: 500, GrandBps: 250},
		TierGold:     {DirectBps: 750, GrandBps: 375},
		TierPlatinum: {DirectBps: 1_000, GrandBps: 500},
		TierEmerald:  {DirectBps: 1_000, GrandBps: 500},
		TierDiamond:  {DirectBps: 1_000, GrandBps: 500},
		TierUnicorn:  {DirectBps: 1_000, GrandBps: 500},
	}
}
