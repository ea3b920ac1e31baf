package rewards

import (
	"math/big"
	"testing"
)

func TestComputeSplit(t *testing.T) {
	silver := DefaultRates()[TierSilver]
	cases := []struct {
		name      string
		total     int64
		rates     TierRates
		payDirect bool
		payGrand  bool
		miner     int64
		evaluator int64
		platform  int64
		direct    int64
		grand     int64
	}{
		{
			name:  "no referral",
			total: 10_000, rates: silver,
			miner: 5_000, evaluator: 2_000, platform: 3_000,
		},
		{
			name:  "direct only",
			total: 10_000, rates: silver, payDirect: true,
			miner: 5_000, evaluator: 2_000, platform: 2_500, direct: 500,
		},
		{
			name:  "full silver chain",
			total: 10_000, rates: silver, payDirect: true, payGrand: true,
			miner: 5_000, evaluator: 2_000, platform: 2_250, direct: 500, grand: 250,
		},
		{
			name:  "unicorn chain",
			total: 10_000, rates: DefaultRates()[TierUnicorn], payDirect: true, payGrand: true,
			miner: 5_000, evaluator: 2_000, platform: 1_500, direct: 1_000, grand: 500,
		},
		{
			name:  "truncation leaves dust",
			total: 999, rates: silver, payDirect: true, payGrand: true,
			miner: 499, evaluator: 199, platform: 226, direct: 49, grand: 24,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			split := computeSplit(big.NewInt(tc.total), tc.rates, tc.payDirect, tc.payGrand)
			check := func(name string, got *big.Int, want int64) {
				t.Helper()
				if got.Cmp(big.NewInt(want)) != 0 {
					t.Fatalf("%s leg: want %d got %s", name, want, got)
				}
			}
			check("miner", split.Miner, tc.miner)
			check("evaluator", split.Evaluator, tc.evaluator)
			check("platform", split.Platform, tc.platform)
			check("direct", split.Direct, tc.direct)
			check("grand", split.Grand, tc.grand)

			sum := new(big.Int).Add(split.Miner, split.Evaluator)
			sum.Add(sum, split.Platform)
			sum.Add(sum, split.Direct)
			sum.Add(sum, split.Grand)
			diff := new(big.Int).Sub(big.NewInt(tc.total), sum)
			if diff.Sign() < 0 || diff.Cmp(big.NewInt(5)) >= 0 {
				t.Fatalf("legs sum to %s of %d", sum, tc.total)
			}
		})
	}
}

func TestApplyBpsEdgeCases(t *testing.T) {
	if got := applyBps(nil, 500); got.Sign() != 0 {
		t.Fatalf("nil amount must yield zero, got %s", got)
	}
	if got := applyBps(big.NewInt(-10), 500); got.Sign() != 0 {
		t.Fatalf("negative amount must yield zero, got %s", got)
	}
	if got := applyBps(big.NewInt(1_000), 0); got.Sign() != 0 {
		t.Fatalf("zero bps must yield zero, got %s", got)
	}
	if got := applyBps(big.NewInt(1), 1); got.Sign() != 0 {
		t.Fatalf("sub-unit result must truncate to zero, got %s", got)
	}
}

func TestTierParsing(t *testing.T) {
	for _, tier := range []Tier{TierSilver, TierGold, TierPlatinum, TierEmerald, TierDiamond, TierUnicorn} {
		parsed, err := ParseTier(tier.String())
		if err != nil {
			t.Fatalf("parse %s: %v", tier, err)
		}
		if parsed != tier {
			t.Fatalf("round trip mismatch: %s -> %s", tier, parsed)
		}
	}
	if _, err := ParseTier("BRONZE"); err == nil {
		t.Fatalf("unknown tier must be rejected")
	}
	if Tier(200).Valid() {
		t.Fatalf("out of range tier must be invalid")
	}
}

func TestDefaultRatesHonorCeilings(t *testing.T) {
	for tier, rates := range DefaultRates() {
		if rates.DirectBps > MaxDirectBps {
			t.Fatalf("%s direct rate %d above ceiling", tier, rates.DirectBps)
		}
		if rates.GrandBps > MaxGrandBps {
			t.Fatalf("%s grand rate %d above ceiling", tier, rates.GrandBps)
		}
	}
}
