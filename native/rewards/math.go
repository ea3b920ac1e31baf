package rewards

import "math/big"

// Split holds the five computed payout legs for one purchase. Platform is the
// residual platform amount after referral bonuses are carved out of the
// platform share; Direct and Grand are funded from it, never on top of it.
type Split struct {
	Miner     *big.Int
	Evaluator *big.Int
	Platform  *big.Int
	Direct    *big.Int
	Grand     *big.Int
}

// applyBps computes amount*bps/10_000 with truncating integer division.
func applyBps(amount *big.Int, bps uint32) *big.Int {
	if amount == nil || amount.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(bps)))
	return out.Div(out, big.NewInt(bpsDenominator))
}

// computeSplit derives the payout legs for the supplied total. Each leg
// truncates independently, so the legs may sum to slightly less than total;
// the shortfall is bounded by the number of legs and stays in custody.
// payDirect and payGrand gate the referral legs without changing the base
// split.
func computeSplit(total *big.Int, rates TierRates, payDirect, payGrand bool) Split {
	split := Split{
		Miner:     applyBps(total, minerShareBps),
		Evaluator: applyBps(total, evaluatorShareBps),
		Platform:  applyBps(total, platformShareBps),
		Direct:    big.NewInt(0),
		Grand:     big.NewInt(0),
	}
	if payDirect {
		split.Direct = applyBps(total, rates.DirectBps)
	}
	if payGrand {
		split.Grand = applyBps(total, rates.GrandBps)
	}
	split.Platform = new(big.Int).Sub(split.Platform, split.Direct)
	split.Platform = split.Platform.Sub(split.Platform, split.Grand)
	return split
}
