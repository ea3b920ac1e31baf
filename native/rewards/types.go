package rewards

import "math/big"

// ReferralRecord tracks the two-level referral chain and running accumulators
// for a registered participant.
type ReferralRecord struct {
	User           [20]byte `json:"user"`
	DirectReferrer [20]byte `json:"directReferrer"`
	GrandReferrer  [20]byte `json:"grandReferrer"`
	Tier           Tier     `json:"tier"`
	Active         bool     `json:"active"`
	TotalEarnings  *big.Int `json:"totalEarnings"`
	TotalReferrals uint64   `json:"totalReferrals"`
	RegisteredAt   int64    `json:"registeredAt"`
}

// Clone returns a deep copy of the referral record.
func (r *ReferralRecord) Clone() *ReferralRecord {
	if r == nil {
		return nil
	}
	clone := *r
	if r.TotalEarnings != nil {
		clone.TotalEarnings = new(big.Int).Set(r.TotalEarnings)
	}
	return &clone
}

// PayoutRecord is an append-only ledger entry capturing the full breakdown of
// one distribution. Records persist whether or not every transfer leg
// succeeded; Completed distinguishes the two outcomes and is never flipped
// back once set.
type PayoutRecord struct {
	Index           uint64   `json:"index"`
	ContentID       string   `json:"contentId"`
	Buyer           [20]byte `json:"buyer"`
	Miner           [20]byte `json:"miner"`
	Total           *big.Int `json:"total"`
	MinerAmount     *big.Int `json:"minerAmount"`
	EvaluatorAmount *big.Int `json:"evaluatorAmount"`
	PlatformAmount  *big.Int `json:"platformAmount"`
	DirectAmount    *big.Int `json:"directAmount"`
	GrandAmount     *big.Int `json:"grandAmount"`
	DirectReferrer  [20]byte `json:"directReferrer"`
	GrandReferrer   [20]byte `json:"grandReferrer"`
	Completed       bool     `json:"completed"`
	CreatedAt       int64    `json:"createdAt"`
}

// Clone returns a deep copy of the payout record.
func (p *PayoutRecord) Clone() *PayoutRecord {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Total != nil {
		clone.Total = new(big.Int).Set(p.Total)
	}
	if p.MinerAmount != nil {
		clone.MinerAmount = new(big.Int).Set(p.MinerAmount)
	}
	if p.EvaluatorAmount != nil {
		clone.EvaluatorAmount = new(big.Int).Set(p.EvaluatorAmount)
	}
	if p.PlatformAmount != nil {
		clone.PlatformAmount = new(big.Int).Set(p.PlatformAmount)
	}
	if p.DirectAmount != nil {
		clone.DirectAmount = new(big.Int).Set(p.DirectAmount)
	}
	if p.GrandAmount != nil {
		clone.GrandAmount = new(big.Int).Set(p.GrandAmount)
	}
	return &clone
}
