package events

import (
	"math/big"

	"github.com/resolverai/roast-somnia-contracts/core/types"
)

const (
	TypeReferralRegistered       = "rewards.referral.registered"
	TypeReferralTierUpdated      = "rewards.referral.tier_updated"
	TypeReferralDeactivated      = "rewards.referral.deactivated"
	TypeRewardRatesUpdated       = "rewards.rates.updated"
	TypePayoutDistributed        = "rewards.payout.distributed"
	TypeRewardsTreasuriesUpdated = "rewards.treasuries.updated"
	TypeRewardsAdminTransferred  = "rewards.admin.transferred"
	TypeRewardsPaused            = "rewards.paused"
	TypeRewardsResumed           = "rewards.resumed"
	TypeRewardsCustodySwept      = "rewards.custody.swept"
)

// ReferralRegistered is emitted when a referral chain is recorded for a user.
type ReferralRegistered struct {
	User           [20]byte
	DirectReferrer [20]byte
	GrandReferrer  [20]byte
	Tier           string
	RegisteredAt   int64
}

func (ReferralRegistered) EventType() string { return TypeReferralRegistered }

func (e ReferralRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeReferralRegistered,
		Attributes: map[string]string{
			"user":           addrString(e.User),
			"directReferrer": addrString(e.DirectReferrer),
			"grandReferrer":  optionalAddrString(e.GrandReferrer),
			"tier":           e.Tier,
			"registeredAt":   intToString(e.RegisteredAt),
		},
	}
}

// ReferralTierUpdated is emitted when an active referral changes tier.
type ReferralTierUpdated struct {
	User    [20]byte
	OldTier string
	NewTier string
}

func (ReferralTierUpdated) EventType() string { return TypeReferralTierUpdated }

func (e ReferralTierUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeReferralTierUpdated,
		Attributes: map[string]string{
			"user":    addrString(e.User),
			"oldTier": e.OldTier,
			"newTier": e.NewTier,
		},
	}
}

// ReferralDeactivated is emitted when a referral record is soft-deleted.
type ReferralDeactivated struct {
	User [20]byte
}

func (ReferralDeactivated) EventType() string { return TypeReferralDeactivated }

func (e ReferralDeactivated) Event() *types.Event {
	return &types.Event{
		Type:       TypeReferralDeactivated,
		Attributes: map[string]string{"user": addrString(e.User)},
	}
}

// RewardRatesUpdated is emitted when the administrator adjusts a tier's rates.
type RewardRatesUpdated struct {
	Tier      string
	DirectBps uint32
	GrandBps  uint32
}

func (RewardRatesUpdated) EventType() string { return TypeRewardRatesUpdated }

func (e RewardRatesUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardRatesUpdated,
		Attributes: map[string]string{
			"tier":      e.Tier,
			"directBps": uintToString(uint64(e.DirectBps)),
			"grandBps":  uintToString(uint64(e.GrandBps)),
		},
	}
}

// PayoutDistributed carries the full five-leg breakdown of a completed
// distribution. It is emitted only when every transfer leg succeeded.
type PayoutDistributed struct {
	Index           uint64
	ContentID       string
	Buyer           [20]byte
	Miner           [20]byte
	Total           *big.Int
	MinerAmount     *big.Int
	EvaluatorAmount *big.Int
	PlatformAmount  *big.Int
	DirectAmount    *big.Int
	GrandAmount     *big.Int
	DirectReferrer  [20]byte
	GrandReferrer   [20]byte
}

func (PayoutDistributed) EventType() string { return TypePayoutDistributed }

func (e PayoutDistributed) Event() *types.Event {
	return &types.Event{
		Type: TypePayoutDistributed,
		Attributes: map[string]string{
			"index":           uintToString(e.Index),
			"contentId":       e.ContentID,
			"buyer":           addrString(e.Buyer),
			"miner":           addrString(e.Miner),
			"total":           formatAmount(e.Total),
			"minerAmount":     formatAmount(e.MinerAmount),
			"evaluatorAmount": formatAmount(e.EvaluatorAmount),
			"platformAmount":  formatAmount(e.PlatformAmount),
			"directAmount":    formatAmount(e.DirectAmount),
			"grandAmount":     formatAmount(e.GrandAmount),
			"directReferrer":  optionalAddrString(e.DirectReferrer),
			"grandReferrer":   optionalAddrString(e.GrandReferrer),
		},
	}
}

// RewardsTreasuriesUpdated is emitted when treasury wiring changes.
type RewardsTreasuriesUpdated struct {
	Evaluator [20]byte
	Platform  [20]byte
}

func (RewardsTreasuriesUpdated) EventType() string { return TypeRewardsTreasuriesUpdated }

func (e RewardsTreasuriesUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsTreasuriesUpdated,
		Attributes: map[string]string{
			"evaluator": addrString(e.Evaluator),
			"platform":  addrString(e.Platform),
		},
	}
}

// RewardsAdminTransferred is emitted when the administrator role rotates.
type RewardsAdminTransferred struct {
	OldAdmin [20]byte
	NewAdmin [20]byte
}

func (RewardsAdminTransferred) EventType() string { return TypeRewardsAdminTransferred }

func (e RewardsAdminTransferred) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsAdminTransferred,
		Attributes: map[string]string{
			"oldAdmin": addrString(e.OldAdmin),
			"newAdmin": addrString(e.NewAdmin),
		},
	}
}

// RewardsPaused is emitted when distribution is globally disabled.
type RewardsPaused struct {
	Caller [20]byte
}

func (RewardsPaused) EventType() string { return TypeRewardsPaused }

func (e RewardsPaused) Event() *types.Event {
	return &types.Event{
		Type:       TypeRewardsPaused,
		Attributes: map[string]string{"caller": addrString(e.Caller)},
	}
}

// RewardsResumed is emitted when distribution is re-enabled.
type RewardsResumed struct {
	Caller [20]byte
}

func (RewardsResumed) EventType() string { return TypeRewardsResumed }

func (e RewardsResumed) Event() *types.Event {
	return &types.Event{
		Type:       TypeRewardsResumed,
		Attributes: map[string]string{"caller": addrString(e.Caller)},
	}
}

// RewardsCustodySwept is emitted when stranded custody funds are recovered.
type RewardsCustodySwept struct {
	To     [20]byte
	Amount *big.Int
}

func (RewardsCustodySwept) EventType() string { return TypeRewardsCustodySwept }

func (e RewardsCustodySwept) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsCustodySwept,
		Attributes: map[string]string{
			"to":     addrString(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}
