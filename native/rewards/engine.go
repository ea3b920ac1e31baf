package rewards

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/resolverai/roast-somnia-contracts/core/events"
	"github.com/resolverai/roast-somnia-contracts/native/common"
)

var (
	errNilState               = errors.New("rewards engine: state not configured")
	errNilLedger              = errors.New("rewards engine: ledger not configured")
	errUnauthorized           = errors.New("rewards engine: caller is not the administrator")
	errInvalidBuyer           = errors.New("rewards engine: buyer address required")
	errInvalidMiner           = errors.New("rewards engine: miner address required")
	errInvalidAmount          = errors.New("rewards engine: amount must be positive")
	errInvalidUser            = errors.New("rewards engine: user address required")
	errInvalidReferrer        = errors.New("rewards engine: direct referrer address required")
	errSelfReferral           = errors.New("rewards engine: user cannot be their own referrer")
	errReferrerCollision      = errors.New("rewards engine: direct and grand referrer must differ")
	errInvalidTier            = errors.New("rewards engine: unknown tier")
	errReferralNotFound       = errors.New("rewards engine: referral record not found")
	errReferralInactive       = errors.New("rewards engine: referral record inactive")
	errTreasuryNotSet         = errors.New("rewards engine: treasuries not configured")
	errRateCeiling            = errors.New("rewards engine: rate exceeds ceiling")
	errReentrantDistribution  = errors.New("rewards engine: distribution already in progress")
	errDistributionIncomplete = errors.New("rewards engine: distribution incomplete")
	errPayoutNotFound         = errors.New("rewards engine: payout record not found")
)

// Ledger is the slice of the value-transfer interface the distribution engine
// consumes. The fungible token is an external collaborator; any
// implementation with atomic per-call semantics will do.
type Ledger interface {
	Transfer(from, to [20]byte, amount *big.Int) error
	BalanceOf(addr [20]byte) (*big.Int, error)
}

type engineState interface {
	RewardReferralGet(user [20]byte) (*ReferralRecord, bool, error)
	RewardReferralPut(record *ReferralRecord) error
	RewardPayoutGet(index uint64) (*PayoutRecord, bool, error)
	RewardPayoutPut(record *PayoutRecord) error
	RewardPayoutCount() (uint64, error)
	RewardPayoutSetCount(count uint64) error
}

// Engine owns the referral graph and the payout ledger, and executes the
// revenue split for every processed purchase. Funds are expected to sit in
// the engine's custody account before ProcessContentPurchase runs; the call
// itself is not restricted to the registry, matching the settlement layer's
// open invocation model.
type Engine struct {
	state             engineState
	ledger            Ledger
	emitter           events.Emitter
	nowFn             func() int64
	pause             common.Toggle
	admin             [20]byte
	custody           [20]byte
	evaluatorTreasury [20]byte
	platformTreasury  [20]byte
	rates             map[Tier]TierRates
	inFlight          bool
}

// NewEngine constructs a distribution engine with the default rate table.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		rates:   DefaultRates(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the value-transfer interface used for payouts.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetAdmin wires the initial administrator identity.
func (e *Engine) SetAdmin(addr [20]byte) { e.admin = addr }

// SetCustody configures the account holding funds awaiting distribution.
func (e *Engine) SetCustody(addr [20]byte) { e.custody = addr }

// Custody returns the engine's fund-holding account.
func (e *Engine) Custody() [20]byte { return e.custody }

// Admin returns the current administrator identity.
func (e *Engine) Admin() [20]byte { return e.admin }

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) requireAdmin(caller [20]byte) error {
	if isZeroAddress(e.admin) || caller != e.admin {
		return errUnauthorized
	}
	return nil
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func newBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// SetTreasuries configures the evaluator and platform payout destinations.
func (e *Engine) SetTreasuries(caller, evaluator, platform [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if isZeroAddress(evaluator) || isZeroAddress(platform) {
		return errTreasuryNotSet
	}
	e.evaluatorTreasury = evaluator
	e.platformTreasury = platform
	e.emit(events.RewardsTreasuriesUpdated{Evaluator: evaluator, Platform: platform})
	return nil
}

// TransferAdmin rotates the administrator identity.
func (e *Engine) TransferAdmin(caller, next [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if isZeroAddress(next) {
		return errInvalidUser
	}
	old := e.admin
	e.admin = next
	e.emit(events.RewardsAdminTransferred{OldAdmin: old, NewAdmin: next})
	return nil
}

// Pause disables distribution until Unpause.
func (e *Engine) Pause(caller [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.pause.Pause()
	e.emit(events.RewardsPaused{Caller: caller})
	return nil
}

// Unpause re-enables distribution.
func (e *Engine) Unpause(caller [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.pause.Unpause()
	e.emit(events.RewardsResumed{Caller: caller})
	return nil
}

// SetTierRates updates the referral percentages for one tier. Ceilings keep
// the combined referral carve-out strictly below the platform share.
func (e *Engine) SetTierRates(caller [20]byte, tier Tier, directBps, grandBps uint32) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if !tier.Valid() {
		return errInvalidTier
	}
	if directBps > MaxDirectBps || grandBps > MaxGrandBps {
		return errRateCeiling
	}
	e.rates[tier] = TierRates{DirectBps: directBps, GrandBps: grandBps}
	e.emit(events.RewardRatesUpdated{Tier: tier.String(), DirectBps: directBps, GrandBps: grandBps})
	return nil
}

// TierRatesFor returns the configured rates for the tier.
func (e *Engine) TierRatesFor(tier Tier) (TierRates, bool) {
	rates, ok := e.rates[tier]
	return rates, ok
}

// RegisterReferral records the two-level referral chain for a user,
// overwriting any prior record and resetting its accumulators. The grand
// referrer may be absent (zero address). Only immediate self-reference is
// rejected; a two-hop cycle (A refers B while B refers A) remains
// representable, which is a known validation gap kept for ledger
// compatibility.
func (e *Engine) RegisterReferral(caller, user, directReferrer, grandReferrer [20]byte, tier Tier) (*ReferralRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if isZeroAddress(user) {
		return nil, errInvalidUser
	}
	if isZeroAddress(directReferrer) {
		return nil, errInvalidReferrer
	}
	if directReferrer == user || grandReferrer == user {
		return nil, errSelfReferral
	}
	if directReferrer == grandReferrer {
		return nil, errReferrerCollision
	}
	if !tier.Valid() {
		return nil, errInvalidTier
	}
	record := &ReferralRecord{
		User:           user,
		DirectReferrer: directReferrer,
		GrandReferrer:  grandReferrer,
		Tier:           tier,
		Active:         true,
		TotalEarnings:  big.NewInt(0),
		TotalReferrals: 0,
		RegisteredAt:   e.now(),
	}
	if err := e.state.RewardReferralPut(record); err != nil {
		return nil, err
	}
	e.emit(events.ReferralRegistered{
		User:           user,
		DirectReferrer: directReferrer,
		GrandReferrer:  grandReferrer,
		Tier:           tier.String(),
		RegisteredAt:   record.RegisteredAt,
	})
	return record.Clone(), nil
}

// UpdateUserTier moves an active referral record to a new tier.
func (e *Engine) UpdateUserTier(caller, user [20]byte, newTier Tier) (*ReferralRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if !newTier.Valid() {
		return nil, errInvalidTier
	}
	record, ok, err := e.state.RewardReferralGet(user)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, errReferralNotFound
	}
	if !record.Active {
		return nil, errReferralInactive
	}
	oldTier := record.Tier
	record.Tier = newTier
	if err := e.state.RewardReferralPut(record); err != nil {
		return nil, err
	}
	e.emit(events.ReferralTierUpdated{User: user, OldTier: oldTier.String(), NewTier: newTier.String()})
	return record.Clone(), nil
}

// DeactivateReferral soft-deletes the record; historical accumulators remain.
func (e *Engine) DeactivateReferral(caller, user [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	record, ok, err := e.state.RewardReferralGet(user)
	if err != nil {
		return err
	}
	if !ok || record == nil {
		return errReferralNotFound
	}
	record.Active = false
	if err := e.state.RewardReferralPut(record); err != nil {
		return err
	}
	e.emit(events.ReferralDeactivated{User: user})
	return nil
}

// Referral returns the referral record for the user without mutating state.
func (e *Engine) Referral(user [20]byte) (*ReferralRecord, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	record, ok, err := e.state.RewardReferralGet(user)
	if err != nil || !ok {
		return nil, ok, err
	}
	return record.Clone(), true, nil
}

// Payout returns the payout ledger entry at the supplied index.
func (e *Engine) Payout(index uint64) (*PayoutRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, ok, err := e.state.RewardPayoutGet(index)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, errPayoutNotFound
	}
	return record.Clone(), nil
}

// TotalPayouts reports the number of ledger entries ever appended.
func (e *Engine) TotalPayouts() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RewardPayoutCount()
}

// ProcessContentPurchase computes and executes the five-leg revenue split for
// one purchase. The payout record is appended before any transfer runs and
// persists regardless of outcome. Transfers execute in fixed order and stop
// at the first failure without undoing legs already paid; in that case the
// record stays incomplete, no accumulators move, and the returned error wraps
// the failing leg. The ledger may call back arbitrary code; the in-flight
// guard keeps a nested entry from appending a second record mid-distribution.
func (e *Engine) ProcessContentPurchase(contentID string, buyer, miner [20]byte, total *big.Int) (*PayoutRecord, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if e.inFlight {
		return nil, errReentrantDistribution
	}
	e.inFlight = true
	defer func() { e.inFlight = false }()

	if err := e.pause.Guard(); err != nil {
		return nil, fmt.Errorf("rewards engine: %w", err)
	}
	if isZeroAddress(buyer) {
		return nil, errInvalidBuyer
	}
	if isZeroAddress(miner) {
		return nil, errInvalidMiner
	}
	if total == nil || total.Sign() <= 0 {
		return nil, errInvalidAmount
	}
	if isZeroAddress(e.evaluatorTreasury) || isZeroAddress(e.platformTreasury) {
		return nil, errTreasuryNotSet
	}

	referral, hasReferral, err := e.state.RewardReferralGet(buyer)
	if err != nil {
		return nil, err
	}
	payDirect := hasReferral && referral != nil && referral.Active
	var rates TierRates
	var directReferrer, grandReferrer [20]byte
	payGrand := false
	if payDirect {
		rates = e.rates[referral.Tier]
		directReferrer = referral.DirectReferrer
		grandReferrer = referral.GrandReferrer
		if !isZeroAddress(grandReferrer) {
			grandRecord, ok, err := e.state.RewardReferralGet(grandReferrer)
			if err != nil {
				return nil, err
			}
			payGrand = ok && grandRecord != nil && grandRecord.Active
		}
	}
	split := computeSplit(total, rates, payDirect, payGrand)

	index, err := e.state.RewardPayoutCount()
	if err != nil {
		return nil, err
	}
	record := &PayoutRecord{
		Index:           index,
		ContentID:       contentID,
		Buyer:           buyer,
		Miner:           miner,
		Total:           newBigInt(total),
		MinerAmount:     split.Miner,
		EvaluatorAmount: split.Evaluator,
		PlatformAmount:  split.Platform,
		DirectAmount:    split.Direct,
		GrandAmount:     split.Grand,
		DirectReferrer:  directReferrer,
		GrandReferrer:   grandReferrer,
		Completed:       false,
		CreatedAt:       e.now(),
	}
	if err := e.state.RewardPayoutPut(record); err != nil {
		return nil, err
	}
	if err := e.state.RewardPayoutSetCount(index + 1); err != nil {
		return nil, err
	}

	legs := []struct {
		name   string
		to     [20]byte
		amount *big.Int
	}{
		{name: "miner", to: miner, amount: split.Miner},
		{name: "evaluator", to: e.evaluatorTreasury, amount: split.Evaluator},
		{name: "platform", to: e.platformTreasury, amount: split.Platform},
		{name: "direct", to: directReferrer, amount: split.Direct},
		{name: "grand", to: grandReferrer, amount: split.Grand},
	}
	for _, leg := range legs {
		// Truncation can zero any leg for dust totals. A zero leg is not a
		// failure; there is simply nothing to move.
		if leg.amount.Sign() <= 0 {
			continue
		}
		if err := e.ledger.Transfer(e.custody, leg.to, leg.amount); err != nil {
			return record.Clone(), fmt.Errorf("%w: %s leg: %v", errDistributionIncomplete, leg.name, err)
		}
	}

	record.Completed = true
	if err := e.state.RewardPayoutPut(record); err != nil {
		return record.Clone(), err
	}
	if split.Direct.Sign() > 0 {
		if err := e.creditReferrer(directReferrer, split.Direct, true); err != nil {
			return record.Clone(), err
		}
	}
	if split.Grand.Sign() > 0 {
		if err := e.creditReferrer(grandReferrer, split.Grand, false); err != nil {
			return record.Clone(), err
		}
	}
	e.emit(events.PayoutDistributed{
		Index:           record.Index,
		ContentID:       record.ContentID,
		Buyer:           buyer,
		Miner:           miner,
		Total:           newBigInt(total),
		MinerAmount:     newBigInt(split.Miner),
		EvaluatorAmount: newBigInt(split.Evaluator),
		PlatformAmount:  newBigInt(split.Platform),
		DirectAmount:    newBigInt(split.Direct),
		GrandAmount:     newBigInt(split.Grand),
		DirectReferrer:  directReferrer,
		GrandReferrer:   grandReferrer,
	})
	return record.Clone(), nil
}

// creditReferrer accrues earnings on the referrer's own record, creating a
// bare inactive record when the referrer was never registered themselves so
// the accumulator is not lost.
func (e *Engine) creditReferrer(referrer [20]byte, amount *big.Int, countReferral bool) error {
	record, ok, err := e.state.RewardReferralGet(referrer)
	if err != nil {
		return err
	}
	if !ok || record == nil {
		record = &ReferralRecord{User: referrer, TotalEarnings: big.NewInt(0)}
	}
	if record.TotalEarnings == nil {
		record.TotalEarnings = big.NewInt(0)
	}
	record.TotalEarnings = new(big.Int).Add(record.TotalEarnings, amount)
	if countReferral {
		record.TotalReferrals++
	}
	return e.state.RewardReferralPut(record)
}

// ProcessPurchase adapts ProcessContentPurchase to the registry's distributor
// capability interface.
func (e *Engine) ProcessPurchase(contentID string, buyer, seller [20]byte, amount *big.Int) error {
	_, err := e.ProcessContentPurchase(contentID, buyer, seller, amount)
	return err
}

// EmergencyWithdraw sweeps the engine's full custody balance to the supplied
// destination. It exists to resolve funds stranded by incomplete
// distributions.
func (e *Engine) EmergencyWithdraw(caller, to [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if isZeroAddress(to) {
		return nil, errInvalidUser
	}
	balance, err := e.ledger.BalanceOf(e.custody)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if err := e.ledger.Transfer(e.custody, to, balance); err != nil {
		return nil, err
	}
	e.emit(events.RewardsCustodySwept{To: to, Amount: newBigInt(balance)})
	return balance, nil
}
