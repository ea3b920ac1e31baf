package registry

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/resolverai/roast-somnia-contracts/core/events"
	"github.com/resolverai/roast-somnia-contracts/native/common"
)

var (
	errNilState            = errors.New("registry engine: state not configured")
	errNilLedger           = errors.New("registry engine: ledger not configured")
	errUnauthorized        = errors.New("registry engine: caller is not the administrator")
	errNotOwner            = errors.New("registry engine: caller is not the content owner")
	errContentExists       = errors.New("registry engine: content already exists")
	errContentNotFound     = errors.New("registry engine: content not found")
	errContentNotAvailable = errors.New("registry engine: content not available")
	errAlreadyApproved     = errors.New("registry engine: content already approved")
	errNotApproved         = errors.New("registry engine: content not approved")
	errAlreadyPersonalized = errors.New("registry engine: content already personalized")
	errInvalidCreator      = errors.New("registry engine: creator address required")
	errInvalidBuyer        = errors.New("registry engine: buyer address required")
	errInvalidPrice        = errors.New("registry engine: price must be positive")
	errEmptyHash           = errors.New("registry engine: content hash required")
	errEmptyContentType    = errors.New("registry engine: content type required")
	errReentrantPurchase   = errors.New("registry engine: purchase already in progress")
)

// Ledger is the slice of the value-transfer interface the registry consumes.
// Payment collection relies on delegated allowances (or permits) granted to
// the registry custody account.
type Ledger interface {
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, from, to [20]byte, amount *big.Int) error
	BalanceOf(addr [20]byte) (*big.Int, error)
	Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte) error
}

type engineState interface {
	RegistryContentGet(id string) (*Content, bool, error)
	RegistryContentPut(content *Content) error
	RegistryOwnerIndexGet(owner [20]byte) ([]string, error)
	RegistryOwnerIndexAppend(owner [20]byte, id string) error
	RegistryContentCount() (uint64, error)
	RegistryContentSetCount(count uint64) error
}

// Distributor is the capability the registry invokes after a committed
// purchase. The registry depends only on this interface; whatever engine is
// wired behind it receives the purchase price in its custody account before
// the call.
type Distributor interface {
	ProcessPurchase(contentID string, buyer, seller [20]byte, amount *big.Int) error
}

// Engine owns content records and the registration, approval, purchase and
// personalization lifecycle. It is the sole writer of content state; payout
// accounting lives entirely behind the Distributor capability.
type Engine struct {
	state              engineState
	ledger             Ledger
	distributor        Distributor
	distributorAccount [20]byte
	emitter            events.Emitter
	nowFn              func() int64
	pause              common.Toggle
	admin              [20]byte
	custody            [20]byte
	inPurchase         bool
}

// NewEngine constructs a registry engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

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

// SetCustody configures the registry's fund-holding account.
func (e *Engine) SetCustody(addr [20]byte) { e.custody = addr }

// Custody returns the registry's fund-holding account.
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

func sanitizeContentID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", errors.New("registry engine: content id required")
	}
	return trimmed, nil
}

// SetLedger replaces the value-transfer interface. Administrator-only once an
// administrator is wired.
func (e *Engine) SetLedger(caller [20]byte, ledger Ledger) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.ledger = ledger
	return nil
}

// SetDistributor replaces the payout capability together with the account the
// registry forwards purchase funds to. A nil distributor disables
// distribution; purchases then settle into registry custody only.
func (e *Engine) SetDistributor(caller [20]byte, distributor Distributor, account [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.distributor = distributor
	e.distributorAccount = account
	e.emit(events.RegistryDistributorUpdated{Account: account})
	return nil
}

// TransferAdmin rotates the administrator identity.
func (e *Engine) TransferAdmin(caller, next [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if isZeroAddress(next) {
		return errInvalidCreator
	}
	old := e.admin
	e.admin = next
	e.emit(events.RegistryAdminTransferred{OldAdmin: old, NewAdmin: next})
	return nil
}

// Pause disables purchases until Unpause.
func (e *Engine) Pause(caller [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.pause.Pause()
	e.emit(events.RegistryPaused{Caller: caller})
	return nil
}

// Unpause re-enables purchases.
func (e *Engine) Unpause(caller [20]byte) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.pause.Unpause()
	e.emit(events.RegistryResumed{Caller: caller})
	return nil
}

// RegisterContent creates an unapproved content record owned by its creator.
// Registration is open to anyone; approval is the trust boundary.
func (e *Engine) RegisterContent(creator [20]byte, id, contentHash, contentType string) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isZeroAddress(creator) {
		return nil, errInvalidCreator
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(contentHash) == "" {
		return nil, errEmptyHash
	}
	if strings.TrimSpace(contentType) == "" {
		return nil, errEmptyContentType
	}
	if _, ok, err := e.state.RegistryContentGet(sanitized); err != nil {
		return nil, err
	} else if ok {
		return nil, errContentExists
	}
	content := &Content{
		ID:          sanitized,
		Creator:     creator,
		Owner:       creator,
		ContentHash: strings.TrimSpace(contentHash),
		ContentType: strings.TrimSpace(contentType),
		Price:       big.NewInt(0),
		CreatedAt:   e.now(),
	}
	if err := e.state.RegistryContentPut(content); err != nil {
		return nil, err
	}
	count, err := e.state.RegistryContentCount()
	if err != nil {
		return nil, err
	}
	if err := e.state.RegistryContentSetCount(count + 1); err != nil {
		return nil, err
	}
	e.emit(events.ContentRegistered{
		ID:          content.ID,
		Creator:     creator,
		ContentHash: content.ContentHash,
		ContentType: content.ContentType,
		CreatedAt:   content.CreatedAt,
	})
	return content.Clone(), nil
}

// ApproveContent prices the content and lists it for sale. The owner is
// re-asserted to the creator so no pre-approval path can leave them diverged.
func (e *Engine) ApproveContent(caller [20]byte, id string, price *big.Int) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if price == nil || price.Sign() <= 0 {
		return nil, errInvalidPrice
	}
	content, ok, err := e.state.RegistryContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, errContentNotFound
	}
	if content.Approved {
		return nil, errAlreadyApproved
	}
	content.Owner = content.Creator
	content.Price = new(big.Int).Set(price)
	content.Approved = true
	content.Available = true
	content.ApprovedAt = e.now()
	if err := e.state.RegistryContentPut(content); err != nil {
		return nil, err
	}
	if err := e.state.RegistryOwnerIndexAppend(content.Creator, content.ID); err != nil {
		return nil, err
	}
	e.emit(events.ContentApproved{
		ID:         content.ID,
		Creator:    content.Creator,
		Price:      new(big.Int).Set(price),
		ApprovedAt: content.ApprovedAt,
	})
	return content.Clone(), nil
}

// UpdatePrice re-prices approved content while it is still unsold.
func (e *Engine) UpdatePrice(caller [20]byte, id string, newPrice *big.Int) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if newPrice == nil || newPrice.Sign() <= 0 {
		return nil, errInvalidPrice
	}
	content, ok, err := e.state.RegistryContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, errContentNotFound
	}
	if !content.Approved {
		return nil, errNotApproved
	}
	if !content.Available {
		return nil, errContentNotAvailable
	}
	oldPrice := content.Price
	content.Price = new(big.Int).Set(newPrice)
	if err := e.state.RegistryContentPut(content); err != nil {
		return nil, err
	}
	e.emit(events.ContentPriceUpdated{ID: content.ID, OldPrice: oldPrice, NewPrice: new(big.Int).Set(newPrice)})
	return content.Clone(), nil
}

// PurchaseContent settles a sale: it collects the price from the buyer into
// registry custody, transfers ownership, then forwards funds to the wired
// distributor and invokes it. The buyer must have approved the registry
// custody account as spender beforehand. Ownership transfer commits whether
// or not the downstream distribution succeeds; distribution outcome is only
// reflected in the emitted event.
func (e *Engine) PurchaseContent(buyer [20]byte, id string) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.inPurchase {
		return nil, errReentrantPurchase
	}
	e.inPurchase = true
	defer func() { e.inPurchase = false }()
	return e.purchaseLocked(buyer, id)
}

// purchaseLocked is the purchase body. Callers must hold the in-purchase flag.
func (e *Engine) purchaseLocked(buyer [20]byte, id string) (*Content, error) {
	if err := e.pause.Guard(); err != nil {
		return nil, fmt.Errorf("registry engine: %w", err)
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if isZeroAddress(buyer) {
		return nil, errInvalidBuyer
	}
	content, ok, err := e.state.RegistryContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, errContentNotFound
	}
	if !content.Available {
		return nil, errContentNotAvailable
	}

	price := new(big.Int).Set(content.Price)
	if err := e.ledger.TransferFrom(e.custody, buyer, e.custody, price); err != nil {
		return nil, fmt.Errorf("registry engine: collect payment: %w", err)
	}

	seller := content.Owner
	content.Owner = buyer
	content.Available = false
	content.SoldAt = e.now()
	if err := e.state.RegistryContentPut(content); err != nil {
		return nil, err
	}
	if err := e.state.RegistryOwnerIndexAppend(buyer, content.ID); err != nil {
		return nil, err
	}

	distributed := false
	if e.distributor != nil {
		if err := e.ledger.Transfer(e.custody, e.distributorAccount, price); err == nil {
			distributed = e.distributor.ProcessPurchase(content.ID, buyer, seller, price) == nil
		}
	}
	e.emit(events.ContentPurchased{
		ID:          content.ID,
		Buyer:       buyer,
		Seller:      seller,
		Price:       price,
		Distributed: distributed,
		SoldAt:      content.SoldAt,
	})
	return content.Clone(), nil
}

// PurchaseContentWithPermit consumes a signed allowance for the content price
// and executes the purchase as one inseparable operation. The in-purchase
// flag is held across the permit call too, so a permit-time callback cannot
// run a nested purchase against the half-settled sale.
func (e *Engine) PurchaseContentWithPermit(buyer [20]byte, id string, deadline int64, sig []byte) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if e.inPurchase {
		return nil, errReentrantPurchase
	}
	e.inPurchase = true
	defer func() { e.inPurchase = false }()

	if err := e.pause.Guard(); err != nil {
		return nil, fmt.Errorf("registry engine: %w", err)
	}
	content, ok, err := e.state.RegistryContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, errContentNotFound
	}
	if !content.Available {
		return nil, errContentNotAvailable
	}
	// The permit is consumed before payment collection; guards above keep the
	// nonce from burning on an operation that cannot proceed.
	if err := e.ledger.Permit(buyer, e.custody, content.Price, deadline, sig); err != nil {
		return nil, fmt.Errorf("registry engine: permit: %w", err)
	}
	return e.purchaseLocked(buyer, id)
}

// MarkContentPersonalized finalizes content for its current owner.
func (e *Engine) MarkContentPersonalized(caller [20]byte, id, personalizedHash string) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if strings.TrimSpace(personalizedHash) == "" {
		return nil, errEmptyHash
	}
	content, ok, err := e.state.RegistryContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, errContentNotFound
	}
	if caller != content.Owner {
		return nil, errNotOwner
	}
	if content.Personalized {
		return nil, errAlreadyPersonalized
	}
	content.PersonalizedHash = strings.TrimSpace(personalizedHash)
	content.Personalized = true
	content.PersonalizedAt = e.now()
	if err := e.state.RegistryContentPut(content); err != nil {
		return nil, err
	}
	e.emit(events.ContentPersonalized{
		ID:               content.ID,
		Owner:            content.Owner,
		PersonalizedHash: content.PersonalizedHash,
		PersonalizedAt:   content.PersonalizedAt,
	})
	return content.Clone(), nil
}

// Content returns the record for the supplied id without mutating state.
func (e *Engine) Content(id string) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	content, ok, err := e.state.RegistryContentGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || content == nil {
		return nil, errContentNotFound
	}
	return content.Clone(), nil
}

// ContentsOf returns the ids indexed under the supplied owner. The index is
// append-only: ids acquired by purchase accumulate alongside approved
// creations and are never removed on resale.
func (e *Engine) ContentsOf(owner [20]byte) ([]string, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.RegistryOwnerIndexGet(owner)
}

// TotalContents reports how many content records were ever registered.
func (e *Engine) TotalContents() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RegistryContentCount()
}

// EmergencyWithdraw sweeps the registry's full custody balance to the
// supplied destination. Operational escape hatch for stray value.
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
		return nil, errInvalidCreator
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
	e.emit(events.RegistryCustodySwept{To: to, Amount: new(big.Int).Set(balance)})
	return balance, nil
}
