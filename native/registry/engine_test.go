package registry

import (
	"errors"
	"math/big"
	"testing"

	"github.com/resolverai/roast-somnia-contracts/core/events"
	"github.com/resolverai/roast-somnia-contracts/native/common"
)

type mockState struct {
	contents   map[string]*Content
	ownerIndex map[[20]byte][]string
	count      uint64
}

func newMockState() *mockState {
	return &mockState{
		contents:   make(map[string]*Content),
		ownerIndex: make(map[[20]byte][]string),
	}
}

func (m *mockState) RegistryContentGet(id string) (*Content, bool, error) {
	content, ok := m.contents[id]
	if !ok {
		return nil, false, nil
	}
	return content.Clone(), true, nil
}

func (m *mockState) RegistryContentPut(content *Content) error {
	if content == nil {
		return nil
	}
	m.contents[content.ID] = content.Clone()
	return nil
}

func (m *mockState) RegistryOwnerIndexGet(owner [20]byte) ([]string, error) {
	return append([]string(nil), m.ownerIndex[owner]...), nil
}

func (m *mockState) RegistryOwnerIndexAppend(owner [20]byte, id string) error {
	m.ownerIndex[owner] = append(m.ownerIndex[owner], id)
	return nil
}

func (m *mockState) RegistryContentCount() (uint64, error) { return m.count, nil }

func (m *mockState) RegistryContentSetCount(count uint64) error {
	m.count = count
	return nil
}

type permitCall struct {
	owner    [20]byte
	spender  [20]byte
	value    *big.Int
	deadline int64
}

type mockLedger struct {
	balances         map[[20]byte]*big.Int
	failTransferFrom bool
	permitErr        error
	permitHook       func()
	permits          []permitCall
}

func newMockLedger() *mockLedger {
	return &mockLedger{balances: make(map[[20]byte]*big.Int)}
}

func (m *mockLedger) fund(addr [20]byte, amount int64) {
	m.balances[addr] = big.NewInt(amount)
}

func (m *mockLedger) balance(addr [20]byte) *big.Int {
	if bal, ok := m.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

func (m *mockLedger) move(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.New("amount must be positive")
	}
	src := m.balance(from)
	if src.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	m.balances[from] = src.Sub(src, amount)
	m.balances[to] = new(big.Int).Add(m.balance(to), amount)
	return nil
}

func (m *mockLedger) Transfer(from, to [20]byte, amount *big.Int) error {
	return m.move(from, to, amount)
}

func (m *mockLedger) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	if m.failTransferFrom {
		return errors.New("allowance exhausted")
	}
	return m.move(from, to, amount)
}

func (m *mockLedger) BalanceOf(addr [20]byte) (*big.Int, error) {
	return m.balance(addr), nil
}

func (m *mockLedger) Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte) error {
	if m.permitHook != nil {
		m.permitHook()
	}
	if m.permitErr != nil {
		return m.permitErr
	}
	m.permits = append(m.permits, permitCall{
		owner:    owner,
		spender:  spender,
		value:    new(big.Int).Set(value),
		deadline: deadline,
	})
	return nil
}

type mockDistributor struct {
	fail  bool
	calls int
}

func (m *mockDistributor) ProcessPurchase(contentID string, buyer, seller [20]byte, amount *big.Int) error {
	m.calls++
	if m.fail {
		return errors.New("distribution rejected")
	}
	return nil
}

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(evt events.Event) { c.events = append(c.events, evt) }

func (c *captureEmitter) lastPurchase(t *testing.T) events.ContentPurchased {
	t.Helper()
	for i := len(c.events) - 1; i >= 0; i-- {
		if evt, ok := c.events[i].(events.ContentPurchased); ok {
			return evt
		}
	}
	t.Fatalf("no purchase event emitted")
	return events.ContentPurchased{}
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

var (
	testAdmin    = addr(0xAD)
	testCustody  = addr(0xC0)
	testCreator  = addr(0x01)
	testBuyer    = addr(0x02)
	testRewards  = addr(0xD0)
	testIntruder = addr(0x66)
)

func newTestEngine(t *testing.T) (*Engine, *mockState, *mockLedger, *captureEmitter) {
	t.Helper()
	state := newMockState()
	ledger := newMockLedger()
	emitter := &captureEmitter{}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetEmitter(emitter)
	engine.SetNowFunc(func() int64 { return 1_000 })
	engine.SetAdmin(testAdmin)
	engine.SetCustody(testCustody)
	if err := engine.SetLedger(testAdmin, ledger); err != nil {
		t.Fatalf("set ledger: %v", err)
	}
	return engine, state, ledger, emitter
}

func listContent(t *testing.T, engine *Engine, id string, price int64) {
	t.Helper()
	if _, err := engine.RegisterContent(testCreator, id, "hash-"+id, "meme"); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	if _, err := engine.ApproveContent(testAdmin, id, big.NewInt(price)); err != nil {
		t.Fatalf("approve %s: %v", id, err)
	}
}

func TestRegisterContentValidation(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)

	if _, err := engine.RegisterContent([20]byte{}, "a", "hash", "meme"); !errors.Is(err, errInvalidCreator) {
		t.Fatalf("expected creator rejection, got %v", err)
	}
	if _, err := engine.RegisterContent(testCreator, "  ", "hash", "meme"); err == nil {
		t.Fatalf("blank id must be rejected")
	}
	if _, err := engine.RegisterContent(testCreator, "a", " ", "meme"); !errors.Is(err, errEmptyHash) {
		t.Fatalf("expected hash rejection, got %v", err)
	}
	if _, err := engine.RegisterContent(testCreator, "a", "hash", ""); !errors.Is(err, errEmptyContentType) {
		t.Fatalf("expected type rejection, got %v", err)
	}
	content, err := engine.RegisterContent(testCreator, " a ", "hash", "meme")
	if err != nil {
		t.Fatalf("register content: %v", err)
	}
	if content.ID != "a" {
		t.Fatalf("content id not trimmed: %q", content.ID)
	}
	if content.Owner != testCreator || content.Approved || content.Available {
		t.Fatalf("fresh content has wrong lifecycle flags: %+v", content)
	}
	if _, err := engine.RegisterContent(addr(0x09), "a", "other", "meme"); !errors.Is(err, errContentExists) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	count, err := engine.TotalContents()
	if err != nil || count != 1 {
		t.Fatalf("content count mismatch: %d (%v)", count, err)
	}
}

func TestApproveContent(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	if _, err := engine.RegisterContent(testCreator, "a", "hash", "meme"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := engine.ApproveContent(testIntruder, "a", big.NewInt(100)); !errors.Is(err, errUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := engine.ApproveContent(testAdmin, "a", big.NewInt(0)); !errors.Is(err, errInvalidPrice) {
		t.Fatalf("expected price rejection, got %v", err)
	}
	if _, err := engine.ApproveContent(testAdmin, "missing", big.NewInt(100)); !errors.Is(err, errContentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	content, err := engine.ApproveContent(testAdmin, "a", big.NewInt(100))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !content.Approved || !content.Available || content.Price.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("approval did not list content: %+v", content)
	}
	if ids := state.ownerIndex[testCreator]; len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("owner index not appended: %v", ids)
	}
	if _, err := engine.ApproveContent(testAdmin, "a", big.NewInt(200)); !errors.Is(err, errAlreadyApproved) {
		t.Fatalf("expected double approval rejection, got %v", err)
	}
}

func TestUpdatePricePreconditions(t *testing.T) {
	engine, _, ledger, _ := newTestEngine(t)
	if _, err := engine.RegisterContent(testCreator, "a", "hash", "meme"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := engine.UpdatePrice(testAdmin, "a", big.NewInt(50)); !errors.Is(err, errNotApproved) {
		t.Fatalf("expected unapproved rejection, got %v", err)
	}
	if _, err := engine.ApproveContent(testAdmin, "a", big.NewInt(100)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	content, err := engine.UpdatePrice(testAdmin, "a", big.NewInt(150))
	if err != nil || content.Price.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("price update failed: %+v (%v)", content, err)
	}
	if _, err := engine.UpdatePrice(testIntruder, "a", big.NewInt(10)); !errors.Is(err, errUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	ledger.fund(testBuyer, 150)
	if _, err := engine.PurchaseContent(testBuyer, "a"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := engine.UpdatePrice(testAdmin, "a", big.NewInt(200)); !errors.Is(err, errContentNotAvailable) {
		t.Fatalf("expected sold content rejection, got %v", err)
	}
}

func TestPurchaseTransfersOwnership(t *testing.T) {
	engine, state, ledger, emitter := newTestEngine(t)
	dist := &mockDistributor{}
	if err := engine.SetDistributor(testAdmin, dist, testRewards); err != nil {
		t.Fatalf("set distributor: %v", err)
	}
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 250)

	content, err := engine.PurchaseContent(testBuyer, "a")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if content.Owner != testBuyer || content.Available {
		t.Fatalf("ownership did not transfer: %+v", content)
	}
	if got := ledger.balance(testBuyer); got.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("buyer balance mismatch: %s", got)
	}
	if got := ledger.balance(testRewards); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("price not forwarded to distributor account: %s", got)
	}
	if dist.calls != 1 {
		t.Fatalf("distributor invoked %d times", dist.calls)
	}
	if ids := state.ownerIndex[testBuyer]; len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("buyer owner index not appended: %v", ids)
	}
	evt := emitter.lastPurchase(t)
	if !evt.Distributed || evt.Buyer != testBuyer || evt.Seller != testCreator {
		t.Fatalf("purchase event mismatch: %+v", evt)
	}
	if _, err := engine.PurchaseContent(addr(0x09), "a"); !errors.Is(err, errContentNotAvailable) {
		t.Fatalf("sold content must not be purchasable, got %v", err)
	}
}

func TestPurchaseAbortsWhenPaymentFails(t *testing.T) {
	engine, state, ledger, _ := newTestEngine(t)
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 250)
	ledger.failTransferFrom = true

	if _, err := engine.PurchaseContent(testBuyer, "a"); err == nil {
		t.Fatalf("expected payment failure to abort purchase")
	}
	content := state.contents["a"]
	if content.Owner != testCreator || !content.Available {
		t.Fatalf("failed payment must leave content untouched: %+v", content)
	}
	if got := ledger.balance(testBuyer); got.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("buyer must keep funds on abort, got %s", got)
	}
}

func TestPurchaseWithoutDistributor(t *testing.T) {
	engine, _, ledger, emitter := newTestEngine(t)
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 100)

	content, err := engine.PurchaseContent(testBuyer, "a")
	if err != nil {
		t.Fatalf("purchase without distributor must succeed: %v", err)
	}
	if content.Owner != testBuyer {
		t.Fatalf("ownership did not transfer: %+v", content)
	}
	if evt := emitter.lastPurchase(t); evt.Distributed {
		t.Fatalf("purchase must report undistributed without a distributor")
	}
	if got := ledger.balance(testCustody); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("price must stay in custody, got %s", got)
	}
}

func TestDistributionFailureDoesNotRollBack(t *testing.T) {
	engine, state, ledger, emitter := newTestEngine(t)
	dist := &mockDistributor{fail: true}
	if err := engine.SetDistributor(testAdmin, dist, testRewards); err != nil {
		t.Fatalf("set distributor: %v", err)
	}
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 100)

	content, err := engine.PurchaseContent(testBuyer, "a")
	if err != nil {
		t.Fatalf("purchase must commit despite distribution failure: %v", err)
	}
	if content.Owner != testBuyer {
		t.Fatalf("ownership must stand: %+v", content)
	}
	if state.contents["a"].Owner != testBuyer {
		t.Fatalf("persisted ownership must stand")
	}
	if evt := emitter.lastPurchase(t); evt.Distributed {
		t.Fatalf("failed distribution must be reported on the event")
	}
}

func TestPauseBlocksPurchase(t *testing.T) {
	engine, _, ledger, _ := newTestEngine(t)
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 100)

	if err := engine.Pause(testIntruder); !errors.Is(err, errUnauthorized) {
		t.Fatalf("expected unauthorized pause, got %v", err)
	}
	if err := engine.Pause(testAdmin); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := engine.PurchaseContent(testBuyer, "a"); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("expected paused rejection, got %v", err)
	}
	if err := engine.Unpause(testAdmin); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if _, err := engine.PurchaseContent(testBuyer, "a"); err != nil {
		t.Fatalf("purchase after resume: %v", err)
	}
}

func TestPersonalizationFollowsOwnership(t *testing.T) {
	engine, _, ledger, _ := newTestEngine(t)
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 100)

	if _, err := engine.MarkContentPersonalized(testIntruder, "a", "phash"); !errors.Is(err, errNotOwner) {
		t.Fatalf("expected non-owner rejection, got %v", err)
	}
	if _, err := engine.PurchaseContent(testBuyer, "a"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// The creator sold the content and lost personalization rights with it.
	if _, err := engine.MarkContentPersonalized(testCreator, "a", "phash"); !errors.Is(err, errNotOwner) {
		t.Fatalf("expected prior owner rejection, got %v", err)
	}
	content, err := engine.MarkContentPersonalized(testBuyer, "a", "phash")
	if err != nil {
		t.Fatalf("personalize: %v", err)
	}
	if !content.Personalized || content.PersonalizedHash != "phash" {
		t.Fatalf("personalization not recorded: %+v", content)
	}
	if _, err := engine.MarkContentPersonalized(testBuyer, "a", "other"); !errors.Is(err, errAlreadyPersonalized) {
		t.Fatalf("expected repeat personalization rejection, got %v", err)
	}
}

func TestPermitPurchase(t *testing.T) {
	engine, _, ledger, _ := newTestEngine(t)
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 100)

	content, err := engine.PurchaseContentWithPermit(testBuyer, "a", 2_000, []byte{0x01})
	if err != nil {
		t.Fatalf("permit purchase: %v", err)
	}
	if content.Owner != testBuyer {
		t.Fatalf("ownership did not transfer: %+v", content)
	}
	if len(ledger.permits) != 1 {
		t.Fatalf("expected one permit consumption, got %d", len(ledger.permits))
	}
	call := ledger.permits[0]
	if call.owner != testBuyer || call.spender != testCustody || call.value.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("permit consumed with wrong parameters: %+v", call)
	}
}

func TestPermitCallbackCannotNestPurchase(t *testing.T) {
	engine, _, ledger, _ := newTestEngine(t)
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 100)
	ledger.fund(testIntruder, 100)

	// The permit call happens mid-sequence; a callback from inside it must
	// not be able to buy the content out from under the permit holder.
	var nestedErr error
	ledger.permitHook = func() {
		_, nestedErr = engine.PurchaseContent(testIntruder, "a")
	}
	content, err := engine.PurchaseContentWithPermit(testBuyer, "a", 2_000, []byte{0x01})
	if err != nil {
		t.Fatalf("permit purchase: %v", err)
	}
	if !errors.Is(nestedErr, errReentrantPurchase) {
		t.Fatalf("nested purchase must be rejected, got %v", nestedErr)
	}
	if content.Owner != testBuyer {
		t.Fatalf("permit holder must end up as owner: %+v", content)
	}
	if len(ledger.permits) != 1 {
		t.Fatalf("expected one permit consumption, got %d", len(ledger.permits))
	}
}

func TestPermitNotConsumedWhenPaused(t *testing.T) {
	engine, _, ledger, _ := newTestEngine(t)
	listContent(t, engine, "a", 100)
	ledger.fund(testBuyer, 100)

	if err := engine.Pause(testAdmin); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := engine.PurchaseContentWithPermit(testBuyer, "a", 2_000, []byte{0x01}); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("expected paused rejection, got %v", err)
	}
	if len(ledger.permits) != 0 {
		t.Fatalf("permit must not burn on a blocked purchase")
	}
}

func TestAdminTransferAndSweep(t *testing.T) {
	engine, _, ledger, _ := newTestEngine(t)
	ledger.fund(testCustody, 300)
	next := addr(0x0A)

	if err := engine.TransferAdmin(testIntruder, next); !errors.Is(err, errUnauthorized) {
		t.Fatalf("expected unauthorized transfer, got %v", err)
	}
	if err := engine.TransferAdmin(testAdmin, next); err != nil {
		t.Fatalf("transfer admin: %v", err)
	}
	if _, err := engine.EmergencyWithdraw(testAdmin, addr(0x0B)); !errors.Is(err, errUnauthorized) {
		t.Fatalf("old admin must lose privileges, got %v", err)
	}
	amount, err := engine.EmergencyWithdraw(next, addr(0x0B))
	if err != nil || amount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("sweep failed: %s (%v)", amount, err)
	}
	if got := ledger.balance(addr(0x0B)); got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("sweep destination mismatch: %s", got)
	}
}
