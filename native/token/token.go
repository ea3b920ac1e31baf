package token

import (
	"errors"
	"math/big"
	"time"
)

var errNilState = errors.New("token: state not configured")

var _ Ledger = (*Token)(nil)

// Account holds the balance and permit nonce tracked per participant.
type Account struct {
	Balance *big.Int `json:"balance"`
	Nonce   uint64   `json:"nonce"`
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	return &clone
}

type ledgerState interface {
	TokenAccountGet(addr [20]byte) (*Account, bool, error)
	TokenAccountPut(addr [20]byte, acct *Account) error
	TokenAllowanceGet(owner, spender [20]byte) (*big.Int, error)
	TokenAllowancePut(owner, spender [20]byte, amount *big.Int) error
}

// Token is the reference ledger implementation backing local deployments and
// tests. It satisfies the Ledger interface the engines consume.
type Token struct {
	state ledgerState
	nowFn func() int64
}

// NewToken constructs a reference ledger with default dependencies.
func NewToken() *Token {
	return &Token{
		nowFn: func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the ledger.
func (t *Token) SetState(state ledgerState) { t.state = state }

// SetNowFunc overrides the time source used for permit deadline checks.
func (t *Token) SetNowFunc(now func() int64) {
	if now == nil {
		t.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	t.nowFn = now
}

func (t *Token) now() int64 {
	if t == nil || t.nowFn == nil {
		return time.Now().Unix()
	}
	return t.nowFn()
}

func ensureAccount(acct *Account) *Account {
	if acct == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	if acct.Balance == nil {
		acct.Balance = big.NewInt(0)
	}
	return acct
}

func (t *Token) account(addr [20]byte) (*Account, error) {
	acct, _, err := t.state.TokenAccountGet(addr)
	if err != nil {
		return nil, err
	}
	return ensureAccount(acct), nil
}

// BalanceOf reports the balance held by the account.
func (t *Token) BalanceOf(addr [20]byte) (*big.Int, error) {
	if t == nil || t.state == nil {
		return nil, errNilState
	}
	acct, err := t.account(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acct.Balance), nil
}

// Mint credits amount to the account. It exists so local deployments and
// tests can seed balances; issuance policy is out of scope for the ledger.
func (t *Token) Mint(to [20]byte, amount *big.Int) error {
	if t == nil || t.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	acct, err := t.account(to)
	if err != nil {
		return err
	}
	acct.Balance = new(big.Int).Add(acct.Balance, amount)
	return t.state.TokenAccountPut(to, acct)
}

// Transfer moves amount out of from's custody into to's.
func (t *Token) Transfer(from, to [20]byte, amount *big.Int) error {
	if t == nil || t.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	src, err := t.account(from)
	if err != nil {
		return err
	}
	if src.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	src.Balance = new(big.Int).Sub(src.Balance, amount)
	if err := t.state.TokenAccountPut(from, src); err != nil {
		return err
	}
	dst, err := t.account(to)
	if err != nil {
		return err
	}
	dst.Balance = new(big.Int).Add(dst.Balance, amount)
	return t.state.TokenAccountPut(to, dst)
}

// TransferFrom moves amount from from to to, consuming spender's allowance.
func (t *Token) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	if t == nil || t.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	remaining := new(big.Int).Sub(allowance, amount)
	return t.state.TokenAllowancePut(from, spender, remaining)
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(owner, spender [20]byte, amount *big.Int) error {
	if t == nil || t.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return t.state.TokenAllowancePut(owner, spender, new(big.Int).Set(amount))
}

// Allowance reports the remaining allowance from owner to spender.
func (t *Token) Allowance(owner, spender [20]byte) (*big.Int, error) {
	if t == nil || t.state == nil {
		return nil, errNilState
	}
	allowance, err := t.state.TokenAllowanceGet(owner, spender)
	if err != nil {
		return nil, err
	}
	if allowance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(allowance), nil
}

// Nonce reports the next permit nonce expected for the owner.
func (t *Token) Nonce(owner [20]byte) (uint64, error) {
	if t == nil || t.state == nil {
		return 0, errNilState
	}
	acct, err := t.account(owner)
	if err != nil {
		return 0, err
	}
	return acct.Nonce, nil
}

// Permit verifies the signed authorization and sets allowance(owner, spender)
// to value. The owner's nonce increments on success so a permit can never be
// replayed.
func (t *Token) Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte) error {
	if t == nil || t.state == nil {
		return errNilState
	}
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	if deadline < t.now() {
		return ErrPermitExpired
	}
	acct, err := t.account(owner)
	if err != nil {
		return err
	}
	if err := VerifyPermit(owner, spender, value, acct.Nonce, deadline, sig); err != nil {
		return err
	}
	acct.Nonce++
	if err := t.state.TokenAccountPut(owner, acct); err != nil {
		return err
	}
	return t.state.TokenAllowancePut(owner, spender, new(big.Int).Set(value))
}
