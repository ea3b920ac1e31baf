package token

import (
	"errors"
	"math/big"
)

var (
	// ErrInvalidAmount is returned for nil or non-positive transfer amounts.
	ErrInvalidAmount = errors.New("token: amount must be positive")
	// ErrInsufficientBalance is returned when the source account cannot cover
	// the requested amount.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance is returned when a delegated transfer exceeds
	// the approved allowance.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	// ErrPermitExpired is returned when a permit deadline has elapsed.
	ErrPermitExpired = errors.New("token: permit expired")
	// ErrInvalidSignature is returned when a permit signature does not
	// recover to the owner.
	ErrInvalidSignature = errors.New("token: invalid permit signature")
)

// Ledger is the minimal value-transfer surface the settlement engines depend
// on. The fungible token itself is an external collaborator; engines never
// assume anything beyond this interface. Implementations must apply each call
// atomically: either the full balance movement happens or state is untouched
// and an error is returned.
type Ledger interface {
	// BalanceOf reports the balance held by the account.
	BalanceOf(addr [20]byte) (*big.Int, error)
	// Transfer moves amount out of from's custody into to's.
	Transfer(from, to [20]byte, amount *big.Int) error
	// TransferFrom moves amount from from to to, consuming spender's
	// allowance granted by from.
	TransferFrom(spender, from, to [20]byte, amount *big.Int) error
	// Approve sets spender's allowance over owner's balance.
	Approve(owner, spender [20]byte, amount *big.Int) error
	// Allowance reports the remaining allowance from owner to spender.
	Allowance(owner, spender [20]byte) (*big.Int, error)
	// Permit verifies an off-chain authorization binding (owner, spender,
	// value, nonce, deadline) to owner's signing key and sets the allowance
	// as a side effect. The owner nonce is consumed on success.
	Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte) error
	// Nonce reports the next permit nonce expected for the owner.
	Nonce(owner [20]byte) (uint64, error)
}
