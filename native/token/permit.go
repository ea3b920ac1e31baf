package token

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/resolverai/roast-somnia-contracts/crypto"
)

// permitDomain separates permit digests from any other signed payload.
const permitDomain = "roast.token.permit.v1"

// PermitDigest computes the 32-byte digest an owner signs to authorize an
// allowance. The nonce binds the authorization to a single use.
func PermitDigest(owner, spender [20]byte, value *big.Int, nonce uint64, deadline int64) []byte {
	amount := make([]byte, 32)
	if value != nil {
		value.FillBytes(amount)
	}
	var nonceBytes, deadlineBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	binary.BigEndian.PutUint64(deadlineBytes[:], uint64(deadline))
	return ethcrypto.Keccak256(
		[]byte(permitDomain),
		owner[:],
		spender[:],
		amount,
		nonceBytes[:],
		deadlineBytes[:],
	)
}

// SignPermit produces the 65-byte [R || S || V] signature over the permit
// digest with the owner's key.
func SignPermit(key *crypto.PrivateKey, spender [20]byte, value *big.Int, nonce uint64, deadline int64) ([]byte, error) {
	owner := key.PubKey().Address()
	digest := PermitDigest(owner, spender, value, nonce, deadline)
	return ethcrypto.Sign(digest, key.PrivateKey)
}

// VerifyPermit recovers the signer from the permit signature and checks it
// matches the claimed owner.
func VerifyPermit(owner, spender [20]byte, value *big.Int, nonce uint64, deadline int64, sig []byte) error {
	if len(sig) != 65 {
		return ErrInvalidSignature
	}
	digest := PermitDigest(owner, spender, value, nonce, deadline)
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return ErrInvalidSignature
	}
	if [20]byte(ethcrypto.PubkeyToAddress(*pub)) != owner {
		return ErrInvalidSignature
	}
	return nil
}
