package events

import (
	"math/big"
	"strconv"

	"github.com/resolverai/roast-somnia-contracts/crypto"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func intToString(v int64) string {
	return strconv.FormatInt(v, 10)
}

func uintToString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func addrString(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.RoastPrefix, addr[:]).String()
}

// optionalAddrString renders the zero address as empty so absent identities
// (e.g. a missing grand referrer) stay distinguishable in event payloads.
func optionalAddrString(addr [20]byte) string {
	var zero [20]byte
	if addr == zero {
		return ""
	}
	return addrString(addr)
}
