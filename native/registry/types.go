package registry

import "math/big"

// Content represents a registered, uniquely-identified digital asset tracked
// for ownership and sale. Creator is immutable after registration; Owner
// changes exactly once, on purchase.
type Content struct {
	ID               string   `json:"id"`
	Creator          [20]byte `json:"creator"`
	Owner            [20]byte `json:"owner"`
	ContentHash      string   `json:"contentHash"`
	PersonalizedHash string   `json:"personalizedHash"`
	Price            *big.Int `json:"price"`
	ContentType      string   `json:"contentType"`
	Available        bool     `json:"available"`
	Approved         bool     `json:"approved"`
	Personalized     bool     `json:"personalized"`
	CreatedAt        int64    `json:"createdAt"`
	ApprovedAt       int64    `json:"approvedAt"`
	SoldAt           int64    `json:"soldAt"`
	PersonalizedAt   int64    `json:"personalizedAt"`
}

// Clone returns a deep copy of the content record.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Price != nil {
		clone.Price = new(big.Int).Set(c.Price)
	}
	return &clone
}
