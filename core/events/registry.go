package events

import (
	"math/big"
	"strconv"

	"github.com/resolverai/roast-somnia-contracts/core/types"
)

const (
	TypeContentRegistered          = "registry.content.registered"
	TypeContentApproved            = "registry.content.approved"
	TypeContentPriceUpdated        = "registry.content.price_updated"
	TypeContentPurchased           = "registry.content.purchased"
	TypeContentPersonalized        = "registry.content.personalized"
	TypeRegistryDistributorUpdated = "registry.distributor.updated"
	TypeRegistryAdminTransferred   = "registry.admin.transferred"
	TypeRegistryPaused             = "registry.paused"
	TypeRegistryResumed            = "registry.resumed"
	TypeRegistryCustodySwept       = "registry.custody.swept"
)

// ContentRegistered is emitted when a creator registers a new content asset.
type ContentRegistered struct {
	ID          string
	Creator     [20]byte
	ContentHash string
	ContentType string
	CreatedAt   int64
}

func (ContentRegistered) EventType() string { return TypeContentRegistered }

func (e ContentRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeContentRegistered,
		Attributes: map[string]string{
			"id":          e.ID,
			"creator":     addrString(e.Creator),
			"contentHash": e.ContentHash,
			"contentType": e.ContentType,
			"createdAt":   intToString(e.CreatedAt),
		},
	}
}

// ContentApproved is emitted when the administrator prices and lists content.
type ContentApproved struct {
	ID         string
	Creator    [20]byte
	Price      *big.Int
	ApprovedAt int64
}

func (ContentApproved) EventType() string { return TypeContentApproved }

func (e ContentApproved) Event() *types.Event {
	return &types.Event{
		Type: TypeContentApproved,
		Attributes: map[string]string{
			"id":         e.ID,
			"creator":    addrString(e.Creator),
			"price":      formatAmount(e.Price),
			"approvedAt": intToString(e.ApprovedAt),
		},
	}
}

// ContentPriceUpdated is emitted when approved content is re-priced pre-sale.
type ContentPriceUpdated struct {
	ID       string
	OldPrice *big.Int
	NewPrice *big.Int
}

func (ContentPriceUpdated) EventType() string { return TypeContentPriceUpdated }

func (e ContentPriceUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeContentPriceUpdated,
		Attributes: map[string]string{
			"id":       e.ID,
			"oldPrice": formatAmount(e.OldPrice),
			"newPrice": formatAmount(e.NewPrice),
		},
	}
}

// ContentPurchased is emitted after a committed purchase. Distributed reports
// whether the downstream payout completed in the same operation.
type ContentPurchased struct {
	ID          string
	Buyer       [20]byte
	Seller      [20]byte
	Price       *big.Int
	Distributed bool
	SoldAt      int64
}

func (ContentPurchased) EventType() string { return TypeContentPurchased }

func (e ContentPurchased) Event() *types.Event {
	return &types.Event{
		Type: TypeContentPurchased,
		Attributes: map[string]string{
			"id":          e.ID,
			"buyer":       addrString(e.Buyer),
			"seller":      addrString(e.Seller),
			"price":       formatAmount(e.Price),
			"distributed": strconv.FormatBool(e.Distributed),
			"soldAt":      intToString(e.SoldAt),
		},
	}
}

// ContentPersonalized is emitted when the current owner finalizes content.
type ContentPersonalized struct {
	ID               string
	Owner            [20]byte
	PersonalizedHash string
	PersonalizedAt   int64
}

func (ContentPersonalized) EventType() string { return TypeContentPersonalized }

func (e ContentPersonalized) Event() *types.Event {
	return &types.Event{
		Type: TypeContentPersonalized,
		Attributes: map[string]string{
			"id":               e.ID,
			"owner":            addrString(e.Owner),
			"personalizedHash": e.PersonalizedHash,
			"personalizedAt":   intToString(e.PersonalizedAt),
		},
	}
}

// RegistryDistributorUpdated is emitted when the payout engine wiring changes.
type RegistryDistributorUpdated struct {
	Account [20]byte
}

func (RegistryDistributorUpdated) EventType() string { return TypeRegistryDistributorUpdated }

func (e RegistryDistributorUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeRegistryDistributorUpdated,
		Attributes: map[string]string{
			"account": optionalAddrString(e.Account),
		},
	}
}

// RegistryAdminTransferred is emitted when the administrator role rotates.
type RegistryAdminTransferred struct {
	OldAdmin [20]byte
	NewAdmin [20]byte
}

func (RegistryAdminTransferred) EventType() string { return TypeRegistryAdminTransferred }

func (e RegistryAdminTransferred) Event() *types.Event {
	return &types.Event{
		Type: TypeRegistryAdminTransferred,
		Attributes: map[string]string{
			"oldAdmin": addrString(e.OldAdmin),
			"newAdmin": addrString(e.NewAdmin),
		},
	}
}

// RegistryPaused is emitted when purchases are globally disabled.
type RegistryPaused struct {
	Caller [20]byte
}

func (RegistryPaused) EventType() string { return TypeRegistryPaused }

func (e RegistryPaused) Event() *types.Event {
	return &types.Event{
		Type:       TypeRegistryPaused,
		Attributes: map[string]string{"caller": addrString(e.Caller)},
	}
}

// RegistryResumed is emitted when purchases are re-enabled.
type RegistryResumed struct {
	Caller [20]byte
}

func (RegistryResumed) EventType() string { return TypeRegistryResumed }

func (e RegistryResumed) Event() *types.Event {
	return &types.Event{
		Type:       TypeRegistryResumed,
		Attributes: map[string]string{"caller": addrString(e.Caller)},
	}
}

// RegistryCustodySwept is emitted when stray custody funds are recovered.
type RegistryCustodySwept struct {
	To     [20]byte
	Amount *big.Int
}

func (RegistryCustodySwept) EventType() string { return TypeRegistryCustodySwept }

func (e RegistryCustodySwept) Event() *types.Event {
	return &types.Event{
		Type: TypeRegistryCustodySwept,
		Attributes: map[string]string{
			"to":     addrString(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}
