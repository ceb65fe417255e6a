package models

import "time"

type EventType string

const (
	EventStockReceived EventType = "STOCK_RECEIVED"
	EventSale          EventType = "SALE"
	EventAdjustment    EventType = "ADJUSTMENT"
	EventTransferOut   EventType = "TRANSFER_OUT"
	EventTransferIn    EventType = "TRANSFER_IN"
	EventExpiryLoss    EventType = "EXPIRY_LOSS"
	EventDamage        EventType = "DAMAGE"
)

// Depleting reports whether the event type removes stock and is therefore
// subject to the non-negative quantity check.
func (t EventType) Depleting() bool {
	switch t {
	case EventSale, EventTransferOut, EventExpiryLoss, EventDamage:
		return true
	}
	return false
}

func (t EventType) Valid() bool {
	switch t {
	case EventStockReceived, EventSale, EventAdjustment,
		EventTransferOut, EventTransferIn, EventExpiryLoss, EventDamage:
		return true
	}
	return false
}

type ReferenceType string

const (
	RefPurchaseOrder ReferenceType = "purchase_order"
	RefSale          ReferenceType = "sale"
	RefTransfer      ReferenceType = "transfer"
	RefStockTake     ReferenceType = "stock_take"
	RefBatch         ReferenceType = "batch"
)

// EventReference is the tagged pointer to the record that caused an event.
type EventReference struct {
	Type ReferenceType `json:"type" db:"reference_type"`
	ID   int           `json:"id" db:"reference_id"`
}

// InventoryEvent is one append-only ledger entry. Rows are never updated or
// deleted; RunningBalance is the stock level quantity immediately after the
// event was applied.
type InventoryEvent struct {
	ID             string          `json:"id" db:"id"`
	TenantID       int             `json:"tenant_id" db:"tenant_id"`
	ProductID      int             `json:"product_id" db:"product_id"`
	LocationID     *int            `json:"location_id" db:"location_id"`
	Type           EventType       `json:"type" db:"event_type"`
	QuantityDelta  int             `json:"quantity_delta" db:"quantity_delta"`
	RunningBalance int             `json:"running_balance" db:"running_balance"`
	Reference      *EventReference `json:"reference,omitempty" db:"-"`
	Actor          string          `json:"actor" db:"actor"`
	Note           string          `json:"note" db:"note"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}
