package models

import "time"

type Batch struct {
	ID                int        `json:"id" db:"id"`
	TenantID          int        `json:"tenant_id" db:"tenant_id"`
	ProductID         int        `json:"product_id" db:"product_id"`
	StockLevelID      *int       `json:"stock_level_id" db:"stock_level_id"`
	BatchNumber       string     `json:"batch_number" db:"batch_number"`
	Quantity          int        `json:"quantity" db:"quantity"`
	ReservedQuantity  int        `json:"reserved_quantity" db:"reserved_quantity"`
	ManufacturingDate *time.Time `json:"manufacturing_date" db:"manufacturing_date"`
	ExpiryDate        *time.Time `json:"expiry_date" db:"expiry_date"`
	UnitCost          float64    `json:"unit_cost" db:"unit_cost"`
	ReceivedAt        time.Time  `json:"received_at" db:"received_at"`
}

// AvailableQuantity is what can still be committed: on-hand minus reserved.
func (b *Batch) AvailableQuantity() int {
	return b.Quantity - b.ReservedQuantity
}
