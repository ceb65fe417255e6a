package models

import "time"

type StockLevel struct {
	ID           int       `json:"id" db:"id"`
	TenantID     int       `json:"tenant_id" db:"tenant_id"`
	ProductID    int       `json:"product_id" db:"product_id"`
	LocationID   int       `json:"location_id" db:"location_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	ReorderPoint int       `json:"reorder_point" db:"reorder_point"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
