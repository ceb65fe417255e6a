package models

import "time"

type Product struct {
	ID           int        `json:"id" db:"id"`
	TenantID     int        `json:"tenant_id" db:"tenant_id"`
	Name         string     `json:"name" db:"name"`
	SKU          string     `json:"sku" db:"sku"`
	Unit         string     `json:"unit" db:"unit"`
	SellingPrice float64    `json:"selling_price" db:"selling_price"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
