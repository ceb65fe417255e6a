package models

import "time"

type SerialStatus string

const (
	SerialInStock    SerialStatus = "IN_STOCK"
	SerialReserved   SerialStatus = "RESERVED"
	SerialSold       SerialStatus = "SOLD"
	SerialDefective  SerialStatus = "DEFECTIVE"
	SerialReturned   SerialStatus = "RETURNED"
	SerialInTransit  SerialStatus = "IN_TRANSIT"
	SerialQuarantine SerialStatus = "QUARANTINE"
)

type SerialNumber struct {
	ID             int          `json:"id" db:"id"`
	TenantID       int          `json:"tenant_id" db:"tenant_id"`
	ProductID      int          `json:"product_id" db:"product_id"`
	BatchID        *int         `json:"batch_id" db:"batch_id"`
	StockLevelID   *int         `json:"stock_level_id" db:"stock_level_id"`
	Serial         string       `json:"serial" db:"serial"`
	Status         SerialStatus `json:"status" db:"status"`
	WarrantyExpiry *time.Time   `json:"warranty_expiry" db:"warranty_expiry"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}
