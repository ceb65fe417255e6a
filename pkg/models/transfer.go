package models

import "time"

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

type StockTransfer struct {
	ID             int            `json:"id" db:"id"`
	TenantID       int            `json:"tenant_id" db:"tenant_id"`
	ProductID      int            `json:"product_id" db:"product_id"`
	FromLocationID int            `json:"from_location_id" db:"from_location_id"`
	ToLocationID   int            `json:"to_location_id" db:"to_location_id"`
	Quantity       int            `json:"quantity" db:"quantity"`
	Status         TransferStatus `json:"status" db:"status"`
	Note           string         `json:"note" db:"note"`
	CreatedBy      string         `json:"created_by" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	StartedAt      *time.Time     `json:"started_at" db:"started_at"`
	CompletedBy    *string        `json:"completed_by" db:"completed_by"`
	CompletedAt    *time.Time     `json:"completed_at" db:"completed_at"`
}
