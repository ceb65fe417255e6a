package models

import "time"

type StockTakeStatus string

const (
	StockTakeDraft         StockTakeStatus = "draft"
	StockTakeInProgress    StockTakeStatus = "in_progress"
	StockTakePendingReview StockTakeStatus = "pending_review"
	StockTakeCompleted     StockTakeStatus = "completed"
	StockTakeCancelled     StockTakeStatus = "cancelled"
)

func (s StockTakeStatus) Terminal() bool {
	return s == StockTakeCompleted || s == StockTakeCancelled
}

// Active stock-takes block creation of another one at the same location.
func (s StockTakeStatus) Active() bool {
	return s == StockTakeDraft || s == StockTakeInProgress
}

type StockTake struct {
	ID          int             `json:"id" db:"id"`
	TenantID    int             `json:"tenant_id" db:"tenant_id"`
	LocationID  int             `json:"location_id" db:"location_id"`
	Reference   string          `json:"reference" db:"reference"`
	Status      StockTakeStatus `json:"status" db:"status"`
	Note        string          `json:"note" db:"note"`
	CreatedBy   string          `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	CompletedBy *string         `json:"completed_by" db:"completed_by"`
	CompletedAt *time.Time      `json:"completed_at" db:"completed_at"`
	Items       []StockTakeItem `json:"items,omitempty" db:"-"`
}

type StockTakeItem struct {
	ID              int        `json:"id" db:"id"`
	StockTakeID     int        `json:"stock_take_id" db:"stock_take_id"`
	ProductID       int        `json:"product_id" db:"product_id"`
	SystemQuantity  int        `json:"system_quantity" db:"system_quantity"`
	CountedQuantity *int       `json:"counted_quantity" db:"counted_quantity"`
	CountedBy       *string    `json:"counted_by" db:"counted_by"`
	CountedAt       *time.Time `json:"counted_at" db:"counted_at"`
}

// Variance is countedQuantity - systemQuantity; zero when the item was never
// counted.
func (i *StockTakeItem) Variance() int {
	if i.CountedQuantity == nil {
		return 0
	}
	return *i.CountedQuantity - i.SystemQuantity
}
