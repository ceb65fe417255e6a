package ledger

import (
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplyEventRequest describes one stock movement to record.
type ApplyEventRequest struct {
	TenantID      int
	ProductID     int
	LocationID    int
	Type          models.EventType
	QuantityDelta int
	Reference     *models.EventReference
	Actor         string
	Note          string
}

// Applier is the ledger contract the coordinators (transfers, stock-takes,
// batches) call inside their own transactions.
type Applier interface {
	ApplyEventTx(tx *goqu.TxDatabase, req ApplyEventRequest) (*models.InventoryEvent, error)
}

// Service is the single mutation path for stock levels. Nothing else writes
// to stock_levels or inventory_events.
type Service struct {
	db     repository.TxRunner
	levels StockLevelRepository
	events EventRepository
	log    *zap.Logger
}

func NewService(db repository.TxRunner, levels StockLevelRepository, events EventRepository, log *zap.Logger) *Service {
	return &Service{db: db, levels: levels, events: events, log: log}
}

// ApplyEvent validates, opens a transaction and records one stock movement.
func (s *Service) ApplyEvent(req ApplyEventRequest) (*models.InventoryEvent, error) {
	var event *models.InventoryEvent

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		event, err = s.ApplyEventTx(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// ApplyEventTx records one movement inside the caller's transaction: the
// stock level row is locked, the non-negative check runs against the locked
// quantity, and the event is appended with the post-update running balance.
// Either all of it commits or none of it does.
func (s *Service) ApplyEventTx(tx *goqu.TxDatabase, req ApplyEventRequest) (*models.InventoryEvent, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	level, err := s.levels.GetForUpdate(tx, req.TenantID, req.ProductID, req.LocationID)
	if err != nil {
		return nil, err
	}

	if level == nil {
		// Depleting from a level that never existed can only go negative.
		if req.Type.Depleting() {
			return nil, &apperrors.InsufficientStockError{
				ProductID:  req.ProductID,
				LocationID: req.LocationID,
				Available:  0,
				Requested:  -req.QuantityDelta,
			}
		}

		level, err = s.levels.Create(tx, req.TenantID, req.ProductID, req.LocationID)
		if err != nil {
			return nil, err
		}
	}

	newQuantity := level.Quantity + req.QuantityDelta
	if newQuantity < 0 {
		return nil, &apperrors.InsufficientStockError{
			ProductID:  req.ProductID,
			LocationID: req.LocationID,
			Available:  level.Quantity,
			Requested:  -req.QuantityDelta,
		}
	}

	if err := s.levels.SetQuantity(tx, level.ID, newQuantity); err != nil {
		return nil, err
	}

	locationID := req.LocationID
	event := &models.InventoryEvent{
		ID:             uuid.NewString(),
		TenantID:       req.TenantID,
		ProductID:      req.ProductID,
		LocationID:     &locationID,
		Type:           req.Type,
		QuantityDelta:  req.QuantityDelta,
		RunningBalance: newQuantity,
		Reference:      req.Reference,
		Actor:          req.Actor,
		Note:           req.Note,
		CreatedAt:      time.Now(),
	}

	if err := s.events.Append(tx, event); err != nil {
		return nil, err
	}

	s.log.Debug("inventory event applied",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Int("tenant_id", event.TenantID),
		zap.Int("product_id", event.ProductID),
		zap.Int("delta", event.QuantityDelta),
		zap.Int("running_balance", event.RunningBalance),
	)

	return event, nil
}

func validateRequest(req ApplyEventRequest) error {
	if req.TenantID <= 0 {
		return apperrors.NewValidationError("tenant_id", "is required")
	}
	if req.ProductID <= 0 {
		return apperrors.NewValidationError("product_id", "is required")
	}
	if req.LocationID <= 0 {
		return apperrors.NewValidationError("location_id", "is required")
	}
	if !req.Type.Valid() {
		return apperrors.NewValidationError("type", "unknown event type")
	}
	if req.QuantityDelta == 0 {
		return apperrors.NewValidationError("quantity_delta", "must not be zero")
	}
	if req.Type.Depleting() && req.QuantityDelta > 0 {
		return apperrors.NewValidationError("quantity_delta", "must be negative for "+string(req.Type))
	}
	if (req.Type == models.EventStockReceived || req.Type == models.EventTransferIn) && req.QuantityDelta < 0 {
		return apperrors.NewValidationError("quantity_delta", "must be positive for "+string(req.Type))
	}
	return nil
}

// Queries below are read-only and run outside any transaction.

func (s *Service) GetStockLevel(tenantID, productID, locationID int) (*models.StockLevel, error) {
	return s.levels.GetByProductLocation(tenantID, productID, locationID)
}

func (s *Service) ListStockLevels(tenantID, locationID int) ([]models.StockLevel, error) {
	return s.levels.ListByLocation(tenantID, locationID)
}

func (s *Service) ListLowStock(tenantID int) ([]models.StockLevel, error) {
	return s.levels.ListBelowReorderPoint(tenantID)
}

func (s *Service) ListEvents(tenantID, productID, locationID, limit int) ([]models.InventoryEvent, error) {
	return s.events.ListByProductLocation(tenantID, productID, locationID, limit)
}
