package batches

import (
	"time"

	"stockroom/internal/ledger"
	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

type Service struct {
	db     repository.TxRunner
	br     BatchRepository
	ledger ledger.Applier
	log    *zap.Logger
}

func NewService(db repository.TxRunner, br BatchRepository, applier ledger.Applier, log *zap.Logger) *Service {
	return &Service{db: db, br: br, ledger: applier, log: log}
}

type ReceiveBatchRequest struct {
	TenantID          int
	ProductID         int
	LocationID        int // optional; when set, the receipt is posted to the ledger
	BatchNumber       string
	Quantity          int
	ManufacturingDate *time.Time
	ExpiryDate        *time.Time
	UnitCost          float64
	Note              string
	Actor             string
}

// Receive books a new lot in. The batch insert and the STOCK_RECEIVED ledger
// event commit together; a duplicate batch number for the product surfaces
// as a conflict from the unique index.
func (s *Service) Receive(req ReceiveBatchRequest) (*models.Batch, error) {
	if req.BatchNumber == "" {
		return nil, apperrors.NewValidationError("batch_number", "is required")
	}
	if req.ProductID <= 0 {
		return nil, apperrors.NewValidationError("product_id", "is required")
	}
	if req.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity", "must be positive")
	}
	if req.ManufacturingDate != nil && req.ExpiryDate != nil && req.ExpiryDate.Before(*req.ManufacturingDate) {
		return nil, apperrors.NewValidationError("expiry_date", "must be after manufacturing date")
	}

	batch := &models.Batch{
		TenantID:          req.TenantID,
		ProductID:         req.ProductID,
		BatchNumber:       req.BatchNumber,
		Quantity:          req.Quantity,
		ReservedQuantity:  0,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
		UnitCost:          req.UnitCost,
		ReceivedAt:        time.Now(),
	}

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		if req.LocationID > 0 {
			if _, err := s.ledger.ApplyEventTx(tx, ledger.ApplyEventRequest{
				TenantID:      req.TenantID,
				ProductID:     req.ProductID,
				LocationID:    req.LocationID,
				Type:          models.EventStockReceived,
				QuantityDelta: req.Quantity,
				Actor:         req.Actor,
				Note:          req.Note,
			}); err != nil {
				return err
			}

			// The receipt created or topped up a stock level; carry the link
			// on the batch row.
			levelID, err := s.br.FindStockLevelID(tx, req.TenantID, req.ProductID, req.LocationID)
			if err != nil {
				return err
			}
			batch.StockLevelID = levelID
		}

		batchID, err := s.br.Insert(tx, batch)
		if err != nil {
			return err
		}
		batch.ID = batchID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("batch received",
		zap.Int("batch_id", batch.ID),
		zap.Int("tenant_id", batch.TenantID),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int("quantity", batch.Quantity),
	)

	return batch, nil
}

func (s *Service) Get(tenantID, batchID int) (*models.Batch, error) {
	return s.br.Get(tenantID, batchID)
}

func (s *Service) ListByProduct(tenantID, productID int) ([]models.Batch, error) {
	return s.br.ListByProduct(tenantID, productID)
}

// BatchExpiry pairs a batch with its expiry classification for the alerting
// observer.
type BatchExpiry struct {
	models.Batch
	ExpiryStatus ExpiryStatus `json:"expiry_status"`
}

func (s *Service) ListExpiring(tenantID int) ([]BatchExpiry, error) {
	batches, err := s.br.ListWithExpiry(tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]BatchExpiry, 0, len(batches))
	for _, batch := range batches {
		status := ClassifyExpiry(now, batch.ExpiryDate)
		if status == ExpiryNone {
			continue
		}
		result = append(result, BatchExpiry{Batch: batch, ExpiryStatus: status})
	}

	return result, nil
}

// Reserve commits part of a batch without shipping it. The invariant
// 0 <= reserved <= quantity holds before and after.
func (s *Service) Reserve(tenantID, batchID, quantity int) (*models.Batch, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity", "must be positive")
	}
	return s.adjustReservation(tenantID, batchID, quantity)
}

// Release returns previously reserved units to the available pool.
func (s *Service) Release(tenantID, batchID, quantity int) (*models.Batch, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity", "must be positive")
	}
	return s.adjustReservation(tenantID, batchID, -quantity)
}

func (s *Service) adjustReservation(tenantID, batchID, delta int) (*models.Batch, error) {
	var batch *models.Batch
	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		batch, err = s.br.GetForUpdate(tx, tenantID, batchID)
		if err != nil {
			return err
		}

		reserved := batch.ReservedQuantity + delta
		if reserved < 0 {
			return apperrors.NewConflictError("batch", "cannot release more than is reserved")
		}
		if reserved > batch.Quantity {
			return apperrors.NewConflictError("batch", "reserved quantity exceeds on-hand quantity")
		}

		if err := s.br.SetReservedQuantity(tx, tenantID, batchID, reserved); err != nil {
			return err
		}

		batch.ReservedQuantity = reserved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return batch, nil
}

// Delete refuses while stock or serial numbers still hang off the batch.
func (s *Service) Delete(tenantID, batchID int) error {
	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		batch, err := s.br.GetForUpdate(tx, tenantID, batchID)
		if err != nil {
			return err
		}

		if batch.Quantity != 0 {
			return apperrors.NewInvalidStateTransitionError("batch", "with remaining quantity", "deleted")
		}

		serials, err := s.br.CountSerials(tx, tenantID, batchID)
		if err != nil {
			return err
		}
		if serials > 0 {
			return apperrors.NewInvalidStateTransitionError("batch", "with attached serial numbers", "deleted")
		}

		return s.br.Delete(tx, tenantID, batchID)
	})
}
