package stocktakes

import (
	"fmt"
	"strings"
	"time"

	"stockroom/internal/ledger"
	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service drives the physical-count lifecycle: snapshot, count, reconcile.
// Corrections land in the ledger as ADJUSTMENT events; the stock-take itself
// never touches stock levels directly.
type Service struct {
	db     repository.TxRunner
	str    StockTakeRepository
	ledger ledger.Applier
	log    *zap.Logger
}

func NewService(db repository.TxRunner, str StockTakeRepository, applier ledger.Applier, log *zap.Logger) *Service {
	return &Service{db: db, str: str, ledger: applier, log: log}
}

func newReference(now time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ST-%s-%s", now.Format("20060102"), short)
}

type CreateStockTakeRequest struct {
	TenantID   int
	LocationID int
	Note       string
	Actor      string
}

// Create opens a stock-take and freezes the system quantity of every product
// at the location. One active stock-take per location; the unique index makes
// the check race-free.
func (s *Service) Create(req CreateStockTakeRequest) (*models.StockTake, error) {
	if req.LocationID <= 0 {
		return nil, apperrors.NewValidationError("location_id", "is required")
	}

	now := time.Now()
	stockTake := &models.StockTake{
		TenantID:   req.TenantID,
		LocationID: req.LocationID,
		Reference:  newReference(now),
		Status:     models.StockTakeDraft,
		Note:       req.Note,
		CreatedBy:  req.Actor,
		CreatedAt:  now,
	}

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		stockTakeID, err := s.str.Insert(tx, stockTake)
		if err != nil {
			return err
		}
		stockTake.ID = stockTakeID

		count, err := s.str.SnapshotItems(tx, stockTakeID, req.TenantID, req.LocationID)
		if err != nil {
			return err
		}

		s.log.Info("stock take created",
			zap.Int("stock_take_id", stockTakeID),
			zap.String("reference", stockTake.Reference),
			zap.Int("items_snapshotted", count),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stockTake, nil
}

func (s *Service) Get(tenantID, stockTakeID int) (*models.StockTake, error) {
	stockTake, err := s.str.Get(tenantID, stockTakeID)
	if err != nil {
		return nil, err
	}

	items, err := s.str.ListItems(tenantID, stockTakeID)
	if err != nil {
		return nil, err
	}
	stockTake.Items = items

	return stockTake, nil
}

func (s *Service) List(tenantID int, status models.StockTakeStatus) ([]models.StockTake, error) {
	return s.str.List(tenantID, status)
}

func (s *Service) Start(tenantID, stockTakeID int) error {
	return s.transition(tenantID, stockTakeID,
		[]models.StockTakeStatus{models.StockTakeDraft},
		models.StockTakeInProgress)
}

func (s *Service) SubmitForReview(tenantID, stockTakeID int) error {
	return s.transition(tenantID, stockTakeID,
		[]models.StockTakeStatus{models.StockTakeInProgress},
		models.StockTakePendingReview)
}

// Cancel is side-effect free: no adjustment has been posted yet, so nothing
// needs rolling back.
func (s *Service) Cancel(tenantID, stockTakeID int) error {
	return s.transition(tenantID, stockTakeID,
		[]models.StockTakeStatus{models.StockTakeDraft, models.StockTakeInProgress, models.StockTakePendingReview},
		models.StockTakeCancelled)
}

func (s *Service) transition(tenantID, stockTakeID int, from []models.StockTakeStatus, to models.StockTakeStatus) error {
	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		stockTake, err := s.str.GetForUpdate(tx, tenantID, stockTakeID)
		if err != nil {
			return err
		}

		if !statusIn(stockTake.Status, from) {
			return apperrors.NewInvalidStateTransitionError("stock take", string(stockTake.Status), string(to))
		}

		return s.str.UpdateStatus(tx, tenantID, stockTakeID, from, to, nil)
	})
}

func statusIn(status models.StockTakeStatus, set []models.StockTakeStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

type CountItemRequest struct {
	TenantID        int
	StockTakeID     int
	ProductID       int
	CountedQuantity int
	Actor           string
}

// CountItem records a physical count. Re-counting the same product simply
// overwrites the previous figure.
func (s *Service) CountItem(req CountItemRequest) error {
	if req.CountedQuantity < 0 {
		return apperrors.NewValidationError("counted_quantity", "must not be negative")
	}

	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		stockTake, err := s.str.GetForUpdate(tx, req.TenantID, req.StockTakeID)
		if err != nil {
			return err
		}

		if stockTake.Status != models.StockTakeInProgress && stockTake.Status != models.StockTakePendingReview {
			return apperrors.NewInvalidStateTransitionError("stock take", string(stockTake.Status), "counting")
		}

		return s.str.RecordCount(tx, req.StockTakeID, req.ProductID, req.CountedQuantity, req.Actor)
	})
}

// Complete reconciles every counted item with a variance: one ADJUSTMENT
// event per item, carrying counted minus snapshot as its delta. Uncounted
// items keep their system quantity. The whole reconciliation commits or fails
// as one unit. Stock that moved between snapshot and completion shifts the
// reconciled figure by the same amount: the variance is applied on top of the
// current quantity, never as an overwrite, so the event-sum invariant holds.
func (s *Service) Complete(tenantID, stockTakeID int, actor string) (*models.StockTake, error) {
	var stockTake *models.StockTake

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		stockTake, err = s.str.GetForUpdate(tx, tenantID, stockTakeID)
		if err != nil {
			return err
		}

		if stockTake.Status != models.StockTakeInProgress && stockTake.Status != models.StockTakePendingReview {
			return apperrors.NewInvalidStateTransitionError("stock take", string(stockTake.Status), string(models.StockTakeCompleted))
		}

		items, err := s.str.ListItemsTx(tx, stockTakeID)
		if err != nil {
			return err
		}

		adjustments := 0
		for _, item := range items {
			variance := item.Variance()
			if item.CountedQuantity == nil || variance == 0 {
				continue
			}

			if _, err := s.ledger.ApplyEventTx(tx, ledger.ApplyEventRequest{
				TenantID:      tenantID,
				ProductID:     item.ProductID,
				LocationID:    stockTake.LocationID,
				Type:          models.EventAdjustment,
				QuantityDelta: variance,
				Reference:     &models.EventReference{Type: models.RefStockTake, ID: stockTakeID},
				Actor:         actor,
				Note:          fmt.Sprintf("stock take %s: counted %d, system %d", stockTake.Reference, *item.CountedQuantity, item.SystemQuantity),
			}); err != nil {
				return err
			}
			adjustments++
		}

		now := time.Now()
		if err := s.str.UpdateStatus(tx, tenantID, stockTakeID,
			[]models.StockTakeStatus{models.StockTakeInProgress, models.StockTakePendingReview},
			models.StockTakeCompleted,
			goqu.Record{"completed_by": actor, "completed_at": now},
		); err != nil {
			return err
		}

		stockTake.Status = models.StockTakeCompleted
		stockTake.CompletedBy = &actor
		stockTake.CompletedAt = &now
		stockTake.Items = items

		s.log.Info("stock take completed",
			zap.Int("stock_take_id", stockTakeID),
			zap.String("reference", stockTake.Reference),
			zap.Int("adjustments", adjustments),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stockTake, nil
}

// Delete only applies to stock-takes that never produced adjustments.
func (s *Service) Delete(tenantID, stockTakeID int) error {
	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		stockTake, err := s.str.GetForUpdate(tx, tenantID, stockTakeID)
		if err != nil {
			return err
		}

		if stockTake.Status != models.StockTakeDraft && stockTake.Status != models.StockTakeCancelled {
			return apperrors.NewInvalidStateTransitionError("stock take", string(stockTake.Status), "deleted")
		}

		return s.str.Delete(tx, tenantID, stockTakeID)
	})
}
