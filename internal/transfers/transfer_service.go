package transfers

import (
	"time"

	"stockroom/internal/ledger"
	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// Service drives the transfer state machine. Stock moves only at Complete,
// which makes Cancel side-effect free at every earlier state.
type Service struct {
	db     repository.TxRunner
	tr     TransferRepository
	ledger ledger.Applier
	log    *zap.Logger
}

func NewService(db repository.TxRunner, tr TransferRepository, applier ledger.Applier, log *zap.Logger) *Service {
	return &Service{db: db, tr: tr, ledger: applier, log: log}
}

type CreateTransferRequest struct {
	TenantID       int
	ProductID      int
	FromLocationID int
	ToLocationID   int
	Quantity       int
	Note           string
	Actor          string
}

func (s *Service) Create(req CreateTransferRequest) (*models.StockTransfer, error) {
	if req.ProductID <= 0 {
		return nil, apperrors.NewValidationError("product_id", "is required")
	}
	if req.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity", "must be positive")
	}
	if req.FromLocationID <= 0 || req.ToLocationID <= 0 {
		return nil, apperrors.NewValidationError("location", "both locations are required")
	}
	if req.FromLocationID == req.ToLocationID {
		return nil, apperrors.NewValidationError("to_location_id", "must differ from from_location_id")
	}

	transfer := &models.StockTransfer{
		TenantID:       req.TenantID,
		ProductID:      req.ProductID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Status:         models.TransferPending,
		Note:           req.Note,
		CreatedBy:      req.Actor,
		CreatedAt:      time.Now(),
	}

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		id, err := s.tr.Insert(tx, transfer)
		if err != nil {
			return err
		}
		transfer.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

func (s *Service) Get(tenantID, transferID int) (*models.StockTransfer, error) {
	return s.tr.Get(tenantID, transferID)
}

func (s *Service) List(tenantID int, status models.TransferStatus) ([]models.StockTransfer, error) {
	return s.tr.List(tenantID, status)
}

// Start marks a pending transfer as on its way.
func (s *Service) Start(tenantID, transferID int) error {
	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		transfer, err := s.tr.GetForUpdate(tx, tenantID, transferID)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferPending {
			return apperrors.NewInvalidStateTransitionError("transfer", string(transfer.Status), string(models.TransferInTransit))
		}

		return s.tr.UpdateStatus(tx, tenantID, transferID,
			[]models.TransferStatus{models.TransferPending},
			models.TransferInTransit,
			goqu.Record{"started_at": time.Now()},
		)
	})
}

// Complete settles both sides of the move in one transaction: the source is
// debited, the destination credited, and the transfer marked completed. A
// failure at any step rolls the whole thing back; a debit without a matching
// credit can never be observed.
func (s *Service) Complete(tenantID, transferID int, actor string) (*models.StockTransfer, error) {
	var transfer *models.StockTransfer

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		transfer, err = s.tr.GetForUpdate(tx, tenantID, transferID)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferPending && transfer.Status != models.TransferInTransit {
			return apperrors.NewInvalidStateTransitionError("transfer", string(transfer.Status), string(models.TransferCompleted))
		}

		reference := &models.EventReference{Type: models.RefTransfer, ID: transfer.ID}

		// The ledger re-reads the source level under lock and rejects the
		// debit if quantity < transfer.Quantity.
		if _, err = s.ledger.ApplyEventTx(tx, ledger.ApplyEventRequest{
			TenantID:      tenantID,
			ProductID:     transfer.ProductID,
			LocationID:    transfer.FromLocationID,
			Type:          models.EventTransferOut,
			QuantityDelta: -transfer.Quantity,
			Reference:     reference,
			Actor:         actor,
		}); err != nil {
			return err
		}

		if _, err = s.ledger.ApplyEventTx(tx, ledger.ApplyEventRequest{
			TenantID:      tenantID,
			ProductID:     transfer.ProductID,
			LocationID:    transfer.ToLocationID,
			Type:          models.EventTransferIn,
			QuantityDelta: transfer.Quantity,
			Reference:     reference,
			Actor:         actor,
		}); err != nil {
			return err
		}

		now := time.Now()
		if err = s.tr.UpdateStatus(tx, tenantID, transferID,
			[]models.TransferStatus{models.TransferPending, models.TransferInTransit},
			models.TransferCompleted,
			goqu.Record{"completed_by": actor, "completed_at": now},
		); err != nil {
			return err
		}

		transfer.Status = models.TransferCompleted
		transfer.CompletedBy = &actor
		transfer.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer completed",
		zap.Int("transfer_id", transfer.ID),
		zap.Int("tenant_id", tenantID),
		zap.Int("quantity", transfer.Quantity),
		zap.Int("from_location_id", transfer.FromLocationID),
		zap.Int("to_location_id", transfer.ToLocationID),
	)

	return transfer, nil
}

// Cancel is always safe before completion: no stock has moved yet, so there
// is nothing to roll back.
func (s *Service) Cancel(tenantID, transferID int) error {
	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		transfer, err := s.tr.GetForUpdate(tx, tenantID, transferID)
		if err != nil {
			return err
		}
		if transfer.Status.Terminal() {
			return apperrors.NewInvalidStateTransitionError("transfer", string(transfer.Status), string(models.TransferCancelled))
		}

		return s.tr.UpdateStatus(tx, tenantID, transferID,
			[]models.TransferStatus{models.TransferPending, models.TransferInTransit},
			models.TransferCancelled, nil,
		)
	})
}

// Delete removes a transfer record. A completed transfer's stock effects are
// permanent, so its record must stay; undoing it takes a new transfer in the
// opposite direction.
func (s *Service) Delete(tenantID, transferID int) error {
	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		transfer, err := s.tr.GetForUpdate(tx, tenantID, transferID)
		if err != nil {
			return err
		}
		if transfer.Status == models.TransferCompleted {
			return apperrors.NewInvalidStateTransitionError("transfer", string(transfer.Status), "deleted")
		}

		return s.tr.Delete(tx, tenantID, transferID)
	})
}
