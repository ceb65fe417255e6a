package serials

import (
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

type Service struct {
	db  repository.TxRunner
	sr  SerialRepository
	log *zap.Logger
}

func NewService(db repository.TxRunner, sr SerialRepository, log *zap.Logger) *Service {
	return &Service{db: db, sr: sr, log: log}
}

type CreateSerialRequest struct {
	TenantID       int
	ProductID      int
	BatchID        *int
	StockLevelID   *int
	Serial         string
	WarrantyMonths int
}

func (s *Service) Create(req CreateSerialRequest) (*models.SerialNumber, error) {
	serial, err := buildSerial(req, time.Now())
	if err != nil {
		return nil, err
	}

	err = s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		serialID, err := s.sr.Insert(tx, serial)
		if err != nil {
			return err
		}
		serial.ID = serialID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return serial, nil
}

// CreateBulk registers many units in one transaction; a single duplicate
// fails the whole set.
func (s *Service) CreateBulk(reqs []CreateSerialRequest) ([]models.SerialNumber, error) {
	if len(reqs) == 0 {
		return nil, apperrors.NewValidationError("serials", "must not be empty")
	}

	// Uniqueness is scoped per product; the same serial string may appear
	// for different products in one request.
	type serialKey struct {
		productID int
		serial    string
	}

	now := time.Now()
	serials := make([]*models.SerialNumber, 0, len(reqs))
	seen := make(map[serialKey]bool, len(reqs))
	for _, req := range reqs {
		serial, err := buildSerial(req, now)
		if err != nil {
			return nil, err
		}
		key := serialKey{productID: serial.ProductID, serial: serial.Serial}
		if seen[key] {
			return nil, apperrors.NewConflictError("serial number", "duplicate serial "+serial.Serial+" in request")
		}
		seen[key] = true
		serials = append(serials, serial)
	}

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		for _, serial := range serials {
			serialID, err := s.sr.Insert(tx, serial)
			if err != nil {
				return err
			}
			serial.ID = serialID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created := make([]models.SerialNumber, 0, len(serials))
	for _, serial := range serials {
		created = append(created, *serial)
	}

	return created, nil
}

func buildSerial(req CreateSerialRequest, now time.Time) (*models.SerialNumber, error) {
	if req.Serial == "" {
		return nil, apperrors.NewValidationError("serial", "is required")
	}
	if req.ProductID <= 0 {
		return nil, apperrors.NewValidationError("product_id", "is required")
	}
	if req.WarrantyMonths < 0 {
		return nil, apperrors.NewValidationError("warranty_months", "must not be negative")
	}

	serial := &models.SerialNumber{
		TenantID:     req.TenantID,
		ProductID:    req.ProductID,
		BatchID:      req.BatchID,
		StockLevelID: req.StockLevelID,
		Serial:       req.Serial,
		Status:       models.SerialInStock,
		CreatedAt:    now,
	}

	// Warranty expiry is fixed at creation time, never recomputed.
	if req.WarrantyMonths > 0 {
		expiry := now.AddDate(0, req.WarrantyMonths, 0)
		serial.WarrantyExpiry = &expiry
	}

	return serial, nil
}

func (s *Service) Get(tenantID, serialID int) (*models.SerialNumber, error) {
	return s.sr.Get(tenantID, serialID)
}

func (s *Service) ListByProduct(tenantID, productID int, status models.SerialStatus) ([]models.SerialNumber, error) {
	return s.sr.ListByProduct(tenantID, productID, status)
}

// UpdateStatus moves a unit through the lifecycle, rejecting anything the
// transition table does not allow.
func (s *Service) UpdateStatus(tenantID, serialID int, to models.SerialStatus) (*models.SerialNumber, error) {
	var serial *models.SerialNumber

	err := s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		var err error
		serial, err = s.sr.GetForUpdate(tx, tenantID, serialID)
		if err != nil {
			return err
		}

		if !CanTransition(serial.Status, to) {
			return apperrors.NewInvalidStateTransitionError("serial number", string(serial.Status), string(to))
		}

		if err := s.sr.UpdateStatus(tx, tenantID, serialID, to); err != nil {
			return err
		}

		serial.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("serial status updated",
		zap.Int("serial_id", serial.ID),
		zap.String("status", string(serial.Status)),
	)

	return serial, nil
}

// Delete refuses for SOLD units; their history must survive for returns.
func (s *Service) Delete(tenantID, serialID int) error {
	return s.db.InTransaction(func(tx *goqu.TxDatabase) error {
		serial, err := s.sr.GetForUpdate(tx, tenantID, serialID)
		if err != nil {
			return err
		}

		if serial.Status == models.SerialSold {
			return apperrors.NewInvalidStateTransitionError("serial number", string(models.SerialSold), "deleted")
		}

		return s.sr.Delete(tx, tenantID, serialID)
	})
}
