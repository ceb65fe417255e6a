package serials

import (
	"fmt"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type SerialRepository interface {
	Insert(tx *goqu.TxDatabase, serial *models.SerialNumber) (int, error)
	Get(tenantID, serialID int) (*models.SerialNumber, error)
	GetForUpdate(tx *goqu.TxDatabase, tenantID, serialID int) (*models.SerialNumber, error)
	ListByProduct(tenantID, productID int, status models.SerialStatus) ([]models.SerialNumber, error)
	UpdateStatus(tx *goqu.TxDatabase, tenantID, serialID int, status models.SerialStatus) error
	Delete(tx *goqu.TxDatabase, tenantID, serialID int) error
}

type serialRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) SerialRepository {
	return &serialRepository{repo: r}
}

func (r *serialRepository) Insert(tx *goqu.TxDatabase, serial *models.SerialNumber) (int, error) {
	var serialID int

	record := goqu.Record{
		"tenant_id":  serial.TenantID,
		"product_id": serial.ProductID,
		"serial":     serial.Serial,
		"status":     string(serial.Status),
		"created_at": serial.CreatedAt,
	}
	if serial.BatchID != nil {
		record["batch_id"] = *serial.BatchID
	}
	if serial.StockLevelID != nil {
		record["stock_level_id"] = *serial.StockLevelID
	}
	if serial.WarrantyExpiry != nil {
		record["warranty_expiry"] = *serial.WarrantyExpiry
	}

	query := tx.Insert("serial_numbers").Rows(record).Returning("id")
	if _, err := query.Executor().ScanVal(&serialID); err != nil {
		return 0, apperrors.WrapDBError(err, "serial number")
	}

	return serialID, nil
}

func (r *serialRepository) Get(tenantID, serialID int) (*models.SerialNumber, error) {
	var serial models.SerialNumber

	found, err := r.repo.GoquDBWrapper.From("serial_numbers").
		Where(goqu.Ex{"id": serialID, "tenant_id": tenantID}).
		ScanStruct(&serial)
	if err != nil {
		return nil, fmt.Errorf("failed to get serial number %d: %w", serialID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("serial number")
	}

	return &serial, nil
}

func (r *serialRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, serialID int) (*models.SerialNumber, error) {
	var serial models.SerialNumber

	found, err := tx.From("serial_numbers").
		Where(goqu.Ex{"id": serialID, "tenant_id": tenantID}).
		ForUpdate(exp.Wait).
		ScanStruct(&serial)
	if err != nil {
		return nil, fmt.Errorf("failed to lock serial number %d: %w", serialID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("serial number")
	}

	return &serial, nil
}

func (r *serialRepository) ListByProduct(tenantID, productID int, status models.SerialStatus) ([]models.SerialNumber, error) {
	query := r.repo.GoquDBWrapper.From("serial_numbers").
		Where(goqu.Ex{"tenant_id": tenantID, "product_id": productID}).
		Order(goqu.C("serial").Asc())
	if status != "" {
		query = query.Where(goqu.C("status").Eq(string(status)))
	}

	var serials []models.SerialNumber
	if err := query.ScanStructs(&serials); err != nil {
		return nil, fmt.Errorf("failed to list serial numbers: %w", err)
	}

	return serials, nil
}

func (r *serialRepository) UpdateStatus(tx *goqu.TxDatabase, tenantID, serialID int, status models.SerialStatus) error {
	result, err := tx.Update("serial_numbers").
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.Ex{"id": serialID, "tenant_id": tenantID}).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update serial number %d: %w", serialID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("serial number")
	}

	return nil
}

func (r *serialRepository) Delete(tx *goqu.TxDatabase, tenantID, serialID int) error {
	if _, err := tx.Delete("serial_numbers").
		Where(goqu.Ex{"id": serialID, "tenant_id": tenantID}).
		Executor().Exec(); err != nil {
		return fmt.Errorf("failed to delete serial number %d: %w", serialID, err)
	}

	return nil
}
