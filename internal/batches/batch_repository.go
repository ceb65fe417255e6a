package batches

import (
	"fmt"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type BatchRepository interface {
	Insert(tx *goqu.TxDatabase, batch *models.Batch) (int, error)
	Get(tenantID, batchID int) (*models.Batch, error)
	GetForUpdate(tx *goqu.TxDatabase, tenantID, batchID int) (*models.Batch, error)
	ListByProduct(tenantID, productID int) ([]models.Batch, error)
	ListWithExpiry(tenantID int) ([]models.Batch, error)
	FindStockLevelID(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*int, error)
	SetReservedQuantity(tx *goqu.TxDatabase, tenantID, batchID, reserved int) error
	CountSerials(tx *goqu.TxDatabase, tenantID, batchID int) (int, error)
	Delete(tx *goqu.TxDatabase, tenantID, batchID int) error
}

type batchRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) BatchRepository {
	return &batchRepository{repo: r}
}

func (r *batchRepository) Insert(tx *goqu.TxDatabase, batch *models.Batch) (int, error) {
	var batchID int

	record := goqu.Record{
		"tenant_id":         batch.TenantID,
		"product_id":        batch.ProductID,
		"batch_number":      batch.BatchNumber,
		"quantity":          batch.Quantity,
		"reserved_quantity": batch.ReservedQuantity,
		"unit_cost":         batch.UnitCost,
		"received_at":       batch.ReceivedAt,
	}
	if batch.StockLevelID != nil {
		record["stock_level_id"] = *batch.StockLevelID
	}
	if batch.ManufacturingDate != nil {
		record["manufacturing_date"] = *batch.ManufacturingDate
	}
	if batch.ExpiryDate != nil {
		record["expiry_date"] = *batch.ExpiryDate
	}

	query := tx.Insert("batches").Rows(record).Returning("id")
	if _, err := query.Executor().ScanVal(&batchID); err != nil {
		return 0, apperrors.WrapDBError(err, "batch")
	}

	return batchID, nil
}

func (r *batchRepository) Get(tenantID, batchID int) (*models.Batch, error) {
	var batch models.Batch

	found, err := r.repo.GoquDBWrapper.From("batches").
		Where(goqu.Ex{"id": batchID, "tenant_id": tenantID}).
		ScanStruct(&batch)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch %d: %w", batchID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("batch")
	}

	return &batch, nil
}

func (r *batchRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, batchID int) (*models.Batch, error) {
	var batch models.Batch

	found, err := tx.From("batches").
		Where(goqu.Ex{"id": batchID, "tenant_id": tenantID}).
		ForUpdate(exp.Wait).
		ScanStruct(&batch)
	if err != nil {
		return nil, fmt.Errorf("failed to lock batch %d: %w", batchID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("batch")
	}

	return &batch, nil
}

func (r *batchRepository) ListByProduct(tenantID, productID int) ([]models.Batch, error) {
	var batches []models.Batch

	err := r.repo.GoquDBWrapper.From("batches").
		Where(goqu.Ex{"tenant_id": tenantID, "product_id": productID}).
		Order(goqu.C("received_at").Asc()).
		ScanStructs(&batches)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}

	return batches, nil
}

func (r *batchRepository) ListWithExpiry(tenantID int) ([]models.Batch, error) {
	var batches []models.Batch

	err := r.repo.GoquDBWrapper.From("batches").
		Where(goqu.C("tenant_id").Eq(tenantID)).
		Where(goqu.C("expiry_date").IsNotNull()).
		Where(goqu.C("quantity").Gt(0)).
		Order(goqu.C("expiry_date").Asc()).
		ScanStructs(&batches)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring batches: %w", err)
	}

	return batches, nil
}

// FindStockLevelID resolves the stock level a receipt landed on, so the batch
// row can carry the link. Nil when the level does not exist yet.
func (r *batchRepository) FindStockLevelID(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*int, error) {
	var levelID int

	found, err := tx.From("stock_levels").
		Select("id").
		Where(goqu.Ex{
			"tenant_id":   tenantID,
			"product_id":  productID,
			"location_id": locationID,
		}).
		ScanVal(&levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stock level: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &levelID, nil
}

func (r *batchRepository) SetReservedQuantity(tx *goqu.TxDatabase, tenantID, batchID, reserved int) error {
	result, err := tx.Update("batches").
		Set(goqu.Record{"reserved_quantity": reserved}).
		Where(goqu.Ex{"id": batchID, "tenant_id": tenantID}).
		Where(goqu.C("quantity").Gte(reserved)).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update batch %d reservation: %w", batchID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewConflictError("batch", "reserved quantity exceeds on-hand quantity")
	}

	return nil
}

func (r *batchRepository) CountSerials(tx *goqu.TxDatabase, tenantID, batchID int) (int, error) {
	var count int

	_, err := tx.From("serial_numbers").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"tenant_id": tenantID, "batch_id": batchID}).
		ScanVal(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count serial numbers for batch %d: %w", batchID, err)
	}

	return count, nil
}

func (r *batchRepository) Delete(tx *goqu.TxDatabase, tenantID, batchID int) error {
	if _, err := tx.Delete("batches").
		Where(goqu.Ex{"id": batchID, "tenant_id": tenantID}).
		Executor().Exec(); err != nil {
		return fmt.Errorf("failed to delete batch %d: %w", batchID, err)
	}

	return nil
}
