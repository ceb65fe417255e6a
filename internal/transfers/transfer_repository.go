package transfers

import (
	"fmt"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type TransferRepository interface {
	Insert(tx *goqu.TxDatabase, transfer *models.StockTransfer) (int, error)
	Get(tenantID, transferID int) (*models.StockTransfer, error)
	GetForUpdate(tx *goqu.TxDatabase, tenantID, transferID int) (*models.StockTransfer, error)
	List(tenantID int, status models.TransferStatus) ([]models.StockTransfer, error)
	UpdateStatus(tx *goqu.TxDatabase, tenantID, transferID int, from []models.TransferStatus, to models.TransferStatus, record goqu.Record) error
	Delete(tx *goqu.TxDatabase, tenantID, transferID int) error
}

type transferRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) TransferRepository {
	return &transferRepository{repo: r}
}

func (r *transferRepository) Insert(tx *goqu.TxDatabase, transfer *models.StockTransfer) (int, error) {
	var transferID int

	query := tx.Insert("stock_transfers").
		Rows(goqu.Record{
			"tenant_id":        transfer.TenantID,
			"product_id":       transfer.ProductID,
			"from_location_id": transfer.FromLocationID,
			"to_location_id":   transfer.ToLocationID,
			"quantity":         transfer.Quantity,
			"status":           string(transfer.Status),
			"note":             transfer.Note,
			"created_by":       transfer.CreatedBy,
			"created_at":       transfer.CreatedAt,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&transferID); err != nil {
		return 0, apperrors.WrapDBError(err, "transfer")
	}

	return transferID, nil
}

func (r *transferRepository) Get(tenantID, transferID int) (*models.StockTransfer, error) {
	var transfer models.StockTransfer

	found, err := r.repo.GoquDBWrapper.From("stock_transfers").
		Where(goqu.Ex{"id": transferID, "tenant_id": tenantID}).
		ScanStruct(&transfer)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer %d: %w", transferID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("transfer")
	}

	return &transfer, nil
}

func (r *transferRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, transferID int) (*models.StockTransfer, error) {
	var transfer models.StockTransfer

	found, err := tx.From("stock_transfers").
		Where(goqu.Ex{"id": transferID, "tenant_id": tenantID}).
		ForUpdate(exp.Wait).
		ScanStruct(&transfer)
	if err != nil {
		return nil, fmt.Errorf("failed to lock transfer %d: %w", transferID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("transfer")
	}

	return &transfer, nil
}

func (r *transferRepository) List(tenantID int, status models.TransferStatus) ([]models.StockTransfer, error) {
	query := r.repo.GoquDBWrapper.From("stock_transfers").
		Where(goqu.C("tenant_id").Eq(tenantID)).
		Order(goqu.C("created_at").Desc())
	if status != "" {
		query = query.Where(goqu.C("status").Eq(string(status)))
	}

	var transfers []models.StockTransfer
	if err := query.ScanStructs(&transfers); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	return transfers, nil
}

// UpdateStatus performs a guarded transition: the row is only touched when
// its current status is one of `from`. Zero rows affected means the entity
// raced into another state.
func (r *transferRepository) UpdateStatus(tx *goqu.TxDatabase, tenantID, transferID int, from []models.TransferStatus, to models.TransferStatus, record goqu.Record) error {
	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}

	if record == nil {
		record = goqu.Record{}
	}
	record["status"] = string(to)

	result, err := tx.Update("stock_transfers").
		Set(record).
		Where(goqu.Ex{"id": transferID, "tenant_id": tenantID}).
		Where(goqu.C("status").In(statuses)).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update transfer %d status: %w", transferID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewInvalidStateTransitionError("transfer", "current", string(to))
	}

	return nil
}

func (r *transferRepository) Delete(tx *goqu.TxDatabase, tenantID, transferID int) error {
	if _, err := tx.Delete("stock_transfers").
		Where(goqu.Ex{"id": transferID, "tenant_id": tenantID}).
		Executor().Exec(); err != nil {
		return fmt.Errorf("failed to delete transfer %d: %w", transferID, err)
	}

	return nil
}
