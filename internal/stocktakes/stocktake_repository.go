package stocktakes

import (
	"fmt"
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type StockTakeRepository interface {
	Insert(tx *goqu.TxDatabase, stockTake *models.StockTake) (int, error)
	SnapshotItems(tx *goqu.TxDatabase, stockTakeID, tenantID, locationID int) (int, error)
	Get(tenantID, stockTakeID int) (*models.StockTake, error)
	GetForUpdate(tx *goqu.TxDatabase, tenantID, stockTakeID int) (*models.StockTake, error)
	List(tenantID int, status models.StockTakeStatus) ([]models.StockTake, error)
	ListItems(tenantID, stockTakeID int) ([]models.StockTakeItem, error)
	ListItemsTx(tx *goqu.TxDatabase, stockTakeID int) ([]models.StockTakeItem, error)
	RecordCount(tx *goqu.TxDatabase, stockTakeID, productID, counted int, countedBy string) error
	UpdateStatus(tx *goqu.TxDatabase, tenantID, stockTakeID int, from []models.StockTakeStatus, to models.StockTakeStatus, record goqu.Record) error
	Delete(tx *goqu.TxDatabase, tenantID, stockTakeID int) error
}

type stockTakeRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) StockTakeRepository {
	return &stockTakeRepository{repo: r}
}

// Insert relies on the partial unique index over (tenant_id, location_id)
// for active statuses: a second active stock-take at the same location fails
// inside this transaction as a conflict, not in a racy pre-check.
func (r *stockTakeRepository) Insert(tx *goqu.TxDatabase, stockTake *models.StockTake) (int, error) {
	var stockTakeID int

	query := tx.Insert("stock_takes").
		Rows(goqu.Record{
			"tenant_id":   stockTake.TenantID,
			"location_id": stockTake.LocationID,
			"reference":   stockTake.Reference,
			"status":      string(stockTake.Status),
			"note":        stockTake.Note,
			"created_by":  stockTake.CreatedBy,
			"created_at":  stockTake.CreatedAt,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&stockTakeID); err != nil {
		return 0, apperrors.WrapDBError(err, "stock take")
	}

	return stockTakeID, nil
}

// SnapshotItems freezes the system quantity of every stock level at the
// location into item rows.
func (r *stockTakeRepository) SnapshotItems(tx *goqu.TxDatabase, stockTakeID, tenantID, locationID int) (int, error) {
	source := tx.From("stock_levels").
		Select(goqu.V(stockTakeID), goqu.C("product_id"), goqu.C("quantity")).
		Where(goqu.Ex{"tenant_id": tenantID, "location_id": locationID})

	result, err := tx.Insert("stock_take_items").
		Cols("stock_take_id", "product_id", "system_quantity").
		FromQuery(source).
		Executor().Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to snapshot stock levels: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(affected), nil
}

func (r *stockTakeRepository) Get(tenantID, stockTakeID int) (*models.StockTake, error) {
	var stockTake models.StockTake

	found, err := r.repo.GoquDBWrapper.From("stock_takes").
		Where(goqu.Ex{"id": stockTakeID, "tenant_id": tenantID}).
		ScanStruct(&stockTake)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock take %d: %w", stockTakeID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("stock take")
	}

	return &stockTake, nil
}

func (r *stockTakeRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, stockTakeID int) (*models.StockTake, error) {
	var stockTake models.StockTake

	found, err := tx.From("stock_takes").
		Where(goqu.Ex{"id": stockTakeID, "tenant_id": tenantID}).
		ForUpdate(exp.Wait).
		ScanStruct(&stockTake)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock take %d: %w", stockTakeID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("stock take")
	}

	return &stockTake, nil
}

func (r *stockTakeRepository) List(tenantID int, status models.StockTakeStatus) ([]models.StockTake, error) {
	query := r.repo.GoquDBWrapper.From("stock_takes").
		Where(goqu.C("tenant_id").Eq(tenantID)).
		Order(goqu.C("created_at").Desc())
	if status != "" {
		query = query.Where(goqu.C("status").Eq(string(status)))
	}

	var stockTakes []models.StockTake
	if err := query.ScanStructs(&stockTakes); err != nil {
		return nil, fmt.Errorf("failed to list stock takes: %w", err)
	}

	return stockTakes, nil
}

func (r *stockTakeRepository) ListItems(tenantID, stockTakeID int) ([]models.StockTakeItem, error) {
	var items []models.StockTakeItem

	err := r.repo.GoquDBWrapper.From(goqu.T("stock_take_items").As("i")).
		Select("i.*").
		Join(
			goqu.T("stock_takes").As("st"),
			goqu.On(goqu.Ex{"st.id": goqu.I("i.stock_take_id")}),
		).
		Where(goqu.Ex{"i.stock_take_id": stockTakeID, "st.tenant_id": tenantID}).
		Order(goqu.I("i.product_id").Asc()).
		ScanStructs(&items)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock take items: %w", err)
	}

	return items, nil
}

func (r *stockTakeRepository) ListItemsTx(tx *goqu.TxDatabase, stockTakeID int) ([]models.StockTakeItem, error) {
	var items []models.StockTakeItem

	err := tx.From("stock_take_items").
		Where(goqu.C("stock_take_id").Eq(stockTakeID)).
		Order(goqu.C("product_id").Asc()).
		ScanStructs(&items)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock take items: %w", err)
	}

	return items, nil
}

// RecordCount overwrites any previous count for the product; counting is
// idempotent per item.
func (r *stockTakeRepository) RecordCount(tx *goqu.TxDatabase, stockTakeID, productID, counted int, countedBy string) error {
	result, err := tx.Update("stock_take_items").
		Set(goqu.Record{
			"counted_quantity": counted,
			"counted_by":       countedBy,
			"counted_at":       time.Now(),
		}).
		Where(goqu.Ex{"stock_take_id": stockTakeID, "product_id": productID}).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to record count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("stock take item")
	}

	return nil
}

func (r *stockTakeRepository) UpdateStatus(tx *goqu.TxDatabase, tenantID, stockTakeID int, from []models.StockTakeStatus, to models.StockTakeStatus, record goqu.Record) error {
	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}

	if record == nil {
		record = goqu.Record{}
	}
	record["status"] = string(to)

	result, err := tx.Update("stock_takes").
		Set(record).
		Where(goqu.Ex{"id": stockTakeID, "tenant_id": tenantID}).
		Where(goqu.C("status").In(statuses)).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update stock take %d status: %w", stockTakeID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewInvalidStateTransitionError("stock take", "current", string(to))
	}

	return nil
}

func (r *stockTakeRepository) Delete(tx *goqu.TxDatabase, tenantID, stockTakeID int) error {
	// Item rows go with the header via ON DELETE CASCADE.
	if _, err := tx.Delete("stock_takes").
		Where(goqu.Ex{"id": stockTakeID, "tenant_id": tenantID}).
		Executor().Exec(); err != nil {
		return fmt.Errorf("failed to delete stock take %d: %w", stockTakeID, err)
	}

	return nil
}
