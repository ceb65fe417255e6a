package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type StockLevelRepository interface {
	GetForUpdate(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*models.StockLevel, error)
	Create(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*models.StockLevel, error)
	SetQuantity(tx *goqu.TxDatabase, levelID, quantity int) error
	GetByProductLocation(tenantID, productID, locationID int) (*models.StockLevel, error)
	ListByLocation(tenantID, locationID int) ([]models.StockLevel, error)
	ListBelowReorderPoint(tenantID int) ([]models.StockLevel, error)
}

type EventRepository interface {
	Append(tx *goqu.TxDatabase, event *models.InventoryEvent) error
	ListByProductLocation(tenantID, productID, locationID int, limit int) ([]models.InventoryEvent, error)
}

type stockLevelRepository struct {
	repo *repository.Repository
}

func NewStockLevelRepository(r *repository.Repository) StockLevelRepository {
	return &stockLevelRepository{repo: r}
}

func (r *stockLevelRepository) GetForUpdate(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*models.StockLevel, error) {
	var level models.StockLevel

	found, err := tx.From("stock_levels").
		Where(goqu.Ex{
			"tenant_id":   tenantID,
			"product_id":  productID,
			"location_id": locationID,
		}).
		ForUpdate(exp.Wait).
		ScanStruct(&level)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock level: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &level, nil
}

func (r *stockLevelRepository) Create(tx *goqu.TxDatabase, tenantID, productID, locationID int) (*models.StockLevel, error) {
	level := models.StockLevel{
		TenantID:   tenantID,
		ProductID:  productID,
		LocationID: locationID,
	}

	query := tx.Insert("stock_levels").
		Rows(goqu.Record{
			"tenant_id":   tenantID,
			"product_id":  productID,
			"location_id": locationID,
			"quantity":    0,
			"updated_at":  time.Now(),
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&level.ID); err != nil {
		return nil, apperrors.WrapDBError(err, "stock level")
	}

	return &level, nil
}

func (r *stockLevelRepository) SetQuantity(tx *goqu.TxDatabase, levelID, quantity int) error {
	result, err := tx.Update("stock_levels").
		Set(goqu.Record{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).
		Where(goqu.C("id").Eq(levelID)).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to update stock level %d: %w", levelID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("stock level")
	}

	return nil
}

func (r *stockLevelRepository) GetByProductLocation(tenantID, productID, locationID int) (*models.StockLevel, error) {
	var level models.StockLevel

	found, err := r.repo.GoquDBWrapper.From("stock_levels").
		Where(goqu.Ex{
			"tenant_id":   tenantID,
			"product_id":  productID,
			"location_id": locationID,
		}).
		ScanStruct(&level)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock level: %w", err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("stock level")
	}

	return &level, nil
}

func (r *stockLevelRepository) ListByLocation(tenantID, locationID int) ([]models.StockLevel, error) {
	var levels []models.StockLevel

	err := r.repo.GoquDBWrapper.From("stock_levels").
		Where(goqu.Ex{"tenant_id": tenantID, "location_id": locationID}).
		Order(goqu.C("product_id").Asc()).
		ScanStructs(&levels)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	return levels, nil
}

func (r *stockLevelRepository) ListBelowReorderPoint(tenantID int) ([]models.StockLevel, error) {
	var levels []models.StockLevel

	err := r.repo.GoquDBWrapper.From("stock_levels").
		Where(goqu.C("tenant_id").Eq(tenantID)).
		Where(goqu.C("quantity").Lte(goqu.C("reorder_point"))).
		Order(goqu.C("quantity").Asc()).
		ScanStructs(&levels)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock levels: %w", err)
	}

	return levels, nil
}

type eventRepository struct {
	repo *repository.Repository
}

func NewEventRepository(r *repository.Repository) EventRepository {
	return &eventRepository{repo: r}
}

// eventRow flattens the nullable reference columns for scanning.
type eventRow struct {
	ID             string         `db:"id"`
	TenantID       int            `db:"tenant_id"`
	ProductID      int            `db:"product_id"`
	LocationID     sql.NullInt64  `db:"location_id"`
	Type           string         `db:"event_type"`
	QuantityDelta  int            `db:"quantity_delta"`
	RunningBalance int            `db:"running_balance"`
	ReferenceType  sql.NullString `db:"reference_type"`
	ReferenceID    sql.NullInt64  `db:"reference_id"`
	Actor          string         `db:"actor"`
	Note           string         `db:"note"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (row *eventRow) toModel() models.InventoryEvent {
	event := models.InventoryEvent{
		ID:             row.ID,
		TenantID:       row.TenantID,
		ProductID:      row.ProductID,
		Type:           models.EventType(row.Type),
		QuantityDelta:  row.QuantityDelta,
		RunningBalance: row.RunningBalance,
		Actor:          row.Actor,
		Note:           row.Note,
		CreatedAt:      row.CreatedAt,
	}
	if row.LocationID.Valid {
		locationID := int(row.LocationID.Int64)
		event.LocationID = &locationID
	}
	if row.ReferenceType.Valid && row.ReferenceID.Valid {
		event.Reference = &models.EventReference{
			Type: models.ReferenceType(row.ReferenceType.String),
			ID:   int(row.ReferenceID.Int64),
		}
	}
	return event
}

func (r *eventRepository) Append(tx *goqu.TxDatabase, event *models.InventoryEvent) error {
	record := goqu.Record{
		"id":              event.ID,
		"tenant_id":       event.TenantID,
		"product_id":      event.ProductID,
		"event_type":      string(event.Type),
		"quantity_delta":  event.QuantityDelta,
		"running_balance": event.RunningBalance,
		"actor":           event.Actor,
		"note":            event.Note,
		"created_at":      event.CreatedAt,
	}
	if event.LocationID != nil {
		record["location_id"] = *event.LocationID
	}
	if event.Reference != nil {
		record["reference_type"] = string(event.Reference.Type)
		record["reference_id"] = event.Reference.ID
	}

	if _, err := tx.Insert("inventory_events").Rows(record).Executor().Exec(); err != nil {
		return fmt.Errorf("failed to append inventory event: %w", err)
	}

	return nil
}

func (r *eventRepository) ListByProductLocation(tenantID, productID, locationID int, limit int) ([]models.InventoryEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := r.repo.GoquDBWrapper.From("inventory_events").
		Where(goqu.Ex{"tenant_id": tenantID, "product_id": productID}).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit))
	if locationID > 0 {
		query = query.Where(goqu.C("location_id").Eq(locationID))
	}

	var rows []eventRow
	if err := query.ScanStructs(&rows); err != nil {
		return nil, fmt.Errorf("failed to list inventory events: %w", err)
	}

	events := make([]models.InventoryEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toModel())
	}

	return events, nil
}
