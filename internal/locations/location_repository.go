package locations

import (
	"fmt"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type LocationRepository struct {
	repo *repository.Repository
	db   repository.TxRunner
}

func NewLocationRepository(r *repository.Repository) *LocationRepository {
	return &LocationRepository{repo: r, db: r}
}

// Insert creates a location; when it is flagged primary, the previous primary
// for the tenant is demoted in the same transaction.
func (r *LocationRepository) Insert(location *models.Location) error {
	return r.db.InTransaction(func(tx *goqu.TxDatabase) error {
		if location.IsPrimary {
			if err := demotePrimary(tx, location.TenantID); err != nil {
				return err
			}
		}

		record := goqu.Record{
			"tenant_id":  location.TenantID,
			"name":       location.Name,
			"is_primary": location.IsPrimary,
		}
		if location.Address != nil {
			record["address"] = *location.Address
		}

		query := tx.Insert("locations").Rows(record).Returning("id")
		if _, err := query.Executor().ScanVal(&location.ID); err != nil {
			return apperrors.WrapDBError(err, "location")
		}

		return nil
	})
}

func demotePrimary(tx *goqu.TxDatabase, tenantID int) error {
	if _, err := tx.Update("locations").
		Set(goqu.Record{"is_primary": false}).
		Where(goqu.Ex{"tenant_id": tenantID, "is_primary": true}).
		Executor().Exec(); err != nil {
		return fmt.Errorf("failed to demote primary location: %w", err)
	}
	return nil
}

func (r *LocationRepository) Get(tenantID, locationID int) (*models.Location, error) {
	var location models.Location

	found, err := r.repo.GoquDBWrapper.From("locations").
		Where(goqu.Ex{"id": locationID, "tenant_id": tenantID}).
		ScanStruct(&location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %d: %w", locationID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("location")
	}

	return &location, nil
}

func (r *LocationRepository) List(tenantID int) ([]models.Location, error) {
	var locations []models.Location

	err := r.repo.GoquDBWrapper.From("locations").
		Where(goqu.C("tenant_id").Eq(tenantID)).
		Order(goqu.C("is_primary").Desc(), goqu.C("name").Asc()).
		ScanStructs(&locations)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return locations, nil
}

func (r *LocationRepository) Update(location *models.Location) error {
	return r.db.InTransaction(func(tx *goqu.TxDatabase) error {
		if location.IsPrimary {
			if err := demotePrimary(tx, location.TenantID); err != nil {
				return err
			}
		}

		record := goqu.Record{
			"name":       location.Name,
			"is_primary": location.IsPrimary,
		}
		if location.Address != nil {
			record["address"] = *location.Address
		}

		result, err := tx.Update("locations").
			Set(record).
			Where(goqu.Ex{"id": location.ID, "tenant_id": location.TenantID}).
			Executor().Exec()
		if err != nil {
			return apperrors.WrapDBError(err, "location")
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return apperrors.NewNotFoundError("location")
		}

		return nil
	})
}

// Delete refuses to remove a tenant's last location.
func (r *LocationRepository) Delete(tenantID, locationID int) error {
	return r.db.InTransaction(func(tx *goqu.TxDatabase) error {
		var count int
		if _, err := tx.From("locations").
			Select(goqu.COUNT("*")).
			Where(goqu.C("tenant_id").Eq(tenantID)).
			ScanVal(&count); err != nil {
			return fmt.Errorf("failed to count locations: %w", err)
		}
		if count <= 1 {
			return apperrors.NewConflictError("location", "a tenant must retain at least one location")
		}

		result, err := tx.Delete("locations").
			Where(goqu.Ex{"id": locationID, "tenant_id": tenantID}).
			Executor().Exec()
		if err != nil {
			return apperrors.WrapDBError(err, "location")
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return apperrors.NewNotFoundError("location")
		}

		return nil
	})
}
