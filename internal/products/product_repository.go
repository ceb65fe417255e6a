package products

import (
	"fmt"
	"time"

	"stockroom/internal/repository"
	"stockroom/pkg/apperrors"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type ProductRepository struct {
	repo *repository.Repository
}

func NewRepository(r *repository.Repository) *ProductRepository {
	return &ProductRepository{repo: r}
}

func (r *ProductRepository) Insert(product *models.Product) error {
	query := r.repo.GoquDBWrapper.Insert("products").
		Rows(goqu.Record{
			"tenant_id":     product.TenantID,
			"name":          product.Name,
			"sku":           product.SKU,
			"unit":          product.Unit,
			"selling_price": product.SellingPrice,
			"created_at":    product.CreatedAt,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&product.ID); err != nil {
		return apperrors.WrapDBError(err, "product")
	}

	return nil
}

func (r *ProductRepository) Get(tenantID, productID int) (*models.Product, error) {
	var product models.Product

	found, err := r.repo.GoquDBWrapper.From("products").
		Where(goqu.Ex{"id": productID, "tenant_id": tenantID}).
		Where(goqu.C("deleted_at").IsNull()).
		ScanStruct(&product)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("product")
	}

	return &product, nil
}

func (r *ProductRepository) List(tenantID int) ([]models.Product, error) {
	var products []models.Product

	err := r.repo.GoquDBWrapper.From("products").
		Where(goqu.C("tenant_id").Eq(tenantID)).
		Where(goqu.C("deleted_at").IsNull()).
		Order(goqu.C("name").Asc()).
		ScanStructs(&products)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Update(product *models.Product) error {
	result, err := r.repo.GoquDBWrapper.Update("products").
		Set(goqu.Record{
			"name":          product.Name,
			"unit":          product.Unit,
			"selling_price": product.SellingPrice,
		}).
		Where(goqu.Ex{"id": product.ID, "tenant_id": product.TenantID}).
		Where(goqu.C("deleted_at").IsNull()).
		Executor().Exec()
	if err != nil {
		return apperrors.WrapDBError(err, "product")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("product")
	}

	return nil
}

// SoftDelete keeps the row so historical inventory events stay resolvable.
func (r *ProductRepository) SoftDelete(tenantID, productID int) error {
	result, err := r.repo.GoquDBWrapper.Update("products").
		Set(goqu.Record{"deleted_at": time.Now()}).
		Where(goqu.Ex{"id": productID, "tenant_id": tenantID}).
		Where(goqu.C("deleted_at").IsNull()).
		Executor().Exec()
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", productID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("product")
	}

	return nil
}
