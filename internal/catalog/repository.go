package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/internal/repo"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
)

// Repository exposes persistence operations for catalog products.
type Repository struct {
	repo.Base
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{Base: repo.NewBase(tx)}
}

// FindByID loads a product by id.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the given products keyed by id. Missing ids are simply
// absent from the result; callers decide whether that is an error.
func (r *Repository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*models.Product, error) {
	result := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = &rows[i]
	}
	return result, nil
}

// List returns products, optionally restricted to active listings.
func (r *Repository) List(ctx context.Context, onlyActive bool) ([]models.Product, error) {
	query := r.DB(ctx).Order("id ASC")
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate marks a product inactive. Rows are never deleted because order
// details keep referencing them.
func (r *Repository) Deactivate(ctx context.Context, id uint) error {
	return r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("active", false).Error
}
