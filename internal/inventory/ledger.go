package inventory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/pkg/db/models"
	pkgerrors "github.com/dramirezh/tienda-backend/pkg/errors"
)

// Decrement atomically subtracts quantity from a product's stock inside the
// caller's transaction. The write is conditional on sufficient stock, so two
// racing checkouts cannot both take the last unit: the guard makes the loser
// match zero rows and the whole transaction rolls back.
func Decrement(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "decrement quantity must be positive")
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return classifyMiss(ctx, tx, productID)
	}
	return nil
}

// Increment adds quantity back to a product's stock (restock or manual
// correction). Conversion failures never call this: the surrounding
// transaction rollback already restores stock.
func Increment(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "increment quantity must be positive")
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func classifyMiss(ctx context.Context, tx *gorm.DB, productID uint) error {
	var product models.Product
	err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect stock")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product").
		WithDetails(map[string]any{
			"productoId": product.ID,
			"nombre":     product.Name,
			"disponible": product.Stock,
		})
}
