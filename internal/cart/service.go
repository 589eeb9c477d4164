package cart

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/errors"
)

// productLoader is the slice of the catalog the cart needs.
type productLoader interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
}

// userChecker verifies that a cart owner exists.
type userChecker interface {
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

// Service manages the active cart of each user.
type Service interface {
	GetActiveCart(ctx context.Context, userID uint) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error)
	SetSavedForLater(ctx context.Context, userID, itemID uint, saved bool) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
}

type service struct {
	carts    *Repository
	products productLoader
	users    userChecker
}

// NewService constructs the cart service.
func NewService(carts *Repository, products productLoader, users userChecker) Service {
	return &service{carts: carts, products: products, users: users}
}

// GetActiveCart returns the user's active cart, creating an empty one when none exists.
func (s *service) GetActiveCart(ctx context.Context, userID uint) (*models.Cart, error) {
	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to look up user")
	}
	if !exists {
		return nil, errors.New(errors.CodeNotFound, "usuario no encontrado")
	}

	cart, err := s.carts.FindActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to load cart")
	}

	created, err := s.carts.Create(ctx, &models.Cart{UserID: userID, Active: true})
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to create cart")
	}
	return created, nil
}

// AddItem adds a product to the active cart. Adding a product already in the
// cart increments the existing line instead of creating a duplicate.
func (s *service) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, errors.New(errors.CodeValidation, "la cantidad debe ser mayor que cero")
	}

	cart, err := s.GetActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "producto no encontrado")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to load product")
	}

	existing, err := s.carts.FindItemByCartAndProduct(ctx, cart.ID, productID)
	switch {
	case err == nil:
		existing.Quantity += quantity
		updated, uerr := s.carts.UpdateItem(ctx, existing)
		if uerr != nil {
			return nil, errors.Wrap(errors.CodeDependency, uerr, "failed to update cart item")
		}
		return updated, nil
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		created, cerr := s.carts.CreateItem(ctx, item)
		if cerr != nil {
			return nil, errors.Wrap(errors.CodeDependency, cerr, "failed to add cart item")
		}
		return created, nil
	default:
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to load cart item")
	}
}

// UpdateItemQuantity sets the quantity of a cart line. A quantity of zero or
// less removes the line and returns a nil item.
func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if derr := s.carts.DeleteItem(ctx, item.ID); derr != nil {
			return nil, errors.Wrap(errors.CodeDependency, derr, "failed to remove cart item")
		}
		return nil, nil
	}

	item.Quantity = quantity
	updated, err := s.carts.UpdateItem(ctx, item)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to update cart item")
	}
	return updated, nil
}

// SetSavedForLater toggles the saved-for-later flag of a cart line.
func (s *service) SetSavedForLater(ctx context.Context, userID, itemID uint, saved bool) (*models.CartItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.SavedForLater = saved
	updated, err := s.carts.UpdateItem(ctx, item)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to update cart item")
	}
	return updated, nil
}

// RemoveItem deletes a cart line. Removing a line that no longer exists is a no-op.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uint) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil
		}
		return err
	}
	if derr := s.carts.DeleteItem(ctx, item.ID); derr != nil {
		return errors.Wrap(errors.CodeDependency, derr, "failed to remove cart item")
	}
	return nil
}

// Clear empties the active cart. A user without an active cart is a no-op.
func (s *service) Clear(ctx context.Context, userID uint) error {
	cart, err := s.carts.FindActiveByUser(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrap(errors.CodeDependency, err, "failed to load cart")
	}
	if derr := s.carts.DeleteItemsByCart(ctx, cart.ID); derr != nil {
		return errors.Wrap(errors.CodeDependency, derr, "failed to clear cart")
	}
	return nil
}

// ownedItem loads a cart line and verifies it belongs to the user's active cart.
func (s *service) ownedItem(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	cart, err := s.GetActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.FindItemByID(ctx, itemID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "item no encontrado")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to load cart item")
	}
	if item.CartID != cart.ID {
		return nil, errors.New(errors.CodeForbidden, "el item pertenece a otro carrito")
	}
	return item, nil
}
