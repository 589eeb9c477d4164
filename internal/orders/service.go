package orders

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/errors"
)

// Service lets users read their own order history. Orders are created only
// by cart conversion; nothing here mutates them.
type Service interface {
	List(ctx context.Context, userID uint) ([]models.Order, error)
	Get(ctx context.Context, userID, orderID uint) (*models.Order, error)
}

type service struct {
	orders *Repository
}

// NewService constructs the orders read service.
func NewService(orders *Repository) Service {
	return &service{orders: orders}
}

func (s *service) List(ctx context.Context, userID uint) ([]models.Order, error) {
	rows, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to list orders")
	}
	return rows, nil
}

// Get loads a single order. An order belonging to another user is reported
// as not found rather than forbidden, so ids cannot be probed.
func (s *service) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "pedido no encontrado")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to load order")
	}
	return order, nil
}
