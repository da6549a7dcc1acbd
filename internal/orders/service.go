package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service defines the order history and status operations.
type Service interface {
	ListOwn(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error)
	ListAll(ctx context.Context) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs the order service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListOwn(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error) {
	items, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(items), nil
}

func (s *service) ListAll(ctx context.Context) ([]OrderDTO, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list all orders")
	}
	return FromModels(items), nil
}

// UpdateStatus moves an order between fulfilment states. Transitions are
// free-form except that cancelled is terminal.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": req.Status})
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if order.Status.IsTerminal() && status != order.Status {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot change status")
	}

	if status != order.Status {
		if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		// Reload so the DTO reflects the timestamps the write produced.
		order, err = s.repo.FindByID(ctx, orderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
	}

	dto := FromModel(order)
	return &dto, nil
}
