package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/braintree"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	writeMaxRetries     = 3
	writeInitialBackoff = 50 * time.Millisecond
)

// Service runs the payment flow: price the cart server-side, charge the
// gateway, then record the order.
type Service interface {
	ClientToken(ctx context.Context) (*TokenResponse, error)
	Checkout(ctx context.Context, buyerID uuid.UUID, req CheckoutRequest) (*orders.OrderDTO, error)
}

// paymentGateway is the slice of the Braintree client checkout needs.
type paymentGateway interface {
	GenerateClientToken(ctx context.Context) (string, error)
	Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*braintree.Receipt, error)
}

// ServiceParams wires checkout's dependencies.
type ServiceParams struct {
	DB       *db.Client
	Products *products.Repository
	Orders   *orders.Repository
	Gateway  paymentGateway
	Logger   *logger.Logger
}

type service struct {
	db       *db.Client
	products *products.Repository
	orders   *orders.Repository
	gateway  paymentGateway
	logger   *logger.Logger
}

// NewService validates the wiring and returns the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, errors.New("checkout service requires a db client")
	}
	if params.Products == nil {
		return nil, errors.New("checkout service requires a products repository")
	}
	if params.Orders == nil {
		return nil, errors.New("checkout service requires an orders repository")
	}
	if params.Gateway == nil {
		return nil, errors.New("checkout service requires a payment gateway")
	}
	if params.Logger == nil {
		return nil, errors.New("checkout service requires a logger")
	}
	return &service{
		db:       params.DB,
		products: params.Products,
		orders:   params.Orders,
		gateway:  params.Gateway,
		logger:   params.Logger,
	}, nil
}

func (s *service) ClientToken(ctx context.Context) (*TokenResponse, error) {
	token, err := s.gateway.GenerateClientToken(ctx)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{ClientToken: token}, nil
}

// pricedLine pairs a cart entry with the product row it was priced from.
type pricedLine struct {
	product  *models.Product
	quantity int
}

func (s *service) Checkout(ctx context.Context, buyerID uuid.UUID, req CheckoutRequest) (*orders.OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "checkout requires an authenticated buyer")
	}
	if len(req.Cart) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must not be empty")
	}
	if strings.TrimSpace(req.Nonce) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method nonce is required")
	}

	lines, total, err := s.priceCart(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	// The charge happens before any database write. A declined card must
	// leave the catalog and the orders table untouched.
	receipt, err := s.gateway.Sale(ctx, total, req.Nonce)
	if err != nil {
		return nil, err
	}

	order := buildOrder(buyerID, lines, total, receipt)
	if err := s.recordOrder(ctx, order, lines); err != nil {
		return nil, err
	}

	saved, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		// The write committed, so return the order even if the reload fails.
		dto := orders.FromModel(order)
		return &dto, nil
	}
	dto := orders.FromModel(saved)
	return &dto, nil
}

// priceCart loads each product once, verifies stock, and totals the cart
// from database prices. Client-supplied amounts are never trusted.
func (s *service) priceCart(ctx context.Context, cart []CartItem) ([]pricedLine, decimal.Decimal, error) {
	quantities := make(map[uuid.UUID]int, len(cart))
	seenOrder := make([]uuid.UUID, 0, len(cart))
	for _, item := range cart {
		if item.ProductID == uuid.Nil {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart item product id is required")
		}
		if item.Quantity < 1 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart item quantity must be at least 1")
		}
		if _, seen := quantities[item.ProductID]; !seen {
			seenOrder = append(seenOrder, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	lines := make([]pricedLine, 0, len(seenOrder))
	total := decimal.Zero
	for _, id := range seenOrder {
		product, err := s.products.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": id})
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart product")
		}
		qty := quantities[id]
		if product.Quantity < qty {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": id,
					"available":  product.Quantity,
					"requested":  qty,
				})
		}
		lines = append(lines, pricedLine{product: product, quantity: qty})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return lines, total.Round(2), nil
}

func buildOrder(buyerID uuid.UUID, lines []pricedLine, total decimal.Decimal, receipt *braintree.Receipt) *models.Order {
	items := make([]models.OrderLineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderLineItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			UnitPrice:   line.product.Price,
			Quantity:    line.quantity,
		})
	}
	return &models.Order{
		BuyerID:       buyerID,
		Status:        enums.OrderStatusNotProcessed,
		Total:         total,
		TransactionID: receipt.TransactionID,
		GatewayStatus: receipt.Status,
		LineItems:     items,
	}
}

// recordOrder persists the order and decrements stock in one transaction.
// The buyer has already been charged, so transient write failures are
// retried before giving up.
func (s *service) recordOrder(ctx context.Context, order *models.Order, lines []pricedLine) error {
	backoff := retry.WithMaxRetries(writeMaxRetries, retry.NewExponential(writeInitialBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			productsTx := s.products.WithTx(tx)
			for _, line := range lines {
				ok, err := productsTx.DecrementStock(ctx, line.product.ID, line.quantity)
				if err != nil {
					return err
				}
				if !ok {
					// Another checkout took the last units between pricing
					// and commit. The charge already settled, so keep the
					// order and let fulfilment resolve the shortfall.
					warnCtx := s.logger.WithFields(ctx, map[string]any{
						"product_id":     line.product.ID.String(),
						"requested":      line.quantity,
						"transaction_id": order.TransactionID,
					})
					s.logger.Warn(warnCtx, "stock raced below requested quantity during checkout")
				}
			}
			return s.orders.WithTx(tx).Create(ctx, order)
		})
		if txErr != nil {
			return retry.RetryableError(txErr)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	// The money moved but the order did not land. This needs an operator.
	alertCtx := s.logger.WithFields(ctx, map[string]any{
		"transaction_id": order.TransactionID,
		"buyer_id":       order.BuyerID.String(),
		"total":          order.Total.StringFixed(2),
	})
	s.logger.Error(alertCtx, "payment captured but order write failed after retries", err)
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order could not be recorded")
}
