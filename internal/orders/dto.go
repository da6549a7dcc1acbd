package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// OrderDTO is the transport shape for order history reads.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	BuyerID       uuid.UUID         `json:"buyer_id"`
	BuyerName     string            `json:"buyer_name,omitempty"`
	Status        enums.OrderStatus `json:"status"`
	Total         decimal.Decimal   `json:"total"`
	TransactionID string            `json:"transaction_id,omitempty"`
	GatewayStatus string            `json:"gateway_status,omitempty"`
	LineItems     []LineItemDTO     `json:"line_items"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// LineItemDTO carries the purchase-time product snapshot.
type LineItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// UpdateStatusRequest carries the requested status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// FromModel maps an order row, with buyer and line items expanded, to its DTO.
func FromModel(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID,
		BuyerID:       o.BuyerID,
		Status:        o.Status,
		Total:         o.Total,
		TransactionID: o.TransactionID,
		GatewayStatus: o.GatewayStatus,
		LineItems:     make([]LineItemDTO, 0, len(o.LineItems)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Buyer != nil {
		dto.BuyerName = o.Buyer.Name
	}
	for _, li := range o.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemDTO{
			ProductID:   li.ProductID,
			ProductName: li.ProductName,
			UnitPrice:   li.UnitPrice,
			Quantity:    li.Quantity,
		})
	}
	return dto
}

// FromModels maps a slice of order rows to DTOs, preserving order.
func FromModels(items []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, FromModel(&items[i]))
	}
	return dtos
}
