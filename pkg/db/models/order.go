package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is created only after a successful gateway charge. The payment
// columns hold the opaque gateway receipt.
type Order struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	Buyer         *User             `gorm:"foreignKey:BuyerID"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:not_processed"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	TransactionID string            `gorm:"column:transaction_id;not null"`
	GatewayStatus string            `gorm:"column:gateway_status;not null"`
	LineItems     []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderLineItem references a purchased product. Name and unit price are
// snapshotted at purchase time so order history survives catalog edits.
type OrderLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:1"`
}

func (li *OrderLineItem) BeforeCreate(*gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}
