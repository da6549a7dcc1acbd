package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog listing. The photo payload lives in a
// separate row so list and search paths never load it.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Slug        string          `gorm:"column:slug;not null;uniqueIndex:idx_products_slug"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CategoryID  uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
	Quantity    int             `gorm:"column:quantity;not null;default:0"`
	Shipping    bool            `gorm:"column:shipping;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductPhoto stores the binary image for a product, replaced
// independently of the queryable fields.
type ProductPhoto struct {
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Data        []byte    `gorm:"column:data;not null"`
	ContentType string    `gorm:"column:content_type;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
