package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ProductDTO is the transport shape for catalog reads. Photo bytes are never
// carried here; they are served by the photo endpoint.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Category    *CategoryRef    `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	Shipping    bool            `json:"shipping"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryRef is the embedded category summary on product reads.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// PhotoDTO carries the stored image payload with its declared content type.
type PhotoDTO struct {
	Data        []byte
	ContentType string
}

// UpsertProductInput is the decoded multipart payload for create/update.
type UpsertProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	Quantity    int
	Shipping    bool

	PhotoData        []byte
	PhotoContentType string
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products   []ProductDTO `json:"products"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"total_pages"`
}

// FilterRequest selects products by category membership and price interval.
// An empty axis leaves that axis unconstrained.
type FilterRequest struct {
	CategoryIDs []uuid.UUID       `json:"checked"`
	PriceRange  []decimal.Decimal `json:"radio" validate:"omitempty,len=2"`
}

// CategoryProducts bundles a category with everything filed under it.
type CategoryProducts struct {
	Category CategoryRef  `json:"category"`
	Products []ProductDTO `json:"products"`
}

func fromModel(p *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
		Shipping:    p.Shipping,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		dto.Category = &CategoryRef{
			ID:   p.Category.ID,
			Name: p.Category.Name,
			Slug: p.Category.Slug,
		}
	}
	return dto
}

func fromModels(items []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, fromModel(&items[i]))
	}
	return dtos
}
