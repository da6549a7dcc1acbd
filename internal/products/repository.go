package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository exposes product persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update persists the mutable product fields.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"slug":        product.Slug,
			"description": product.Description,
			"price":       product.Price,
			"category_id": product.CategoryID,
			"quantity":    product.Quantity,
			"shipping":    product.Shipping,
		}).Error
}

// Delete removes the product and its photo.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	// Explicit photo delete keeps drivers without FK cascades honest.
	if err := r.db.WithContext(ctx).Delete(&models.ProductPhoto{}, "product_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// FindByID loads a product with its category summary.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads a product by slug with its category summary.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns the newest products up to limit.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Product, error) {
	var items []models.Product
	q := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Page returns one offset page of products, newest first.
func (r *Repository) Page(ctx context.Context, offset, limit int) ([]models.Product, error) {
	var items []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count reports the product total.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// likeEscaper neutralizes LIKE wildcards so a keyword such as "100%" matches
// the literal text instead of everything.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the keyword case-insensitively against name and description.
func (r *Repository) Search(ctx context.Context, keyword string, limit int) ([]models.Product, error) {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	var items []models.Product
	q := r.db.WithContext(ctx).
		Preload("Category").
		Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Related lists products sharing a category, excluding the anchor product.
func (r *Repository) Related(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	var items []models.Product
	q := r.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ? AND id <> ?", categoryID, excludeID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ByCategory lists every product filed under the category.
func (r *Repository) ByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	var items []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Filter applies category membership and an inclusive price interval. Empty
// arguments leave the corresponding axis unconstrained.
func (r *Repository) Filter(ctx context.Context, categoryIDs []uuid.UUID, minPrice, maxPrice *decimal.Decimal) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC")
	if len(categoryIDs) > 0 {
		q = q.Where("category_id IN ?", categoryIDs)
	}
	if minPrice != nil {
		q = q.Where("price >= ?", minPrice)
	}
	if maxPrice != nil {
		q = q.Where("price <= ?", maxPrice)
	}

	var items []models.Product
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SavePhoto upserts the product's photo payload.
func (r *Repository) SavePhoto(ctx context.Context, photo *models.ProductPhoto) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "content_type", "updated_at"}),
		}).
		Create(photo).Error
}

// FindPhoto loads the stored photo for a product.
func (r *Repository) FindPhoto(ctx context.Context, productID uuid.UUID) (*models.ProductPhoto, error) {
	var photo models.ProductPhoto
	if err := r.db.WithContext(ctx).First(&photo, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

// DecrementStock atomically reduces quantity when enough stock remains.
// Returns gorm.ErrRecordNotFound semantics via the affected-row count.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
