package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/slug"
)

// Service defines the behavior needed by the product controller.
type Service interface {
	Create(ctx context.Context, input UpsertProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	List(ctx context.Context) ([]ProductDTO, error)
	Page(ctx context.Context, page int) (*ProductPage, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, keyword string) ([]ProductDTO, error)
	Related(ctx context.Context, productID, categoryID uuid.UUID) ([]ProductDTO, error)
	ByCategory(ctx context.Context, slug string) (*CategoryProducts, error)
	Filter(ctx context.Context, req FilterRequest) ([]ProductDTO, error)
	Photo(ctx context.Context, productID uuid.UUID) (*PhotoDTO, error)
}

type categoryResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type service struct {
	repo       *Repository
	categories categoryResolver
	cfg        config.CatalogConfig
}

// ServiceParams bundles the dependencies for the product service.
type ServiceParams struct {
	Repo       *Repository
	Categories categoryResolver
	Catalog    config.CatalogConfig
}

// NewService constructs the product service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.Categories == nil {
		return nil, fmt.Errorf("category resolver is required")
	}
	return &service{
		repo:       params.Repo,
		categories: params.Categories,
		cfg:        params.Catalog,
	}, nil
}

func (s *service) Create(ctx context.Context, input UpsertProductInput) (*ProductDTO, error) {
	if err := s.ensureCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	product := &models.Product{
		Name:        name,
		Slug:        slug.Make(name),
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		Quantity:    input.Quantity,
		Shipping:    input.Shipping,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	if len(input.PhotoData) > 0 {
		if err := s.savePhoto(ctx, product.ID, input); err != nil {
			return nil, err
		}
	}

	return s.reload(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if err := s.ensureCategoryExists(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	product.Name = name
	product.Slug = slug.Make(name)
	product.Description = input.Description
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	product.Quantity = input.Quantity
	product.Shipping = input.Shipping

	if err := s.repo.Update(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	if len(input.PhotoData) > 0 {
		if err := s.savePhoto(ctx, product.ID, input); err != nil {
			return nil, err
		}
	}

	return s.reload(ctx, product.ID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) GetBySlug(ctx context.Context, productSlug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := fromModel(product)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	items, err := s.repo.List(ctx, s.listLimit())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return fromModels(items), nil
}

func (s *service) Page(ctx context.Context, page int) (*ProductPage, error) {
	params := pagination.Params{Page: page, PerPage: s.pageSize()}
	params = params.Normalize()

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}

	items, err := s.repo.Page(ctx, params.Offset(), params.Limit())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "page products")
	}

	return &ProductPage{
		Products:   fromModels(items),
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: pagination.TotalPages(total, params.PerPage),
	}, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	return count, nil
}

func (s *service) Search(ctx context.Context, keyword string) ([]ProductDTO, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search keyword is required")
	}

	limit := s.cfg.SearchMaxResults
	if limit <= 0 {
		limit = 50
	}

	items, err := s.repo.Search(ctx, keyword, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	return fromModels(items), nil
}

func (s *service) Related(ctx context.Context, productID, categoryID uuid.UUID) ([]ProductDTO, error) {
	limit := s.cfg.RelatedLimit
	if limit <= 0 {
		limit = 3
	}

	items, err := s.repo.Related(ctx, categoryID, productID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "related products")
	}
	return fromModels(items), nil
}

func (s *service) ByCategory(ctx context.Context, categorySlug string) (*CategoryProducts, error) {
	category, err := s.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}

	items, err := s.repo.ByCategory(ctx, category.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category products")
	}

	return &CategoryProducts{
		Category: CategoryRef{ID: category.ID, Name: category.Name, Slug: category.Slug},
		Products: fromModels(items),
	}, nil
}

func (s *service) Filter(ctx context.Context, req FilterRequest) ([]ProductDTO, error) {
	var minPrice, maxPrice *decimal.Decimal
	switch len(req.PriceRange) {
	case 0:
		// price axis unconstrained
	case 2:
		lo, hi := req.PriceRange[0], req.PriceRange[1]
		if lo.GreaterThan(hi) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price range must be [min, max]")
		}
		minPrice, maxPrice = &lo, &hi
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price range must have exactly two bounds")
	}

	items, err := s.repo.Filter(ctx, req.CategoryIDs, minPrice, maxPrice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "filter products")
	}
	return fromModels(items), nil
}

func (s *service) Photo(ctx context.Context, productID uuid.UUID) (*PhotoDTO, error) {
	photo, err := s.repo.FindPhoto(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load photo")
	}
	return &PhotoDTO{Data: photo.Data, ContentType: photo.ContentType}, nil
}

func (s *service) ensureCategoryExists(ctx context.Context, categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return nil
}

func (s *service) savePhoto(ctx context.Context, productID uuid.UUID, input UpsertProductInput) error {
	photo := &models.ProductPhoto{
		ProductID:   productID,
		Data:        input.PhotoData,
		ContentType: input.PhotoContentType,
	}
	if err := s.repo.SavePhoto(ctx, photo); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product photo")
	}
	return nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
	}
	dto := fromModel(product)
	return &dto, nil
}

func (s *service) pageSize() int {
	if s.cfg.PageSize > 0 {
		return s.cfg.PageSize
	}
	return pagination.DefaultPerPage
}

func (s *service) listLimit() int {
	if s.cfg.ListLimit > 0 {
		return s.cfg.ListLimit
	}
	return 12
}
