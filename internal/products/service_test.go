package products

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func buildTestService(t *testing.T) (Service, *Repository, uuid.UUID) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Category{}, &models.Product{}, &models.ProductPhoto{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	category := &models.Category{Name: "Board Games", Slug: "board-games"}
	if err := conn.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:       repo,
		Categories: categories.NewRepository(conn),
		Catalog: config.CatalogConfig{
			PhotoMaxBytes:    1024,
			PageSize:         2,
			ListLimit:        12,
			SearchMaxResults: 50,
			RelatedLimit:     3,
		},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, category.ID
}

func productInput(categoryID uuid.UUID, name string, price string) UpsertProductInput {
	return UpsertProductInput{
		Name:        name,
		Description: "Description of " + name,
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
		Quantity:    10,
		Shipping:    true,
	}
}

func TestCreateDerivesSlugAndEmbedsCategory(t *testing.T) {
	svc, _, categoryID := buildTestService(t)

	dto, err := svc.Create(context.Background(), productInput(categoryID, "Chess Set", "39.99"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug != "chess-set" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
	if dto.Category == nil || dto.Category.Slug != "board-games" {
		t.Fatalf("expected embedded category, got %+v", dto.Category)
	}
}

func TestCreateUnknownCategoryNotFound(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Create(context.Background(), productInput(uuid.New(), "Chess Set", "39.99"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, productInput(categoryID, "Chess Set", "39.99")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, productInput(categoryID, "chess set", "29.99"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPhotoRoundTrip(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	input := productInput(categoryID, "Chess Set", "39.99")
	input.PhotoData = []byte{0x89, 0x50, 0x4e, 0x47}
	input.PhotoContentType = "image/png"

	dto, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	photo, err := svc.Photo(ctx, dto.ID)
	if err != nil {
		t.Fatalf("photo: %v", err)
	}
	if photo.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", photo.ContentType)
	}
	if len(photo.Data) != 4 {
		t.Fatalf("unexpected photo payload %v", photo.Data)
	}

	// Update replaces the stored photo in place.
	input.PhotoData = []byte{0xff, 0xd8}
	input.PhotoContentType = "image/jpeg"
	if _, err := svc.Update(ctx, dto.ID, input); err != nil {
		t.Fatalf("update: %v", err)
	}
	photo, err = svc.Photo(ctx, dto.ID)
	if err != nil {
		t.Fatalf("photo after update: %v", err)
	}
	if photo.ContentType != "image/jpeg" || len(photo.Data) != 2 {
		t.Fatalf("expected replaced photo, got %q %v", photo.ContentType, photo.Data)
	}
}

func TestPhotoMissingNotFound(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Photo(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRemovesPhoto(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	input := productInput(categoryID, "Chess Set", "39.99")
	input.PhotoData = []byte{0x01}
	input.PhotoContentType = "image/png"
	dto, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetBySlug(ctx, "chess-set"); pkgerrors.As(err) == nil {
		t.Fatal("deleted product should not resolve")
	}
	if _, err := svc.Photo(ctx, dto.ID); pkgerrors.As(err) == nil {
		t.Fatal("photo should be removed with its product")
	}
}

func TestPageMathematics(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, productInput(categoryID, fmt.Sprintf("Product %d", i), "10.00")); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	page, err := svc.Page(ctx, 1)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Fatalf("expected total=5 pages=3, got %d/%d", page.Total, page.TotalPages)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products on page 1, got %d", len(page.Products))
	}

	last, err := svc.Page(ctx, 3)
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(last.Products) != 1 {
		t.Fatalf("expected 1 product on page 3, got %d", len(last.Products))
	}

	empty, err := svc.Page(ctx, 4)
	if err != nil {
		t.Fatalf("out-of-range page: %v", err)
	}
	if len(empty.Products) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty.Products))
	}
}

func TestFilterInclusiveBoundsAndEmptyAxes(t *testing.T) {
	svc, conn, categoryID := buildTestService(t)
	ctx := context.Background()

	other := &models.Category{Name: "Puzzles", Slug: "puzzles"}
	if err := conn.db.Create(other).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	mustCreate := func(name, price string, catID uuid.UUID) {
		t.Helper()
		input := productInput(catID, name, price)
		if _, err := svc.Create(ctx, input); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	mustCreate("Cheap Game", "0.00", categoryID)
	mustCreate("Mid Game", "50.00", categoryID)
	mustCreate("Edge Game", "100.00", categoryID)
	mustCreate("Pricey Game", "100.01", categoryID)
	mustCreate("Cheap Puzzle", "10.00", other.ID)

	// Inclusive price interval on a single category.
	matched, err := svc.Filter(ctx, FilterRequest{
		CategoryIDs: []uuid.UUID{categoryID},
		PriceRange:  []decimal.Decimal{decimal.Zero, decimal.RequireFromString("100")},
	})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(matched) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matched))
	}
	for _, p := range matched {
		if p.CategoryID != categoryID {
			t.Fatalf("unexpected category in result: %s", p.CategoryID)
		}
	}

	// Empty filter equals the full unpaginated set.
	all, err := svc.Filter(ctx, FilterRequest{})
	if err != nil {
		t.Fatalf("empty filter: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 products, got %d", len(all))
	}
}

func TestFilterRejectsInvertedRange(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Filter(context.Background(), FilterRequest{
		PriceRange: []decimal.Decimal{decimal.RequireFromString("10"), decimal.Zero},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchMatchesNameAndDescription(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	input := productInput(categoryID, "Chess Set", "39.99")
	input.Description = "Classic wooden pieces"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, productInput(categoryID, "Jigsaw Puzzle", "9.99")); err != nil {
		t.Fatalf("create: %v", err)
	}

	byName, err := svc.Search(ctx, "CHESS")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byName) != 1 || byName[0].Slug != "chess-set" {
		t.Fatalf("unexpected search result %+v", byName)
	}

	byDescription, err := svc.Search(ctx, "wooden")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byDescription) != 1 {
		t.Fatalf("expected description match, got %d", len(byDescription))
	}
}

func TestSearchTreatsWildcardsAsLiterals(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	input := productInput(categoryID, "Cotton Shirt", "19.99")
	input.Description = "100% organic cotton"
	if _, err := svc.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, productInput(categoryID, "Chess Set", "39.99")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, productInput(categoryID, "Jigsaw Puzzle", "9.99")); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, keyword := range []string{"%", "100%", "_"} {
		matches, err := svc.Search(ctx, keyword)
		if err != nil {
			t.Fatalf("search %q: %v", keyword, err)
		}
		for _, dto := range matches {
			if !strings.Contains(strings.ToLower(dto.Name+dto.Description), strings.ToLower(keyword)) {
				t.Fatalf("search %q matched %q, which does not contain it", keyword, dto.Name)
			}
		}
	}

	percent, err := svc.Search(ctx, "%")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(percent) != 1 || percent[0].Slug != "cotton-shirt" {
		t.Fatalf("expected only the literal match, got %+v", percent)
	}
}

func TestRelatedExcludesAnchorAndCaps(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	var anchor *ProductDTO
	for i := 0; i < 5; i++ {
		dto, err := svc.Create(ctx, productInput(categoryID, fmt.Sprintf("Game %d", i), "10.00"))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if i == 0 {
			anchor = dto
		}
	}

	related, err := svc.Related(ctx, anchor.ID, categoryID)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(related))
	}
	for _, p := range related {
		if p.ID == anchor.ID {
			t.Fatal("anchor product must be excluded")
		}
	}
}

func TestByCategoryResolvesSlug(t *testing.T) {
	svc, _, categoryID := buildTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, productInput(categoryID, "Chess Set", "39.99")); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.ByCategory(ctx, "board-games")
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if result.Category.ID != categoryID {
		t.Fatalf("unexpected category %+v", result.Category)
	}
	if len(result.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(result.Products))
	}

	if _, err := svc.ByCategory(ctx, "missing"); pkgerrors.As(err) == nil {
		t.Fatal("unknown slug should fail")
	}
}

func TestDecrementStockGuard(t *testing.T) {
	svc, repo, categoryID := buildTestService(t)
	ctx := context.Background()

	input := productInput(categoryID, "Chess Set", "39.99")
	input.Quantity = 2
	dto, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := repo.DecrementStock(ctx, dto.ID, 2)
	if err != nil || !ok {
		t.Fatalf("expected decrement to succeed, got ok=%v err=%v", ok, err)
	}

	ok, err = repo.DecrementStock(ctx, dto.ID, 1)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ok {
		t.Fatal("decrement below zero must be refused")
	}
}
