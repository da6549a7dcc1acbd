package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type productServiceStub struct {
	photoFn  func(context.Context, uuid.UUID) (*products.PhotoDTO, error)
	pageFn   func(context.Context, int) (*products.ProductPage, error)
	filterFn func(context.Context, products.FilterRequest) ([]products.ProductDTO, error)
}

func (s *productServiceStub) Create(context.Context, products.UpsertProductInput) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *productServiceStub) Update(context.Context, uuid.UUID, products.UpsertProductInput) (*products.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *productServiceStub) Delete(context.Context, uuid.UUID) error { return nil }

func (s *productServiceStub) GetBySlug(context.Context, string) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (s *productServiceStub) List(context.Context) ([]products.ProductDTO, error) { return nil, nil }

func (s *productServiceStub) Page(ctx context.Context, page int) (*products.ProductPage, error) {
	return s.pageFn(ctx, page)
}

func (s *productServiceStub) Count(context.Context) (int64, error) { return 42, nil }

func (s *productServiceStub) Search(context.Context, string) ([]products.ProductDTO, error) {
	return nil, nil
}

func (s *productServiceStub) Related(context.Context, uuid.UUID, uuid.UUID) ([]products.ProductDTO, error) {
	return nil, nil
}

func (s *productServiceStub) ByCategory(context.Context, string) (*products.CategoryProducts, error) {
	return &products.CategoryProducts{}, nil
}

func (s *productServiceStub) Filter(ctx context.Context, req products.FilterRequest) ([]products.ProductDTO, error) {
	return s.filterFn(ctx, req)
}

func (s *productServiceStub) Photo(ctx context.Context, id uuid.UUID) (*products.PhotoDTO, error) {
	return s.photoFn(ctx, id)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestProductPhotoStreamsBytes(t *testing.T) {
	want := []byte{0x89, 0x50, 0x4e, 0x47}
	stub := &productServiceStub{
		photoFn: func(context.Context, uuid.UUID) (*products.PhotoDTO, error) {
			return &products.PhotoDTO{Data: want, ContentType: "image/png"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/product/product-photo/x", nil)
	req = withURLParam(req, "pid", uuid.NewString())
	resp := httptest.NewRecorder()

	ProductPhoto(stub, testLogg())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if got := resp.Body.Bytes(); string(got) != string(want) {
		t.Fatalf("body mismatch: %v", got)
	}
}

func TestProductPhotoMalformedIDIsNotFound(t *testing.T) {
	stub := &productServiceStub{
		photoFn: func(context.Context, uuid.UUID) (*products.PhotoDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/product/product-photo/x", nil)
	req = withURLParam(req, "pid", "not-a-uuid")
	resp := httptest.NewRecorder()

	ProductPhoto(stub, testLogg())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", env["code"])
	}
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	logg := testLogg()
	cases := []struct {
		name    string
		handler http.HandlerFunc
		param   string
	}{
		{"delete product", ProductDelete(&productServiceStub{}, logg), "pid"},
		{"related products", RelatedProducts(&productServiceStub{}, logg), "pid"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req = withURLParam(req, tc.param, "not-a-uuid")
			resp := httptest.NewRecorder()

			tc.handler(resp, req)

			if resp.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", resp.Code)
			}
		})
	}
}

func TestProductPageParsesPathParam(t *testing.T) {
	var seen int
	stub := &productServiceStub{
		pageFn: func(_ context.Context, page int) (*products.ProductPage, error) {
			seen = page
			return &products.ProductPage{Page: page}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/product/product-list/3", nil)
	req = withURLParam(req, "page", "3")
	resp := httptest.NewRecorder()

	ProductPage(stub, testLogg())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if seen != 3 {
		t.Fatalf("expected page 3, got %d", seen)
	}
}

func TestProductPageRejectsNonNumericPage(t *testing.T) {
	stub := &productServiceStub{
		pageFn: func(context.Context, int) (*products.ProductPage, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/product/product-list/abc", nil)
	req = withURLParam(req, "page", "abc")
	resp := httptest.NewRecorder()

	ProductPage(stub, testLogg())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestProductFiltersDecodesAxes(t *testing.T) {
	categoryID := uuid.New()
	var seen products.FilterRequest
	stub := &productServiceStub{
		filterFn: func(_ context.Context, req products.FilterRequest) ([]products.ProductDTO, error) {
			seen = req
			return nil, nil
		},
	}

	payload := `{"checked":["` + categoryID.String() + `"],"radio":[0,99.99]}`
	req := httptest.NewRequest(http.MethodPost, "/product/product-filters", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	ProductFilters(stub, testLogg())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(seen.CategoryIDs) != 1 || seen.CategoryIDs[0] != categoryID {
		t.Fatalf("category axis not decoded: %+v", seen)
	}
	if len(seen.PriceRange) != 2 {
		t.Fatalf("price axis not decoded: %+v", seen)
	}
}
