package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type authServiceStub struct {
	registerFn func(context.Context, auth.RegisterRequest) (*users.UserDTO, error)
	loginFn    func(context.Context, auth.LoginRequest) (*auth.LoginResponse, error)
	updateFn   func(context.Context, uuid.UUID, auth.UpdateProfileRequest) (*users.UserDTO, error)
}

func (s *authServiceStub) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return s.registerFn(ctx, req)
}

func (s *authServiceStub) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *authServiceStub) Profile(context.Context, uuid.UUID) (*users.UserDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *authServiceStub) UpdateProfile(ctx context.Context, id uuid.UUID, req auth.UpdateProfileRequest) (*users.UserDTO, error) {
	return s.updateFn(ctx, id, req)
}

func (s *authServiceStub) SeedAdmin(context.Context, config.SeedConfig) error { return nil }

func testLogg() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestAuthRegisterCreatesUser(t *testing.T) {
	var got auth.RegisterRequest
	stub := &authServiceStub{
		registerFn: func(_ context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
			got = req
			return &users.UserDTO{Email: req.Email}, nil
		},
	}

	payload := `{"name":"Alice","email":"alice@example.com","password":"secret1","phone":"5550001234","address":{"street":"1 Main St","city":"Springfield"}}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	AuthRegister(stub, testLogg())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("service saw %q", got.Email)
	}
	if got.Address["city"] != "Springfield" {
		t.Fatalf("service saw address %v", got.Address)
	}
	body := decodeEnvelope(t, resp)
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
}

func TestAuthRegisterRejectsBadBody(t *testing.T) {
	stub := &authServiceStub{
		registerFn: func(context.Context, auth.RegisterRequest) (*users.UserDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	for name, payload := range map[string]string{
		"missing fields":  `{"email":"x"}`,
		"short phone":     `{"name":"Alice","email":"alice@example.com","password":"secret1","phone":"555","address":{"city":"Springfield"}}`,
		"alpha phone":     `{"name":"Alice","email":"alice@example.com","password":"secret1","phone":"55500012ab","address":{"city":"Springfield"}}`,
		"missing address": `{"name":"Alice","email":"alice@example.com","password":"secret1","phone":"5550001234"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(payload))
		resp := httptest.NewRecorder()

		AuthRegister(stub, testLogg())(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.Code)
		}
		body := decodeEnvelope(t, resp)
		if body["code"] != string(pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation code, got %v", name, body)
		}
	}
}

func TestAuthLoginPassesCredentialErrorThrough(t *testing.T) {
	stub := &authServiceStub{
		loginFn: func(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		},
	}

	payload := `{"email":"alice@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	AuthLogin(stub, testLogg())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	body := decodeEnvelope(t, resp)
	if body["message"] != "invalid email or password" {
		t.Fatalf("expected typed message, got %v", body)
	}
}

func TestProfileUpdateRequiresIdentity(t *testing.T) {
	stub := &authServiceStub{
		updateFn: func(context.Context, uuid.UUID, auth.UpdateProfileRequest) (*users.UserDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/auth/profile", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	ProfileUpdate(stub, testLogg())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestProfileUpdateUsesContextIdentity(t *testing.T) {
	userID := uuid.New()
	var seen uuid.UUID
	stub := &authServiceStub{
		updateFn: func(_ context.Context, id uuid.UUID, _ auth.UpdateProfileRequest) (*users.UserDTO, error) {
			seen = id
			return &users.UserDTO{ID: id}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/auth/profile", strings.NewReader(`{"name":"New Name"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()

	ProfileUpdate(stub, testLogg())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if seen != userID {
		t.Fatalf("service saw %s, expected %s", seen, userID)
	}
}

type orderServiceStub struct {
	updateFn func(context.Context, uuid.UUID, orders.UpdateStatusRequest) (*orders.OrderDTO, error)
}

func (s *orderServiceStub) ListOwn(context.Context, uuid.UUID) ([]orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *orderServiceStub) ListAll(context.Context) ([]orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *orderServiceStub) UpdateStatus(ctx context.Context, id uuid.UUID, req orders.UpdateStatusRequest) (*orders.OrderDTO, error) {
	return s.updateFn(ctx, id, req)
}

func TestOrderStatusMalformedIDIsNotFound(t *testing.T) {
	stub := &orderServiceStub{
		updateFn: func(context.Context, uuid.UUID, orders.UpdateStatusRequest) (*orders.OrderDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/auth/order-status/x", strings.NewReader(`{"status":"shipped"}`))
	req = withURLParam(req, "orderId", "not-a-uuid")
	resp := httptest.NewRecorder()

	OrderStatusUpdate(stub, testLogg())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	env := decodeEnvelope(t, resp)
	if env["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", env["code"])
	}
}
