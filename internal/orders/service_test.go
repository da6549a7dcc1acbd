package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func buildTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Order{}, &models.OrderLineItem{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, conn
}

func seedBuyer(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Phone:        "5550000000",
		Role:         enums.RoleUser,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed buyer: %v", err)
	}
	return user
}

func seedOrder(t *testing.T, conn *gorm.DB, buyerID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		BuyerID:       buyerID,
		Status:        status,
		Total:         decimal.RequireFromString("39.99"),
		TransactionID: "txn-" + uuid.NewString(),
		GatewayStatus: "submitted_for_settlement",
		LineItems: []models.OrderLineItem{
			{
				ProductID:   uuid.New(),
				ProductName: "Chess Set",
				UnitPrice:   decimal.RequireFromString("39.99"),
				Quantity:    1,
			},
		},
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestListOwnScopedToBuyer(t *testing.T) {
	svc, conn := buildTestService(t)
	ctx := context.Background()

	alice := seedBuyer(t, conn, "alice")
	bob := seedBuyer(t, conn, "bob")
	seedOrder(t, conn, alice.ID, enums.OrderStatusNotProcessed)
	seedOrder(t, conn, bob.ID, enums.OrderStatusNotProcessed)

	own, err := svc.ListOwn(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("expected 1 order, got %d", len(own))
	}
	if own[0].BuyerID != alice.ID {
		t.Fatalf("foreign order leaked: %+v", own[0])
	}
	if own[0].BuyerName != "alice" {
		t.Fatalf("expected buyer name, got %q", own[0].BuyerName)
	}
	if len(own[0].LineItems) != 1 || own[0].LineItems[0].ProductName != "Chess Set" {
		t.Fatalf("expected expanded line items, got %+v", own[0].LineItems)
	}
}

func TestListAllIncludesEveryBuyer(t *testing.T) {
	svc, conn := buildTestService(t)

	alice := seedBuyer(t, conn, "alice")
	bob := seedBuyer(t, conn, "bob")
	seedOrder(t, conn, alice.ID, enums.OrderStatusNotProcessed)
	seedOrder(t, conn, bob.ID, enums.OrderStatusShipped)

	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, conn := buildTestService(t)
	ctx := context.Background()

	buyer := seedBuyer(t, conn, "alice")
	order := seedOrder(t, conn, buyer.ID, enums.OrderStatusNotProcessed)

	dto, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "shipped"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if dto.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", dto.Status)
	}

	// Any non-terminal state can also move backwards.
	if _, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "processing"}); err != nil {
		t.Fatalf("backwards transition: %v", err)
	}
}

func TestUpdateStatusRefreshesUpdatedAt(t *testing.T) {
	svc, conn := buildTestService(t)
	ctx := context.Background()

	buyer := seedBuyer(t, conn, "alice")
	order := seedOrder(t, conn, buyer.ID, enums.OrderStatusNotProcessed)

	time.Sleep(10 * time.Millisecond)

	dto, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "shipped"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if !dto.UpdatedAt.After(order.UpdatedAt) {
		t.Fatalf("updated_at did not advance: seeded %s, got %s", order.UpdatedAt, dto.UpdatedAt)
	}
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	svc, conn := buildTestService(t)
	ctx := context.Background()

	buyer := seedBuyer(t, conn, "alice")
	order := seedOrder(t, conn, buyer.ID, enums.OrderStatusNotProcessed)

	if _, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "cancelled"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "processing"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	// Re-asserting the terminal state is a no-op, not an error.
	if _, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "cancelled"}); err != nil {
		t.Fatalf("idempotent cancel: %v", err)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, conn := buildTestService(t)
	ctx := context.Background()

	buyer := seedBuyer(t, conn, "alice")
	order := seedOrder(t, conn, buyer.ID, enums.OrderStatusNotProcessed)

	_, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "teleported"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.UpdateStatus(ctx, uuid.New(), UpdateStatusRequest{Status: "shipped"})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
