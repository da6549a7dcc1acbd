package checkout

import (
	"github.com/google/uuid"
)

// CartItem is one product line the buyer is purchasing.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CheckoutRequest carries the cart and the tokenized payment method.
type CheckoutRequest struct {
	Cart  []CartItem `json:"cart" validate:"required,min=1,dive"`
	Nonce string     `json:"nonce" validate:"required"`
}

// TokenResponse wraps the gateway client token for the browser drop-in.
type TokenResponse struct {
	ClientToken string `json:"clientToken"`
}
