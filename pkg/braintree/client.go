package braintree

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	bt "github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errMerchantIDRequired = errors.New("braintree merchant id is required")
	errPublicKeyRequired  = errors.New("braintree public key is required")
	errPrivateKeyRequired = errors.New("braintree private key is required")
	errInvalidEnv         = fmt.Errorf("braintree environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired     = errors.New("braintree logger is required")
)

// Receipt captures the gateway's view of a completed sale.
type Receipt struct {
	TransactionID string
	Status        string
	Amount        decimal.Decimal
}

// Client exposes the payment gateway primitives with centralized logging and error mapping.
type Client struct {
	gateway     *bt.Braintree
	environment string
	logger      *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.BraintreeConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	merchantID := strings.TrimSpace(cfg.MerchantID)
	if merchantID == "" {
		return nil, errMerchantIDRequired
	}
	publicKey := strings.TrimSpace(cfg.PublicKey)
	if publicKey == "" {
		return nil, errPublicKeyRequired
	}
	privateKey := strings.TrimSpace(cfg.PrivateKey)
	if privateKey == "" {
		return nil, errPrivateKeyRequired
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	gateway := bt.NewWithHttpClient(env, merchantID, publicKey, privateKey, httpClient)

	c := &Client{
		gateway:     gateway,
		environment: cfg.Environment(),
		logger:      logg,
	}

	logg.Info(ctx, "braintree client initialized")
	return c, nil
}

// Environment reports the normalized gateway environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// GenerateClientToken mints a short-lived token the browser drop-in uses to tokenize cards.
func (c *Client) GenerateClientToken(ctx context.Context) (string, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		c.logger.Error(ctx, "generating braintree client token", err)
		return "", pkgerrors.Wrap(pkgerrors.CodePayment, err, "payment gateway unavailable")
	}
	return token, nil
}

// Sale charges the supplied payment method nonce for the given amount and
// submits the transaction for settlement in the same call.
func (c *Client) Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*Receipt, error) {
	nonce = strings.TrimSpace(nonce)
	if nonce == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method nonce is required")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}

	tx, err := c.gateway.Transaction().Create(ctx, &bt.TransactionRequest{
		Type:               "sale",
		Amount:             toGatewayAmount(amount),
		PaymentMethodNonce: nonce,
		Options: &bt.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		ctx = c.logger.WithField(ctx, "amount", amount.StringFixed(2))
		c.logger.Error(ctx, "braintree sale failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "payment was declined or could not be processed")
	}

	return &Receipt{
		TransactionID: tx.Id,
		Status:        string(tx.Status),
		Amount:        amount,
	}, nil
}

func toGatewayAmount(amount decimal.Decimal) *bt.Decimal {
	scaled := amount.Round(2).Shift(2)
	return bt.NewDecimal(scaled.IntPart(), 2)
}

func normalizeEnv(env string) (bt.Environment, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case sandboxEnv:
		return bt.Sandbox, nil
	case productionEnv:
		return bt.Production, nil
	default:
		return bt.Environment{}, errInvalidEnv
	}
}
