package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/providers/httpclient"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const defaultAPIBase = "https://api.stripe.com"

// ErrNotConfigured is returned when the Stripe keys are missing
var ErrNotConfigured = errors.New("stripe is not configured")

// Config configures Stripe Checkout
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	SuccessURL    string
	CancelURL     string
}

// Subscription is what the shell remembers about a customer
type Subscription struct {
	CustomerID     string    `json:"customer_id"`
	Email          string    `json:"email,omitempty"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Provider is the "stripe" integration service
type Provider struct {
	cfg     Config
	client  *httpclient.Client
	store   storage.Store
	apiBase string
	now     func() time.Time
	logger  *zap.Logger
}

// NewProvider creates the Stripe provider
func NewProvider(cfg Config, client *httpclient.Client, store storage.Store, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:     cfg,
		client:  client,
		store:   store,
		apiBase: defaultAPIBase,
		now:     time.Now,
		logger:  logging.OrNop(logger).Named("stripe"),
	}
}

// WithAPIBase points the provider at another Stripe host
func (p *Provider) WithAPIBase(base string) *Provider {
	p.apiBase = strings.TrimSuffix(base, "/")
	return p
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "stripe",
		Name:         "Stripe Payments",
		Description:  "Checkout sessions and subscription status",
		Category:     types.CategoryPayments,
		Capabilities: []string{"create_checkout", "subscription_status"},
		Tools: []types.Tool{
			{
				ID:          "stripe.create_checkout",
				Name:        "Create Checkout",
				Description: "Start a Stripe Checkout session",
				Parameters: []types.Parameter{
					{Name: "price_id", Type: "string", Description: "Price (defaults to STRIPE_PRICE_ID)", Required: false},
					{Name: "quantity", Type: "number", Description: "Quantity (default 1)", Required: false},
					{Name: "mode", Type: "string", Description: "subscription or payment", Required: false},
					{Name: "customer_email", Type: "string", Description: "Prefill email", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "stripe.subscription_status",
				Name:        "Subscription Status",
				Description: "Look up a customer's subscription",
				Parameters: []types.Parameter{
					{Name: "customer_id", Type: "string", Description: "Stripe customer", Required: false},
					{Name: "email", Type: "string", Description: "Customer email", Required: false},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a Stripe operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if p.cfg.SecretKey == "" {
		return types.FailureStatus(http.StatusServiceUnavailable, "Stripe is not configured")
	}
	switch toolID {
	case "stripe.create_checkout":
		return p.createCheckout(ctx, params)
	case "stripe.subscription_status":
		return p.subscriptionStatus(ctx, params)
	default:
		return types.Failure(fmt.Sprintf("unknown action: %s", toolID))
	}
}

func (p *Provider) createCheckout(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	priceID := utils.StringParam(params, "price_id")
	if priceID == "" {
		priceID = p.cfg.PriceID
	}
	if priceID == "" {
		return types.Failure("price_id required")
	}

	mode := utils.StringParam(params, "mode")
	if mode == "" {
		mode = "subscription"
	}
	if mode != "subscription" && mode != "payment" {
		return types.Failure("mode must be subscription or payment")
	}

	quantity := 1
	if q, ok := params["quantity"].(float64); ok && q >= 1 {
		quantity = int(q)
	}

	form := map[string]string{
		"mode":                    mode,
		"line_items[0][price]":    priceID,
		"line_items[0][quantity]": strconv.Itoa(quantity),
		"success_url":             p.cfg.SuccessURL,
		"cancel_url":              p.cfg.CancelURL,
	}
	if email := utils.StringParam(params, "customer_email"); email != "" {
		if err := utils.ValidateEmail(email, true); err != nil {
			return types.Failure(err.Error())
		}
		form["customer_email"] = email
	}

	resp, err := p.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBasicAuth(p.cfg.SecretKey, "").SetFormData(form).Post(p.apiBase + "/v1/checkout/sessions")
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}
	doc := resp.String()
	if resp.IsError() {
		msg := gjson.Get(doc, "error.message").String()
		if msg == "" {
			msg = fmt.Sprintf("stripe answered %d", resp.StatusCode())
		}
		return types.Failure(msg)
	}

	p.logger.Info("checkout created", zap.String("session", gjson.Get(doc, "id").String()))
	return types.Success(map[string]interface{}{
		"id":  gjson.Get(doc, "id").String(),
		"url": gjson.Get(doc, "url").String(),
	})
}

func (p *Provider) subscriptionStatus(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	key := utils.StringParam(params, "customer_id")
	if key == "" {
		key = strings.ToLower(utils.StringParam(params, "email"))
	}
	if key == "" {
		return types.Failure("customer_id or email required")
	}

	var sub Subscription
	err := storage.GetJSON(ctx, p.store, storage.BucketPayments, key, &sub)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return types.Success(map[string]interface{}{"active": false, "status": "none"})
	default:
		return nil, err
	}

	return types.Success(map[string]interface{}{
		"active":       sub.Status == "active" || sub.Status == "trialing",
		"status":       sub.Status,
		"subscription": sub,
	})
}

// HandleWebhook verifies and applies a Stripe event, returning its type
func (p *Provider) HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	if p.cfg.WebhookSecret == "" {
		return "", ErrNotConfigured
	}
	if err := VerifySignature(payload, signature, p.cfg.WebhookSecret, DefaultTolerance, p.now()); err != nil {
		return "", err
	}

	doc := string(payload)
	eventType := gjson.Get(doc, "type").String()
	obj := gjson.Get(doc, "data.object")

	var sub *Subscription
	switch eventType {
	case "checkout.session.completed":
		sub = &Subscription{
			CustomerID:     obj.Get("customer").String(),
			Email:          strings.ToLower(obj.Get("customer_details.email").String()),
			SubscriptionID: obj.Get("subscription").String(),
			Status:         "active",
		}
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		sub = &Subscription{
			CustomerID:     obj.Get("customer").String(),
			SubscriptionID: obj.Get("id").String(),
			Status:         obj.Get("status").String(),
		}
		if eventType == "customer.subscription.deleted" {
			sub.Status = "canceled"
		}
	}

	if sub != nil && sub.CustomerID != "" {
		sub.UpdatedAt = p.now().UTC()
		if err := p.saveSubscription(ctx, sub); err != nil {
			return eventType, err
		}
	}

	p.logger.Info("webhook applied", zap.String("type", eventType))
	return eventType, nil
}

// saveSubscription stores by customer id and, when known, by email.
// Events without an email keep the email of the previous record.
func (p *Provider) saveSubscription(ctx context.Context, sub *Subscription) error {
	if sub.Email == "" {
		var prev Subscription
		if err := storage.GetJSON(ctx, p.store, storage.BucketPayments, sub.CustomerID, &prev); err == nil {
			sub.Email = prev.Email
		}
	}
	if err := storage.PutJSON(ctx, p.store, storage.BucketPayments, sub.CustomerID, sub); err != nil {
		return fmt.Errorf("store subscription: %w", err)
	}
	if sub.Email != "" {
		if err := storage.PutJSON(ctx, p.store, storage.BucketPayments, sub.Email, sub); err != nil {
			return fmt.Errorf("store subscription: %w", err)
		}
	}
	return nil
}
