// Package payments talks to the subscription backend and keeps the cached
// premium flag current.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL        = "https://api.revenuecat.com"
	DefaultEntitlementID  = "Delusional Leap Pro"
	DefaultPlatform       = "stripe"
	StreakFreezeProductID = "streak_freeze"
)

var (
	ErrNotConfigured   = errors.New("payments: provider not configured")
	ErrUnknownPlan     = errors.New("payments: unknown plan")
	ErrReceiptRequired = errors.New("payments: receipt token is required")
	ErrRequestFailed   = errors.New("payments: request failed")
)

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

func (p Plan) IsValid() bool {
	switch p {
	case PlanMonthly, PlanYearly:
		return true
	default:
		return false
	}
}

func ParsePlan(raw string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case "month":
		p = PlanMonthly
	case "year", "annual":
		p = PlanYearly
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, raw)
	}
	return p, nil
}

// Provider is the payment collaborator. Purchases redeem a receipt token
// obtained from the platform checkout.
type Provider interface {
	Purchase(ctx context.Context, plan Plan, receipt string) (bool, error)
	Restore(ctx context.Context) (bool, error)
	CheckEntitlement(ctx context.Context) (bool, error)
	PurchaseStreakFreeze(ctx context.Context, receipt string) error
}

// Unconfigured fails every call. Used when no API key is set.
type Unconfigured struct{}

func (Unconfigured) Purchase(context.Context, Plan, string) (bool, error) {
	return false, ErrNotConfigured
}
func (Unconfigured) Restore(context.Context) (bool, error)          { return false, ErrNotConfigured }
func (Unconfigured) CheckEntitlement(context.Context) (bool, error) { return false, ErrNotConfigured }
func (Unconfigured) PurchaseStreakFreeze(context.Context, string) error {
	return ErrNotConfigured
}

type RevenueCatConfig struct {
	APIKey        string
	AppUserID     string
	EntitlementID string
	BaseURL       string
	Platform      string
	Products      map[Plan]string
	Timeout       time.Duration
}

func (c RevenueCatConfig) withDefaults() RevenueCatConfig {
	if c.EntitlementID == "" {
		c.EntitlementID = DefaultEntitlementID
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Platform == "" {
		c.Platform = DefaultPlatform
	}
	if c.Products == nil {
		c.Products = map[Plan]string{
			PlanMonthly: "delusional_leap_monthly",
			PlanYearly:  "delusional_leap_yearly",
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

type RevenueCatClient struct {
	cfg    RevenueCatConfig
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

var _ Provider = (*RevenueCatClient)(nil)

func NewRevenueCatClient(cfg RevenueCatConfig, client *http.Client, logger *zap.Logger) (*RevenueCatClient, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" || cfg.AppUserID == "" {
		return nil, ErrNotConfigured
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevenueCatClient{cfg: cfg, client: client, logger: logger.Named("payments"), now: time.Now}, nil
}

type subscriberResponse struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate       *time.Time `json:"expires_date"`
			ProductIdentifier string     `json:"product_identifier"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

// active reports whether the entitlement is present and either lifetime
// (no expiry) or not yet expired.
func (r subscriberResponse) active(entitlement string, now time.Time) bool {
	e, ok := r.Subscriber.Entitlements[entitlement]
	if !ok {
		return false
	}
	return e.ExpiresDate == nil || e.ExpiresDate.After(now)
}

func (c *RevenueCatClient) CheckEntitlement(ctx context.Context) (bool, error) {
	var out subscriberResponse
	path := "/v1/subscribers/" + url.PathEscape(c.cfg.AppUserID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.active(c.cfg.EntitlementID, c.now()), nil
}

// Restore re-reads the subscriber; the backend already links receipts to
// the app user id.
func (c *RevenueCatClient) Restore(ctx context.Context) (bool, error) {
	premium, err := c.CheckEntitlement(ctx)
	if err != nil {
		return false, err
	}
	c.logger.Info("Purchases restored", zap.Bool("premium", premium))
	return premium, nil
}

func (c *RevenueCatClient) Purchase(ctx context.Context, plan Plan, receipt string) (bool, error) {
	product, ok := c.cfg.Products[plan]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	out, err := c.postReceipt(ctx, product, receipt)
	if err != nil {
		return false, err
	}
	premium := out.active(c.cfg.EntitlementID, c.now())
	c.logger.Info("Subscription purchased", zap.String("plan", string(plan)), zap.Bool("premium", premium))
	return premium, nil
}

func (c *RevenueCatClient) PurchaseStreakFreeze(ctx context.Context, receipt string) error {
	_, err := c.postReceipt(ctx, StreakFreezeProductID, receipt)
	return err
}

func (c *RevenueCatClient) postReceipt(ctx context.Context, product, receipt string) (subscriberResponse, error) {
	if strings.TrimSpace(receipt) == "" {
		return subscriberResponse{}, ErrReceiptRequired
	}
	body := map[string]string{
		"app_user_id": c.cfg.AppUserID,
		"fetch_token": receipt,
		"product_id":  product,
	}
	var out subscriberResponse
	if err := c.do(ctx, http.MethodPost, "/v1/receipts", body, &out); err != nil {
		return subscriberResponse{}, err
	}
	return out, nil
}

func (c *RevenueCatClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Platform", c.cfg.Platform)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %d", ErrRequestFailed, method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	return nil
}
