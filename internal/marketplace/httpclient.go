package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/pkg/config"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"github.com/angelmondragon/sourcing-engine/pkg/logger"
)

const defaultPortalTimeout = 30 * time.Second

// HTTPClient talks to the broker marketplace portal API. Each OpenSession
// performs a fresh login so workers never share credentials state.
type HTTPClient struct {
	baseURL    string
	account    string
	username   string
	password   string
	httpClient *http.Client
	logg       *logger.Logger
}

type HTTPClientParams struct {
	Config config.MarketplaceConfig
	Logger *logger.Logger

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

func NewHTTPClient(params HTTPClientParams) (*HTTPClient, error) {
	cfg := params.Config
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("marketplace base URL is required")
	}
	if cfg.Account == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("marketplace credentials are required")
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultPortalTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		account:    cfg.Account,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		logg:       params.Logger,
	}, nil
}

// OpenSession logs in and returns a session bound to the issued token.
func (c *HTTPClient) OpenSession(ctx context.Context) (Session, error) {
	payload := map[string]string{
		"account":  c.account,
		"username": c.username,
		"password": c.password,
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/api/v1/sessions", "", payload, &out); err != nil {
		return nil, NewAuthError(err)
	}
	if out.Token == "" {
		return nil, NewAuthError(fmt.Errorf("login response carried no token"))
	}
	return &httpSession{client: c, token: out.Token}, nil
}

type httpSession struct {
	client *HTTPClient
	token  string
}

type listingPayload struct {
	PartNumber string `json:"part_number"`
	Supplier   string `json:"supplier"`
	Region     string `json:"region"`
	Quantity   string `json:"quantity"`
	DateCode   string `json:"date_code"`
	Authorized bool   `json:"authorized"`
}

func (s *httpSession) FetchListings(ctx context.Context, partNumber string) ([]listings.ListingRecord, error) {
	var payload struct {
		Listings []listingPayload `json:"listings"`
	}
	path := "/api/v1/listings?part=" + url.QueryEscape(partNumber)
	if err := s.client.getJSON(ctx, path, s.token, &payload); err != nil {
		return nil, fmt.Errorf("fetching listings for %q: %w", partNumber, err)
	}

	records := make([]listings.ListingRecord, 0, len(payload.Listings))
	for _, row := range payload.Listings {
		region, err := enums.ParseRegion(row.Region)
		if err != nil {
			continue
		}
		qty, err := listings.ParseQuantity(row.Quantity)
		if err != nil {
			continue
		}
		records = append(records, listings.ListingRecord{
			PartVariant:       row.PartNumber,
			Supplier:          row.Supplier,
			Region:            region,
			AvailableQuantity: qty,
			RawDateCode:       row.DateCode,
			Authorized:        row.Authorized,
		})
	}
	return records, nil
}

func (s *httpSession) MinOrderValue(ctx context.Context, supplier string, partNumber string) (decimal.NullDecimal, error) {
	var payload struct {
		MinOrderValue *string `json:"min_order_value"`
	}
	path := fmt.Sprintf("/api/v1/suppliers/%s/terms?part=%s",
		url.PathEscape(supplier), url.QueryEscape(partNumber))
	if err := s.client.getJSON(ctx, path, s.token, &payload); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("fetching terms for %q: %w", supplier, err)
	}
	if payload.MinOrderValue == nil {
		return decimal.NullDecimal{}, nil
	}
	value, err := decimal.NewFromString(*payload.MinOrderValue)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing min order value %q: %w", *payload.MinOrderValue, err)
	}
	return decimal.NullDecimal{Decimal: value, Valid: true}, nil
}

func (s *httpSession) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	payload := map[string]any{
		"supplier":    req.Supplier,
		"region":      string(req.Region),
		"part_number": req.PartNumber,
		"quantity":    req.Quantity,
	}
	if req.Message != "" {
		payload["message"] = req.Message
	}
	var out struct {
		MinOrderValue *string `json:"min_order_value"`
	}
	if err := s.client.postJSON(ctx, "/api/v1/rfqs", s.token, payload, &out); err != nil {
		if IsFatal(err) {
			return SubmitResult{}, err
		}
		return SubmitResult{}, NewSubmissionError(err, req.Supplier)
	}

	result := SubmitResult{}
	if out.MinOrderValue != nil {
		if value, err := decimal.NewFromString(*out.MinOrderValue); err == nil {
			result.MinOrderValue = decimal.NullDecimal{Decimal: value, Valid: true}
		}
	}
	return result, nil
}

func (s *httpSession) Close(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.client.baseURL+"/api/v1/sessions", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (c *HTTPClient) getJSON(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, token, out)
}

func (c *HTTPClient) postJSON(ctx context.Context, path, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token, out)
}

func (c *HTTPClient) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && c.logg != nil {
			c.logg.Warn(req.Context(), "failed to close portal response body")
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return NewAuthError(fmt.Errorf("portal returned %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("portal returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding portal response: %w", err)
	}
	return nil
}
