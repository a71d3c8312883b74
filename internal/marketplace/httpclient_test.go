package marketplace

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/sourcing-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/sourcing-engine/pkg/errors"
	"github.com/angelmondragon/sourcing-engine/pkg/logger"
)

func portalConfig(baseURL string) config.MarketplaceConfig {
	return config.MarketplaceConfig{
		BaseURL:  baseURL,
		Account:  "broker-1",
		Username: "ops",
		Password: "secret",
		Timeout:  5 * time.Second,
	}
}

func newPortalClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	client, err := NewHTTPClient(HTTPClientParams{
		Config: portalConfig(baseURL),
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("bootstrap client: %v", err)
	}
	return client
}

func TestOpenSessionAndFetchListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/sessions":
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds["account"] != "broker-1" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
		case "/api/v1/listings":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"listings": []map[string]any{
					{"part_number": "LM358N", "supplier": "Alpha", "region": "americas", "quantity": "1,000", "date_code": "25", "authorized": false},
					{"part_number": "LM358N", "supplier": "Beta", "region": "europe", "quantity": "5K", "date_code": "", "authorized": true},
					{"part_number": "LM358N", "supplier": "Gamma", "region": "nowhere", "quantity": "10", "date_code": "", "authorized": false},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newPortalClient(t, srv.URL)
	session, err := client.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	records, err := session.FetchListings(context.Background(), "LM358N")
	if err != nil {
		t.Fatalf("fetch listings: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected unknown-region row dropped, got %d records", len(records))
	}
	if records[0].AvailableQuantity != 1000 {
		t.Fatalf("expected comma quantity parsed, got %d", records[0].AvailableQuantity)
	}
	if !records[1].Authorized {
		t.Fatalf("expected authorized flag carried through")
	}
}

func TestOpenSessionRejectedIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newPortalClient(t, srv.URL)
	_, err := client.OpenSession(context.Background())
	if err == nil {
		t.Fatalf("expected login failure")
	}
	if !IsFatal(err) {
		t.Fatalf("login rejection should abort the run, got %v", err)
	}
}

func TestSubmitFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/sessions" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := newPortalClient(t, srv.URL)
	session, err := client.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	_, err = session.Submit(context.Background(), SubmitRequest{Supplier: "Alpha", PartNumber: "LM358N", Quantity: 100})
	if err == nil {
		t.Fatalf("expected submission failure")
	}
	if IsFatal(err) {
		t.Fatalf("form rejection must not abort the run")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeSubmission {
		t.Fatalf("expected submission code, got %v", err)
	}
}

func TestSubmitExpiredTokenIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/sessions" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newPortalClient(t, srv.URL)
	session, err := client.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	_, err = session.Submit(context.Background(), SubmitRequest{Supplier: "Alpha", PartNumber: "LM358N", Quantity: 100})
	if !IsFatal(err) {
		t.Fatalf("expired credentials should abort the run, got %v", err)
	}
}

func TestMinOrderValueAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/sessions" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"min_order_value": nil})
	}))
	defer srv.Close()

	client := newPortalClient(t, srv.URL)
	session, err := client.OpenSession(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	value, err := session.MinOrderValue(context.Background(), "Alpha", "LM358N")
	if err != nil {
		t.Fatalf("min order value: %v", err)
	}
	if value.Valid {
		t.Fatalf("expected absent min order value")
	}
}

func TestNewHTTPClientValidation(t *testing.T) {
	if _, err := NewHTTPClient(HTTPClientParams{Config: config.MarketplaceConfig{}}); err == nil {
		t.Fatalf("expected missing base URL rejection")
	}
	cfg := portalConfig("https://portal.example.com")
	cfg.Password = ""
	if _, err := NewHTTPClient(HTTPClientParams{Config: cfg}); err == nil {
		t.Fatalf("expected missing credentials rejection")
	}
}
