package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func sessionRequest() *SessionRequest {
	return &SessionRequest{
		TransactionReference: "ORD-1-AAAAAA-1000",
		Narrative:            Narrative{Line1: "Carafe Coffee"},
		Value:                Value{Currency: "GBP", Amount: 4599},
		BillingAddress: BillingAddress{
			FirstName:   "Jo",
			LastName:    "Bloggs",
			Address1:    "1 High Street",
			City:        "Bristol",
			PostalCode:  "BS1 4DJ",
			CountryCode: "GB",
		},
	}
}

func TestCreateSession(t *testing.T) {
	var gotAuth, gotContentType, gotCorrelation string
	var gotBody SessionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment_pages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotCorrelation = r.Header.Get("WP-CorrelationId")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", mediaTypePaymentPages)
		json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example/session/abc"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass", "ENTITY1", zap.NewNop())
	session, err := client.CreateSession(context.Background(), sessionRequest())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if session.RedirectURL != "https://pay.example/session/abc" {
		t.Fatalf("unexpected redirect URL %s", session.RedirectURL)
	}
	if session.TransactionReference != "ORD-1-AAAAAA-1000" {
		t.Fatalf("unexpected reference %s", session.TransactionReference)
	}
	// Basic dXNlcjpwYXNz is user:pass.
	if gotAuth != "Basic dXNlcjpwYXNz" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotContentType != mediaTypePaymentPages {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if gotCorrelation == "" {
		t.Fatal("correlation id header missing")
	}
	if gotBody.Merchant.Entity != "ENTITY1" {
		t.Fatalf("merchant entity not injected: %+v", gotBody.Merchant)
	}
	if gotBody.Value.Amount != 4599 {
		t.Fatalf("unexpected amount %d", gotBody.Value.Amount)
	}
}

func TestCreateSessionGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"errorName": "bodyDoesNotMatchSchema",
			"message":   "The json body provided does not match the expected schema",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass", "ENTITY1", zap.NewNop())
	_, err := client.CreateSession(context.Background(), sessionRequest())

	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gerr.HTTPStatus != http.StatusBadRequest || gerr.ErrorName != "bodyDoesNotMatchSchema" {
		t.Fatalf("unexpected error detail: %+v", gerr)
	}
}

func TestCreateSessionMissingRedirectURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass", "ENTITY1", zap.NewNop())
	_, err := client.CreateSession(context.Background(), sessionRequest())

	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GatewayError for missing url, got %v", err)
	}
}

func TestCreateSessionUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, "user", "pass", "ENTITY1", zap.NewNop())
	if _, err := client.CreateSession(context.Background(), sessionRequest()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCreateSessionNotConfigured(t *testing.T) {
	client := NewClient("", "", "", "", zap.NewNop())
	if _, err := client.CreateSession(context.Background(), sessionRequest()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFetchEventDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != mediaTypePayments {
			t.Errorf("unexpected accept header %q", r.Header.Get("Accept"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"outcome": "authorized",
			"issuer":  map[string]string{"authorizationCode": "AUTH99"},
			"scheme":  map[string]string{"reference": "SCH123"},
			"paymentInstrument": map[string]string{
				"type":       "card/plain",
				"cardNumber": "444433******1111",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "pass", "ENTITY1", zap.NewNop())
	details, err := client.FetchEventDetails(context.Background(), server.URL+"/payments/events/X")
	if err != nil {
		t.Fatalf("fetch details: %v", err)
	}
	if details.Issuer == nil || details.Issuer.AuthorizationCode != "AUTH99" {
		t.Fatalf("issuer missing: %+v", details)
	}
	if details.Scheme == nil || details.Scheme.Reference != "SCH123" {
		t.Fatalf("scheme missing: %+v", details)
	}
	if details.CardLast4() != "1111" {
		t.Fatalf("expected last4 1111, got %q", details.CardLast4())
	}
}

func TestFetchEventDetailsEmptyHref(t *testing.T) {
	client := NewClient("https://x", "user", "pass", "ENTITY1", zap.NewNop())
	details, err := client.FetchEventDetails(context.Background(), "")
	if err != nil || details != nil {
		t.Fatalf("empty href should be a no-op, got %+v %v", details, err)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := map[float64]int{
		45.99: 4599,
		0.01:  1,
		50:    5000,
		19.90: 1990,
		72.50: 7250,
	}
	for amount, want := range cases {
		if got := MinorUnits(amount); got != want {
			t.Fatalf("MinorUnits(%v) = %d, want %d", amount, got, want)
		}
	}
}

func TestCardLast4Short(t *testing.T) {
	d := &EventDetails{}
	if d.CardLast4() != "" {
		t.Fatal("no instrument should yield empty last4")
	}
}
