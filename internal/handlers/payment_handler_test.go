package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akylbek/acquirer-service/internal/config"
	"github.com/akylbek/acquirer-service/internal/issuer"
	"github.com/akylbek/acquirer-service/internal/models"
	"github.com/akylbek/acquirer-service/internal/payment"
	"github.com/akylbek/acquirer-service/internal/repository"
	"github.com/akylbek/acquirer-service/internal/telemetry"
	"github.com/akylbek/acquirer-service/internal/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	telemetry.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type stubAuthorizer struct {
	decision issuer.Decision
}

func (s *stubAuthorizer) Authorize(ctx context.Context, cardToken string, amount decimal.Decimal, currency string) (issuer.Decision, error) {
	return s.decision, nil
}

func newTestRouter(t *testing.T, decision issuer.Decision) *gin.Engine {
	t.Helper()

	ledger := repository.NewMemoryTransactionRepository()
	merchants := repository.NewMemoryMerchantRepository()
	limit := decimal.RequireFromString("5000.00")
	merchant := models.Merchant{
		MerchantID:           "MERCHANT_001",
		MerchantName:         "Test Store Alpha",
		MaxTransactionAmount: &limit,
		Active:               true,
	}
	if err := merchants.Save(context.Background(), &merchant); err != nil {
		t.Fatalf("seed merchant: %v", err)
	}

	validator, err := validation.NewEngine(config.RulesConfig{
		DefaultMaxAmount:    decimal.RequireFromString("10000.00"),
		SupportedCurrencies: []string{"USD", "EUR"},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	service := payment.NewService(ledger, merchants, validator,
		&stubAuthorizer{decision: decision}, nil, zap.NewNop())

	handler := NewPaymentHandler(service, nil)
	r := gin.New()
	r.POST("/payments", handler.ProcessPayment)
	r.GET("/payments/:id", handler.GetTransaction)
	r.GET("/payments", handler.QueryTransactions)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{
	"merchant_id": "MERCHANT_001",
	"amount": 100.00,
	"currency": "USD",
	"card_token": "tok_4532015112830366",
	"card_expiry": "12/2025",
	"operation_type": "PURCHASE"
}`

func TestProcessPaymentEndpoint(t *testing.T) {
	r := newTestRouter(t, issuer.Approved())

	w := doRequest(r, http.MethodPost, "/payments", validBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.PaymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != models.StatusApproved || resp.ResponseCode != "00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.TransactionID == "" {
		t.Fatal("transaction id missing")
	}

	// The processed transaction is retrievable by id.
	w = doRequest(r, http.MethodGet, "/payments/"+resp.TransactionID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
}

func TestProcessPaymentRequestShape(t *testing.T) {
	r := newTestRouter(t, issuer.Approved())

	cases := map[string]string{
		"missing merchant": `{"amount": 10, "currency": "USD", "card_token": "tok_a", "card_expiry": "12/2025", "operation_type": "PURCHASE"}`,
		"bad expiry":       `{"merchant_id": "MERCHANT_001", "amount": 10, "currency": "USD", "card_token": "tok_a", "card_expiry": "13/2025", "operation_type": "PURCHASE"}`,
		"three decimals":   `{"merchant_id": "MERCHANT_001", "amount": 10.001, "currency": "USD", "card_token": "tok_a", "card_expiry": "12/2025", "operation_type": "PURCHASE"}`,
		"bad operation":    `{"merchant_id": "MERCHANT_001", "amount": 10, "currency": "USD", "card_token": "tok_a", "card_expiry": "12/2025", "operation_type": "TRANSFER"}`,
		"long currency":    `{"merchant_id": "MERCHANT_001", "amount": 10, "currency": "USDT", "card_token": "tok_a", "card_expiry": "12/2025", "operation_type": "PURCHASE"}`,
		"negative amount":  `{"merchant_id": "MERCHANT_001", "amount": -5, "currency": "USD", "card_token": "tok_a", "card_expiry": "12/2025", "operation_type": "PURCHASE"}`,
	}

	for name, body := range cases {
		if w := doRequest(r, http.MethodPost, "/payments", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}

	// Nothing was persisted by the rejected requests.
	w := doRequest(r, http.MethodGet, "/payments", "")
	if body := w.Body.String(); !strings.HasPrefix(body, "[]") && body != "[]" {
		t.Fatalf("expected empty transaction list, got %s", body)
	}
}

func TestProcessPaymentUnknownMerchant(t *testing.T) {
	r := newTestRouter(t, issuer.Approved())

	body := strings.Replace(validBody, "MERCHANT_001", "MERCHANT_404", 1)
	w := doRequest(r, http.MethodPost, "/payments", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if errResp.Error != "Merchant Not Found" || !strings.Contains(errResp.Message, "MERCHANT_404") {
		t.Fatalf("unexpected error envelope: %+v", errResp)
	}
}

func TestProcessPaymentValidationFailure(t *testing.T) {
	r := newTestRouter(t, issuer.Approved())

	body := strings.Replace(validBody, "100.00", "6000.00", 1)
	w := doRequest(r, http.MethodPost, "/payments", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if errResp.Error != "Validation Error" {
		t.Fatalf("error label = %q", errResp.Error)
	}
	if !strings.Contains(errResp.Message, "6000.00") || !strings.Contains(errResp.Message, "5000.00") {
		t.Fatalf("message = %q", errResp.Message)
	}
}

func TestGetTransactionNotFoundEndpoint(t *testing.T) {
	r := newTestRouter(t, issuer.Approved())

	w := doRequest(r, http.MethodGet, "/payments/missing-id", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestQueryTransactionsBadStatus(t *testing.T) {
	r := newTestRouter(t, issuer.Approved())

	w := doRequest(r, http.MethodGet, "/payments?status=BOGUS", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestQueryTransactionsByMerchantAndStatus(t *testing.T) {
	r := newTestRouter(t, issuer.Declined("51", issuer.DeclineMessage("51")))

	for i := 0; i < 3; i++ {
		if w := doRequest(r, http.MethodPost, "/payments", validBody); w.Code != http.StatusCreated {
			t.Fatalf("seed payment failed: %d", w.Code)
		}
	}

	w := doRequest(r, http.MethodGet, "/payments?merchantId=MERCHANT_001&status=DECLINED", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var responses []models.PaymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &responses); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(responses) != 3 {
		t.Fatalf("got %d transactions, want 3", len(responses))
	}
	for _, resp := range responses {
		if resp.Status != models.StatusDeclined || resp.ResponseCode != "51" {
			t.Fatalf("unexpected row: %+v", resp)
		}
	}
}
