package transfast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db/models"
	"github.com/remitkit/remitroute/pkg/enums"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/remit"
	"github.com/remitkit/remitroute/pkg/types"
)

type capturedRequest struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
	auth   string
}

func newTestAdapter(t *testing.T, status int, payload string, capture *capturedRequest) *Adapter {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			capture.method = r.Method
			capture.path = r.URL.Path
			capture.auth = r.Header.Get("Authorization")
			capture.query = map[string]string{}
			for k := range r.URL.Query() {
				capture.query[k] = r.URL.Query().Get(k)
			}
			if r.Body != nil {
				raw, _ := io.ReadAll(r.Body)
				if len(raw) > 0 {
					_ = json.Unmarshal(raw, &capture.body)
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(server.Close)

	adapter, err := New(config.TransFastConfig{
		Mode:            "sandbox",
		SandboxEndpoint: server.URL,
		SandboxToken:    "test-token",
	}, testLogger())
	require.NoError(t, err)
	return adapter
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "transfast-test", Level: zerolog.Disabled, Output: io.Discard})
}

func testOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "rr-20250901-0009",
		ServiceID:     uuid.New(),
		ServiceType:   enums.ServiceTypeBankTransfer,
		Amount:        decimal.NewFromInt(500),
		Currency:      "USD",
		SourceCountry: "US",
		DestCountry:   "PH",
		OrderData: types.OrderData{
			PurposeOfRemittance: "family support",
			Sender:              types.Sender{FullName: "Maria Cruz", Mobile: "+14150000000"},
			Beneficiary:         types.Beneficiary{FullName: "Jose Cruz", AccountNumber: "001122334455"},
			Bank:                &types.BankDetails{BankName: "BDO", BankCode: "010530667"},
		},
	}
}

func TestNewValidatesRegistration(t *testing.T) {
	_, err := New(config.TransFastConfig{}, testLogger())
	assert.ErrorIs(t, err, errEndpointRequired)

	_, err = New(config.TransFastConfig{SandboxEndpoint: "http://localhost"}, testLogger())
	assert.ErrorIs(t, err, errTokenRequired)

	_, err = New(config.TransFastConfig{SandboxEndpoint: "http://localhost", SandboxToken: "x"}, nil)
	assert.ErrorIs(t, err, errLoggerRequired)
}

func TestRequestQuote(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, http.StatusOK, `{
		"code": 0,
		"message": "ok",
		"data": {"fee": "4.99", "exchange_rate": "56.75", "payout_amount": "28375.00", "payout_currency": "PHP"}
	}`, capture)

	quote, err := adapter.RequestQuote(context.Background(), testOrder())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(4.99).Equal(quote.Charge))
	assert.True(t, decimal.NewFromFloat(56.75).Equal(quote.ExchangeRate))
	assert.Equal(t, "PHP", quote.Currency)

	assert.Equal(t, http.MethodGet, capture.method)
	assert.Equal(t, "/v1/rates/quote", capture.path)
	assert.Equal(t, "500.00", capture.query["amount"])
	assert.Equal(t, "Credentials test-token", capture.auth)
}

func TestExecuteOrder(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, http.StatusOK, `{
		"code": 0,
		"message": "created",
		"data": {"tfpin": "TF123456", "status": "RECEIVED"}
	}`, capture)

	result, err := adapter.ExecuteOrder(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Equal(t, remit.StateProcessing, result.State)
	assert.Equal(t, "TF123456", result.Reference)

	assert.Equal(t, "/v1/transaction/create", capture.path)
	assert.Equal(t, "RR-20250901-0009", capture.body["reference"])
	assert.Equal(t, "Jose Cruz", capture.body["beneficiary_name"])
	assert.Equal(t, "010530667", capture.body["bank_code"])
}

func TestExecuteOrderRejected(t *testing.T) {
	adapter := newTestAdapter(t, http.StatusUnprocessableEntity, `{"code": 422, "message": "compliance hold"}`, nil)

	_, err := adapter.ExecuteOrder(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVendorComm))
}

func TestExecuteOrderUnknownStatus(t *testing.T) {
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0, "data": {"status": "TELEPORTED"}}`, nil)

	_, err := adapter.ExecuteOrder(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownVendorCode))
}

func TestOrderStatus(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0, "data": {"status": "PAID"}}`, capture)

	result, err := adapter.OrderStatus(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Equal(t, remit.StateSuccessful, result.State)
	assert.Equal(t, "PAID", result.VendorCode)
	assert.Equal(t, "RR-20250901-0009", capture.query["reference"])
}

func TestCancelOrder(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0, "data": {"status": "CANCELLED"}}`, capture)

	result, err := adapter.CancelOrder(context.Background(), testOrder(), "duplicate order")
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, remit.StateCancelled, result.State)
	assert.Equal(t, "duplicate order", capture.body["reason"])
	assert.Equal(t, "RR-20250901-0009-CANCEL", capture.body["request_reference"])
}

func TestCancelOrderNotCancelled(t *testing.T) {
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0, "data": {"status": "PAID"}}`, nil)

	result, err := adapter.CancelOrder(context.Background(), testOrder(), "too late")
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, remit.StateSuccessful, result.State)
}

func TestAmendOrder(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0, "data": {"status": "IN_PROCESS"}}`, capture)

	amount := decimal.NewFromInt(550)
	result, err := adapter.AmendOrder(context.Background(), testOrder(), remit.Amendment{Amount: &amount})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, "/v1/transaction/amend", capture.path)
	assert.Equal(t, "550.00", capture.body["amount"])
	assert.Equal(t, "RR-20250901-0009-AMEND", capture.body["request_reference"])
}

func TestAmendOrderRejectsEmptyChange(t *testing.T) {
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0}`, nil)

	_, err := adapter.AmendOrder(context.Background(), testOrder(), remit.Amendment{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestBalance(t *testing.T) {
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0, "data": {"balance": "92000.50", "currency": "USD"}}`, nil)

	result, err := adapter.Balance(context.Background())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(92000.50).Equal(result.Available))
	assert.Equal(t, "USD", result.Currency)
}

func TestTransportFailure(t *testing.T) {
	adapter := newTestAdapter(t, http.StatusOK, `{"code": 0}`, nil)
	adapter.client.SetBaseURL("http://127.0.0.1:1")

	_, err := adapter.OrderStatus(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVendorComm))
}
