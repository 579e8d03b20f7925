package islamibank

import (
	"context"
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

func soapResponse(payload string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>`+
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">`+
		`<soapenv:Body><ns:response xmlns:ns="http://service.ws.mt.ibbl"><ns:return>%s</ns:return></ns:response></soapenv:Body>`+
		`</soapenv:Envelope>`, payload)
}

type capturedRequest struct {
	action string
	body   string
}

func newTestAdapter(t *testing.T, payload string, capture *capturedRequest) *Adapter {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			capture.action = r.Header.Get("SOAPAction")
			capture.body = string(body)
		}
		w.Header().Set("Content-Type", `text/xml;charset="utf-8"`)
		fmt.Fprint(w, soapResponse(payload))
	}))
	t.Cleanup(server.Close)

	adapter, err := New(config.IslamiBankConfig{
		Mode:            "sandbox",
		SandboxEndpoint: server.URL,
		SandboxUsername: "exchange-house",
		SandboxPassword: "secret",
	}, testLogger())
	require.NoError(t, err)
	return adapter
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "islamibank-test", Level: zerolog.Disabled, Output: io.Discard})
}

func testOrder(serviceType enums.ServiceType) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: "rr-20250901-0007",
		ServiceID:   uuid.New(),
		ServiceType: serviceType,
		Amount:      decimal.NewFromFloat(250.50),
		Currency:    "BDT",
		OrderData: types.OrderData{
			Beneficiary: types.Beneficiary{
				FullName:      "Rahim Uddin",
				Mobile:        "+8801700000000",
				AccountNumber: "20501234567890123",
				WalletNumber:  "01700000000",
				City:          "Dhaka",
				CountryISO2:   "BD",
			},
			Sender: types.Sender{
				FullName: "Karim Mia",
				Mobile:   "+971500000000",
				IDType:   "passport",
				IDNumber: "P1234567",
			},
			Bank: &types.BankDetails{
				BankName:   "Islami Bank Bangladesh",
				BankCode:   "125",
				BranchCode: "213",
			},
		},
	}
}

func TestNewValidatesRegistration(t *testing.T) {
	_, err := New(config.IslamiBankConfig{}, testLogger())
	assert.ErrorIs(t, err, errEndpointRequired)

	_, err = New(config.IslamiBankConfig{SandboxEndpoint: "http://localhost"}, testLogger())
	assert.ErrorIs(t, err, errCredentialsRequired)

	_, err = New(config.IslamiBankConfig{SandboxEndpoint: "http://localhost", SandboxUsername: "u", SandboxPassword: "p"}, nil)
	assert.ErrorIs(t, err, errLoggerRequired)
}

func TestRequestQuoteNotSupported(t *testing.T) {
	adapter := newTestAdapter(t, "TRUE|5003", nil)

	_, err := adapter.RequestQuote(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
	assert.ErrorIs(t, err, remit.ErrNotSupported)
}

func TestExecuteOrderAccepted(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, "TRUE|5003", capture)

	result, err := adapter.ExecuteOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
	require.NoError(t, err)

	assert.Equal(t, remit.StateProcessing, result.State)
	assert.Equal(t, "5003", result.VendorCode)
	assert.Equal(t, "REMITTANCE SUCCESS", result.Message)
	assert.Equal(t, "RR-20250901-0007", result.Reference)

	assert.Equal(t, "directCreditWSMessage", capture.action)
	assert.Contains(t, capture.body, "<ser:directCreditWSMessage>")
	assert.Contains(t, capture.body, "<xsd:paymentType>2</xsd:paymentType>")
	assert.Contains(t, capture.body, "<xsd:transReferenceNo>RR-20250901-0007</xsd:transReferenceNo>")
	assert.Contains(t, capture.body, "<ser:userID>exchange-house</ser:userID>")
}

func TestExecuteOrderWalletUsesWalletNumber(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, "TRUE|5007", capture)

	result, err := adapter.ExecuteOrder(context.Background(), testOrder(enums.ServiceTypeMFSBkash))
	require.NoError(t, err)

	assert.Equal(t, remit.StateProcessing, result.State)
	assert.Contains(t, capture.body, "<xsd:paymentType>7</xsd:paymentType>")
	assert.Contains(t, capture.body, "<xsd:beneficiaryAccNo>01700000000</xsd:beneficiaryAccNo>")
}

func TestExecuteOrderRejected(t *testing.T) {
	adapter := newTestAdapter(t, "FALSE|3105", nil)

	result, err := adapter.ExecuteOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
	require.NoError(t, err)

	assert.Equal(t, remit.StateFailed, result.State)
	assert.Equal(t, "BENEFICIARY ACC NO MISSING", result.Message)
}

func TestExecuteOrderUnknownCode(t *testing.T) {
	adapter := newTestAdapter(t, "FALSE|9999", nil)

	_, err := adapter.ExecuteOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownVendorCode))
}

func TestOrderStatusStates(t *testing.T) {
	cases := []struct {
		payload string
		want    remit.State
	}{
		{"TRUE|07", remit.StateSuccessful},
		{"TRUE|79", remit.StateSuccessful},
		{"TRUE|04", remit.StateProcessing},
		{"TRUE|11", remit.StateCancelled},
		{"TRUE|17", remit.StateFailed},
	}
	for _, tc := range cases {
		adapter := newTestAdapter(t, tc.payload, nil)
		result, err := adapter.OrderStatus(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
		require.NoError(t, err, "payload %s", tc.payload)
		assert.Equal(t, tc.want, result.State, "payload %s", tc.payload)
	}
}

func TestOrderStatusRejected(t *testing.T) {
	adapter := newTestAdapter(t, "FALSE|5006", nil)

	result, err := adapter.OrderStatus(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
	require.NoError(t, err)

	assert.Equal(t, remit.StateFailed, result.State)
	assert.Equal(t, "REMITTANCE NOT_FOUND", result.Message)
}

func TestOrderStatusUnknownCode(t *testing.T) {
	adapter := newTestAdapter(t, "TRUE|55", nil)

	_, err := adapter.OrderStatus(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownVendorCode))
}

func TestCancelOrder(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, "TRUE|5003", capture)

	result, err := adapter.CancelOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer), "customer request")
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, remit.StateCancelled, result.State)
	assert.Equal(t, "cancelWSMessage", capture.action)
	assert.Contains(t, capture.body, "<ser:note>customer request</ser:note>")
}

func TestCancelOrderRejected(t *testing.T) {
	adapter := newTestAdapter(t, "FALSE|1001", nil)

	result, err := adapter.CancelOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer), "")
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, "TRANSACTION REF INVALID", result.Message)
}

func TestAmendOrder(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, "TRUE|5003", capture)

	amount := decimal.NewFromInt(300)
	result, err := adapter.AmendOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer), remit.Amendment{
		Amount: &amount,
		Reason: "amount correction",
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, "amendWSMessage", capture.action)
	assert.Contains(t, capture.body, "<xsd:amount>300.00</xsd:amount>")
	assert.Contains(t, capture.body, "<xsd:note>amount correction</xsd:note>")
}

func TestAmendOrderRejectsEmptyChange(t *testing.T) {
	adapter := newTestAdapter(t, "TRUE|5003", nil)

	_, err := adapter.AmendOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer), remit.Amendment{Reason: "noop"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestVerifyWallet(t *testing.T) {
	capture := &capturedRequest{}
	adapter := newTestAdapter(t, "TRUE|RAHIM UDDIN|5002", capture)

	verdict, err := adapter.VerifyWallet(context.Background(), "01700000000", enums.ServiceTypeMFSNagad)
	require.NoError(t, err)

	assert.True(t, verdict.Valid)
	assert.Equal(t, "RAHIM UDDIN", verdict.AccountTitle)
	assert.Contains(t, capture.body, "<ser:walletNo>01700000000</ser:walletNo>")
	assert.Contains(t, capture.body, "<ser:paymentType>8</ser:paymentType>")
}

func TestVerifyWalletInvalid(t *testing.T) {
	adapter := newTestAdapter(t, "FALSE|3113", nil)

	verdict, err := adapter.VerifyWallet(context.Background(), "", enums.ServiceTypeMFSBkash)
	require.NoError(t, err)

	assert.False(t, verdict.Valid)
	assert.Equal(t, "BENEFICIARY WALLET ACC NO MISSING", verdict.Message)
}

func TestBalance(t *testing.T) {
	adapter := newTestAdapter(t, "TRUE|150000.25", nil)

	result, err := adapter.Balance(context.Background())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(150000.25).Equal(result.Available))
	assert.Equal(t, "BDT", result.Currency)
}

func TestBalanceRejected(t *testing.T) {
	adapter := newTestAdapter(t, "FALSE|7002", nil)

	_, err := adapter.Balance(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVendorComm))
}

func TestAccountDetail(t *testing.T) {
	adapter := newTestAdapter(t, "TRUE|20501234567890123|RAHIM UDDIN|ABDUL KARIM|5002", nil)

	accNo, title, err := adapter.AccountDetail(context.Background(), "1234567890", "02", "213")
	require.NoError(t, err)
	assert.Equal(t, "20501234567890123", accNo)
	assert.Equal(t, "RAHIM UDDIN", title)
}

func TestTransportFailure(t *testing.T) {
	adapter := newTestAdapter(t, "TRUE|5003", nil)
	adapter.endpoint = "http://127.0.0.1:1"

	_, err := adapter.ExecuteOrder(context.Background(), testOrder(enums.ServiceTypeBankTransfer))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVendorComm))
}

func TestPaymentTypeFor(t *testing.T) {
	assert.Equal(t, "2", paymentTypeFor(enums.ServiceTypeBankTransfer))
	assert.Equal(t, "1", paymentTypeFor(enums.ServiceTypeInstantBankTransfer))
	assert.Equal(t, "1", paymentTypeFor(enums.ServiceTypeCashPickup))
	assert.Equal(t, "4", paymentTypeFor(enums.ServiceTypeRemittanceCard))
	assert.Equal(t, "5", paymentTypeFor(enums.ServiceTypeMBSMCash))
	assert.Equal(t, "7", paymentTypeFor(enums.ServiceTypeMFSBkash))
	assert.Equal(t, "8", paymentTypeFor(enums.ServiceTypeMFSNagad))
	assert.Equal(t, "3", paymentTypeFor(enums.ServiceTypeWalletTransfer))
}

func TestDecodeReply(t *testing.T) {
	rep, err := decodeReply("TRUE|A|B|5003")
	require.NoError(t, err)
	assert.True(t, rep.OK)
	assert.Equal(t, "5003", rep.Code)
	assert.Len(t, rep.Fields, 4)

	_, err = decodeReply("garbage")
	assert.Error(t, err)
}
