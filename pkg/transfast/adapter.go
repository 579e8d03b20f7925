// Package transfast implements the payout adapter for the TransFast
// partner REST API.
package transfast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db/models"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/remit"
)

// Slug identifies the vendor in the adapter registry and on orders.
const Slug = "transfast"

var (
	errEndpointRequired = errors.New("transfast endpoint is required")
	errTokenRequired    = errors.New("transfast token is required")
	errLoggerRequired   = errors.New("transfast logger is required")
)

// Adapter drives the partner REST API on behalf of the dispatch engine.
type Adapter struct {
	client *resty.Client
	logger *logger.Logger
}

// envelope is the partner API's uniform response wrapper.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type quotePayload struct {
	envelope
	Data struct {
		Fee          string `json:"fee"`
		ExchangeRate string `json:"exchange_rate"`
		PayoutAmount string `json:"payout_amount"`
		Currency     string `json:"payout_currency"`
	} `json:"data"`
}

type transactionPayload struct {
	envelope
	Data struct {
		TfPin  string `json:"tfpin"`
		Status string `json:"status"`
	} `json:"data"`
}

type balancePayload struct {
	envelope
	Data struct {
		Balance  string `json:"balance"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// New validates the vendor registration and returns a ready adapter.
func New(cfg config.TransFastConfig, logg *logger.Logger) (*Adapter, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	endpoint := strings.TrimSpace(cfg.Endpoint())
	if endpoint == "" {
		return nil, errEndpointRequired
	}
	token := strings.TrimSpace(cfg.Token())
	if token == "" {
		return nil, errTokenRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Credentials "+token)

	return &Adapter{client: client, logger: logg}, nil
}

// Name returns the vendor slug.
func (a *Adapter) Name() string { return Slug }

// RequestQuote fetches fees and rates for the corridor without creating a
// transaction.
func (a *Adapter) RequestQuote(ctx context.Context, order *models.Order) (*remit.QuoteResult, error) {
	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)

	payload := &quotePayload{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"amount":          order.Amount.StringFixed(2),
			"currency":        order.Currency.String(),
			"source_country":  order.SourceCountry,
			"payout_country":  order.DestCountry,
			"payment_method":  string(order.ServiceType),
		}).
		SetResult(payload).
		Get("/v1/rates/quote")
	if err != nil {
		return nil, a.commError(ctx, "quote", err)
	}
	if err := a.checkReply(ctx, "quote", resp, &payload.envelope); err != nil {
		return nil, err
	}

	fee, err := decimal.NewFromString(payload.Data.Fee)
	if err != nil {
		return nil, a.malformed(ctx, "quote", "fee", err)
	}
	rate, err := decimal.NewFromString(payload.Data.ExchangeRate)
	if err != nil {
		return nil, a.malformed(ctx, "quote", "exchange_rate", err)
	}
	payout, err := decimal.NewFromString(payload.Data.PayoutAmount)
	if err != nil {
		return nil, a.malformed(ctx, "quote", "payout_amount", err)
	}

	return &remit.QuoteResult{
		Charge:       fee,
		ExchangeRate: rate,
		PayoutAmount: payout,
		Currency:     payload.Data.Currency,
		Message:      payload.Message,
		Raw:          string(resp.Body()),
	}, nil
}

// ExecuteOrder creates the payout transaction. The order's transaction
// reference doubles as the partner-side idempotency key.
func (a *Adapter) ExecuteOrder(ctx context.Context, order *models.Order) (*remit.ExecutionResult, error) {
	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)
	ref := remit.TransactionRef(order)

	data := order.OrderData
	body := map[string]any{
		"reference":           ref,
		"amount":              order.Amount.StringFixed(2),
		"currency":            order.Currency,
		"source_country":      order.SourceCountry,
		"payout_country":      order.DestCountry,
		"payment_method":      string(order.ServiceType),
		"purpose":             data.PurposeOfRemittance,
		"sender_name":         data.Sender.FullName,
		"sender_mobile":       data.Sender.Mobile,
		"sender_id_type":      data.Sender.IDType,
		"sender_id_number":    data.Sender.IDNumber,
		"beneficiary_name":    data.Beneficiary.FullName,
		"beneficiary_mobile":  data.Beneficiary.Mobile,
		"beneficiary_account": data.Beneficiary.AccountNumber,
	}
	if bank := data.Bank; bank != nil {
		body["bank_name"] = bank.BankName
		body["bank_code"] = bank.BankCode
		body["branch_code"] = bank.BranchCode
		body["routing_number"] = bank.RoutingNumber
	}

	payload := &transactionPayload{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(payload).
		Post("/v1/transaction/create")
	if err != nil {
		return nil, a.commError(ctx, "create", err)
	}
	if err := a.checkReply(ctx, "create", resp, &payload.envelope); err != nil {
		return nil, err
	}

	state, known := StatusState(payload.Data.Status)
	if !known {
		return nil, a.unknownStatus(ctx, "create", payload.Data.Status, resp)
	}

	reference := payload.Data.TfPin
	if reference == "" {
		reference = ref
	}
	return &remit.ExecutionResult{
		Reference:  reference,
		State:      state,
		VendorCode: payload.Data.Status,
		Message:    payload.Message,
		Raw:        string(resp.Body()),
	}, nil
}

// OrderStatus fetches the current transaction status.
func (a *Adapter) OrderStatus(ctx context.Context, order *models.Order) (*remit.StatusResult, error) {
	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)

	payload := &transactionPayload{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("reference", remit.TransactionRef(order)).
		SetResult(payload).
		Get("/v1/transaction/status")
	if err != nil {
		return nil, a.commError(ctx, "status", err)
	}
	if err := a.checkReply(ctx, "status", resp, &payload.envelope); err != nil {
		return nil, err
	}

	state, known := StatusState(payload.Data.Status)
	if !known {
		return nil, a.unknownStatus(ctx, "status", payload.Data.Status, resp)
	}
	return &remit.StatusResult{
		State:      state,
		VendorCode: payload.Data.Status,
		Message:    payload.Message,
		Raw:        string(resp.Body()),
	}, nil
}

// CancelOrder requests cancellation of an in-flight transaction.
func (a *Adapter) CancelOrder(ctx context.Context, order *models.Order, reason string) (*remit.Result, error) {
	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)

	payload := &transactionPayload{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"reference":         remit.TransactionRef(order),
			"request_reference": remit.ChildRef(order, "cancel"),
			"reason":            reason,
		}).
		SetResult(payload).
		Post("/v1/transaction/cancel")
	if err != nil {
		return nil, a.commError(ctx, "cancel", err)
	}
	if err := a.checkReply(ctx, "cancel", resp, &payload.envelope); err != nil {
		return nil, err
	}

	state, known := StatusState(payload.Data.Status)
	if !known {
		return nil, a.unknownStatus(ctx, "cancel", payload.Data.Status, resp)
	}
	return &remit.Result{
		Accepted:   state == remit.StateCancelled,
		State:      state,
		VendorCode: payload.Data.Status,
		Message:    payload.Message,
		Raw:        string(resp.Body()),
	}, nil
}

// AmendOrder pushes changed fields to an in-flight transaction.
func (a *Adapter) AmendOrder(ctx context.Context, order *models.Order, amendment remit.Amendment) (*remit.Result, error) {
	if amendment.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amendment carries no changes")
	}
	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)

	body := map[string]any{
		"reference":         remit.TransactionRef(order),
		"request_reference": remit.ChildRef(order, "amend"),
		"reason":            amendment.Reason,
	}
	if amendment.Amount != nil {
		body["amount"] = amendment.Amount.StringFixed(2)
	}
	if b := amendment.Beneficiary; b != nil {
		body["beneficiary_name"] = b.FullName
		body["beneficiary_mobile"] = b.Mobile
		body["beneficiary_account"] = b.AccountNumber
	}
	if bank := amendment.Bank; bank != nil {
		body["bank_name"] = bank.BankName
		body["branch_code"] = bank.BranchCode
		body["routing_number"] = bank.RoutingNumber
	}

	payload := &transactionPayload{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(payload).
		Post("/v1/transaction/amend")
	if err != nil {
		return nil, a.commError(ctx, "amend", err)
	}
	if err := a.checkReply(ctx, "amend", resp, &payload.envelope); err != nil {
		return nil, err
	}

	state, known := StatusState(payload.Data.Status)
	if !known {
		return nil, a.unknownStatus(ctx, "amend", payload.Data.Status, resp)
	}
	return &remit.Result{
		Accepted:   true,
		State:      state,
		VendorCode: payload.Data.Status,
		Message:    payload.Message,
		Raw:        string(resp.Body()),
	}, nil
}

// Balance fetches the prefunded partner balance.
func (a *Adapter) Balance(ctx context.Context) (*remit.BalanceResult, error) {
	ctx = a.logger.WithVendor(ctx, Slug)

	payload := &balancePayload{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(payload).
		Get("/v1/account/balance")
	if err != nil {
		return nil, a.commError(ctx, "balance", err)
	}
	if err := a.checkReply(ctx, "balance", resp, &payload.envelope); err != nil {
		return nil, err
	}

	available, err := decimal.NewFromString(payload.Data.Balance)
	if err != nil {
		return nil, a.malformed(ctx, "balance", "balance", err)
	}
	return &remit.BalanceResult{
		Available: available,
		Currency:  payload.Data.Currency,
		Raw:       string(resp.Body()),
	}, nil
}

func (a *Adapter) checkReply(ctx context.Context, op string, resp *resty.Response, env *envelope) error {
	if resp.StatusCode() == http.StatusOK && env.Code == 0 {
		return nil
	}
	err := pkgerrors.New(pkgerrors.CodeVendorComm, fmt.Sprintf("transfast %s rejected: %s", op, env.Message)).
		WithDetails(map[string]any{"http_status": resp.StatusCode(), "vendor_code": env.Code})
	a.logger.Error(ctx, "transfast call rejected", err)
	return err
}

func (a *Adapter) commError(ctx context.Context, op string, err error) error {
	a.logger.Error(ctx, "transfast call failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeVendorComm, err, fmt.Sprintf("transfast %s failed", op))
}

func (a *Adapter) unknownStatus(ctx context.Context, op, status string, resp *resty.Response) error {
	err := pkgerrors.New(pkgerrors.CodeUnknownVendorCode, fmt.Sprintf("transfast %s returned unrecognized status %q", op, status)).
		WithDetails(map[string]any{"status": status, "raw": string(resp.Body())})
	a.logger.Error(ctx, "transfast unrecognized status", err)
	return err
}

func (a *Adapter) malformed(ctx context.Context, op, fieldName string, err error) error {
	wrapped := pkgerrors.Wrap(pkgerrors.CodeUnknownVendorCode, err, fmt.Sprintf("transfast %s returned unparseable %s", op, fieldName))
	a.logger.Error(ctx, "transfast malformed response", wrapped)
	return wrapped
}
