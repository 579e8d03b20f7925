// Package remit defines the uniform contract every payout vendor adapter
// implements. The assignment engine talks to vendors only through these
// interfaces so routing decisions stay independent of the wire protocol a
// given vendor speaks.
package remit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/remitkit/remitroute/pkg/db/models"
	"github.com/remitkit/remitroute/pkg/enums"
	"github.com/remitkit/remitroute/pkg/types"
)

// ErrNotSupported is returned by optional operations a vendor does not offer.
var ErrNotSupported = errors.New("operation not supported by vendor")

// State is the normalized dispatch state derived from a vendor response.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateSuccessful State = "successful"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// OrderStatus maps a normalized dispatch state onto the order lifecycle.
// Failed states land in admin verification rather than a terminal failure
// so an operator reviews them before money moves again.
func (s State) OrderStatus() enums.OrderStatus {
	switch s {
	case StateSuccessful:
		return enums.OrderStatusSuccessful
	case StateCancelled:
		return enums.OrderStatusCancelled
	case StateFailed:
		return enums.OrderStatusAdminVerification
	case StateProcessing:
		return enums.OrderStatusProcessing
	default:
		return enums.OrderStatusPending
	}
}

// QuoteResult is the vendor's answer to a non-binding quote request.
type QuoteResult struct {
	Charge       decimal.Decimal
	ExchangeRate decimal.Decimal
	PayoutAmount decimal.Decimal
	Currency     string
	VendorCode   string
	Message      string
	Raw          string
}

// ExecutionResult is the vendor's answer to a payout submission.
type ExecutionResult struct {
	Reference  string
	State      State
	VendorCode string
	Message    string
	Raw        string
}

// StatusResult is the vendor's answer to a status inquiry.
type StatusResult struct {
	State      State
	VendorCode string
	Message    string
	Raw        string
}

// Result is the vendor's answer to a cancel or amend instruction.
type Result struct {
	Accepted   bool
	State      State
	VendorCode string
	Message    string
	Raw        string
}

// Verdict is the vendor's answer to a wallet verification lookup.
type Verdict struct {
	Valid        bool
	AccountTitle string
	VendorCode   string
	Message      string
	Raw          string
}

// BalanceResult reports the prefunded balance held with a vendor.
type BalanceResult struct {
	Available decimal.Decimal
	Currency  string
	Raw       string
}

// Amendment carries the fields an operator may change on an in-flight order.
// Nil fields are left untouched at the vendor.
type Amendment struct {
	Beneficiary *types.Beneficiary
	Bank        *types.BankDetails
	Amount      *decimal.Decimal
	Reason      string
}

// Empty reports whether the amendment changes nothing.
func (a Amendment) Empty() bool {
	return a.Beneficiary == nil && a.Bank == nil && a.Amount == nil
}

// Adapter is the uniform surface a payout vendor exposes to the engine.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Name returns the vendor slug the adapter registers under.
	Name() string

	// RequestQuote asks the vendor for charges and rates without
	// committing anything.
	RequestQuote(ctx context.Context, order *models.Order) (*QuoteResult, error)

	// ExecuteOrder submits the payout to the vendor.
	ExecuteOrder(ctx context.Context, order *models.Order) (*ExecutionResult, error)

	// OrderStatus asks the vendor for the current payout state.
	OrderStatus(ctx context.Context, order *models.Order) (*StatusResult, error)

	// CancelOrder instructs the vendor to stop an in-flight payout.
	CancelOrder(ctx context.Context, order *models.Order, reason string) (*Result, error)

	// AmendOrder instructs the vendor to change an in-flight payout.
	AmendOrder(ctx context.Context, order *models.Order, amendment Amendment) (*Result, error)
}

// WalletVerifier is implemented by adapters that can validate a mobile
// wallet number before dispatch.
type WalletVerifier interface {
	VerifyWallet(ctx context.Context, walletNumber string, serviceType enums.ServiceType) (*Verdict, error)
}

// BalanceChecker is implemented by adapters whose vendor exposes the
// prefunded balance.
type BalanceChecker interface {
	Balance(ctx context.Context) (*BalanceResult, error)
}

// TransactionRef derives the stable reference submitted to vendors for an
// order. Using the order number keeps retries idempotent on the vendor side.
func TransactionRef(order *models.Order) string {
	if order == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(order.OrderNumber))
}

// ChildRef derives a reference for follow-up instructions (cancel, amend)
// tied to the original transaction.
func ChildRef(order *models.Order, suffix string) string {
	base := TransactionRef(order)
	if base == "" || suffix == "" {
		return base
	}
	return fmt.Sprintf("%s-%s", base, strings.ToUpper(suffix))
}
