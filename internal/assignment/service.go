// Package assignment implements vendor assignment and dispatch for
// remittance orders: claiming, quoting, executing, tracking, cancelling,
// amending, and releasing.
package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/remitkit/remitroute/internal/vendors"
	"github.com/remitkit/remitroute/pkg/db/models"
	"github.com/remitkit/remitroute/pkg/enums"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/remit"
	"github.com/remitkit/remitroute/pkg/types"
)

// OrderStore is the slice of order persistence the engine needs.
type OrderStore interface {
	Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Claim(ctx context.Context, orderID, userID uuid.UUID) (bool, error)
	UpdateAssigned(ctx context.Context, orderID, userID uuid.UUID, fields map[string]any) (int64, error)
	Update(ctx context.Context, orderID uuid.UUID, fields map[string]any) error
	Release(ctx context.Context, orderID uuid.UUID) error
}

// VendorResolver yields dispatchable vendors.
type VendorResolver interface {
	Resolve(ctx context.Context, vendorID uuid.UUID) (*vendors.ResolvedVendor, error)
	Eligible(ctx context.Context, serviceID uuid.UUID) ([]vendors.ResolvedVendor, error)
}

// ServiceParams groups dependencies for the assignment engine.
type ServiceParams struct {
	Orders  OrderStore
	Vendors VendorResolver
	Logger  *logger.Logger
}

// Service exposes the vendor assignment and dispatch operations.
type Service interface {
	AvailableVendors(ctx context.Context, orderID, actorID uuid.UUID) (*AvailabilityDTO, error)
	RequestQuote(ctx context.Context, orderID, vendorID uuid.UUID) (*remit.QuoteResult, error)
	ProcessOrder(ctx context.Context, orderID, vendorID, actorID uuid.UUID) (*DispatchDTO, error)
	OrderStatus(ctx context.Context, orderID uuid.UUID) (*remit.StatusResult, error)
	CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*remit.Result, error)
	AmendOrder(ctx context.Context, orderID, actorID uuid.UUID, amendment remit.Amendment) (*remit.Result, error)
	ReleaseOrder(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	orders  OrderStore
	vendors VendorResolver
	logg    *logger.Logger
}

// NewService builds the assignment engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order store is required")
	}
	if params.Vendors == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor resolver is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		orders:  params.Orders,
		vendors: params.Vendors,
		logg:    params.Logger,
	}, nil
}

// AvailableVendors claims the order for the actor and lists vendors able to
// pay it out. A claim held by someone else refuses with ORDER_LOCKED.
func (s *service) AvailableVendors(ctx context.Context, orderID, actorID uuid.UUID) (*AvailabilityDTO, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	claimed, err := s.orders.Claim(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, s.lockedError(order)
	}

	eligible, err := s.vendors.Eligible(ctx, order.ServiceID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(s.logg.WithField(ctx, "eligible_vendors", len(eligible)), "order claimed for assignment")

	options := make([]VendorOption, 0, len(eligible))
	for _, rv := range eligible {
		options = append(options, VendorOption{
			ID:                 rv.Vendor.ID,
			Slug:               rv.Vendor.Slug,
			Name:               rv.Vendor.Name,
			WalletVerification: supportsWalletVerification(rv.Adapter),
		})
	}
	return &AvailabilityDTO{OrderID: order.ID, Vendors: options}, nil
}

// RequestQuote asks one vendor for charges without mutating the order.
func (s *service) RequestQuote(ctx context.Context, orderID, vendorID uuid.UUID) (*remit.QuoteResult, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolveForService(ctx, vendorID, order.ServiceID)
	if err != nil {
		return nil, err
	}

	quote, err := resolved.Adapter.RequestQuote(ctx, order)
	if errors.Is(err, remit.ErrNotSupported) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("vendor %s does not support quotations", resolved.Vendor.Slug))
	}
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// ProcessOrder commits the order to a vendor and submits the payout. The
// actor must already hold the claim; commit does not claim on the fly. The
// vendor commitment only lands while the claim still holds, and the order
// is re-read after the commit so the dispatch sees the stored state rather
// than the caller's copy.
func (s *service) ProcessOrder(ctx context.Context, orderID, vendorID, actorID uuid.UUID) (*DispatchDTO, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.AssignedTo(actorID) {
		if order.Assigned() {
			return nil, s.lockedError(order)
		}
		return nil, pkgerrors.New(pkgerrors.CodeOrderNotAssigned, "order must be claimed before dispatch")
	}

	resolved, err := s.resolveForService(ctx, vendorID, order.ServiceID)
	if err != nil {
		return nil, err
	}

	data := order.OrderData
	data.Queued = true
	rows, err := s.orders.UpdateAssigned(ctx, orderID, actorID, map[string]any{
		"vendor":            resolved.Vendor.Slug,
		"service_vendor_id": resolved.Vendor.ID,
		"status":            string(enums.OrderStatusProcessing),
		"order_data":        data,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUpdateFailed, "vendor commitment lost the order claim")
	}

	fresh, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithVendor(s.logg.WithOrderID(ctx, orderID.String()), resolved.Vendor.Slug)
	result, err := resolved.Adapter.ExecuteOrder(ctx, fresh)
	if err != nil {
		// the commitment stands, the reconcile worker takes over
		s.logg.Error(ctx, "payout submission failed, leaving order queued", err)
		return nil, err
	}

	// The submission result is handed back uninterpreted. The order stays
	// processing and queued until the reconcile worker settles it.
	freshData := fresh.OrderData
	freshData.RecordInteraction(types.VendorInteraction{
		Vendor:     resolved.Vendor.Slug,
		Operation:  "execute",
		Reference:  result.Reference,
		StatusCode: result.VendorCode,
		Message:    result.Message,
		Raw:        result.Raw,
	})
	if err := s.orders.Update(ctx, orderID, map[string]any{"order_data": freshData}); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "dispatch_state", string(result.State)), "payout submitted")
	return &DispatchDTO{
		OrderID:   orderID,
		Vendor:    resolved.Vendor.Slug,
		Status:    enums.OrderStatusProcessing,
		Reference: result.Reference,
		Execution: result,
	}, nil
}

// OrderStatus asks the committed vendor where the payout stands.
func (s *service) OrderStatus(ctx context.Context, orderID uuid.UUID) (*remit.StatusResult, error) {
	order, resolved, err := s.resolveCommitted(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithVendor(s.logg.WithOrderID(ctx, orderID.String()), resolved.Vendor.Slug)
	return resolved.Adapter.OrderStatus(ctx, order)
}

// CancelOrder instructs the committed vendor to stop the payout. On an
// accepted cancellation the order moves to cancelled and leaves the
// reconcile queue.
func (s *service) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*remit.Result, error) {
	order, resolved, err := s.resolveCommitted(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.AssignedTo(actorID) {
		return nil, s.lockedError(order)
	}

	ctx = s.logg.WithVendor(s.logg.WithOrderID(ctx, orderID.String()), resolved.Vendor.Slug)
	result, err := resolved.Adapter.CancelOrder(ctx, order, reason)
	if err != nil {
		return nil, err
	}

	data := order.OrderData
	data.RecordInteraction(types.VendorInteraction{
		Vendor:     resolved.Vendor.Slug,
		Operation:  "cancel",
		StatusCode: result.VendorCode,
		Message:    result.Message,
		Raw:        result.Raw,
	})
	fields := map[string]any{"order_data": data}
	if result.Accepted {
		data.Queued = false
		fields["order_data"] = data
		fields["status"] = string(enums.OrderStatusCancelled)
		fields["notes"] = reason
	}
	if err := s.orders.Update(ctx, orderID, fields); err != nil {
		return nil, err
	}
	return result, nil
}

// AmendOrder pushes changed payout details to the committed vendor.
func (s *service) AmendOrder(ctx context.Context, orderID, actorID uuid.UUID, amendment remit.Amendment) (*remit.Result, error) {
	if amendment.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amendment carries no changes")
	}

	order, resolved, err := s.resolveCommitted(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.AssignedTo(actorID) {
		return nil, s.lockedError(order)
	}

	ctx = s.logg.WithVendor(s.logg.WithOrderID(ctx, orderID.String()), resolved.Vendor.Slug)
	result, err := resolved.Adapter.AmendOrder(ctx, order, amendment)
	if err != nil {
		return nil, err
	}

	data := order.OrderData
	data.RecordInteraction(types.VendorInteraction{
		Vendor:     resolved.Vendor.Slug,
		Operation:  "amend",
		StatusCode: result.VendorCode,
		Message:    result.Message,
		Raw:        result.Raw,
	})
	fields := map[string]any{"order_data": data}
	if result.Accepted {
		if amendment.Beneficiary != nil {
			data.Beneficiary = *amendment.Beneficiary
		}
		if amendment.Bank != nil {
			data.Bank = amendment.Bank
		}
		fields["order_data"] = data
		if amendment.Amount != nil {
			fields["amount"] = *amendment.Amount
		}
	}
	if err := s.orders.Update(ctx, orderID, fields); err != nil {
		return nil, err
	}
	return result, nil
}

// ReleaseOrder clears the claim and vendor commitment unconditionally.
func (s *service) ReleaseOrder(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.orders.Find(ctx, orderID); err != nil {
		return err
	}
	if err := s.orders.Release(ctx, orderID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order claim released")
	return nil
}

func (s *service) resolveForService(ctx context.Context, vendorID, serviceID uuid.UUID) (*vendors.ResolvedVendor, error) {
	resolved, err := s.vendors.Resolve(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if !resolved.Vendor.ServesService(serviceID) {
		return nil, pkgerrors.New(pkgerrors.CodeVendorNotActive, fmt.Sprintf("vendor %s does not serve this service", resolved.Vendor.Slug))
	}
	return resolved, nil
}

// resolveCommitted loads the order and the vendor it was dispatched to.
func (s *service) resolveCommitted(ctx context.Context, orderID uuid.UUID) (*models.Order, *vendors.ResolvedVendor, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.ServiceVendorID == nil || order.Vendor == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeOrderNotAssigned, "order has no committed vendor")
	}
	resolved, err := s.vendors.Resolve(ctx, *order.ServiceVendorID)
	if err != nil {
		return nil, nil, err
	}
	return order, resolved, nil
}

func (s *service) lockedError(order *models.Order) error {
	details := map[string]any{"order_id": order.ID}
	if order.AssignedUserID != nil {
		details["assigned_user_id"] = *order.AssignedUserID
	}
	return pkgerrors.New(pkgerrors.CodeOrderLocked, "order is locked by another user").WithDetails(details)
}

func supportsWalletVerification(adapter remit.Adapter) bool {
	_, ok := adapter.(remit.WalletVerifier)
	return ok
}
