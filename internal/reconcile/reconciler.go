// Package reconcile drives dispatched orders to their settled state by
// polling vendors for the authoritative payout status.
package reconcile

import (
	"context"

	"github.com/google/uuid"

	"github.com/remitkit/remitroute/internal/vendors"
	"github.com/remitkit/remitroute/pkg/db/models"
	"github.com/remitkit/remitroute/pkg/enums"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/metrics"
	"github.com/remitkit/remitroute/pkg/remit"
	"github.com/remitkit/remitroute/pkg/types"
)

// OrderStore is the slice of order persistence reconciliation needs.
type OrderStore interface {
	Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListQueued(ctx context.Context, limit int) ([]models.Order, error)
	Update(ctx context.Context, orderID uuid.UUID, fields map[string]any) error
}

// SlugResolver resolves the vendor an order was dispatched to.
type SlugResolver interface {
	ResolveSlug(ctx context.Context, slug string) (*vendors.ResolvedVendor, error)
}

// Summary reports what a reconcile pass did.
type Summary struct {
	Polled   int
	Settled  int
	Pending  int
	Failures int
}

// Reconciler polls vendors for queued orders and applies the answers.
type Reconciler struct {
	orders  OrderStore
	vendors SlugResolver
	logg    *logger.Logger
	metrics *metrics.ReconcileMetrics
}

// ReconcilerParams groups dependencies for the reconciler.
type ReconcilerParams struct {
	Orders  OrderStore
	Vendors SlugResolver
	Logger  *logger.Logger
	Metrics *metrics.ReconcileMetrics
}

// NewReconciler builds a reconciler with the required dependencies.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order store is required")
	}
	if params.Vendors == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor resolver is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Reconciler{
		orders:  params.Orders,
		vendors: params.Vendors,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Run performs one reconcile pass over at most batchSize queued orders.
// Each order gets a single status attempt per pass. A failed attempt,
// vendor unreachable included, parks the order in admin verification so it
// surfaces for review instead of silently retrying forever. Only a clean
// in-flight answer keeps the order queued for the next pass.
func (r *Reconciler) Run(ctx context.Context, batchSize int) (*Summary, error) {
	queued, err := r.orders.ListQueued(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Polled: len(queued)}
	for i := range queued {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		r.reconcileOne(ctx, &queued[i], summary)
	}
	return summary, nil
}

// Reconcile runs a single status attempt for one order, letting an external
// scheduler drive orders individually. The attempt settles or parks the
// order exactly as a batch pass would.
func (r *Reconciler) Reconcile(ctx context.Context, orderID uuid.UUID) error {
	order, err := r.orders.Find(ctx, orderID)
	if err != nil {
		return err
	}
	summary := &Summary{Polled: 1}
	r.reconcileOne(ctx, order, summary)
	return nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, order *models.Order, summary *Summary) {
	ctx = r.logg.WithOrderID(ctx, order.ID.String())

	if order.Vendor == nil {
		// queued without a vendor should not happen, park it for review
		summary.Failures++
		r.logg.Warn(ctx, "queued order has no vendor, moving to admin verification")
		r.park(ctx, order, "queued without a committed vendor")
		return
	}

	ctx = r.logg.WithVendor(ctx, *order.Vendor)
	resolved, err := r.vendors.ResolveSlug(ctx, *order.Vendor)
	if err != nil {
		summary.Failures++
		r.metrics.IncOutcome(*order.Vendor, "resolve_failed")
		r.logg.Error(ctx, "resolving vendor for queued order", err)
		r.park(ctx, order, err.Error())
		return
	}

	result, err := resolved.Adapter.OrderStatus(ctx, order)
	if err != nil {
		summary.Failures++
		r.metrics.IncOutcome(*order.Vendor, "status_failed")
		r.logg.Error(ctx, "vendor status inquiry failed, parking order for review", err)
		r.park(ctx, order, err.Error())
		return
	}

	data := order.OrderData
	data.RecordInteraction(types.VendorInteraction{
		Vendor:     *order.Vendor,
		Operation:  "status",
		StatusCode: result.VendorCode,
		Message:    result.Message,
		Raw:        result.Raw,
	})

	fields := map[string]any{"order_data": data}
	switch result.State {
	case remit.StateProcessing, remit.StatePending:
		summary.Pending++
		r.metrics.IncOutcome(*order.Vendor, "pending")
	default:
		data.Queued = false
		fields["order_data"] = data
		status := result.State.OrderStatus()
		fields["status"] = string(status)
		if result.State == remit.StateFailed {
			fields["notes"] = result.Message
		}
		summary.Settled++
		r.metrics.IncOutcome(*order.Vendor, string(result.State))
		r.logg.Info(r.logg.WithField(ctx, "order_status", string(status)), "order settled by vendor status")
	}

	if err := r.orders.Update(ctx, order.ID, fields); err != nil {
		summary.Failures++
		r.logg.Error(ctx, "persisting reconciled order", err)
	}
}

// park moves an unreconcilable order out of the queue for operator review.
func (r *Reconciler) park(ctx context.Context, order *models.Order, note string) {
	data := order.OrderData
	data.Queued = false
	err := r.orders.Update(ctx, order.ID, map[string]any{
		"order_data": data,
		"status":     string(enums.OrderStatusAdminVerification),
		"notes":      note,
	})
	if err != nil {
		r.logg.Error(ctx, "parking order for review", err)
	}
}
