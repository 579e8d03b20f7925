// Package assignvendor exposes the HTTP surface of the vendor assignment
// engine: claiming orders, quoting, dispatching, tracking, cancelling,
// amending, and releasing.
package assignvendor

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/remitkit/remitroute/api/middleware"
	"github.com/remitkit/remitroute/api/responses"
	"github.com/remitkit/remitroute/api/validators"
	"github.com/remitkit/remitroute/internal/assignment"
	"github.com/remitkit/remitroute/internal/vendors"
	"github.com/remitkit/remitroute/pkg/enums"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/remit"
)

// AvailableVendors claims the order for the caller and lists dispatchable vendors.
func AvailableVendors(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actorID, err := parseOrderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AvailableVendors(r.Context(), orderID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// Quote asks one vendor for charges without committing the order.
func Quote(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req vendorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, _ := uuid.Parse(req.VendorID)

		quote, err := svc.RequestQuote(r.Context(), orderID, vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// Process commits the order to the chosen vendor and submits the payout.
func Process(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actorID, err := parseOrderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req vendorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, _ := uuid.Parse(req.VendorID)

		dto, err := svc.ProcessOrder(r.Context(), orderID, vendorID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, dto)
	}
}

// Status asks the committed vendor where the payout stands.
func Status(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.OrderStatus(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// Cancel instructs the committed vendor to stop the payout.
func Cancel(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actorID, err := parseOrderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CancelOrder(r.Context(), orderID, actorID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Amend pushes changed payout details to the committed vendor.
func Amend(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, actorID, err := parseOrderAndActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req amendRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AmendOrder(r.Context(), orderID, actorID, req.toAmendment())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Release clears the claim and vendor commitment on an order.
func Release(svc assignment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReleaseOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "released"})
	}
}

// VerifyWallet validates a mobile wallet number with a vendor that supports it.
func VerifyWallet(resolver *vendors.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(r, "vendorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req walletRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		serviceType := enums.ServiceType(req.ServiceType)
		if !serviceType.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown service type"))
			return
		}

		resolved, err := resolver.Resolve(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		verifier, ok := resolved.Adapter.(remit.WalletVerifier)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not support wallet verification"))
			return
		}

		verdict, err := verifier.VerifyWallet(r.Context(), req.WalletNumber, serviceType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verdict)
	}
}

// Balance reports the prefunded balance held with a vendor.
func Balance(resolver *vendors.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := validators.ParsePathUUID(r, "vendorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolved, err := resolver.Resolve(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checker, ok := resolved.Adapter.(remit.BalanceChecker)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor does not expose balance"))
			return
		}

		balance, err := checker.Balance(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

func parseOrderAndActor(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	orderID, err := validators.ParsePathUUID(r, "orderID")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	actorID := middleware.ActorIDFromContext(r.Context())
	if actorID == uuid.Nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user id")
	}
	return orderID, actorID, nil
}
