package assignment

import (
	"github.com/google/uuid"

	"github.com/remitkit/remitroute/pkg/enums"
	"github.com/remitkit/remitroute/pkg/remit"
)

// VendorOption is one vendor an agent may dispatch a claimed order to.
type VendorOption struct {
	ID                 uuid.UUID `json:"id"`
	Slug               string    `json:"slug"`
	Name               string    `json:"name"`
	WalletVerification bool      `json:"wallet_verification"`
}

// AvailabilityDTO is the claim outcome plus the dispatchable vendors.
type AvailabilityDTO struct {
	OrderID uuid.UUID      `json:"order_id"`
	Vendors []VendorOption `json:"vendors"`
}

// DispatchDTO reports how a payout submission landed.
type DispatchDTO struct {
	OrderID   uuid.UUID              `json:"order_id"`
	Vendor    string                 `json:"vendor"`
	Status    enums.OrderStatus      `json:"status"`
	Reference string                 `json:"reference,omitempty"`
	Execution *remit.ExecutionResult `json:"execution"`
}
