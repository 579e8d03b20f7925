package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/remitkit/remitroute/pkg/enums"
	"github.com/remitkit/remitroute/pkg/types"
)

// Order is a remittance order flowing through vendor assignment and dispatch.
//
// AssignedUserID is the claim column: a non-nil value means that user owns
// the order exclusively until it is released. Vendor and ServiceVendorID are
// written together when a dispatch commits.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex"`
	ServiceID       uuid.UUID         `gorm:"column:service_id;type:uuid;not null"`
	ServiceType     enums.ServiceType `gorm:"column:service_type;type:text;not null"`
	AssignedUserID  *uuid.UUID        `gorm:"column:assigned_user_id;type:uuid"`
	ServiceVendorID *uuid.UUID        `gorm:"column:service_vendor_id;type:uuid"`
	Vendor          *string           `gorm:"column:vendor"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount          decimal.Decimal   `gorm:"column:amount;type:numeric(18,4);not null"`
	Currency        enums.Currency    `gorm:"column:currency;type:text;not null"`
	SourceCountry   string            `gorm:"column:source_country;type:text;not null"`
	DestCountry     string            `gorm:"column:dest_country;type:text;not null"`
	OrderData       types.OrderData   `gorm:"column:order_data;type:jsonb"`
	Notes           *string           `gorm:"column:notes"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// Assigned reports whether any user currently holds the order claim.
func (o Order) Assigned() bool {
	return o.AssignedUserID != nil
}

// AssignedTo reports whether the given user holds the order claim.
func (o Order) AssignedTo(userID uuid.UUID) bool {
	return o.AssignedUserID != nil && *o.AssignedUserID == userID
}
