package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/remitkit/remitroute/pkg/db/types"
)

// ServiceVendor is a payout vendor registered for one or more services.
// Slug is the stable identifier the adapter registry keys on.
type ServiceVendor struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug       string             `gorm:"column:slug;not null;uniqueIndex"`
	Name       string             `gorm:"column:name;not null"`
	Enabled    bool               `gorm:"column:enabled;not null;default:false"`
	ServiceIDs dbtypes.UUIDArray  `gorm:"column:service_ids;type:uuid[]"`
	Countries  dbtypes.StringList `gorm:"column:countries;type:jsonb"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (ServiceVendor) TableName() string { return "service_vendors" }

// ServesService reports whether the vendor is registered for the service.
func (v ServiceVendor) ServesService(serviceID uuid.UUID) bool {
	return v.ServiceIDs.Contains(serviceID)
}
