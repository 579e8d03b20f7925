package enums

import "fmt"

// ServiceType identifies the money-transfer product an order was created under.
// Adapters branch on it to pick the vendor-side payment type code.
type ServiceType string

const (
	ServiceTypeBankTransfer        ServiceType = "bank_transfer"
	ServiceTypeInstantBankTransfer ServiceType = "instant_bank_transfer"
	ServiceTypeCashPickup          ServiceType = "cash_pickup"
	ServiceTypeWalletTransfer      ServiceType = "wallet_transfer"
	ServiceTypeMFSBkash            ServiceType = "mfs_bkash"
	ServiceTypeMFSNagad            ServiceType = "mfs_nagad"
	ServiceTypeMBSMCash            ServiceType = "mbs_m_cash"
	ServiceTypeRemittanceCard      ServiceType = "remittance_card"
)

var validServiceTypes = []ServiceType{
	ServiceTypeBankTransfer,
	ServiceTypeInstantBankTransfer,
	ServiceTypeCashPickup,
	ServiceTypeWalletTransfer,
	ServiceTypeMFSBkash,
	ServiceTypeMFSNagad,
	ServiceTypeMBSMCash,
	ServiceTypeRemittanceCard,
}

// String implements fmt.Stringer.
func (s ServiceType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceType.
func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsWallet reports whether the service pays out to a mobile wallet.
func (s ServiceType) IsWallet() bool {
	switch s {
	case ServiceTypeWalletTransfer, ServiceTypeMFSBkash, ServiceTypeMFSNagad, ServiceTypeMBSMCash:
		return true
	default:
		return false
	}
}

// ParseServiceType converts raw input into a ServiceType.
func ParseServiceType(value string) (ServiceType, error) {
	for _, candidate := range validServiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}
