package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Beneficiary describes the receiving party of a remittance order.
type Beneficiary struct {
	FirstName     string `json:"beneficiary_first_name,omitempty"`
	LastName      string `json:"beneficiary_last_name,omitempty"`
	FullName      string `json:"beneficiary_name,omitempty"`
	Mobile        string `json:"beneficiary_mobile,omitempty"`
	Address       string `json:"beneficiary_address,omitempty"`
	City          string `json:"beneficiary_city,omitempty"`
	CountryISO2   string `json:"beneficiary_country,omitempty"`
	AccountNumber string `json:"beneficiary_account_number,omitempty"`
	AccountType   string `json:"beneficiary_account_type,omitempty"`
	WalletNumber  string `json:"beneficiary_wallet_number,omitempty"`
	IDType        string `json:"beneficiary_id_type,omitempty"`
	IDNumber      string `json:"beneficiary_id_number,omitempty"`
}

// Sender describes the remitting party of a remittance order.
type Sender struct {
	FullName    string `json:"sender_name,omitempty"`
	Mobile      string `json:"sender_mobile,omitempty"`
	Address     string `json:"sender_address,omitempty"`
	City        string `json:"sender_city,omitempty"`
	CountryISO2 string `json:"sender_country,omitempty"`
	IDType      string `json:"sender_id_type,omitempty"`
	IDNumber    string `json:"sender_id_number,omitempty"`
	DateOfBirth string `json:"sender_date_of_birth,omitempty"`
}

// BankDetails identifies the receiving bank and branch for account payouts.
type BankDetails struct {
	BankName      string `json:"bank_name,omitempty"`
	BankSlug      string `json:"bank_slug,omitempty"`
	BankCode      string `json:"bank_code,omitempty"`
	BranchName    string `json:"branch_name,omitempty"`
	BranchCode    string `json:"branch_code,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
}

// VendorInteraction records a single raw exchange with a vendor API. The
// engine appends one per dispatch call so the order carries its own audit
// trail of what each vendor actually returned.
type VendorInteraction struct {
	Vendor     string    `json:"vendor"`
	Operation  string    `json:"operation"`
	Reference  string    `json:"reference,omitempty"`
	StatusCode string    `json:"status_code,omitempty"`
	Message    string    `json:"message,omitempty"`
	Raw        string    `json:"raw,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// OrderData is the structured payload stored alongside every remittance
// order. It replaces free-form key/value blobs with a fixed schema the
// vendor adapters can rely on.
type OrderData struct {
	Queued              bool                `json:"queued"`
	PurposeOfRemittance string              `json:"purpose_of_remittance,omitempty"`
	SourceOfFund        string              `json:"source_of_fund,omitempty"`
	Beneficiary         Beneficiary         `json:"beneficiary"`
	Sender              Sender              `json:"sender"`
	Bank                *BankDetails        `json:"bank,omitempty"`
	Interactions        []VendorInteraction `json:"vendor_interactions,omitempty"`
}

// RecordInteraction appends an audit entry for a vendor exchange.
func (d *OrderData) RecordInteraction(entry VendorInteraction) {
	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = time.Now().UTC()
	}
	d.Interactions = append(d.Interactions, entry)
}

// Scan and Value make OrderData storable as a jsonb column from both
// struct writes and map-based Updates.
func (d *OrderData) Scan(src any) error {
	if src == nil {
		*d = OrderData{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("OrderData: unsupported Scan type %T", src)
	}
}

func (d OrderData) Value() (driver.Value, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("OrderData: %w", err)
	}
	return string(raw), nil
}
