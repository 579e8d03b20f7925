package assignvendor

import (
	"github.com/shopspring/decimal"

	"github.com/remitkit/remitroute/pkg/remit"
	"github.com/remitkit/remitroute/pkg/types"
)

type vendorRequest struct {
	VendorID string `json:"vendor_id" validate:"required,uuid"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type amendRequest struct {
	Beneficiary *beneficiaryPatch `json:"beneficiary,omitempty"`
	Bank        *bankPatch        `json:"bank,omitempty"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
	Reason      string            `json:"reason" validate:"omitempty,max=500"`
}

type beneficiaryPatch struct {
	FullName      string `json:"full_name" validate:"required,min=2,max=120"`
	Address       string `json:"address,omitempty" validate:"omitempty,max=250"`
	Mobile        string `json:"mobile,omitempty" validate:"omitempty,max=30"`
	AccountNumber string `json:"account_number,omitempty" validate:"omitempty,max=40"`
}

type bankPatch struct {
	BankName      string `json:"bank_name,omitempty" validate:"omitempty,max=120"`
	BankCode      string `json:"bank_code,omitempty" validate:"omitempty,max=20"`
	BranchName    string `json:"branch_name,omitempty" validate:"omitempty,max=120"`
	BranchCode    string `json:"branch_code,omitempty" validate:"omitempty,max=20"`
	RoutingNumber string `json:"routing_number,omitempty" validate:"omitempty,max=20"`
}

type walletRequest struct {
	WalletNumber string `json:"wallet_number" validate:"required,min=5,max=30"`
	ServiceType  string `json:"service_type" validate:"required"`
}

func (r amendRequest) toAmendment() remit.Amendment {
	amendment := remit.Amendment{Amount: r.Amount, Reason: r.Reason}
	if r.Beneficiary != nil {
		amendment.Beneficiary = &types.Beneficiary{
			FullName:      r.Beneficiary.FullName,
			Address:       r.Beneficiary.Address,
			Mobile:        r.Beneficiary.Mobile,
			AccountNumber: r.Beneficiary.AccountNumber,
		}
	}
	if r.Bank != nil {
		amendment.Bank = &types.BankDetails{
			BankName:      r.Bank.BankName,
			BankCode:      r.Bank.BankCode,
			BranchName:    r.Bank.BranchName,
			BranchCode:    r.Bank.BranchCode,
			RoutingNumber: r.Bank.RoutingNumber,
		}
	}
	return amendment
}
