// Package islamibank implements the payout adapter for Islami Bank
// Bangladesh's SOAP remittance gateway.
package islamibank

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db/models"
	"github.com/remitkit/remitroute/pkg/enums"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/remit"
)

// Slug identifies the vendor in the adapter registry and on orders.
const Slug = "islami_bank"

const (
	methodDirectCredit   = "directCreditWSMessage"
	methodStatus         = "fetchWSMessageStatus"
	methodCancel         = "cancelWSMessage"
	methodAmend          = "amendWSMessage"
	methodValidateWallet = "validateBeneficiaryWallet"
	methodBalance        = "fetchBalance"
	methodAccountDetail  = "fetchAccountDetail"
)

// paymentTypes maps service types to the bank's instrument codes.
// Anything unmapped goes out over BEFTN to the receiving bank.
var paymentTypes = map[enums.ServiceType]string{
	enums.ServiceTypeBankTransfer:        "2",
	enums.ServiceTypeInstantBankTransfer: "1",
	enums.ServiceTypeCashPickup:          "1",
	enums.ServiceTypeRemittanceCard:      "4",
	enums.ServiceTypeMBSMCash:            "5",
	enums.ServiceTypeMFSBkash:            "7",
	enums.ServiceTypeMFSNagad:            "8",
}

const defaultPaymentType = "3"

// remittance card accounts use the bank's fixed account type code
const remittanceCardAccType = "71"

var (
	errEndpointRequired    = errors.New("islamibank endpoint is required")
	errCredentialsRequired = errors.New("islamibank credentials are required")
	errLoggerRequired      = errors.New("islamibank logger is required")
)

// Adapter speaks the bank's SOAP gateway on behalf of the dispatch engine.
type Adapter struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
	logger     *logger.Logger
}

// New validates the vendor registration and returns a ready adapter.
func New(cfg config.IslamiBankConfig, logg *logger.Logger) (*Adapter, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	endpoint := strings.TrimSpace(cfg.Endpoint())
	if endpoint == "" {
		return nil, errEndpointRequired
	}
	username, password := cfg.Credentials()
	if username == "" || password == "" {
		return nil, errCredentialsRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Adapter{
		endpoint:   endpoint,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logg,
	}, nil
}

// Name returns the vendor slug.
func (a *Adapter) Name() string { return Slug }

func (a *Adapter) authFields() []field {
	return []field{
		{Name: "userID", Value: a.username},
		{Name: "password", Value: a.password},
	}
}

// RequestQuote is unsupported, the gateway publishes no quotation
// operation. Charges are settled against the prefunded NRT account.
func (a *Adapter) RequestQuote(ctx context.Context, order *models.Order) (*remit.QuoteResult, error) {
	return nil, remit.ErrNotSupported
}

// ExecuteOrder submits the payout as a direct credit message. An accepted
// message stays in processing until the status inquiry reports settlement.
func (a *Adapter) ExecuteOrder(ctx context.Context, order *models.Order) (*remit.ExecutionResult, error) {
	ref := remit.TransactionRef(order)
	envelope := buildMessageEnvelope(methodDirectCredit, a.authFields(), a.transferFields(order, ref))

	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)
	rep, err := a.call(ctx, methodDirectCredit, envelope)
	if err != nil {
		return nil, a.commError(ctx, methodDirectCredit, err)
	}

	msg, known := CodeMessage(rep.Code)
	if !known {
		return nil, a.unknownCode(ctx, methodDirectCredit, rep)
	}

	result := &remit.ExecutionResult{
		Reference:  ref,
		VendorCode: rep.Code,
		Message:    msg,
		Raw:        rep.Raw,
	}
	if rep.OK {
		result.State = remit.StateProcessing
	} else {
		result.State = remit.StateFailed
	}
	return result, nil
}

// OrderStatus asks the gateway where the remittance stands.
func (a *Adapter) OrderStatus(ctx context.Context, order *models.Order) (*remit.StatusResult, error) {
	ref := remit.TransactionRef(order)
	fields := append(a.authFields(),
		field{Name: "transRefNo", Value: ref},
		field{Name: "secretKey", Value: ref},
	)
	envelope := buildEnvelope(methodStatus, fields)

	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)
	rep, err := a.call(ctx, methodStatus, envelope)
	if err != nil {
		return nil, a.commError(ctx, methodStatus, err)
	}

	if !rep.OK {
		msg, known := CodeMessage(rep.Code)
		if !known {
			return nil, a.unknownCode(ctx, methodStatus, rep)
		}
		return &remit.StatusResult{
			State:      remit.StateFailed,
			VendorCode: rep.Code,
			Message:    msg,
			Raw:        rep.Raw,
		}, nil
	}

	state, known := StatusState(rep.Code)
	if !known {
		return nil, a.unknownCode(ctx, methodStatus, rep)
	}
	msg, _ := StatusMessage(rep.Code)
	return &remit.StatusResult{
		State:      state,
		VendorCode: rep.Code,
		Message:    msg,
		Raw:        rep.Raw,
	}, nil
}

// CancelOrder files a stop request for an in-flight remittance.
func (a *Adapter) CancelOrder(ctx context.Context, order *models.Order, reason string) (*remit.Result, error) {
	ref := remit.TransactionRef(order)
	note := strings.TrimSpace(reason)
	if note == "" {
		note = placeholder
	}
	fields := append(a.authFields(),
		field{Name: "transRefNo", Value: ref},
		field{Name: "secretKey", Value: ref},
		field{Name: "note", Value: note},
	)
	envelope := buildEnvelope(methodCancel, fields)

	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)
	rep, err := a.call(ctx, methodCancel, envelope)
	if err != nil {
		return nil, a.commError(ctx, methodCancel, err)
	}

	msg, known := CodeMessage(rep.Code)
	if !known {
		return nil, a.unknownCode(ctx, methodCancel, rep)
	}

	result := &remit.Result{
		Accepted:   rep.OK,
		VendorCode: rep.Code,
		Message:    msg,
		Raw:        rep.Raw,
	}
	if rep.OK {
		result.State = remit.StateCancelled
	} else {
		result.State = remit.StateProcessing
	}
	return result, nil
}

// AmendOrder files an amendment carrying only the changed fields.
func (a *Adapter) AmendOrder(ctx context.Context, order *models.Order, amendment remit.Amendment) (*remit.Result, error) {
	if amendment.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amendment carries no changes")
	}

	ref := remit.TransactionRef(order)
	message := []field{
		{Name: "transReferenceNo", Value: ref, Bean: true},
		{Name: "secretKey", Value: ref, Bean: true},
	}
	if amendment.Amount != nil {
		message = append(message, field{Name: "amount", Value: amendment.Amount.StringFixed(2), Bean: true})
	}
	if b := amendment.Beneficiary; b != nil {
		message = append(message,
			field{Name: "beneficiaryName", Value: orPlaceholder(b.FullName), Bean: true},
			field{Name: "beneficiaryPhoneNo", Value: orPlaceholder(b.Mobile), Bean: true},
			field{Name: "beneficiaryAccNo", Value: orPlaceholder(b.AccountNumber), Bean: true},
		)
	}
	if bank := amendment.Bank; bank != nil {
		message = append(message,
			field{Name: "beneficiaryBankName", Value: orPlaceholder(bank.BankName), Bean: true},
			field{Name: "beneficiaryBranchCode", Value: orPlaceholder(bank.BranchCode), Bean: true},
			field{Name: "beneficiaryRoutingNo", Value: orPlaceholder(bank.RoutingNumber), Bean: true},
		)
	}
	if reason := strings.TrimSpace(amendment.Reason); reason != "" {
		message = append(message, field{Name: "note", Value: reason, Bean: true})
	}
	envelope := buildMessageEnvelope(methodAmend, a.authFields(), message)

	ctx = a.logger.WithVendor(a.logger.WithOrderID(ctx, order.ID.String()), Slug)
	rep, err := a.call(ctx, methodAmend, envelope)
	if err != nil {
		return nil, a.commError(ctx, methodAmend, err)
	}

	msg, known := CodeMessage(rep.Code)
	if !known {
		return nil, a.unknownCode(ctx, methodAmend, rep)
	}
	return &remit.Result{
		Accepted:   rep.OK,
		State:      remit.StateProcessing,
		VendorCode: rep.Code,
		Message:    msg,
		Raw:        rep.Raw,
	}, nil
}

// VerifyWallet validates a mobile wallet number before dispatch.
func (a *Adapter) VerifyWallet(ctx context.Context, walletNumber string, serviceType enums.ServiceType) (*remit.Verdict, error) {
	fields := append(a.authFields(),
		field{Name: "walletNo", Value: walletNumber},
		field{Name: "paymentType", Value: paymentTypeFor(serviceType)},
	)
	envelope := buildEnvelope(methodValidateWallet, fields)

	ctx = a.logger.WithVendor(ctx, Slug)
	rep, err := a.call(ctx, methodValidateWallet, envelope)
	if err != nil {
		return nil, a.commError(ctx, methodValidateWallet, err)
	}

	msg, known := CodeMessage(rep.Code)
	if !known {
		return nil, a.unknownCode(ctx, methodValidateWallet, rep)
	}

	verdict := &remit.Verdict{
		Valid:      rep.OK,
		VendorCode: rep.Code,
		Message:    msg,
		Raw:        rep.Raw,
	}
	if rep.OK && len(rep.Fields) > 2 {
		verdict.AccountTitle = rep.Fields[1]
	}
	return verdict, nil
}

// Balance fetches the prefunded exchange house account balance.
func (a *Adapter) Balance(ctx context.Context) (*remit.BalanceResult, error) {
	const currency = "BDT"
	fields := append(a.authFields(), field{Name: "currency", Value: currency})
	envelope := buildEnvelope(methodBalance, fields)

	ctx = a.logger.WithVendor(ctx, Slug)
	rep, err := a.call(ctx, methodBalance, envelope)
	if err != nil {
		return nil, a.commError(ctx, methodBalance, err)
	}

	if !rep.OK {
		msg, known := CodeMessage(rep.Code)
		if !known {
			return nil, a.unknownCode(ctx, methodBalance, rep)
		}
		return nil, pkgerrors.New(pkgerrors.CodeVendorComm, fmt.Sprintf("balance inquiry rejected: %s", msg)).
			WithDetails(map[string]any{"vendor_code": rep.Code})
	}

	available, err := decimal.NewFromString(rep.Fields[1])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnknownVendorCode, err, "unparseable balance figure")
	}
	return &remit.BalanceResult{
		Available: available,
		Currency:  currency,
		Raw:       rep.Raw,
	}, nil
}

// AccountDetail resolves the full account number and title for a
// beneficiary account, needed before direct crediting IBBL accounts.
func (a *Adapter) AccountDetail(ctx context.Context, accountNumber, accountType, branchCode string) (string, string, error) {
	fields := append(a.authFields(),
		field{Name: "accNo", Value: accountNumber},
		field{Name: "accType", Value: accountType},
		field{Name: "branchCode", Value: branchCode},
	)
	envelope := buildEnvelope(methodAccountDetail, fields)

	ctx = a.logger.WithVendor(ctx, Slug)
	rep, err := a.call(ctx, methodAccountDetail, envelope)
	if err != nil {
		return "", "", a.commError(ctx, methodAccountDetail, err)
	}
	if !rep.OK {
		msg, known := CodeMessage(rep.Code)
		if !known {
			return "", "", a.unknownCode(ctx, methodAccountDetail, rep)
		}
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, msg).
			WithDetails(map[string]any{"vendor_code": rep.Code})
	}
	if len(rep.Fields) < 3 {
		return "", "", a.unknownCode(ctx, methodAccountDetail, rep)
	}
	return rep.Fields[1], rep.Fields[2], nil
}

// transferFields assembles the wsMessage body for a direct credit.
func (a *Adapter) transferFields(order *models.Order, ref string) []field {
	data := order.OrderData
	ben := data.Beneficiary
	sender := data.Sender

	accNo := ben.AccountNumber
	accType := placeholder
	routingNo := placeholder
	bankCode := placeholder
	bankName := placeholder
	branchCode := placeholder
	branchName := placeholder

	if bank := data.Bank; bank != nil {
		bankCode = orPlaceholder(bank.BankCode)
		bankName = orPlaceholder(bank.BankName)
		branchName = orPlaceholder(bank.BranchName)
	}

	switch order.ServiceType {
	case enums.ServiceTypeMBSMCash, enums.ServiceTypeMFSBkash, enums.ServiceTypeMFSNagad, enums.ServiceTypeWalletTransfer:
		accNo = ben.WalletNumber
	case enums.ServiceTypeRemittanceCard:
		accType = remittanceCardAccType
	case enums.ServiceTypeCashPickup:
		accNo = ""
	case enums.ServiceTypeBankTransfer, enums.ServiceTypeInstantBankTransfer:
		accType = orPlaceholder(ben.AccountType)
		if bank := data.Bank; bank != nil {
			branchCode = orPlaceholder(bank.BranchCode)
			routingNo = orPlaceholder(bank.RoutingNumber)
		}
	}

	remitterPassport := placeholder
	remitterIdentification := placeholder
	if strings.EqualFold(sender.IDType, "passport") {
		remitterPassport = orPlaceholder(sender.IDNumber)
	} else {
		remitterIdentification = orPlaceholder(sender.IDNumber)
	}

	beneficiaryAddress := strings.TrimLeft(ben.City+","+ben.CountryISO2, ",")

	fields := []field{
		{Name: "amount", Value: order.Amount.StringFixed(2), Bean: true},
		{Name: "isoCode", Value: order.Currency.String(), Bean: true},
		{Name: "batchID", Value: placeholder, Bean: true},
		{Name: "beneficiaryAccNo", Value: accNo, Bean: true},
		{Name: "beneficiaryAccType", Value: accType, Bean: true},
		{Name: "beneficiaryAddress", Value: orPlaceholder(beneficiaryAddress), Bean: true},
		{Name: "beneficiaryBankCode", Value: bankCode, Bean: true},
		{Name: "beneficiaryBankName", Value: bankName, Bean: true},
		{Name: "beneficiaryBranchCode", Value: branchCode, Bean: true},
		{Name: "beneficiaryBranchName", Value: branchName, Bean: true},
		{Name: "beneficiaryName", Value: orPlaceholder(ben.FullName), Bean: true},
		{Name: "beneficiaryPassportNo", Value: placeholder, Bean: true},
		{Name: "beneficiaryPhoneNo", Value: orPlaceholder(ben.Mobile), Bean: true},
		{Name: "beneficiaryRoutingNo", Value: routingNo, Bean: true},
		{Name: "exHouseTxID", Value: placeholder, Bean: true},
		{Name: "exchHouseBranchCode", Value: placeholder, Bean: true},
		{Name: "exchHouseSwiftCode", Value: placeholder, Bean: true},
		{Name: "identityDescription", Value: placeholder, Bean: true},
		{Name: "identityType", Value: orPlaceholder(sender.IDType), Bean: true},
		{Name: "issueDate", Value: order.CreatedAt.UTC().Format(dateLayout), Bean: true},
		{Name: "note", Value: placeholder, Bean: true},
		{Name: "orderNo", Value: order.OrderNumber, Bean: true},
		{Name: "paymentType", Value: paymentTypeFor(order.ServiceType), Bean: true},
		{Name: "remittancePurpose", Value: orPlaceholder(data.PurposeOfRemittance), Bean: true},
		{Name: "remitterAddress", Value: orPlaceholder(sender.Address), Bean: true},
		{Name: "remitterCountry", Value: orPlaceholder(sender.CountryISO2), Bean: true},
		{Name: "remitterIdentificationNo", Value: remitterIdentification, Bean: true},
		{Name: "remitterName", Value: orPlaceholder(sender.FullName), Bean: true},
		{Name: "remitterPassportNo", Value: remitterPassport, Bean: true},
		{Name: "remitterPhoneNo", Value: orPlaceholder(sender.Mobile), Bean: true},
		{Name: "secretKey", Value: ref, Bean: true},
		{Name: "transReferenceNo", Value: ref, Bean: true},
	}
	return fields
}

func paymentTypeFor(serviceType enums.ServiceType) string {
	if code, ok := paymentTypes[serviceType]; ok {
		return code
	}
	return defaultPaymentType
}

func orPlaceholder(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return placeholder
	}
	return v
}

func (a *Adapter) commError(ctx context.Context, method string, err error) error {
	a.logger.Error(ctx, "islamibank call failed", err)
	return pkgerrors.Wrap(pkgerrors.CodeVendorComm, err, fmt.Sprintf("islamibank %s failed", method))
}

func (a *Adapter) unknownCode(ctx context.Context, method string, rep *reply) error {
	err := pkgerrors.New(pkgerrors.CodeUnknownVendorCode, fmt.Sprintf("islamibank %s returned unrecognized code %q", method, rep.Code)).
		WithDetails(map[string]any{"vendor_code": rep.Code, "raw": rep.Raw})
	a.logger.Error(ctx, "islamibank unrecognized response code", err)
	return err
}
