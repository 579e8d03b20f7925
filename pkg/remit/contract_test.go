package remit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/remitkit/remitroute/pkg/db/models"
	"github.com/remitkit/remitroute/pkg/enums"
)

func TestStateOrderStatus(t *testing.T) {
	cases := []struct {
		state State
		want  enums.OrderStatus
	}{
		{StateSuccessful, enums.OrderStatusSuccessful},
		{StateCancelled, enums.OrderStatusCancelled},
		{StateFailed, enums.OrderStatusAdminVerification},
		{StateProcessing, enums.OrderStatusProcessing},
		{StatePending, enums.OrderStatusPending},
		{State("unknown"), enums.OrderStatusPending},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.state.OrderStatus(), "state %s", tc.state)
	}
}

func TestTransactionRef(t *testing.T) {
	assert.Equal(t, "", TransactionRef(nil))

	order := &models.Order{OrderNumber: " rr-20250901-0001 "}
	assert.Equal(t, "RR-20250901-0001", TransactionRef(order))
	assert.Equal(t, "RR-20250901-0001-CXL", ChildRef(order, "cxl"))
	assert.Equal(t, "RR-20250901-0001", ChildRef(order, ""))
}

func TestAmendmentEmpty(t *testing.T) {
	assert.True(t, Amendment{Reason: "typo"}.Empty())

	amount := decimal.NewFromInt(100)
	assert.False(t, Amendment{Amount: &amount}.Empty())
}
