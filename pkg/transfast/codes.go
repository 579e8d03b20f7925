package transfast

import "github.com/remitkit/remitroute/pkg/remit"

// Transaction status values the partner API reports. Anything outside this
// table is treated as an integration fault, not a payout state.
var statusStates = map[string]remit.State{
	"RECEIVED":    remit.StateProcessing,
	"IN_PROCESS":  remit.StateProcessing,
	"AVAILABLE":   remit.StateProcessing,
	"HOLD":        remit.StateProcessing,
	"PAID":        remit.StateSuccessful,
	"CREDITED":    remit.StateSuccessful,
	"CANCELLED":   remit.StateCancelled,
	"REFUNDED":    remit.StateCancelled,
	"REJECTED":    remit.StateFailed,
	"COMPLIANCE":  remit.StateFailed,
	"UNAVAILABLE": remit.StateFailed,
}

// StatusState resolves a partner status value to a normalized state.
func StatusState(status string) (remit.State, bool) {
	state, ok := statusStates[status]
	return state, ok
}
