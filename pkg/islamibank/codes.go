package islamibank

import "github.com/remitkit/remitroute/pkg/remit"

// responseCodes are returned by every operation. The bank reports the code
// as the last pipe-delimited field of the body.
var responseCodes = map[string]string{
	"1000": "ERROR OTHERS",
	"1001": "TRANSACTION REF INVALID",
	"1002": "AMOUNT INVALID",
	"1003": "ISO CODE INVALID",
	"1004": "SWIFT CODE INVALID",
	"1005": "NOTE INVALID",
	"1006": "SECRET KEY INVALID",
	"1007": "PAYMENT TYPE INVALID",
	"1008": "IDENTITY TYPE INVALID",
	"1009": "IDENTITY DESCRIPTION INVALID",
	"1010": "EXCHANGE BR CODE INVALID",
	"1011": "ISSUE DATE INVALID",
	"1101": "TRANSACTION REF MISSING",
	"1102": "AMOUNT MISSING",
	"1103": "CURRENCY MISSING",
	"1104": "SWIFT CODE MISSING",
	"1105": "NOTE MISSING",
	"1106": "SECRET KEY MISSING",
	"1107": "PAYMENT TYPE MISSING",
	"1108": "IDENTITY TYPE MISSING",
	"1109": "IDENTITY DESCRIPTION MISSING",
	"1110": "EXCHANGE BR CODE MISSING",
	"1111": "ISSUE DATE MISSING",
	"1201": "BENEFICIARY ACC NO NOT APPLICABLE",
	"1202": "BENEFICIARY ROUTING NO NOT APPLICABLE",
	"1301": "BENEFICIARY ACC NO NOT FOUND",
	"2001": "REMITTER NAME INVALID",
	"2002": "REMITTER IDENTIFICATION NO INVALID",
	"2003": "REMITTER PHONE NO INVALID",
	"2004": "REMITTER ADDRESS INVALID",
	"2101": "REMITTER NAME MISSING",
	"2102": "REMITTER IDENTIFICATION NO MISSING",
	"2103": "REMITTER PHONE NO MISSING",
	"2104": "REMITTER ADDRESS MISSING",
	"3001": "BENEFICIARY NAME INVALID",
	"3002": "BENEFICIARY PASSPORT INVALID",
	"3003": "BENEFICIARY PHONE INVALID",
	"3004": "BENEFICIARY ADDRESS INVALID",
	"3005": "BENEFICIARY ACC NO INVALID",
	"3006": "BENEFICIARY ACC TYPE INVALID",
	"3007": "BENEFICIARY BANK CODE INVALID",
	"3008": "BENEFICIARY BANK NAME INVALID",
	"3009": "BENEFICIARY BRANCH CODE INVALID",
	"3010": "BENEFICIARY BRANCH NAME INVALID",
	"3011": "BENEFICIARY ROUTING NO INVALID",
	"3101": "BENEFICIARY NAME MISSING",
	"3102": "BENEFICIARY PASSPORT MISSING",
	"3103": "BENEFICIARY PHONE MISSING",
	"3104": "BENEFICIARY ADDRESS MISSING",
	"3105": "BENEFICIARY ACC NO MISSING",
	"3106": "BENEFICIARY ACC TYPE MISSING",
	"3107": "BENEFICIARY BANK CODE MISSING",
	"3108": "BENEFICIARY BANK NAME MISSING",
	"3109": "BENEFICIARY BRANCH CODE MISSING",
	"3110": "BENEFICIARY BRANCH NAME MISSING",
	"3111": "BENEFICIARY ROUTING NO MISSING",
	"3112": "BENEFICIARY CARD NO MISSING",
	"3113": "BENEFICIARY WALLET ACC NO MISSING",
	"3114": "BENEFICIARY ACC NO LENGTH INVALID",
	"5001": "REMITTANCE ALREADY IMPORTED",
	"5002": "REMITTANCE VERIFIED SUCCESSFULLY",
	"5003": "REMITTANCE SUCCESS",
	"5004": "REMITTANCE FAILED",
	"5005": "REMITTANCE SKIPPED",
	"5006": "REMITTANCE NOT_FOUND",
	"5007": "REMITTANCE IS ENQUEUED",
	"6001": "INSUFFICIENT BALANCE",
	"6002": "ACCOUNT NAME AND ACCOUNT NO. DIFFER",
	"6003": "FIELD LENGTH INVALID",
	"6004": "ACCOUNT NO. NOT FOUND",
	"7001": "USER NAME OR PASSWORD IS MISSING",
	"7002": "USER NAME OR PASSWORD IS INVALID",
	"7003": "USER IS BLOCKED",
	"7004": "USER IS INACTIVE",
	"7005": "USER IS DEAD (PERMANENTLY BLOCKED)",
}

// statusCodes are returned only by the remittance status inquiry.
var statusCodes = map[string]string{
	"01": "REMITTANCE ISSUED",
	"02": "REMITTANCE TRANSFERRED/AUTHORIZED BY EXCHANGE HOUSE",
	"03": "REMITTANCE READY FOR PAYMENT",
	"04": "REMITTANCE UNDER PROCESS",
	"05": "REMITTANCE STOPPED",
	"06": "REMITTANCE STOPPED BY EXCHANGE HOUSE",
	"07": "REMITTANCE PAID",
	"08": "REMITTANCE AMENDED",
	"11": "REMITTANCE CANCELLED",
	"17": "REMITTANCE REVERSED",
	"20": "REMITTANCE CANCEL REQUEST",
	"30": "REMITTANCE AMENDMENT REQUEST",
	"70": "REMITTANCE CBS UNDER PROCESS",
	"73": "REMITTANCE CBS AUTHORIZED",
	"74": "REMITTANCE CBS PENDING",
	"77": "REMITTANCE CBS NRT ACCOUNT DEBITED",
	"78": "REMITTANCE CBS READY FOR PAYMENT",
	"79": "REMITTANCE CBS CREDITED TO ACCOUNT",
	"80": "REMITTANCE CBS UNKNOWN STATE",
	"82": "CBS ACC PAYEE TITLE AND ACCOUNT NO DIFFER",
	"83": "CBS EFT INVALID ACCOUNT",
	"84": "CBS EFT SENT TO THIRD BANK",
	"99": "REMITTANCE INVALID STATUS",
}

// statusStates maps the bank's status codes onto normalized dispatch states.
var statusStates = map[string]remit.State{
	"01": remit.StateProcessing,
	"02": remit.StateProcessing,
	"03": remit.StateProcessing,
	"04": remit.StateProcessing,
	"05": remit.StateFailed,
	"06": remit.StateFailed,
	"07": remit.StateSuccessful,
	"08": remit.StateProcessing,
	"11": remit.StateCancelled,
	"17": remit.StateFailed,
	"20": remit.StateProcessing,
	"30": remit.StateProcessing,
	"70": remit.StateProcessing,
	"73": remit.StateProcessing,
	"74": remit.StateProcessing,
	"77": remit.StateProcessing,
	"78": remit.StateProcessing,
	"79": remit.StateSuccessful,
	"80": remit.StateFailed,
	"82": remit.StateFailed,
	"83": remit.StateFailed,
	"84": remit.StateProcessing,
	"99": remit.StateFailed,
}

// CodeMessage resolves a general response code to its documented text.
func CodeMessage(code string) (string, bool) {
	msg, ok := responseCodes[code]
	return msg, ok
}

// StatusMessage resolves a status inquiry code to its documented text.
func StatusMessage(code string) (string, bool) {
	msg, ok := statusCodes[code]
	return msg, ok
}

// StatusState resolves a status inquiry code to a normalized state.
func StatusState(code string) (remit.State, bool) {
	state, ok := statusStates[code]
	return state, ok
}
