package allocation

// Reason codes enumerate every expected business outcome of an engine
// operation. Callers branch on these, not on error values.
const (
	ReasonOnlusNotFound       = "ONLUS_NOT_FOUND"
	ReasonRequestNotFound     = "REQUEST_NOT_FOUND"
	ReasonResultNotFound      = "RESULT_NOT_FOUND"
	ReasonRequestNotPending   = "REQUEST_NOT_PENDING"
	ReasonValidationError     = "VALIDATION_ERROR"
	ReasonBelowThreshold      = "BELOW_THRESHOLD"
	ReasonNoSuitablePool      = "NO_SUITABLE_POOL"
	ReasonInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ReasonReservationConflict = "RESERVATION_CONFLICT"
	ReasonProcessingError     = "PROCESSING_ERROR"
	ReasonAllocationApproved  = "ALLOCATION_APPROVED"
	ReasonExecutionCompleted  = "EXECUTION_COMPLETED"
	ReasonPartialExecution    = "PARTIAL_EXECUTION"
	ReasonExecutionFailed     = "EXECUTION_FAILED"
	ReasonInvalidStatus       = "INVALID_STATUS"
	ReasonNotEmergency        = "NOT_EMERGENCY"
	ReasonRetryScheduled      = "RETRY_SCHEDULED"
	ReasonBatchCompleted      = "BATCH_COMPLETED"
)

// Outcome is the tagged result of an engine operation. Error returns are
// reserved for infrastructure failures; everything a caller can act on
// arrives here.
type Outcome struct {
	Success bool                   `json:"success"`
	Reason  string                 `json:"reason"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func succeed(reason string, data map[string]interface{}) Outcome {
	return Outcome{Success: true, Reason: reason, Data: data}
}

func fail(reason string, data map[string]interface{}) Outcome {
	return Outcome{Success: false, Reason: reason, Data: data}
}
