package entity

// AlertEvent is published for every matched rule and consumed by the
// notification dispatcher. CorrelationID ties the alert back to the request
// that submitted the transaction.
type AlertEvent struct {
	EventID       string
	CorrelationID string
	TransactionID string
	RuleID        string
	RuleName      string
	RuleType      RuleType
	Amount        int64
	FromAccount   string
	Reason        string
}
