package entity

type Rule struct {
	ID        string
	Name      string
	Type      RuleType
	Enabled   bool
	CreatedBy string

	// Threshold applies to AMOUNT_THRESHOLD rules (minor units).
	Threshold int64
	// WindowSeconds and MaxCount apply to VELOCITY rules: more than MaxCount
	// transactions from one account within the window is a match.
	WindowSeconds int64
	MaxCount      int
}

type RuleResult struct {
	RuleID          string
	RuleName        string
	RuleType        RuleType
	Matched         bool
	Reason          string
	ExecutionTimeMS float64
}
