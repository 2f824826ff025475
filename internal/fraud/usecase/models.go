package usecase

import "github.com/sentinelpay/fraudlog/internal/fraud/entity"

type SubmitTransactionInput struct {
	Amount      int64
	Currency    string
	FromAccount string
	ToAccount   string
	UserID      string
	Type        entity.TxType
}

type SubmitResult struct {
	TransactionID string
	Status        entity.TxStatus
}

type TransactionResult struct {
	Transaction entity.Transaction
}

type CreateRuleInput struct {
	Name          string
	Type          entity.RuleType
	Enabled       bool
	Threshold     int64
	WindowSeconds int64
	MaxCount      int
	UserID        string
}

type UpdateRuleInput struct {
	Name      *string
	Enabled   *bool
	Threshold *int64
	UserID    string
}
