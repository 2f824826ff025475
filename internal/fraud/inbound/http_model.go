package inbound

import (
	"net/http"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
)

type SubmitTransactionRequest struct {
	Amount      int64         `json:"amount"`
	Currency    string        `json:"currency"`
	FromAccount string        `json:"from_account"`
	ToAccount   string        `json:"to_account"`
	Type        entity.TxType `json:"type"`
}

type SubmitTransactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	Status        entity.TxStatus `json:"status"`
}

func (SubmitTransactionResponse) StatusCode() int {
	return http.StatusAccepted
}

func (SubmitTransactionResponse) Message() string {
	return "transaction accepted"
}

type TransactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	Amount        int64           `json:"amount"`
	Currency      string          `json:"currency"`
	FromAccount   string          `json:"from_account"`
	ToAccount     string          `json:"to_account"`
	UserID        string          `json:"user_id,omitempty"`
	Type          entity.TxType   `json:"type"`
	Timestamp     int64           `json:"timestamp"`
	Status        entity.TxStatus `json:"status"`
}

type RuleRequest struct {
	Name          string          `json:"name"`
	Type          entity.RuleType `json:"type"`
	Enabled       *bool           `json:"enabled"`
	Threshold     int64           `json:"threshold"`
	WindowSeconds int64           `json:"window_seconds"`
	MaxCount      int             `json:"max_count"`
}

type UpdateRuleRequest struct {
	Name      *string `json:"name"`
	Enabled   *bool   `json:"enabled"`
	Threshold *int64  `json:"threshold"`
}

type RuleResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          entity.RuleType `json:"type"`
	Enabled       bool            `json:"enabled"`
	Threshold     int64           `json:"threshold,omitempty"`
	WindowSeconds int64           `json:"window_seconds,omitempty"`
	MaxCount      int             `json:"max_count,omitempty"`
}

type CreateRuleResponse struct {
	RuleResponse
}

func (CreateRuleResponse) StatusCode() int {
	return http.StatusCreated
}

func (CreateRuleResponse) Message() string {
	return "rule created"
}

type ListRulesResponse struct {
	Rules []RuleResponse `json:"rules"`
	total int
}

func (r ListRulesResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
	}
}

func toRuleResponse(rule entity.Rule) RuleResponse {
	return RuleResponse{
		ID:            rule.ID,
		Name:          rule.Name,
		Type:          rule.Type,
		Enabled:       rule.Enabled,
		Threshold:     rule.Threshold,
		WindowSeconds: rule.WindowSeconds,
		MaxCount:      rule.MaxCount,
	}
}
