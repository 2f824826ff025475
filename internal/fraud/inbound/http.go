package inbound

import (
	"context"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
	"github.com/sentinelpay/fraudlog/internal/fraud/usecase"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgrouter"
)

type uc interface {
	SubmitTransaction(ctx context.Context, in usecase.SubmitTransactionInput) (usecase.SubmitResult, error)
	GetTransaction(ctx context.Context, id string) (usecase.TransactionResult, error)
	CreateRule(ctx context.Context, in usecase.CreateRuleInput) (entity.Rule, error)
	UpdateRule(ctx context.Context, id string, in usecase.UpdateRuleInput) (entity.Rule, error)
	DeleteRule(ctx context.Context, id, userID string) error
	ListRules(ctx context.Context) ([]entity.Rule, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/transactions", end.SubmitTransaction)
	r.GET("/transactions/:id", end.GetTransaction)

	r.GET("/rules", end.ListRules)
	r.POST("/rules", end.CreateRule)
	r.PUT("/rules/:id", end.UpdateRule)
	r.DELETE("/rules/:id", end.DeleteRule)
}
