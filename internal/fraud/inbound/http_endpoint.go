package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sentinelpay/fraudlog/internal/fraud/usecase"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgerror"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgrouter"
)

const maxBodyBytes = 1 << 20

// HeaderUserID identifies the acting user for audit records. Authn itself is
// out of scope; a gateway in front of this service fills the header.
const HeaderUserID = "X-User-ID"

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) SubmitTransaction(ctx context.Context, r *http.Request) (any, error) {
	var req SubmitTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	userID := requestUserID(r)
	if userID != "" {
		ctx = pkglog.OpenScope(ctx, pkglog.Fields{"user_id": userID})
	}

	result, err := h.uc.SubmitTransaction(ctx, usecase.SubmitTransactionInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		UserID:      userID,
		Type:        req.Type,
	})
	if err != nil {
		return nil, err
	}

	return SubmitTransactionResponse{
		TransactionID: result.TransactionID,
		Status:        result.Status,
	}, nil
}

func (h *HTTPEndpoint) GetTransaction(ctx context.Context, r *http.Request) (any, error) {
	id := strings.TrimSpace(pkgrouter.GetParam(ctx, "id"))

	result, err := h.uc.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := result.Transaction

	return TransactionResponse{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		FromAccount:   tx.FromAccount,
		ToAccount:     tx.ToAccount,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Timestamp:     tx.Timestamp,
		Status:        tx.Status,
	}, nil
}

func (h *HTTPEndpoint) CreateRule(ctx context.Context, r *http.Request) (any, error) {
	var req RuleRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule, err := h.uc.CreateRule(ctx, usecase.CreateRuleInput{
		Name:          req.Name,
		Type:          req.Type,
		Enabled:       enabled,
		Threshold:     req.Threshold,
		WindowSeconds: req.WindowSeconds,
		MaxCount:      req.MaxCount,
		UserID:        requestUserID(r),
	})
	if err != nil {
		return nil, err
	}

	return CreateRuleResponse{RuleResponse: toRuleResponse(rule)}, nil
}

func (h *HTTPEndpoint) UpdateRule(ctx context.Context, r *http.Request) (any, error) {
	id := strings.TrimSpace(pkgrouter.GetParam(ctx, "id"))

	var req UpdateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	rule, err := h.uc.UpdateRule(ctx, id, usecase.UpdateRuleInput{
		Name:      req.Name,
		Enabled:   req.Enabled,
		Threshold: req.Threshold,
		UserID:    requestUserID(r),
	})
	if err != nil {
		return nil, err
	}

	return toRuleResponse(rule), nil
}

func (h *HTTPEndpoint) DeleteRule(ctx context.Context, r *http.Request) (any, error) {
	id := strings.TrimSpace(pkgrouter.GetParam(ctx, "id"))

	if err := h.uc.DeleteRule(ctx, id, requestUserID(r)); err != nil {
		return nil, err
	}

	return nil, nil
}

func (h *HTTPEndpoint) ListRules(ctx context.Context, r *http.Request) (any, error) {
	rules, err := h.uc.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		items = append(items, toRuleResponse(rule))
	}

	return ListRulesResponse{Rules: items, total: len(items)}, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return pkgerror.NewInvalidFormat()
	}

	return nil
}

func requestUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUserID))
}
