package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgerror"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkglog"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkguid"
)

type Store interface {
	SaveTransaction(ctx context.Context, tx entity.Transaction) error
	UpdateTransaction(ctx context.Context, id string, fn func(tx *entity.Transaction)) error
	GetTransaction(ctx context.Context, id string) (entity.Transaction, error)
	RecordActivity(ctx context.Context, account string, ts int64) error
	CountActivity(ctx context.Context, account string, since, until int64) (int, error)
	CreateRule(ctx context.Context, rule entity.Rule) error
	GetRule(ctx context.Context, id string) (entity.Rule, error)
	UpdateRule(ctx context.Context, id string, fn func(rule *entity.Rule)) (entity.Rule, error)
	DeleteRule(ctx context.Context, id string) (entity.Rule, error)
	ListRules(ctx context.Context) ([]entity.Rule, error)
}

type AlertPublisher interface {
	Publish(ctx context.Context, event entity.AlertEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

// Metrics is the slice of the metrics surface this usecase feeds.
type Metrics interface {
	TransactionProcessed(status string)
	RuleExecuted(ruleType string, matched bool)
}

// Loggers bundles the domain loggers injected at bootstrap.
type Loggers struct {
	App         *pkglog.Logger
	Transaction *pkglog.TransactionLogger
	Rule        *pkglog.RuleLogger
	Audit       *pkglog.AuditLogger
}

type Dependency struct {
	Store   Store
	Alerts  AlertPublisher
	Runner  Runner
	Clock   Clock
	ID      pkguid.StringID
	EventID pkguid.NumberID
	Logs    Loggers
	Metrics Metrics
	RootCtx context.Context
}

type Usecase struct {
	store   Store
	alerts  AlertPublisher
	runner  Runner
	clock   Clock
	id      pkguid.StringID
	eventID pkguid.NumberID
	logs    Loggers
	metrics Metrics
	rootCtx context.Context
}

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	return &Usecase{
		store:   dep.Store,
		alerts:  dep.Alerts,
		runner:  dep.Runner,
		clock:   clock,
		id:      dep.ID,
		eventID: dep.EventID,
		logs:    dep.Logs,
		metrics: dep.Metrics,
		rootCtx: root,
	}
}

// newEventID prefers the sortable numeric generator for alert events and
// falls back to the string generator when none was injected.
func (u *Usecase) newEventID() string {
	if u.eventID != nil {
		return strconv.FormatInt(u.eventID.Generate(), 10)
	}
	return u.id.Generate()
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// SubmitTransaction validates and stores the transaction, then schedules rule
// evaluation in the background. The response carries the PENDING status; the
// final verdict lands in the store and the transaction log.
func (u *Usecase) SubmitTransaction(ctx context.Context, in SubmitTransactionInput) (SubmitResult, error) {
	if u.store == nil || u.id == nil || u.runner == nil {
		return SubmitResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	txID := u.id.Generate()
	ctx = pkglog.OpenScope(ctx, pkglog.Fields{"transaction_id": txID, "user_id": in.UserID})

	u.logs.Transaction.LogReceived(ctx, txID,
		"amount", in.Amount,
		"currency", in.Currency,
		"from_account", in.FromAccount,
		"to_account", in.ToAccount,
		"type", in.Type,
	)

	if errs := validateSubmit(in); len(errs) > 0 {
		u.logs.Transaction.LogValidationFailed(ctx, txID, errs)
		return SubmitResult{}, pkgerror.NewInvalidInput(fmt.Errorf("invalid transaction: %s", errs[0]))
	}
	u.logs.Transaction.LogValidated(ctx, txID)

	now := u.clock.Now().Unix()
	tx := entity.Transaction{
		ID:          txID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		FromAccount: in.FromAccount,
		ToAccount:   in.ToAccount,
		UserID:      in.UserID,
		Type:        in.Type,
		Timestamp:   now,
		Status:      entity.TxStatusPending,
	}
	if err := u.store.SaveTransaction(ctx, tx); err != nil {
		return SubmitResult{}, normalizeErr(err)
	}
	if err := u.store.RecordActivity(ctx, tx.FromAccount, now); err != nil {
		return SubmitResult{}, normalizeErr(err)
	}

	u.logs.Transaction.LogQueued(ctx, txID, "rule-evaluation")

	// The background goroutine outlives the request, so its scope is derived
	// from the root context while keeping the request's correlation id.
	processCtx := pkglog.OpenScope(u.rootCtx, pkglog.Fields{
		"correlation_id": pkglog.GetCorrelationID(ctx),
		"transaction_id": txID,
		"user_id":        in.UserID,
	})
	u.runner.Go(processCtx, func(ctx context.Context) error {
		if err := u.processTransaction(ctx, tx); err != nil {
			u.logs.Transaction.LogProcessingFailed(ctx, txID, err.Error())
			if u.metrics != nil {
				u.metrics.TransactionProcessed(string(entity.TxStatusFailed))
			}
			return err
		}
		return nil
	})

	return SubmitResult{TransactionID: txID, Status: entity.TxStatusPending}, nil
}

func (u *Usecase) GetTransaction(ctx context.Context, id string) (TransactionResult, error) {
	if id == "" {
		return TransactionResult{}, pkgerror.NewInvalidInput(errors.New("transaction id is required"))
	}

	tx, err := u.store.GetTransaction(ctx, id)
	if err != nil {
		return TransactionResult{}, mapStoreErr(err, "transaction not found")
	}

	return TransactionResult{Transaction: tx}, nil
}

func (u *Usecase) processTransaction(ctx context.Context, tx entity.Transaction) error {
	u.logs.Transaction.LogProcessingStarted(ctx, tx.ID)

	if err := u.store.UpdateTransaction(ctx, tx.ID, func(t *entity.Transaction) {
		t.Status = entity.TxStatusProcessing
	}); err != nil {
		return err
	}

	start := u.clock.Now()

	results, err := pkglog.TimeOperationResult(ctx, u.logs.App, "rule-evaluation", func(ctx context.Context) ([]entity.RuleResult, error) {
		return u.evaluateRules(ctx, tx)
	})
	if err != nil {
		return err
	}

	matched := make([]string, 0, len(results))
	for _, res := range results {
		if res.Matched {
			matched = append(matched, res.RuleName)
		}
	}

	status := entity.TxStatusClean
	if len(matched) > 0 {
		status = entity.TxStatusFlagged
	}

	if err := u.store.UpdateTransaction(ctx, tx.ID, func(t *entity.Transaction) {
		t.Status = status
	}); err != nil {
		return err
	}

	durationMS := float64(u.clock.Now().Sub(start)) / float64(time.Millisecond)
	u.logs.Transaction.LogProcessingCompleted(ctx, tx.ID, durationMS, matched, string(status))
	if u.metrics != nil {
		u.metrics.TransactionProcessed(string(status))
	}

	return nil
}

func (u *Usecase) evaluateRules(ctx context.Context, tx entity.Transaction) ([]entity.RuleResult, error) {
	rules, err := u.store.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]entity.RuleResult, 0, len(rules))
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}

		res := u.evaluateRule(ctx, rule, tx)
		results = append(results, res)

		u.logs.Rule.LogExecuted(ctx, res.RuleID, res.RuleName, string(res.RuleType), tx.ID, res.Matched, res.ExecutionTimeMS, "reason", res.Reason)
		if u.metrics != nil {
			u.metrics.RuleExecuted(string(res.RuleType), res.Matched)
		}

		if res.Matched && u.alerts != nil {
			alert := entity.AlertEvent{
				EventID:       u.newEventID(),
				CorrelationID: pkglog.GetCorrelationID(ctx),
				TransactionID: tx.ID,
				RuleID:        rule.ID,
				RuleName:      rule.Name,
				RuleType:      rule.Type,
				Amount:        tx.Amount,
				FromAccount:   tx.FromAccount,
				Reason:        res.Reason,
			}
			if pubErr := u.alerts.Publish(ctx, alert); pubErr != nil {
				u.logs.App.Warning(ctx, "failed to publish alert", "event_id", alert.EventID, "rule_id", rule.ID, "error", pubErr.Error())
			}
		}
	}

	return results, nil
}

func (u *Usecase) evaluateRule(ctx context.Context, rule entity.Rule, tx entity.Transaction) entity.RuleResult {
	start := time.Now()

	res := entity.RuleResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		RuleType: rule.Type,
	}

	switch rule.Type {
	case entity.RuleTypeAmountThreshold:
		if tx.Amount > rule.Threshold {
			res.Matched = true
			res.Reason = fmt.Sprintf("amount %d exceeds threshold %d", tx.Amount, rule.Threshold)
		}
	case entity.RuleTypeVelocity:
		since := tx.Timestamp - rule.WindowSeconds
		count, err := u.store.CountActivity(ctx, tx.FromAccount, since, tx.Timestamp)
		if err != nil {
			u.logs.Rule.LogExecutionError(ctx, rule.ID, rule.Name, tx.ID, err.Error())
			break
		}
		if count > rule.MaxCount {
			res.Matched = true
			res.Reason = fmt.Sprintf("%d transactions in %ds exceeds limit %d", count, rule.WindowSeconds, rule.MaxCount)
		}
	}

	res.ExecutionTimeMS = float64(time.Since(start)) / float64(time.Millisecond)

	return res
}

func (u *Usecase) CreateRule(ctx context.Context, in CreateRuleInput) (entity.Rule, error) {
	if err := validateRule(in.Name, in.Type, in.Threshold, in.WindowSeconds, in.MaxCount); err != nil {
		return entity.Rule{}, err
	}

	rule := entity.Rule{
		ID:            u.id.Generate(),
		Name:          in.Name,
		Type:          in.Type,
		Enabled:       in.Enabled,
		CreatedBy:     in.UserID,
		Threshold:     in.Threshold,
		WindowSeconds: in.WindowSeconds,
		MaxCount:      in.MaxCount,
	}

	if err := u.store.CreateRule(ctx, rule); err != nil {
		return entity.Rule{}, normalizeErr(err)
	}

	u.logs.Rule.LogCreated(ctx, rule.ID, rule.Name, string(rule.Type), in.UserID)
	u.logs.Audit.LogUserAction(ctx, in.UserID, "create", "rule", rule.ID)

	return rule, nil
}

func (u *Usecase) UpdateRule(ctx context.Context, id string, in UpdateRuleInput) (entity.Rule, error) {
	if id == "" {
		return entity.Rule{}, pkgerror.NewInvalidInput(errors.New("rule id is required"))
	}

	changes := make(map[string]any)
	rule, err := u.store.UpdateRule(ctx, id, func(rule *entity.Rule) {
		if in.Name != nil && *in.Name != rule.Name {
			changes["name"] = *in.Name
			rule.Name = *in.Name
		}
		if in.Enabled != nil && *in.Enabled != rule.Enabled {
			changes["enabled"] = *in.Enabled
			rule.Enabled = *in.Enabled
		}
		if in.Threshold != nil && *in.Threshold != rule.Threshold {
			changes["threshold"] = *in.Threshold
			rule.Threshold = *in.Threshold
		}
	})
	if err != nil {
		return entity.Rule{}, mapStoreErr(err, "rule not found")
	}

	u.logs.Rule.LogUpdated(ctx, rule.ID, rule.Name, changes, in.UserID)
	u.logs.Audit.LogUserAction(ctx, in.UserID, "update", "rule", rule.ID)

	return rule, nil
}

func (u *Usecase) DeleteRule(ctx context.Context, id, userID string) error {
	if id == "" {
		return pkgerror.NewInvalidInput(errors.New("rule id is required"))
	}

	rule, err := u.store.DeleteRule(ctx, id)
	if err != nil {
		return mapStoreErr(err, "rule not found")
	}

	u.logs.Rule.LogDeleted(ctx, rule.ID, rule.Name, userID)
	u.logs.Audit.LogUserAction(ctx, userID, "delete", "rule", rule.ID)

	return nil
}

func (u *Usecase) ListRules(ctx context.Context) ([]entity.Rule, error) {
	rules, err := u.store.ListRules(ctx)
	if err != nil {
		return nil, normalizeErr(err)
	}

	return rules, nil
}

func validateSubmit(in SubmitTransactionInput) []string {
	var errs []string
	if in.Amount <= 0 {
		errs = append(errs, "amount must be positive")
	}
	if in.FromAccount == "" {
		errs = append(errs, "from_account is required")
	}
	if in.ToAccount == "" {
		errs = append(errs, "to_account is required")
	}
	switch in.Type {
	case entity.TxTypeTransfer, entity.TxTypeWithdrawal, entity.TxTypeDeposit, entity.TxTypePayment:
	default:
		errs = append(errs, "unknown transaction type")
	}

	return errs
}

func validateRule(name string, ruleType entity.RuleType, threshold, windowSeconds int64, maxCount int) error {
	if name == "" {
		return pkgerror.NewInvalidInput(errors.New("rule name is required"))
	}

	switch ruleType {
	case entity.RuleTypeAmountThreshold:
		if threshold <= 0 {
			return pkgerror.NewInvalidInput(errors.New("threshold must be positive"))
		}
	case entity.RuleTypeVelocity:
		if windowSeconds <= 0 || maxCount <= 0 {
			return pkgerror.NewInvalidInput(errors.New("window_seconds and max_count must be positive"))
		}
	default:
		return pkgerror.NewInvalidInput(errors.New("unknown rule type"))
	}

	return nil
}

func mapStoreErr(err error, notFoundMsg string) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness(notFoundMsg, pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
