package pkglog

import (
	"context"
	"fmt"
)

// Domain loggers are thin formatting/routing layers: each method maps a
// real-world action to an event tag and severity and delegates to the record
// builder with its component pre-bound. They never validate or transform
// domain values beyond surfacing them as fields.

// TransactionLogger emits transaction lifecycle records.
type TransactionLogger struct {
	logger *Logger
}

func (t *TransactionLogger) LogReceived(ctx context.Context, transactionID string, kvs ...any) {
	args := append([]any{"event", EventTransactionReceived, "transaction_id", transactionID}, kvs...)
	t.logger.log(ctx, LevelInfo, "Transaction received: "+transactionID, args, 2)
}

func (t *TransactionLogger) LogValidated(ctx context.Context, transactionID string, kvs ...any) {
	args := append([]any{"event", EventTransactionValidated, "transaction_id", transactionID}, kvs...)
	t.logger.log(ctx, LevelInfo, "Transaction validated: "+transactionID, args, 2)
}

func (t *TransactionLogger) LogValidationFailed(ctx context.Context, transactionID string, errs []string, kvs ...any) {
	args := append([]any{"event", EventTransactionValidationFailed, "transaction_id", transactionID, "errors", errs}, kvs...)
	t.logger.log(ctx, LevelWarning, "Transaction validation failed: "+transactionID, args, 2)
}

func (t *TransactionLogger) LogQueued(ctx context.Context, transactionID, queue string, kvs ...any) {
	args := append([]any{"event", EventTransactionQueued, "transaction_id", transactionID, "queue", queue}, kvs...)
	t.logger.log(ctx, LevelInfo, "Transaction queued: "+transactionID, args, 2)
}

func (t *TransactionLogger) LogProcessingStarted(ctx context.Context, transactionID string, kvs ...any) {
	args := append([]any{"event", EventTransactionProcessingStarted, "transaction_id", transactionID}, kvs...)
	t.logger.log(ctx, LevelInfo, "Transaction processing started: "+transactionID, args, 2)
}

func (t *TransactionLogger) LogProcessingCompleted(ctx context.Context, transactionID string, durationMS float64, rulesMatched []string, status string, kvs ...any) {
	args := append([]any{
		"event", EventTransactionProcessingCompleted,
		"transaction_id", transactionID,
		"duration_ms", durationMS,
		"rules_matched", rulesMatched,
		"rules_count", len(rulesMatched),
		"status", status,
	}, kvs...)
	t.logger.log(ctx, LevelInfo, "Transaction processing completed: "+transactionID, args, 2)
}

func (t *TransactionLogger) LogProcessingFailed(ctx context.Context, transactionID, errMsg string, kvs ...any) {
	args := append([]any{"event", EventTransactionProcessingFailed, "transaction_id", transactionID, "error", errMsg}, kvs...)
	t.logger.log(ctx, LevelError, "Transaction processing failed: "+transactionID, args, 2)
}

// RuleLogger emits rule lifecycle and execution records.
type RuleLogger struct {
	logger *Logger
}

func (r *RuleLogger) LogExecuted(ctx context.Context, ruleID, ruleName, ruleType, transactionID string, matched bool, executionTimeMS float64, kvs ...any) {
	event := EventRuleNotMatched
	verdict := "not matched"
	if matched {
		event = EventRuleMatched
		verdict = "matched"
	}

	args := append([]any{
		"event", event,
		"rule_id", ruleID,
		"rule_name", ruleName,
		"rule_type", ruleType,
		"transaction_id", transactionID,
		"matched", matched,
		"execution_time_ms", executionTimeMS,
	}, kvs...)
	r.logger.log(ctx, LevelInfo, fmt.Sprintf("Rule executed: %s (%s)", ruleName, verdict), args, 2)
}

func (r *RuleLogger) LogCreated(ctx context.Context, ruleID, ruleName, ruleType, userID string) {
	r.logger.log(ctx, LevelInfo, "Rule created: "+ruleName, []any{
		"event", EventRuleCreated,
		"rule_id", ruleID,
		"rule_name", ruleName,
		"rule_type", ruleType,
		"user_id", userID,
	}, 2)
}

func (r *RuleLogger) LogUpdated(ctx context.Context, ruleID, ruleName string, changes map[string]any, userID string) {
	r.logger.log(ctx, LevelInfo, "Rule updated: "+ruleName, []any{
		"event", EventRuleUpdated,
		"rule_id", ruleID,
		"rule_name", ruleName,
		"changes", changes,
		"user_id", userID,
	}, 2)
}

func (r *RuleLogger) LogDeleted(ctx context.Context, ruleID, ruleName, userID string) {
	r.logger.log(ctx, LevelInfo, "Rule deleted: "+ruleName, []any{
		"event", EventRuleDeleted,
		"rule_id", ruleID,
		"rule_name", ruleName,
		"user_id", userID,
	}, 2)
}

func (r *RuleLogger) LogExecutionError(ctx context.Context, ruleID, ruleName, transactionID, errMsg string) {
	r.logger.log(ctx, LevelError, "Rule execution error: "+ruleName, []any{
		"event", EventRuleExecutionError,
		"rule_id", ruleID,
		"rule_name", ruleName,
		"transaction_id", transactionID,
		"error", errMsg,
	}, 2)
}

// NotificationLogger emits notification delivery records.
type NotificationLogger struct {
	logger *Logger
}

func (n *NotificationLogger) LogSent(ctx context.Context, notificationID, channel, recipient, transactionID string, durationMS float64) {
	n.logger.log(ctx, LevelInfo, "Notification sent via "+channel, []any{
		"event", EventNotificationSent,
		"notification_id", notificationID,
		"channel", channel,
		"recipient", recipient,
		"transaction_id", transactionID,
		"duration_ms", durationMS,
	}, 2)
}

func (n *NotificationLogger) LogFailed(ctx context.Context, notificationID, channel, recipient, transactionID, errMsg string, retryCount int) {
	n.logger.log(ctx, LevelError, "Notification failed via "+channel, []any{
		"event", EventNotificationFailed,
		"notification_id", notificationID,
		"channel", channel,
		"recipient", recipient,
		"transaction_id", transactionID,
		"error", errMsg,
		"retry_count", retryCount,
	}, 2)
}

func (n *NotificationLogger) LogRetry(ctx context.Context, notificationID, channel string, attempt int) {
	n.logger.log(ctx, LevelInfo, fmt.Sprintf("Notification retry #%d via %s", attempt, channel), []any{
		"event", EventNotificationRetry,
		"notification_id", notificationID,
		"channel", channel,
		"attempt", attempt,
	}, 2)
}

// AuditLogger emits user-attributable audit records. Audit files keep a long
// retention, so these records carry the acting user explicitly.
type AuditLogger struct {
	logger *Logger
}

func (a *AuditLogger) LogUserAction(ctx context.Context, userID, action, resourceType, resourceID string, kvs ...any) {
	args := append([]any{
		"event", EventAuditUserAction,
		"user_id", userID,
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
	}, kvs...)
	a.logger.log(ctx, LevelInfo, fmt.Sprintf("User action: %s %s %s/%s", userID, action, resourceType, resourceID), args, 2)
}

func (a *AuditLogger) LogDataAccess(ctx context.Context, userID, resourceType, resourceID, accessType string) {
	a.logger.log(ctx, LevelInfo, fmt.Sprintf("Data access: %s %s %s/%s", userID, accessType, resourceType, resourceID), []any{
		"event", EventAuditDataAccess,
		"user_id", userID,
		"resource_type", resourceType,
		"resource_id", resourceID,
		"access_type", accessType,
	}, 2)
}

func (a *AuditLogger) LogConfigChange(ctx context.Context, userID, configKey string, oldValue, newValue any) {
	a.logger.log(ctx, LevelInfo, fmt.Sprintf("Config change: %s by %s", configKey, userID), []any{
		"event", EventAuditConfigChange,
		"user_id", userID,
		"config_key", configKey,
		"old_value", fmt.Sprint(oldValue),
		"new_value", fmt.Sprint(newValue),
	}, 2)
}

// MetricsLogger emits point-in-time metric records to the metrics file, next
// to the Prometheus endpoint that exposes the same counters live.
type MetricsLogger struct {
	logger *Logger
}

func (m *MetricsLogger) LogMetric(ctx context.Context, name string, value float64, metricType string, tags map[string]string) {
	kvs := []any{
		"metric_name", name,
		"metric_value", value,
		"metric_type", metricType,
	}
	if len(tags) > 0 {
		kvs = append(kvs, "tags", tags)
	}
	m.logger.log(ctx, LevelInfo, fmt.Sprintf("Metric: %s=%v", name, value), kvs, 2)
}
