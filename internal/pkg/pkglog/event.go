package pkglog

// Event is a standardized, machine-filterable event tag carried in
// extra_fields.event. Tags are namespaced by domain and never used as the
// human-readable message.
type Event string

const (
	// Transactions
	EventTransactionReceived            Event = "transaction.received"
	EventTransactionValidated           Event = "transaction.validated"
	EventTransactionValidationFailed    Event = "transaction.validation_failed"
	EventTransactionQueued              Event = "transaction.queued"
	EventTransactionProcessingStarted   Event = "transaction.processing.started"
	EventTransactionProcessingCompleted Event = "transaction.processing.completed"
	EventTransactionProcessingFailed    Event = "transaction.processing.failed"

	// Rules
	EventRuleCreated        Event = "rule.created"
	EventRuleUpdated        Event = "rule.updated"
	EventRuleDeleted        Event = "rule.deleted"
	EventRuleEnabled        Event = "rule.enabled"
	EventRuleDisabled       Event = "rule.disabled"
	EventRuleExecuted       Event = "rule.executed"
	EventRuleMatched        Event = "rule.matched"
	EventRuleNotMatched     Event = "rule.not_matched"
	EventRuleExecutionError Event = "rule.execution.error"

	// Model scoring
	EventModelPredictionStarted   Event = "ml.model.prediction.started"
	EventModelPredictionCompleted Event = "ml.model.prediction.completed"
	EventModelPredictionFailed    Event = "ml.model.prediction.failed"

	// Notifications
	EventNotificationSent   Event = "notification.sent"
	EventNotificationFailed Event = "notification.failed"
	EventNotificationRetry  Event = "notification.retry"

	// Queue
	EventQueueMessageAdded     Event = "queue.message.added"
	EventQueueMessageProcessed Event = "queue.message.processed"
	EventQueueMessageFailed    Event = "queue.message.failed"
	EventQueueMessageRetry     Event = "queue.message.retry"

	// System
	EventServiceStarted Event = "service.started"
	EventServiceStopped Event = "service.stopped"
	EventHealthCheck    Event = "health.check"

	// Operations (execution-time wrappers)
	EventOperationStarted   Event = "operation.started"
	EventOperationCompleted Event = "operation.completed"
	EventOperationFailed    Event = "operation.failed"

	// Audit
	EventAuditUserAction   Event = "audit.user.action"
	EventAuditDataAccess   Event = "audit.data.access"
	EventAuditConfigChange Event = "audit.config.change"
)
