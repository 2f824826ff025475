package entity

type TxType string

const (
	TxTypeTransfer   TxType = "TRANSFER"
	TxTypeWithdrawal TxType = "WITHDRAWAL"
	TxTypeDeposit    TxType = "DEPOSIT"
	TxTypePayment    TxType = "PAYMENT"
)

type TxStatus string

const (
	TxStatusPending    TxStatus = "PENDING"
	TxStatusProcessing TxStatus = "PROCESSING"
	TxStatusClean      TxStatus = "CLEAN"
	TxStatusFlagged    TxStatus = "FLAGGED"
	TxStatusFailed     TxStatus = "FAILED"
)

type RuleType string

const (
	RuleTypeAmountThreshold RuleType = "AMOUNT_THRESHOLD"
	RuleTypeVelocity        RuleType = "VELOCITY"
)
