package entity

type Transaction struct {
	ID          string
	Amount      int64 // minor units
	Currency    string
	FromAccount string
	ToAccount   string
	UserID      string
	Type        TxType
	Timestamp   int64
	Status      TxStatus
}
