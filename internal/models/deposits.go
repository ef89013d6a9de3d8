package models

// DepositStatus — статус запроса на пополнение.
type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositCompleted DepositStatus = "completed"
	DepositFailed    DepositStatus = "failed"
)

// Deposit — запрос на пополнение баланса, ожидающий подтверждения.
type Deposit struct {
	ID        int64         `json:"id"`
	Amount    int           `json:"amount"`
	Status    DepositStatus `json:"status"`
	CreatedAt Timestamp     `json:"createdAt"`
}

// Pending сообщает, можно ли ещё менять статус депозита.
func (d Deposit) Pending() bool { return d.Status == DepositPending }

type DepositCreateRequest struct {
	Amount int `json:"amount"`
}

type DepositConfirmRequest struct {
	DepositID int64         `json:"depositId"`
	Status    DepositStatus `json:"status"`
}
