package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event kinds published after a successful turn. Consumers key off these to
// build notification and reporting pipelines without touching the ledger.
const (
	EventExpensePosted  = "expense.posted"
	EventBudgetSet      = "budget.set"
	EventTopupSet       = "topup.set"
	EventMemberInvited  = "member.invited"
	EventMemberJoined   = "member.joined"
	EventAccountCleared = "account.cleared"
)

// LedgerEvent is the lightweight record published per mutating turn.
// It carries the account id and kind only; consumers fetch current state
// from the store when they need more.
type LedgerEvent struct {
	AccountID string          `json:"account_id"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewLedgerEvent(accountID, kind string, amount decimal.Decimal) *LedgerEvent {
	return &LedgerEvent{
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
