package entity

import (
	"time"
)

type IntentID string

const (
	IntentCollect  IntentID = "COLLECT"
	IntentTransfer IntentID = "TRANSFER"
	IntentBalance  IntentID = "BALANCE"
	IntentPrice    IntentID = "PRICE"
	IntentQRCode   IntentID = "QRCODE"
	IntentHistory  IntentID = "HISTORY"
	IntentHelp     IntentID = "HELP"
)

func (i IntentID) String() string {
	return string(i)
}

type CommandStatus string

const (
	CommandPending   CommandStatus = "pending"
	CommandExecuting CommandStatus = "executing"
	CommandCompleted CommandStatus = "completed"
	CommandFailed    CommandStatus = "failed"
)

var commandStatusRank = map[CommandStatus]int{
	CommandPending:   0,
	CommandExecuting: 1,
	CommandCompleted: 2,
	CommandFailed:    2,
}

// IsTerminal reports whether the status can no longer change.
func (s CommandStatus) IsTerminal() bool {
	return s == CommandCompleted || s == CommandFailed
}

// CanAdvanceTo enforces pending -> executing -> (completed|failed). Terminal
// statuses are never reopened.
func (s CommandStatus) CanAdvanceTo(next CommandStatus) bool {
	if s.IsTerminal() {
		return false
	}
	cur, ok := commandStatusRank[s]
	if !ok {
		return false
	}
	nxt, ok := commandStatusRank[next]
	if !ok {
		return false
	}
	return nxt >= cur
}

type CommandParams struct {
	Amount    *float64 `json:"amount,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	Method    string   `json:"method,omitempty"`
	Recipient string   `json:"recipient,omitempty"`
	Coin      string   `json:"coin,omitempty"`
}

// HasAmount is true when an amount was extracted, including zero.
func (p CommandParams) HasAmount() bool {
	return p.Amount != nil
}

type Command struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	RawText   string         `json:"raw_text"`
	IntentID  IntentID       `json:"intent_id,omitempty"`
	Params    CommandParams  `json:"params"`
	Status    CommandStatus  `json:"status"`
	Action    string         `json:"action,omitempty"`
	Response  string         `json:"response,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type PaymentStatus string

const (
	PaymentWaiting PaymentStatus = "waiting"
	PaymentPaid    PaymentStatus = "paid"
	// PaymentExpired is declared for clients but no transition leads to it.
	PaymentExpired PaymentStatus = "expired"
)

type PaymentRequest struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Method    string        `json:"method"`
	Payload   string        `json:"payload"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
}

type SlotField string

const (
	SlotAmount    SlotField = "amount"
	SlotRecipient SlotField = "recipient"
)

// AwaitingSlot is the single outstanding follow-up of a session.
type AwaitingSlot struct {
	IntentID  IntentID      `json:"intent_id"`
	Field     SlotField     `json:"field"`
	CommandID string        `json:"command_id"`
	Params    CommandParams `json:"params"`
	CreatedAt time.Time     `json:"created_at"`
}

type AssistantSession struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type EventKind string

const (
	EventResponse EventKind = "response"
	EventToast    EventKind = "toast"
	EventPayment  EventKind = "payment"
	EventSpeech   EventKind = "speech"
)

type AssistantEvent struct {
	SessionID string         `json:"session_id"`
	Kind      EventKind      `json:"kind"`
	Text      string         `json:"text"`
	Data      map[string]any `json:"data,omitempty"`
	At        time.Time      `json:"at"`
}
