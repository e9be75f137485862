package model

import "time"

// Movement represents a single stock movement: stock coming in (new stock
// or a return) or going out (a loan or consumption). The item name is
// denormalized so history stays readable after an item is deleted.
type Movement struct {
	ID             int64      `json:"id"`
	Type           string     `json:"type"`
	ItemID         int64      `json:"item_id"`
	ItemName       string     `json:"item_name"`
	Quantity       int        `json:"quantity"`
	HandledBy      string     `json:"handled_by"`
	ExpectedReturn *time.Time `json:"expected_return,omitempty"`
	ActualReturn   *time.Time `json:"actual_return,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	RecordedBy     *int64     `json:"recorded_by,omitempty"`
}

// Movement types.
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// Movement statuses. Only on_loan → returned is ever written to storage;
// overdue is a read-time overlay (see EffectiveStatus) and consumed is
// terminal from the start.
const (
	MovementOnLoan   = "on_loan"
	MovementReturned = "returned"
	MovementOverdue  = "overdue"
	MovementConsumed = "consumed"
)

// Open reports whether the movement is an outstanding loan that can still
// be checked in.
func (m *Movement) Open() bool {
	return m.Status == MovementOnLoan || m.Status == MovementOverdue
}

// EffectiveStatus returns the status to display at time now. An open loan
// whose expected return date has passed shows as overdue. This only
// affects the movement: the owning item's status stays governed by
// quantity and category alone.
func (m *Movement) EffectiveStatus(now time.Time) string {
	if m.Open() && m.ExpectedReturn != nil && m.ExpectedReturn.Before(now) {
		return MovementOverdue
	}
	return m.Status
}
