package events

import "time"

const SursalaireLifecycleTopic = "rh.sursalaire.lifecycle.v1"

type SursalaireCreditedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	SursalaireID   string    `json:"sursalaire_id"`
	Reference      string    `json:"reference"`
	BeneficiaryID  string    `json:"beneficiary_id"`
	PayrollID      string    `json:"payroll_id"`
	CreditedAmount int64     `json:"credited_amount"`
	OccurredAt     time.Time `json:"occurred_at"`
}
