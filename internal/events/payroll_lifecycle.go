package events

import "time"

const PayrollLifecycleTopic = "rh.payroll.lifecycle.v1"

type PayrollGeneratedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	PayrollID   string    `json:"payroll_id"`
	Reference   string    `json:"reference"`
	AgentID     string    `json:"agent_id"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	NetAmount   int64     `json:"net_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type PayrollPaidEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	PayrollID  string    `json:"payroll_id"`
	Reference  string    `json:"reference"`
	AgentID    string    `json:"agent_id"`
	NetAmount  int64     `json:"net_amount"`
	OccurredAt time.Time `json:"occurred_at"`
}
