package events

import "time"

const AdvanceLifecycleTopic = "rh.advance.lifecycle.v1"

type AdvanceApprovedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	AdvanceID  string    `json:"advance_id"`
	Reference  string    `json:"reference"`
	AgentID    string    `json:"agent_id"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AdvanceClosedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	AdvanceID   string    `json:"advance_id"`
	Reference   string    `json:"reference"`
	AgentID     string    `json:"agent_id"`
	TotalRepaid int64     `json:"total_repaid"`
	OccurredAt  time.Time `json:"occurred_at"`
}
