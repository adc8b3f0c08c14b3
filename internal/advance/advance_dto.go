package advance

import "time"

type RequestAdvanceRequest struct {
	AgentID            string `json:"agent_id" binding:"required,uuid"`
	Amount             int64  `json:"amount" binding:"required"`
	MonthlyRecovery    int64  `json:"monthly_recovery"`
	RecoveryPercentage int64  `json:"recovery_percentage"`
	MaxRecoveryAmount  int64  `json:"max_recovery_amount"`
	Reason             string `json:"reason"`
	// RequestDate defaults to today; the settled-month rule is checked
	// against the month containing it.
	RequestDate string `json:"request_date"`
	Draft       bool   `json:"draft"`
}

type RejectAdvanceRequest struct {
	Reason string `json:"reason"`
}

type CancelAdvanceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ManualRepaymentRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash transfer"`
	RepaymentDate string `json:"repayment_date"`
}

type RepaymentResponse struct {
	ID            string  `json:"id"`
	Amount        int64   `json:"amount"`
	RepaymentDate string  `json:"repayment_date"`
	PayrollID     *string `json:"payroll_id,omitempty"`
	PaymentMethod string  `json:"payment_method"`
}

type AdvanceResponse struct {
	ID                 string              `json:"id"`
	Reference          string              `json:"reference"`
	AgentID            string              `json:"agent_id"`
	Amount             int64               `json:"amount"`
	Remaining          int64               `json:"remaining"`
	TotalRepaid        int64               `json:"total_repaid"`
	MonthlyRecovery    int64               `json:"monthly_recovery"`
	RecoveryPercentage int64               `json:"recovery_percentage"`
	MaxRecoveryAmount  int64               `json:"max_recovery_amount"`
	Status             string              `json:"status"`
	Reason             string              `json:"reason,omitempty"`
	RequestedAt        string              `json:"requested_at"`
	ApprovedAt         *string             `json:"approved_at,omitempty"`
	DisbursedAt        *string             `json:"disbursed_at,omitempty"`
	ClosedAt           *string             `json:"closed_at,omitempty"`
	CancelledAt        *string             `json:"cancelled_at,omitempty"`
	CancelReason       string              `json:"cancel_reason,omitempty"`
	Repayments         []RepaymentResponse `json:"repayments"`
}

func mapToResponse(a Advance) AdvanceResponse {
	resp := AdvanceResponse{
		ID:                 a.ID.String(),
		Reference:          a.Reference,
		AgentID:            a.AgentID.String(),
		Amount:             a.Amount,
		Remaining:          a.Remaining,
		TotalRepaid:        a.TotalRepaid,
		MonthlyRecovery:    a.MonthlyRecovery,
		RecoveryPercentage: a.RecoveryPercentage,
		MaxRecoveryAmount:  a.MaxRecoveryAmount,
		Status:             a.Status,
		Reason:             a.Reason,
		RequestedAt:        a.RequestedAt.Format("2006-01-02"),
		CancelReason:       a.CancelReason,
		Repayments:         make([]RepaymentResponse, 0, len(a.Repayments)),
	}

	resp.ApprovedAt = formatTimePtr(a.ApprovedAt)
	resp.DisbursedAt = formatTimePtr(a.DisbursedAt)
	resp.ClosedAt = formatTimePtr(a.ClosedAt)
	resp.CancelledAt = formatTimePtr(a.CancelledAt)

	for _, r := range a.Repayments {
		rr := RepaymentResponse{
			ID:            r.ID.String(),
			Amount:        r.Amount,
			RepaymentDate: r.RepaymentDate.Format("2006-01-02"),
			PaymentMethod: r.PaymentMethod,
		}
		if r.PayrollID != nil {
			v := r.PayrollID.String()
			rr.PayrollID = &v
		}
		resp.Repayments = append(resp.Repayments, rr)
	}

	return resp
}

func mapToListResponse(advances []Advance) []AdvanceResponse {
	resp := make([]AdvanceResponse, len(advances))
	for i, a := range advances {
		resp[i] = mapToResponse(a)
	}
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
