package sursalaire

import (
	"time"

	"github.com/google/uuid"
)

type CreateSursalaireRequest struct {
	BeneficiaryID string `json:"beneficiary_id" binding:"required,uuid"`
	PeriodStart   string `json:"period_start" binding:"required"`
	PeriodEnd     string `json:"period_end" binding:"required"`
}

type CreditSursalaireRequest struct {
	TargetPayrollID *string `json:"target_payroll_id"`
}

type CancelSursalaireRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AdvanceDeductionResponse struct {
	AdvanceID       string `json:"advance_id"`
	PayrollID       string `json:"payroll_id"`
	AgentID         string `json:"agent_id"`
	DeductionAmount int64  `json:"deduction_amount"`
	DeductionDate   string `json:"deduction_date"`
}

// AgentDeductionGroup is one owning agent's share of the aggregation report.
type AgentDeductionGroup struct {
	AgentID    string                     `json:"agent_id"`
	Total      int64                      `json:"total"`
	Deductions []AdvanceDeductionResponse `json:"deductions"`
}

type PeriodReportResponse struct {
	PeriodStart string                `json:"period_start"`
	PeriodEnd   string                `json:"period_end"`
	Total       int64                 `json:"total"`
	Groups      []AgentDeductionGroup `json:"groups"`
}

type SursalaireResponse struct {
	ID                     string                     `json:"id"`
	Reference              string                     `json:"reference"`
	BeneficiaryID          string                     `json:"beneficiary_id"`
	PeriodStart            string                     `json:"period_start"`
	PeriodEnd              string                     `json:"period_end"`
	AdvanceDeductions      []AdvanceDeductionResponse `json:"advance_deductions"`
	TotalAdvanceDeductions int64                      `json:"total_advance_deductions"`
	CreditedAmount         int64                      `json:"credited_amount"`
	Status                 string                     `json:"status"`
	BeneficiaryPayrollID   *string                    `json:"beneficiary_payroll_id,omitempty"`
	CreditedAt             *string                    `json:"credited_at,omitempty"`
	CancelledAt            *string                    `json:"cancelled_at,omitempty"`
	CancelReason           string                     `json:"cancel_reason,omitempty"`
	CreatedAt              string                     `json:"created_at"`
	UpdatedAt              string                     `json:"updated_at"`
}

func mapDeductions(deductions []AdvanceDeduction) []AdvanceDeductionResponse {
	out := make([]AdvanceDeductionResponse, 0, len(deductions))
	for _, d := range deductions {
		out = append(out, AdvanceDeductionResponse{
			AdvanceID:       d.AdvanceID.String(),
			PayrollID:       d.PayrollID.String(),
			AgentID:         d.AgentID.String(),
			DeductionAmount: d.DeductionAmount,
			DeductionDate:   d.DeductionDate.Format("2006-01-02"),
		})
	}
	return out
}

func mapToResponse(s Sursalaire) SursalaireResponse {
	return SursalaireResponse{
		ID:                     s.ID.String(),
		Reference:              s.Reference,
		BeneficiaryID:          s.BeneficiaryID.String(),
		PeriodStart:            s.PeriodStart.Format("2006-01-02"),
		PeriodEnd:              s.PeriodEnd.Format("2006-01-02"),
		AdvanceDeductions:      mapDeductions(s.AdvanceDeductions),
		TotalAdvanceDeductions: s.TotalAdvanceDeductions,
		CreditedAmount:         s.CreditedAmount,
		Status:                 s.Status,
		BeneficiaryPayrollID:   formatUUIDPtr(s.BeneficiaryPayrollID),
		CreditedAt:             formatTimePtr(s.CreditedAt),
		CancelledAt:            formatTimePtr(s.CancelledAt),
		CancelReason:           s.CancelReason,
		CreatedAt:              s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              s.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(list []Sursalaire) []SursalaireResponse {
	out := make([]SursalaireResponse, 0, len(list))
	for _, s := range list {
		out = append(out, mapToResponse(s))
	}
	return out
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func formatUUIDPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
