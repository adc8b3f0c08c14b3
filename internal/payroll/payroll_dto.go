package payroll

import "time"

// GeneratePayrollRequest carries the period plus optional component
// overrides. Pointer fields distinguish "not provided" from an explicit zero.
type GeneratePayrollRequest struct {
	AgentID     string `json:"agent_id" binding:"required,uuid"`
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`

	BaseSalary       *int64 `json:"base_salary"`
	TotalIndemnities *int64 `json:"total_indemnities"`
	Transport        int64  `json:"transport"`
	Risk             int64  `json:"risk"`
	OvertimeHours    int64  `json:"overtime_hours"`

	Accompte int64 `json:"accompte"`
	Absences int64 `json:"absences"`
	// ManualRetenues is the manual component of autres_retenues; advance
	// recoveries are added on top of it.
	ManualRetenues int64 `json:"manual_retenues"`
}

type UpdatePayrollRequest struct {
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`

	BaseSalary       *int64 `json:"base_salary"`
	TotalIndemnities *int64 `json:"total_indemnities"`
	Transport        *int64 `json:"transport"`
	Risk             *int64 `json:"risk"`
	OvertimeHours    *int64 `json:"overtime_hours"`

	Accompte       *int64 `json:"accompte"`
	Absences       *int64 `json:"absences"`
	ManualRetenues *int64 `json:"manual_retenues"`
}

type AdvanceAppliedResponse struct {
	AdvanceID string `json:"advance_id"`
	Amount    int64  `json:"amount"`
}

type GainsResponse struct {
	BaseSalary       int64 `json:"base_salary"`
	Transport        int64 `json:"transport"`
	Risk             int64 `json:"risk"`
	TotalIndemnities int64 `json:"total_indemnities"`
	OvertimeHours    int64 `json:"overtime_hours"`
	Sursalaire       int64 `json:"sursalaire"`
	GrossSalary      int64 `json:"gross_salary"`
}

type DeductionsResponse struct {
	Accompte       int64 `json:"accompte"`
	AutresRetenues int64 `json:"autres_retenues"`
	Absences       int64 `json:"absences"`
	TotalRetenues  int64 `json:"total_retenues"`
}

type PayrollResponse struct {
	ID              string                   `json:"id"`
	Reference       string                   `json:"reference"`
	AgentID         string                   `json:"agent_id"`
	WorkContractID  string                   `json:"work_contract_id"`
	PeriodStart     string                   `json:"period_start"`
	PeriodEnd       string                   `json:"period_end"`
	Gains           GainsResponse            `json:"gains"`
	Deductions      DeductionsResponse       `json:"deductions"`
	CnpsEmployer    int64                    `json:"cnps_employer"`
	AdvancesApplied []AdvanceAppliedResponse `json:"advances_applied"`
	NetAmount       int64                    `json:"net_amount"`
	Paid            bool                     `json:"paid"`
	PaidAt          *string                  `json:"paid_at,omitempty"`
	CreatedAt       string                   `json:"created_at"`
	UpdatedAt       string                   `json:"updated_at"`
}

func mapToResponse(p Payroll) PayrollResponse {
	applied := make([]AdvanceAppliedResponse, 0, len(p.AdvancesApplied))
	for _, a := range p.AdvancesApplied {
		applied = append(applied, AdvanceAppliedResponse{
			AdvanceID: a.AdvanceID.String(),
			Amount:    a.Amount,
		})
	}

	return PayrollResponse{
		ID:             p.ID.String(),
		Reference:      p.Reference,
		AgentID:        p.AgentID.String(),
		WorkContractID: p.WorkContractID.String(),
		PeriodStart:    p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:      p.PeriodEnd.Format("2006-01-02"),
		Gains: GainsResponse{
			BaseSalary:       p.Gains.BaseSalary,
			Transport:        p.Gains.Transport,
			Risk:             p.Gains.Risk,
			TotalIndemnities: p.Gains.TotalIndemnities,
			OvertimeHours:    p.Gains.OvertimeHours,
			Sursalaire:       p.Gains.Sursalaire,
			GrossSalary:      p.Gains.GrossSalary,
		},
		Deductions: DeductionsResponse{
			Accompte:       p.Deductions.Accompte,
			AutresRetenues: p.Deductions.AutresRetenues,
			Absences:       p.Deductions.Absences,
			TotalRetenues:  p.Deductions.TotalRetenues,
		},
		CnpsEmployer:    p.EmployerCharges.CnpsEmployer,
		AdvancesApplied: applied,
		NetAmount:       p.NetAmount,
		Paid:            p.Paid,
		PaidAt:          formatTimePtr(p.PaidAt),
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(payrolls []Payroll) []PayrollResponse {
	out := make([]PayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		out = append(out, mapToResponse(p))
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
