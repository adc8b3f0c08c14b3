package contract

import "time"

type CreateContractRequest struct {
	AgentID     string `json:"agent_id" binding:"required,uuid"`
	Type        string `json:"type" binding:"required,oneof=cdi cdd mission"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date"`
	BaseSalary  int64  `json:"base_salary" binding:"required,gt=0"`
	Indemnities int64  `json:"indemnities" binding:"gte=0"`
}

type ContractResponse struct {
	ID          string  `json:"id"`
	Reference   string  `json:"reference"`
	AgentID     string  `json:"agent_id"`
	Type        string  `json:"type"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	BaseSalary  int64   `json:"base_salary"`
	Indemnities int64   `json:"indemnities"`
	Status      string  `json:"status"`
}

func mapToResponse(c Contract) ContractResponse {
	resp := ContractResponse{
		ID:          c.ID.String(),
		Reference:   c.Reference,
		AgentID:     c.AgentID.String(),
		Type:        c.Type,
		StartDate:   c.StartDate.Format("2006-01-02"),
		BaseSalary:  c.Salary.BaseSalary,
		Indemnities: c.Salary.Indemnities,
		Status:      c.Status,
	}
	if c.EndDate != nil {
		v := c.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	return resp
}

func mapToListResponse(contracts []Contract) []ContractResponse {
	resp := make([]ContractResponse, len(contracts))
	for i, c := range contracts {
		resp[i] = mapToResponse(c)
	}
	return resp
}

func parseDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", v)
}
