package agent

type CreateAgentRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
}

type UpdateAgentRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
}

type AgentResponse struct {
	ID        string `json:"id"`
	Matricule string `json:"matricule"`
	FullName  string `json:"full_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status"`
}

func mapToResponse(a Agent) AgentResponse {
	return AgentResponse{
		ID:        a.ID.String(),
		Matricule: a.Matricule,
		FullName:  a.FullName,
		Email:     a.Email,
		Phone:     a.Phone,
		Status:    a.Status,
	}
}

func mapToListResponse(agents []Agent) []AgentResponse {
	resp := make([]AgentResponse, len(agents))
	for i, a := range agents {
		resp[i] = mapToResponse(a)
	}
	return resp
}
