package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll"
	payrollerrors "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/payroll/errors"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/periodguard"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	generateFn   func(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollResponse, error)
	getAllFn     func(ctx context.Context, agentID string) ([]payroll.PayrollResponse, error)
	getByIDFn    func(ctx context.Context, id string) (payroll.PayrollResponse, error)
	updateFn     func(ctx context.Context, id string, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error)
	deleteFn     func(ctx context.Context, id string) error
	markAsPaidFn func(ctx context.Context, id string) (payroll.PayrollResponse, error)
}

func (f *fakePayrollService) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollResponse, error) {
	return f.generateFn(ctx, req)
}

func (f *fakePayrollService) GetAll(ctx context.Context, agentID string) ([]payroll.PayrollResponse, error) {
	return f.getAllFn(ctx, agentID)
}

func (f *fakePayrollService) GetByID(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakePayrollService) Update(ctx context.Context, id string, req payroll.UpdatePayrollRequest) (payroll.PayrollResponse, error) {
	return f.updateFn(ctx, id, req)
}

func (f *fakePayrollService) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakePayrollService) MarkAsPaid(ctx context.Context, id string) (payroll.PayrollResponse, error) {
	return f.markAsPaidFn(ctx, id)
}

func (f *fakePayrollService) ApplySursalaire(ctx context.Context, payrollID uuid.UUID, amount int64) (*payroll.Payroll, error) {
	return nil, nil
}

func TestPayrollHandler_Generate(t *testing.T) {
	agentID := uuid.New().String()

	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollResponse, error) {
			assert.Equal(t, agentID, req.AgentID)
			assert.Equal(t, "2025-01-01", req.PeriodStart)
			return payroll.PayrollResponse{
				ID:        uuid.New().String(),
				Reference: "PAY-2025-0001",
				AgentID:   req.AgentID,
			}, nil
		},
	}

	h := payroll.NewHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"agent_id":"` + agentID + `","period_start":"2025-01-01","period_end":"2025-01-31"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	assert.Contains(t, string(env.Data), "PAY-2025-0001")
}

func TestPayrollHandler_Generate_PeriodConflict(t *testing.T) {
	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollResponse, error) {
			return payroll.PayrollResponse{}, periodguard.ErrPeriodOverlap
		},
	}

	h := payroll.NewHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"agent_id":"` + uuid.New().String() + `","period_start":"2025-01-01","period_end":"2025-01-31"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "PERIOD_CONFLICT", env.Error.Code)
}

func TestPayrollHandler_MarkAsPaid_AlreadyPaid(t *testing.T) {
	svc := &fakePayrollService{
		markAsPaidFn: func(ctx context.Context, id string) (payroll.PayrollResponse, error) {
			return payroll.PayrollResponse{}, payrollerrors.ErrPayrollAlreadyPaid
		},
	}

	h := payroll.NewHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/"+id+"/pay", nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}

	h.MarkAsPaid(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestPayrollHandler_GetById_NotFound(t *testing.T) {
	svc := &fakePayrollService{
		getByIDFn: func(ctx context.Context, id string) (payroll.PayrollResponse, error) {
			return payroll.PayrollResponse{}, payrollerrors.ErrPayrollNotFound
		},
	}

	h := payroll.NewHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodGet, "/payrolls/"+id, nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}

	h.GetById(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestPayrollHandler_Delete(t *testing.T) {
	var deletedID string
	svc := &fakePayrollService{
		deleteFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}

	h := payroll.NewHandler(svc, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	id := uuid.New().String()
	c.Request = httptest.NewRequest(http.MethodDelete, "/payrolls/"+id, nil)
	c.Params = []gin.Param{{Key: "id", Value: id}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, deletedID)
}
