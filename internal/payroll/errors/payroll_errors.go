package payrollerrors

import (
	"net/http"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
)

var (
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll not found",
		http.StatusNotFound,
	)
	ErrInvalidAgentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid agent id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before or equal period_end",
		http.StatusBadRequest,
	)
	ErrInvalidMoneyValue = apperror.New(
		apperror.CodeInvalidInput,
		"salary component values cannot be negative",
		http.StatusBadRequest,
	)
	ErrPayrollAlreadyPaid = apperror.New(
		apperror.CodeInvalidState,
		"payroll is already paid and immutable",
		http.StatusConflict,
	)
	ErrDuplicatePeriod = apperror.New(
		apperror.CodeConflict,
		"a payroll was created concurrently for this agent and period",
		http.StatusConflict,
	)
)
