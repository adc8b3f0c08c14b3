package advanceerrors

import (
	"net/http"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
)

var (
	ErrAdvanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"advance not found",
		http.StatusNotFound,
	)
	ErrInvalidAgentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid agent id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"advance amount must be positive",
		http.StatusBadRequest,
	)
	ErrInvalidRecoveryPolicy = apperror.New(
		apperror.CodeInvalidInput,
		"recovery policy values must be non-negative and percentage at most 100",
		http.StatusBadRequest,
	)
	ErrNotRequested = apperror.New(
		apperror.CodeInvalidState,
		"advance can only be approved or rejected while requested",
		http.StatusConflict,
	)
	ErrNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"advance can only be submitted from draft",
		http.StatusConflict,
	)
	ErrNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"advance must be approved for this operation",
		http.StatusConflict,
	)
	ErrAlreadyDisbursed = apperror.New(
		apperror.CodeInvalidState,
		"advance has already been disbursed",
		http.StatusConflict,
	)
	ErrAlreadyTerminal = apperror.New(
		apperror.CodeInvalidState,
		"advance is in a terminal status",
		http.StatusConflict,
	)
	ErrNotRecoverable = apperror.New(
		apperror.CodeBusinessRule,
		"advance is not recoverable against this payroll",
		http.StatusUnprocessableEntity,
	)
	ErrRepaymentExceedsRemaining = apperror.New(
		apperror.CodeBusinessRule,
		"repayment exceeds the advance remaining balance",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidRepaymentAmount = apperror.New(
		apperror.CodeInvalidInput,
		"repayment amount must be positive",
		http.StatusBadRequest,
	)
)
