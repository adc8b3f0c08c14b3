package sursalaireerrors

import (
	"net/http"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/apperror"
)

var (
	ErrSursalaireNotFound = apperror.New(
		apperror.CodeNotFound,
		"sursalaire not found",
		http.StatusNotFound,
	)
	ErrInvalidBeneficiaryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid beneficiary id",
		http.StatusBadRequest,
	)
	ErrOverlappingSursalaire = apperror.New(
		apperror.CodeConflict,
		"a sursalaire already exists for an overlapping period",
		http.StatusConflict,
	)
	ErrEmptyAggregate = apperror.New(
		apperror.CodeBusinessRule,
		"no advance deductions found for this period",
		http.StatusUnprocessableEntity,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"sursalaire is not pending",
		http.StatusConflict,
	)
	ErrAlreadyCredited = apperror.New(
		apperror.CodeInvalidState,
		"sursalaire has already been credited",
		http.StatusConflict,
	)
	ErrNoTargetPayroll = apperror.New(
		apperror.CodeBusinessRule,
		"no unpaid payroll found for the beneficiary in this period",
		http.StatusUnprocessableEntity,
	)
)
