package leaveerrors

import (
	"net/http"

	"go-hris-workflow/internal/shared/apperror"
)

var (
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeValidation,
		"invalid leave type",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"end_date must be after start_date",
		http.StatusUnprocessableEntity,
	)
	ErrMotifRequired = apperror.New(
		apperror.CodeValidation,
		"motif is required",
		http.StatusUnprocessableEntity,
	)
)
