package reporterrors

import (
	"net/http"

	"go-hris-workflow/internal/shared/apperror"
)

var (
	ErrReportTypeRequired = apperror.New(
		apperror.CodeValidation,
		"report_type is required",
		http.StatusUnprocessableEntity,
	)
	ErrMotifRequired = apperror.New(
		apperror.CodeValidation,
		"motif is required",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusUnprocessableEntity,
	)
	ErrIncompleteNewPeriod = apperror.New(
		apperror.CodeValidation,
		"new_start_date and new_end_date must be given together",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidNewPeriod = apperror.New(
		apperror.CodeValidation,
		"new_end_date must be on or after new_start_date",
		http.StatusUnprocessableEntity,
	)
)
