package absenceerrors

import (
	"net/http"

	"go-hris-workflow/internal/shared/apperror"
)

var (
	ErrAbsenceTypeRequired = apperror.New(
		apperror.CodeValidation,
		"absence_type is required",
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
	ErrIncompletePeriod = apperror.New(
		apperror.CodeValidation,
		"period_start and period_end must be given together",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeValidation,
		"period_end must be on or after period_start",
		http.StatusUnprocessableEntity,
	)
	ErrNegativeDeductibleDays = apperror.New(
		apperror.CodeValidation,
		"deductible_days cannot be negative",
		http.StatusUnprocessableEntity,
	)
	ErrNoDuration = apperror.New(
		apperror.CodeValidation,
		"an absence needs a date, a period or deductible days",
		http.StatusUnprocessableEntity,
	)
)
