package workflowerrors

import (
	"errors"
	"fmt"
	"net/http"

	"go-hris-workflow/internal/hierarchy"
	"go-hris-workflow/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Request not found",
		http.StatusNotFound,
	)

	ErrValidatorNotFound = apperror.New(
		apperror.CodeNotFound,
		"Validator not found",
		http.StatusNotFound,
	)

	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"Only the requester can perform this action",
		http.StatusForbidden,
	)

	ErrNotCurrentValidator = apperror.New(
		apperror.CodeForbidden,
		"You are not the current validator of this request",
		http.StatusForbidden,
	)

	ErrNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"Request is not a draft",
		http.StatusConflict,
	)

	ErrNotInFlight = apperror.New(
		apperror.CodeInvalidState,
		"Request is not awaiting validation",
		http.StatusConflict,
	)

	ErrRequesterSignatureRequired = apperror.New(
		apperror.CodeValidation,
		"Requester signature is required before submission",
		http.StatusUnprocessableEntity,
	)

	ErrSignatureRequired = apperror.New(
		apperror.CodeValidation,
		"Signature is required to approve",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidDecision = apperror.New(
		apperror.CodeValidation,
		"Decision must be APPROVE or REJECT",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeValidation,
		"Unknown request status",
		http.StatusUnprocessableEntity,
	)

	ErrSelfValidation = apperror.New(
		apperror.CodePolicyViolation,
		"A requester cannot validate their own request",
		http.StatusUnprocessableEntity,
	)

	ErrConcurrentModification = apperror.New(
		apperror.CodeConflict,
		"Request was modified concurrently, reload and retry",
		http.StatusConflict,
	)

	ErrInvariantViolation = apperror.New(
		apperror.CodeInvariantViolation,
		"Workflow state is inconsistent",
		http.StatusInternalServerError,
	)
)

// PolicyViolation reports a validator whose role breaks the approval chain.
func PolicyViolation(expected, actual hierarchy.Role) *apperror.AppError {
	return apperror.New(
		apperror.CodePolicyViolation,
		fmt.Sprintf(
			"Next validator must have role %s (%s), got %s (%s)",
			expected, expected.Label(), actual, actual.Label(),
		),
		http.StatusUnprocessableEntity,
	)
}

// EndOfChain reports an attempt to forward past the last role of the chain.
func EndOfChain(current, actual hierarchy.Role) *apperror.AppError {
	return apperror.New(
		apperror.CodePolicyViolation,
		fmt.Sprintf(
			"No validator may follow role %s (%s), got %s (%s); approve without a next validator",
			current, current.Label(), actual, actual.Label(),
		),
		http.StatusUnprocessableEntity,
	)
}

// RoleDrift reports a validator whose current role no longer matches the hop they were assigned.
func RoleDrift(expected, actual hierarchy.Role) *apperror.AppError {
	return apperror.New(
		apperror.CodeForbidden,
		fmt.Sprintf("This step expects role %s, your role is %s", expected, actual),
		http.StatusForbidden,
	)
}

func Invariant(reason string) *apperror.AppError {
	return apperror.Wrap(
		errors.New(reason),
		apperror.CodeInvariantViolation,
		ErrInvariantViolation.Message,
		http.StatusInternalServerError,
	)
}
