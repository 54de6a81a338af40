package approval

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"net/http"
	"strings"

	"go-hris-workflow/internal/shared/apperror"
	workflowerrors "go-hris-workflow/internal/workflow/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const entryStepConstraint = "uq_workflow_entries_request_step"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return workflowerrors.ErrRequestNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return unavailable(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == entryStepConstraint:
			return workflowerrors.ErrConcurrentModification
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return workflowerrors.ErrConcurrentModification
		case strings.HasPrefix(pgErr.Code, "08"):
			return unavailable(err)
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || errors.Is(err, driver.ErrBadConn) {
		return unavailable(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return unavailable(err)
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, entryStepConstraint) {
		return workflowerrors.ErrConcurrentModification
	}

	return err
}

func unavailable(err error) error {
	return apperror.Wrap(
		err,
		apperror.CodeServiceUnavailable,
		"Storage is temporarily unavailable, retry later",
		http.StatusServiceUnavailable,
	)
}
