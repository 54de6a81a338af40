package leave

import (
	"strings"

	leaveerrors "go-hris-workflow/internal/leave/errors"
	"go-hris-workflow/internal/shared/dateutil"
)

var leaveTypes = map[string]string{
	"conge_annuel":           "Congé annuel",
	"conge_maladie":          "Congé maladie",
	"conge_maternite":        "Congé maternité",
	"conge_paternite":        "Congé paternité",
	"conge_sans_solde":       "Congé sans solde",
	"absence_exceptionnelle": "Absence exceptionnelle",
}

// Payload is the body of a leave request.
type Payload struct {
	LeaveType   string   `json:"leave_type" binding:"required"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	TotalDays   int      `json:"total_days"`
	Motif       string   `json:"motif" binding:"required,max=1000"`
	Comment     string   `json:"comment" binding:"max=1000"`
	Attachments []string `json:"attachments"`
}

func (p Payload) Validate() error {
	if _, ok := leaveTypes[p.LeaveType]; !ok {
		return leaveerrors.ErrInvalidLeaveType
	}
	if strings.TrimSpace(p.Motif) == "" {
		return leaveerrors.ErrMotifRequired
	}

	start, err := dateutil.Parse(p.StartDate)
	if err != nil {
		return leaveerrors.ErrInvalidDateFormat
	}
	end, err := dateutil.Parse(p.EndDate)
	if err != nil {
		return leaveerrors.ErrInvalidDateFormat
	}
	if !end.After(start) {
		return leaveerrors.ErrInvalidDateRange
	}
	return nil
}

// LeaveTypeLabel returns the display name of the leave type.
func (p Payload) LeaveTypeLabel() string {
	if l, ok := leaveTypes[p.LeaveType]; ok {
		return l
	}
	return p.LeaveType
}

// normalize derives total_days from the dates; any client value is ignored.
func normalize(p Payload) Payload {
	p.TotalDays = 0
	start, err := dateutil.Parse(p.StartDate)
	if err != nil {
		return p
	}
	end, err := dateutil.Parse(p.EndDate)
	if err != nil || end.Before(start) {
		return p
	}
	p.TotalDays = dateutil.DaysInclusive(start, end)
	return p
}
