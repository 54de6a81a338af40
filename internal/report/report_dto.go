package report

import (
	"strings"

	reporterrors "go-hris-workflow/internal/report/errors"
	"go-hris-workflow/internal/shared/dateutil"
)

// Payload is the body of a leave postponement request.
type Payload struct {
	ReportType           string   `json:"report_type" binding:"required"`
	HRLeaveDate          string   `json:"hr_leave_date" binding:"required"`
	PlannedDepartureDate string   `json:"planned_departure_date" binding:"required"`
	NewStartDate         string   `json:"new_start_date"`
	NewEndDate           string   `json:"new_end_date"`
	DurationDays         int      `json:"duration_days"`
	Motif                string   `json:"motif" binding:"required,max=1000"`
	Comment              string   `json:"comment" binding:"max=1000"`
	Attachments          []string `json:"attachments"`
}

func (p Payload) Validate() error {
	if strings.TrimSpace(p.ReportType) == "" {
		return reporterrors.ErrReportTypeRequired
	}
	if strings.TrimSpace(p.Motif) == "" {
		return reporterrors.ErrMotifRequired
	}

	for _, d := range []string{p.HRLeaveDate, p.PlannedDepartureDate} {
		if _, err := dateutil.Parse(d); err != nil {
			return reporterrors.ErrInvalidDateFormat
		}
	}

	if (p.NewStartDate == "") != (p.NewEndDate == "") {
		return reporterrors.ErrIncompleteNewPeriod
	}
	if p.NewStartDate == "" {
		return nil
	}

	start, err := dateutil.Parse(p.NewStartDate)
	if err != nil {
		return reporterrors.ErrInvalidDateFormat
	}
	end, err := dateutil.Parse(p.NewEndDate)
	if err != nil {
		return reporterrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return reporterrors.ErrInvalidNewPeriod
	}
	return nil
}

// normalize derives duration_days from the new period when one is given.
func normalize(p Payload) Payload {
	p.DurationDays = 0
	if p.NewStartDate == "" || p.NewEndDate == "" {
		return p
	}
	start, err1 := dateutil.Parse(p.NewStartDate)
	end, err2 := dateutil.Parse(p.NewEndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return p
	}
	p.DurationDays = dateutil.DaysInclusive(start, end)
	return p
}
