package absence

import (
	"strings"

	absenceerrors "go-hris-workflow/internal/absence/errors"
	"go-hris-workflow/internal/shared/dateutil"
)

// Payload is the body of an absence request. An absence covers a half day
// (morning or afternoon), one full day, a period, or a number of deductible days.
type Payload struct {
	AbsenceType    string   `json:"absence_type" binding:"required"`
	MorningDate    string   `json:"morning_date"`
	AfternoonDate  string   `json:"afternoon_date"`
	FullDayDate    string   `json:"full_day_date"`
	PeriodStart    string   `json:"period_start"`
	PeriodEnd      string   `json:"period_end"`
	DeductibleDays *int     `json:"deductible_days"`
	DurationDays   float64  `json:"duration_days"`
	Motif          string   `json:"motif" binding:"required,max=1000"`
	Comment        string   `json:"comment" binding:"max=1000"`
	Attachments    []string `json:"attachments"`
}

func (p Payload) Validate() error {
	if strings.TrimSpace(p.AbsenceType) == "" {
		return absenceerrors.ErrAbsenceTypeRequired
	}
	if strings.TrimSpace(p.Motif) == "" {
		return absenceerrors.ErrMotifRequired
	}

	for _, d := range []string{p.MorningDate, p.AfternoonDate, p.FullDayDate, p.PeriodStart, p.PeriodEnd} {
		if d == "" {
			continue
		}
		if _, err := dateutil.Parse(d); err != nil {
			return absenceerrors.ErrInvalidDateFormat
		}
	}

	if (p.PeriodStart == "") != (p.PeriodEnd == "") {
		return absenceerrors.ErrIncompletePeriod
	}
	if p.PeriodStart != "" {
		start, _ := dateutil.Parse(p.PeriodStart)
		end, _ := dateutil.Parse(p.PeriodEnd)
		if end.Before(start) {
			return absenceerrors.ErrInvalidPeriod
		}
	}

	if p.DeductibleDays != nil && *p.DeductibleDays < 0 {
		return absenceerrors.ErrNegativeDeductibleDays
	}

	if p.PeriodStart == "" && p.FullDayDate == "" && p.MorningDate == "" &&
		p.AfternoonDate == "" && p.DeductibleDays == nil {
		return absenceerrors.ErrNoDuration
	}
	return nil
}

// Duration follows the precedence period, full day, half day, deductible days.
func (p Payload) Duration() float64 {
	if p.PeriodStart != "" && p.PeriodEnd != "" {
		start, err1 := dateutil.Parse(p.PeriodStart)
		end, err2 := dateutil.Parse(p.PeriodEnd)
		if err1 == nil && err2 == nil && !end.Before(start) {
			return float64(dateutil.DaysInclusive(start, end))
		}
		return 0
	}
	if p.FullDayDate != "" {
		return 1
	}
	if p.MorningDate != "" || p.AfternoonDate != "" {
		return 0.5
	}
	if p.DeductibleDays != nil {
		return float64(*p.DeductibleDays)
	}
	return 0
}

func normalize(p Payload) Payload {
	p.DurationDays = p.Duration()
	return p
}
