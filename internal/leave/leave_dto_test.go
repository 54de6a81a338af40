package leave

import (
	"testing"

	leaveerrors "go-hris-workflow/internal/leave/errors"

	"github.com/stretchr/testify/assert"
)

func validPayload() Payload {
	return Payload{
		LeaveType: "conge_annuel",
		StartDate: "2026-07-06",
		EndDate:   "2026-07-10",
		Motif:     "Vacances",
	}
}

func TestPayload_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validPayload().Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		p := validPayload()
		p.LeaveType = "sabbatical"
		assert.ErrorIs(t, p.Validate(), leaveerrors.ErrInvalidLeaveType)
	})

	t.Run("end before start", func(t *testing.T) {
		p := validPayload()
		p.EndDate = "2026-07-01"
		assert.ErrorIs(t, p.Validate(), leaveerrors.ErrInvalidDateRange)
	})

	t.Run("same day", func(t *testing.T) {
		p := validPayload()
		p.EndDate = p.StartDate
		assert.ErrorIs(t, p.Validate(), leaveerrors.ErrInvalidDateRange)
	})

	t.Run("bad date", func(t *testing.T) {
		p := validPayload()
		p.StartDate = "06/07/2026"
		assert.ErrorIs(t, p.Validate(), leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("blank motif", func(t *testing.T) {
		p := validPayload()
		p.Motif = "  "
		assert.ErrorIs(t, p.Validate(), leaveerrors.ErrMotifRequired)
	})
}

func TestNormalize(t *testing.T) {
	p := validPayload()
	p.TotalDays = 40

	assert.Equal(t, 5, normalize(p).TotalDays)

	p.EndDate = "garbage"
	assert.Equal(t, 0, normalize(p).TotalDays)
}

func TestDefinition(t *testing.T) {
	def := Definition()
	assert.Equal(t, Kind, def.Kind)
	assert.Equal(t, "LV", def.Prefix)
	assert.Equal(t, "Congé annuel", validPayload().LeaveTypeLabel())
}
