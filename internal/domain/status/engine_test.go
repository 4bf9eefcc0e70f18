package status_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/status"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

var riyadh = time.FixedZone("AST", 3*60*60)

// 2024-06-07 is a Friday.
func friday(hour, minute int) time.Time {
	return time.Date(2024, 6, 7, hour, minute, 0, 0, riyadh)
}

func newEngine() *status.Engine {
	return status.NewEngine(messages.Default(), riyadh, status.DefaultClosingSoonWithin)
}

func TestEvaluate_OvernightRange(t *testing.T) {
	engine := newEngine()
	hours := entities.WeeklyHours{"الجمعة": {Open: "22:00", Close: "02:00"}}

	tests := []struct {
		name      string
		at        time.Time
		state     status.State
		remaining int
	}{
		{"before midnight", friday(23, 30), status.StateOpen, 0},
		{"after midnight", friday(1, 0), status.StateOpen, 0},
		{"closing soon after midnight", friday(1, 45), status.StateClosingSoon, 15},
		{"after close", friday(3, 0), status.StateClosed, 0},
		{"before open", friday(21, 0), status.StateClosed, 0},
		{"exactly at open", friday(22, 0), status.StateOpen, 0},
		{"exactly at close", friday(2, 0), status.StateClosed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Evaluate(hours, tt.at)
			assert.Equal(t, tt.state, got.State)
			assert.Equal(t, tt.remaining, got.MinutesRemaining)
		})
	}
}

func TestEvaluate_SameDayRange(t *testing.T) {
	engine := newEngine()
	hours := entities.WeeklyHours{"الجمعة": {Open: "09:00", Close: "17:00"}}

	assert.Equal(t, status.StateClosed, engine.Evaluate(hours, friday(8, 59)).State)
	assert.Equal(t, status.StateOpen, engine.Evaluate(hours, friday(9, 0)).State)
	assert.Equal(t, status.StateOpen, engine.Evaluate(hours, friday(16, 29)).State)

	soon := engine.Evaluate(hours, friday(16, 30))
	assert.Equal(t, status.StateClosingSoon, soon.State)
	assert.Equal(t, 30, soon.MinutesRemaining)
	assert.Equal(t, "يغلق خلال 30 دقيقة", soon.Message)

	last := engine.Evaluate(hours, friday(16, 59))
	assert.Equal(t, status.StateClosingSoon, last.State)
	assert.Equal(t, 1, last.MinutesRemaining)
}

func TestEvaluate_MissingAndClosedDays(t *testing.T) {
	engine := newEngine()

	t.Run("no hours at all is open", func(t *testing.T) {
		got := engine.Evaluate(nil, friday(4, 0))
		assert.Equal(t, status.StateOpen, got.State)
		assert.Equal(t, messages.Default().Status.Open, got.Message)
	})

	t.Run("day without entry is closed", func(t *testing.T) {
		hours := entities.WeeklyHours{"السبت": {Open: "09:00", Close: "17:00"}}
		got := engine.Evaluate(hours, friday(12, 0))
		assert.Equal(t, status.StateClosed, got.State)
		assert.Equal(t, messages.Default().Status.Closed, got.Message)
	})

	t.Run("closed flag overrides times", func(t *testing.T) {
		hours := entities.WeeklyHours{"الجمعة": {Open: "00:00", Close: "23:59", Closed: true}}
		assert.Equal(t, status.StateClosed, engine.Evaluate(hours, friday(12, 0)).State)
	})

	t.Run("malformed times degrade to open", func(t *testing.T) {
		hours := entities.WeeklyHours{"الجمعة": {Open: "9am", Close: "5pm"}}
		assert.Equal(t, status.StateOpen, engine.Evaluate(hours, friday(3, 0)).State)
	})

	t.Run("english day names are accepted", func(t *testing.T) {
		hours := entities.WeeklyHours{"friday": {Open: "09:00", Close: "17:00"}}
		assert.Equal(t, status.StateOpen, engine.Evaluate(hours, friday(12, 0)).State)
	})
}

func TestEvaluate_UsesEngineZone(t *testing.T) {
	engine := newEngine()
	hours := entities.WeeklyHours{"الجمعة": {Open: "09:00", Close: "17:00"}}

	// 07:00 UTC is 10:00 in Riyadh.
	at := time.Date(2024, 6, 7, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, status.StateOpen, engine.Evaluate(hours, at).State)
}

func TestEvaluate_Deterministic(t *testing.T) {
	engine := newEngine()
	hours := entities.WeeklyHours{"الجمعة": {Open: "22:00", Close: "02:00"}}
	at := friday(1, 45)

	first := engine.Evaluate(hours, at)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Evaluate(hours, at))
	}
}

func TestMinutesOfDay(t *testing.T) {
	m, err := status.MinutesOfDay("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, m)

	for _, bad := range []string{"24:00", "7:30", "07:60", "", "07-30"} {
		_, err := status.MinutesOfDay(bad)
		assert.True(t, apperrors.IsValidation(err), bad)
	}
}

func TestValidateHours(t *testing.T) {
	engine := newEngine()
	assert.NoError(t, engine.ValidateHours(entities.WeeklyHours{
		"الجمعة": {Open: "22:00", Close: "02:00"},
		"السبت":  {Closed: true},
		"monday": {Open: "09:00", Close: "17:00"},
	}))
	assert.True(t, apperrors.IsValidation(engine.ValidateHours(entities.WeeklyHours{
		"الجمعة": {Open: "22:00", Close: "2:00"},
	})))

	for _, day := range []string{"Funday", "Friday", "جمعة"} {
		err := engine.ValidateHours(entities.WeeklyHours{day: {Open: "09:00", Close: "17:00"}})
		assert.True(t, apperrors.IsValidation(err), day)
	}
}
