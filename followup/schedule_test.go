package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleFrom(t *testing.T) {
	sentAt := time.Date(2025, 3, 10, 9, 30, 15, 0, time.UTC)

	sched := ScheduleFrom(sentAt)

	assert.Equal(t, sentAt.Add(3*24*time.Hour), sched.First)
	assert.Equal(t, sentAt.Add(7*24*time.Hour), sched.Second)
	assert.Equal(t, sentAt.Add(14*24*time.Hour), sched.Third)
}

func TestScheduleFromKeepsSubSecondPrecision(t *testing.T) {
	sentAt := time.Date(2025, 3, 10, 9, 30, 15, 123456789, time.UTC)

	sched := ScheduleFrom(sentAt)

	// No rounding: offsets are exact
	assert.Equal(t, time.Duration(0), sched.First.Sub(sentAt)-FirstOffset)
	assert.Equal(t, 123456789, sched.Third.Nanosecond())
}

func TestRemaining(t *testing.T) {
	due := time.Date(2025, 3, 13, 9, 30, 0, 0, time.UTC)

	t.Run("before due date", func(t *testing.T) {
		now := due.Add(-90 * time.Minute)
		assert.Equal(t, 90*time.Minute, Remaining(due, now))
	})

	t.Run("past due date", func(t *testing.T) {
		now := due.Add(26 * time.Hour)
		assert.Equal(t, -26*time.Hour, Remaining(due, now))
	})

	t.Run("exactly due", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), Remaining(due, due))
	})
}

func TestDescribe(t *testing.T) {
	due := time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		overdue bool
		text    string
	}{
		{
			name:    "days remaining shows days and hours",
			now:     due.Add(-(2*24*time.Hour + 5*time.Hour + 40*time.Minute)),
			overdue: false,
			text:    "2d 5h remaining",
		},
		{
			name:    "under a day shows minutes and seconds",
			now:     due.Add(-(3*time.Hour + 17*time.Minute + 42*time.Second)),
			overdue: false,
			text:    "17m 42s remaining",
		},
		{
			name:    "just under a minute",
			now:     due.Add(-25 * time.Second),
			overdue: false,
			text:    "0m 25s remaining",
		},
		{
			name:    "small overdue still shows coarse fields",
			now:     due.Add(90 * time.Second),
			overdue: true,
			text:    "0d 0h 1m overdue",
		},
		{
			name:    "large overdue",
			now:     due.Add(25*time.Hour + 10*time.Minute),
			overdue: true,
			text:    "1d 1h 10m overdue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cd := Describe(due, tt.now)
			assert.Equal(t, tt.overdue, cd.Overdue)
			assert.Equal(t, tt.text, cd.Text)
		})
	}
}

func TestDescribeDecomposition(t *testing.T) {
	due := time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC)
	now := due.Add(-(1*24*time.Hour + 2*time.Hour + 3*time.Minute + 4*time.Second))

	cd := Describe(due, now)

	assert.False(t, cd.Overdue)
	assert.Equal(t, 1, cd.Days)
	assert.Equal(t, 2, cd.Hours)
	assert.Equal(t, 3, cd.Minutes)
	assert.Equal(t, 4, cd.Seconds)
}
