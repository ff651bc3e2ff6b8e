package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTrialActive(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &User{TrialStartDate: start, TrialEndDate: start.Add(TrialDuration)}

	assert.True(t, user.IsTrialActive(start))
	assert.True(t, user.IsTrialActive(start.Add(TrialDuration-time.Second)))
	assert.False(t, user.IsTrialActive(start.Add(TrialDuration)))
	assert.False(t, user.IsTrialActive(start.Add(30*24*time.Hour)))
}

func TestTrialDaysLeft(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &User{TrialStartDate: start, TrialEndDate: start.Add(TrialDuration)}

	assert.Equal(t, 3, user.TrialDaysLeft(start))
	// partial days round up
	assert.Equal(t, 3, user.TrialDaysLeft(start.Add(time.Hour)))
	assert.Equal(t, 1, user.TrialDaysLeft(start.Add(TrialDuration-time.Hour)))
	assert.Equal(t, 0, user.TrialDaysLeft(start.Add(TrialDuration)))
	// never negative, no matter how stale the window
	assert.Equal(t, 0, user.TrialDaysLeft(start.Add(365*24*time.Hour)))
}
