package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/casavia/brokerage-api/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, time.September, 14, hour, min, 0, 0, time.UTC)
}

func TestEventsConflict(t *testing.T) {
	// Straight overlap.
	assert.True(t, model.EventsConflict(at(10, 0), at(11, 0), at(10, 30), at(11, 30)))

	// No overlap but inside the 30 minute buffer: an 11:15 start after an
	// event ending 11:00 still conflicts.
	assert.True(t, model.EventsConflict(at(10, 0), at(11, 0), at(11, 15), at(12, 0)))

	// 11:31 is past the buffer, so it is fine.
	assert.False(t, model.EventsConflict(at(10, 0), at(11, 0), at(11, 31), at(12, 30)))

	// The buffer applies on the leading side too.
	assert.True(t, model.EventsConflict(at(12, 0), at(13, 0), at(11, 0), at(11, 45)))
	assert.False(t, model.EventsConflict(at(12, 0), at(13, 0), at(10, 0), at(11, 29)))

	// Symmetry: either event may be "existing".
	assert.Equal(t,
		model.EventsConflict(at(10, 0), at(11, 0), at(11, 15), at(12, 0)),
		model.EventsConflict(at(11, 15), at(12, 0), at(10, 0), at(11, 0)))
}

func TestWithinBusinessHours(t *testing.T) {
	assert.True(t, model.WithinBusinessHours(at(8, 0), at(9, 0)))
	assert.True(t, model.WithinBusinessHours(at(17, 0), at(18, 0)), "ending exactly at close is allowed")
	assert.True(t, model.WithinBusinessHours(at(9, 30), at(10, 30)))

	assert.False(t, model.WithinBusinessHours(at(7, 59), at(9, 0)))
	assert.False(t, model.WithinBusinessHours(at(17, 30), at(18, 30)))
	assert.False(t, model.WithinBusinessHours(at(17, 45), at(18, 15)))
}
