package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestRecordState(t *testing.T) {
	in := time.Date(2024, 3, 11, 0, 30, 0, 0, time.UTC)
	r := Record{ClockInAt: in}

	assert.Equal(t, StateActive, r.State())
	assert.True(t, r.IsActive())
	assert.Zero(t, r.WorkedMinutes())

	out := in.Add(7*time.Hour + 30*time.Minute + 40*time.Second)
	r.ClockOutAt = &out

	assert.Equal(t, StateCompleted, r.State())
	assert.True(t, r.IsCompleted())
	assert.Equal(t, 450, r.WorkedMinutes())
}

func TestRecordClockOutDistanceMeters(t *testing.T) {
	r := Record{
		ClockInLatitude:  ptr(35.6580),
		ClockInLongitude: ptr(139.7016),
	}
	assert.Nil(t, r.ClockOutDistanceMeters())

	r.ClockOutLatitude = ptr(35.6580)
	r.ClockOutLongitude = ptr(139.7016)
	d := r.ClockOutDistanceMeters()
	require.NotNil(t, d)
	assert.Zero(t, *d)

	r.ClockOutLatitude = ptr(35.6896)
	r.ClockOutLongitude = ptr(139.7006)
	d = r.ClockOutDistanceMeters()
	require.NotNil(t, d)
	assert.InDelta(t, 3514, *d, 20)
	assert.Equal(t, float64(int(*d)), *d)
}
