package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()

	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	assert.Equal(t, []string{"tick"}, s.Jobs())

	s.Start()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RunOnceSurvivesFailures(t *testing.T) {
	s := NewScheduler()

	var calls atomic.Int32
	s.AddJob("fails", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})
	s.AddJob("panics", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		panic("worse")
	})
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NotPanics(t, func() { s.RunOnce(context.Background()) })
	assert.Equal(t, int32(3), calls.Load())
}
