package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventCourseApproved, func(ctx context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventCourseEnrolled, func(ctx context.Context, e Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "1", Type: EventCourseApproved, CourseID: "c1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].CourseID)
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()

	second := false
	d.Subscribe(EventCourseSubmitted, func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventCourseSubmitted, func(ctx context.Context, e Event) error {
		second = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCourseSubmitted}))
	assert.True(t, second, "later handlers still run after an earlier failure")
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventCourseRejected}))
}
