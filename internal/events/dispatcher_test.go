package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created, status []string
	d.Subscribe(EventReportCreated, func(_ context.Context, e Event) error {
		created = append(created, e.Protocol)
		return nil
	})
	d.Subscribe(EventReportStatusChanged, func(_ context.Context, e Event) error {
		status = append(status, e.Protocol)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventReportCreated, Protocol: "AB12CD34"}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventMessageAdded, Protocol: "AB12CD34"}))

	assert.Equal(t, []string{"AB12CD34"}, created)
	assert.Empty(t, status)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventReportCreated, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventReportCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventReportCreated}))
	assert.True(t, reached)
}
