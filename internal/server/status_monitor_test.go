package server

import (
	"context"
	"testing"

	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMonitor_EmitsOnChange(t *testing.T) {
	_, container := setupServer(t)

	var received []*events.Event
	container.EventBus.Subscribe(events.SystemStatusChanged, func(e *events.Event) {
		received = append(received, e)
	})

	monitor := NewStatusMonitor(container.Controller, container.EventManager, zerolog.New(nil).Level(zerolog.Disabled))
	assert.Equal(t, "status_monitor", monitor.Name())

	require.NoError(t, monitor.Run())
	require.Len(t, received, 1)
	assert.Equal(t, network.ConnectionDisconnected, received[0].Data["connection"])

	// Unchanged
	require.NoError(t, monitor.Run())
	assert.Len(t, received, 1)

	_, err := container.Controller.ConnectNetwork(context.Background())
	require.NoError(t, err)

	require.NoError(t, monitor.Run())
	require.Len(t, received, 2)
	assert.Equal(t, network.ConnectionConnected, received[1].Data["connection"])
}
