package handlers

import (
	"context"

	"carrera/internal/models"
	ws "carrera/pkg/websocket"
)

// RaceRoom is the hub room spectators of one race are registered to.
func RaceRoom(raceID string) string {
	return "race:" + raceID
}

// SpectatorSink forwards race events to whichever hub is currently active.
type SpectatorSink struct {
	Hubs *ws.HubRef
}

func (s SpectatorSink) Publish(_ context.Context, ev models.RaceEvent) error {
	if s.Hubs != nil {
		s.Hubs.Broadcast(RaceRoom(ev.RaceID), ev.Type, ev)
	}
	return nil
}
