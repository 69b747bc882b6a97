package race

import (
	"context"
	"slices"
	"sync"

	"carrera/internal/models"
)

// Manager keeps the latest snapshot of the race being run. It is a Sink so
// the runner feeds it like any other observer; HTTP handlers read from it.
type Manager struct {
	mu      sync.RWMutex
	snap    models.RaceSnapshot
	started bool
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Publish(_ context.Context, ev models.RaceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = true
	m.snap.RaceID = ev.RaceID
	m.snap.Seed = ev.Seed
	m.snap.Turns = ev.Turns
	m.snap.Horses = ev.Horses
	m.snap.UpdatedAt = ev.OccurredAt

	switch ev.Type {
	case models.EventRaceStarted:
		m.snap.State = models.RaceStateRunning
		m.snap.LastTurn = nil
		m.snap.Winner = ""
		m.snap.Error = ""
	case models.EventRaceTurn:
		if ev.Turn != nil {
			m.snap.LastTurn = ev.Turn
		}
	case models.EventRaceFinished:
		m.snap.State = models.RaceStateFinished
		m.snap.Winner = ev.Winner
	case models.EventRaceAborted:
		m.snap.State = models.RaceStateAborted
		m.snap.Error = ev.Error
	}
	return nil
}

// Snapshot returns a copy of the current race state.
func (m *Manager) Snapshot() (models.RaceSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.started {
		return models.RaceSnapshot{}, models.ErrRaceNotStarted
	}
	s := m.snap
	s.Horses = slices.Clone(m.snap.Horses)
	return s, nil
}
