// Package report prints a race for a human at a terminal.
package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"carrera/internal/game/carrera"
	"carrera/internal/game/common"
	"carrera/internal/models"
)

// Text writes each turn as a block of plain text.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) Publish(_ context.Context, ev models.RaceEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case models.EventRaceStarted:
		_, err := fmt.Fprintf(t.w, "Race %s (seed %d)\n\n", ev.RaceID, ev.Seed)
		return err
	case models.EventRaceTurn:
		if ev.Turn == nil {
			return nil
		}
		return t.turn(ev.Turn)
	case models.EventRaceFinished:
		return t.finished(ev)
	case models.EventRaceAborted:
		_, err := fmt.Fprintf(t.w, "Race aborted: %s\n", ev.Error)
		return err
	}
	return nil
}

func (t *Text) turn(tv *models.TurnView) error {
	if _, err := fmt.Fprintf(t.w, "--- Turn %d ---\nCard: %s\n", tv.Number, tv.Card.Label); err != nil {
		return err
	}
	if err := t.horses(tv.AfterDraw); err != nil {
		return err
	}
	if tv.Penitence != nil {
		if _, err := fmt.Fprintf(t.w, "Penitence: %s\n", tv.Penitence.Label); err != nil {
			return err
		}
		if err := t.horses(tv.AfterPenitence); err != nil {
			return err
		}
	}
	_, err := io.WriteString(t.w, "\n")
	return err
}

func (t *Text) horses(hs []models.HorseView) error {
	for _, h := range hs {
		line := carrera.RenderHorse(h.Number, common.Suit(h.Suit), h.Position)
		if _, err := fmt.Fprintln(t.w, line); err != nil {
			return err
		}
	}
	return nil
}

func (t *Text) finished(ev models.RaceEvent) error {
	number := common.Suit(ev.Winner).Index() + 1
	_, err := fmt.Fprintf(t.w, "Horse %d (%s) wins after %d turns!\n", number, ev.Winner, ev.Turns)
	return err
}
