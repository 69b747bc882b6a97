package race

import (
	"fmt"

	"carrera/internal/config"
	"carrera/internal/game/carrera"
	"carrera/internal/game/common"
)

// NewGame builds the race described by cfg. Without a configured seed a
// fresh one is drawn; it is kept on the game so the race can be replayed.
func NewGame(cfg config.Config) (*carrera.Game, error) {
	pen, err := carrera.PenitenceFromNames(cfg.PenitenceTrigger, cfg.PenitenceReveal)
	if err != nil {
		return nil, err
	}

	var order []common.Card
	if cfg.StackedDeck != "" {
		order, err = common.ParseCards(cfg.StackedDeck)
		if err != nil {
			return nil, fmt.Errorf("CARRERA_STACKED_DECK: %w", err)
		}
	}

	seed := cfg.Seed
	if !cfg.SeedSet {
		seed = common.RandomSeed()
	}

	return carrera.NewGame(carrera.Options{
		Seed:      seed,
		Order:     order,
		Penitence: pen,
		MaxTurns:  cfg.MaxTurns,
	})
}
