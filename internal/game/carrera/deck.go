package carrera

import (
	"fmt"

	"carrera/internal/game/common"
	"carrera/internal/models"
)

// Deck owns the two piles of a race. The top of each pile is its last element.
//
// The discard pile doubles as the penitence source: penitence reveals go
// through TakePenitence/ReturnPenitence so the exchange rules live here.
type Deck struct {
	draw    []common.Card
	discard []common.Card
	rng     common.Randomizer
	total   int
}

// NewDeck builds a deck whose draw pile yields order[0] first.
func NewDeck(order []common.Card, rng common.Randomizer) *Deck {
	draw := make([]common.Card, len(order))
	for i, c := range order {
		draw[len(order)-1-i] = c
	}
	return &Deck{
		draw:    draw,
		discard: make([]common.Card, 0, len(order)),
		rng:     rng,
		total:   len(order),
	}
}

// Draw removes the top card of the draw pile, reshuffling the whole discard
// pile into a new draw pile first when it is empty.
func (d *Deck) Draw() (common.Card, error) {
	if len(d.draw) == 0 {
		if err := d.reshuffle(); err != nil {
			return common.Card{}, err
		}
	}
	c := d.draw[len(d.draw)-1]
	d.draw = d.draw[:len(d.draw)-1]
	return c, nil
}

func (d *Deck) Discard(c common.Card) {
	d.discard = append(d.discard, c)
}

func (d *Deck) reshuffle() error {
	if len(d.discard) == 0 {
		return fmt.Errorf("draw: %w", models.ErrDeckExhausted)
	}
	d.draw, d.discard = d.discard, d.draw[:0]
	common.Shuffle(d.rng, d.draw)
	return nil
}

// TakePenitence removes the card chosen by reveal from the discard pile.
// An empty discard pile is first replaced by the whole draw pile, shuffled.
func (d *Deck) TakePenitence(reveal RevealPolicy) (common.Card, error) {
	if len(d.discard) == 0 {
		if len(d.draw) == 0 {
			return common.Card{}, fmt.Errorf("penitence: %w", models.ErrDeckExhausted)
		}
		d.discard, d.draw = d.draw, d.discard[:0]
		common.Shuffle(d.rng, d.discard)
	}
	i := reveal(d.discard, d.rng)
	if i < 0 || i >= len(d.discard) {
		return common.Card{}, fmt.Errorf("penitence: reveal index %d out of range [0,%d): %w",
			i, len(d.discard), models.ErrInvariantViolated)
	}
	c := d.discard[i]
	d.discard = append(d.discard[:i], d.discard[i+1:]...)
	return c, nil
}

// ReturnPenitence puts a revealed penitence card back on top of the discard pile.
func (d *Deck) ReturnPenitence(c common.Card) {
	d.discard = append(d.discard, c)
}

// Sizes returns the draw and discard pile sizes.
func (d *Deck) Sizes() (draw, discard int) {
	return len(d.draw), len(d.discard)
}

// top returns the top of the discard pile without removing it.
func (d *Deck) top() (common.Card, bool) {
	if len(d.discard) == 0 {
		return common.Card{}, false
	}
	return d.discard[len(d.discard)-1], true
}

// Check verifies that no card has been lost or duplicated.
func (d *Deck) Check() error {
	if n := len(d.draw) + len(d.discard); n != d.total {
		return fmt.Errorf("%w: draw=%d discard=%d total=%d want=%d",
			models.ErrInvariantViolated, len(d.draw), len(d.discard), n, d.total)
	}
	return nil
}
