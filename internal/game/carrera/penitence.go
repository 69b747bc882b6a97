package carrera

import (
	"carrera/internal/game/common"
)

// TriggerPolicy decides, after a draw has moved a horse, whether penitence fires.
type TriggerPolicy func(t Track, moved common.Suit) bool

// RevealPolicy picks the index of the penitence card within the discard pile.
// The pile is never empty when it is called.
type RevealPolicy func(pile []common.Card, r common.Randomizer) int

// FixedHorse fires when the position of horse s is held by that horse alone,
// whichever horse moved this turn.
func FixedHorse(s common.Suit) TriggerPolicy {
	return func(t Track, _ common.Suit) bool {
		return t.CountAt(t.Position(s)) == 1
	}
}

// LastMoved fires when the horse that just moved stands alone on its position.
func LastMoved(t Track, moved common.Suit) bool {
	return t.CountAt(t.Position(moved)) == 1
}

// MostRecentDiscard reveals the top of the discard pile, which is the card
// drawn this turn.
func MostRecentDiscard(pile []common.Card, _ common.Randomizer) int {
	return len(pile) - 1
}

func RandomDiscard(pile []common.Card, r common.Randomizer) int {
	return r.IntN(len(pile))
}

// Penitence is the secondary draw that sets a horse back by one.
type Penitence struct {
	Trigger TriggerPolicy
	Reveal  RevealPolicy
}

// DefaultPenitence checks the last horse slot and reveals the latest discard.
func DefaultPenitence() Penitence {
	return Penitence{
		Trigger: FixedHorse(common.Suits[len(common.Suits)-1]),
		Reveal:  MostRecentDiscard,
	}
}

// Resolve reveals a penitence card, moves its horse back and returns the card
// to the discard pile.
func (p Penitence) Resolve(d *Deck, t *Track) (common.Card, error) {
	c, err := d.TakePenitence(p.Reveal)
	if err != nil {
		return common.Card{}, err
	}
	t.Advance(c.Suit, -1)
	d.ReturnPenitence(c)
	return c, nil
}
