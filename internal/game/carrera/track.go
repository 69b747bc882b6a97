package carrera

import (
	"fmt"
	"strings"

	"carrera/internal/game/common"
)

// WinningPosition ends the race the first time any horse reaches it.
const WinningPosition = 11

// Track holds one position per horse, indexed by common.Suits order.
// Positions are not clamped; penitence may push a horse below zero.
type Track [len(common.Suits)]int

func (t *Track) Advance(s common.Suit, delta int) {
	t[mustIndex(s)] += delta
}

func (t Track) Position(s common.Suit) int {
	return t[mustIndex(s)]
}

// CountAt returns how many horses stand on pos.
func (t Track) CountAt(pos int) int {
	n := 0
	for _, p := range t {
		if p == pos {
			n++
		}
	}
	return n
}

// Winner returns the first horse at or past the winning position.
// Only one position changes per elementary update, so at most one qualifies.
func (t Track) Winner() (common.Suit, bool) {
	for i, p := range t {
		if p >= WinningPosition {
			return common.Suits[i], true
		}
	}
	return "", false
}

// Render produces one line per horse.
func (t Track) Render() string {
	var b strings.Builder
	for i, p := range t {
		b.WriteString(RenderHorse(i+1, common.Suits[i], p))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderHorse formats a single horse line; a horse at the winning position
// is reported as the winner instead of by number.
func RenderHorse(number int, s common.Suit, pos int) string {
	if pos >= WinningPosition {
		return fmt.Sprintf("Horse %d (%s): winner!", number, s)
	}
	return fmt.Sprintf("Horse %d (%s): %d", number, s, pos)
}

func mustIndex(s common.Suit) int {
	i := s.Index()
	if i < 0 {
		panic(fmt.Sprintf("carrera: unknown suit %q", string(s)))
	}
	return i
}
