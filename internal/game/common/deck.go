package common

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
	"strings"
	"time"

	"carrera/internal/models"
)

// DeckSize is the number of cards in a Spanish deck.
const DeckSize = 40

// Randomizer is the only source of randomness a race consumes.
// *math/rand/v2.Rand satisfies it.
type Randomizer interface {
	IntN(n int) int
}

func NewSpanishDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle is a Fisher–Yates shuffle driven by r.
func Shuffle(r Randomizer, cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// NewSeeded returns a reproducible PCG-backed Randomizer.
func NewSeeded(seed uint64) Randomizer {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomSeed draws a seed from crypto/rand.
// If crypto/rand fails, it falls back to a time-derived seed.
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		seed := uint64(time.Now().UnixNano())
		return (seed*6364136223846793005 + 1) & 0x7fffffffffffffff
	}
	return binary.LittleEndian.Uint64(b[:])
}

// ValidateDeck checks that cards is exactly one complete Spanish deck.
func ValidateDeck(cards []Card) error {
	if len(cards) != DeckSize {
		return fmt.Errorf("%w: %d cards, want %d", models.ErrInvalidDeck, len(cards), DeckSize)
	}
	seen := make(map[Card]bool, DeckSize)
	for _, c := range cards {
		if !c.Suit.Valid() || !c.Rank.Valid() {
			return fmt.Errorf("%w: unknown card %s", models.ErrInvalidDeck, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: duplicate card %s", models.ErrInvalidDeck, c)
		}
		seen[c] = true
	}
	return nil
}

// ParseCards reads a comma-separated list of cards, e.g. "1 de Oro, 12 de Basto".
func ParseCards(list string) ([]Card, error) {
	var cards []Card
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := ParseCard(part)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
