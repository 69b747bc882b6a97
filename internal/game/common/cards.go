package common

import (
	"fmt"
	"strconv"
	"strings"

	"carrera/internal/models"
)

type Suit string

const (
	Oro    Suit = "Oro"
	Espada Suit = "Espada"
	Copa   Suit = "Copa"
	Basto  Suit = "Basto"
)

// Suits lists the suits in horse order: Oro is horse 1, Basto is horse 4.
var Suits = [4]Suit{Oro, Espada, Copa, Basto}

// Index returns the suit's horse slot (0-3), or -1 for an unknown suit.
func (s Suit) Index() int {
	for i, v := range Suits {
		if v == s {
			return i
		}
	}
	return -1
}

func (s Suit) Valid() bool { return s.Index() >= 0 }

type Rank int

const (
	Sota    Rank = 10
	Caballo Rank = 11
	Rey     Rank = 12
)

// Ranks of the Spanish 40-card deck; 8 and 9 are not part of it.
var Ranks = []Rank{1, 2, 3, 4, 5, 6, 7, Sota, Caballo, Rey}

func (r Rank) Valid() bool {
	return (r >= 1 && r <= 7) || (r >= Sota && r <= Rey)
}

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return fmt.Sprintf("%d de %s", int(c.Rank), c.Suit)
}

// ParseCard reads the "<rank> de <suit>" form produced by String.
func ParseCard(s string) (Card, error) {
	rankStr, suitStr, ok := strings.Cut(strings.TrimSpace(s), " de ")
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", models.ErrInvalidCard, s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(rankStr))
	if err != nil || !Rank(n).Valid() {
		return Card{}, fmt.Errorf("%w: rank in %q", models.ErrInvalidCard, s)
	}
	for _, suit := range Suits {
		if strings.EqualFold(string(suit), strings.TrimSpace(suitStr)) {
			return Card{Rank: Rank(n), Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("%w: suit in %q", models.ErrInvalidCard, s)
}
