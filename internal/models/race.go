package models

import "time"

// Event types broadcast to spectators and publishers.
const (
	EventRaceStarted  = "race:started"
	EventRaceTurn     = "race:turn"
	EventRaceFinished = "race:finished"
	EventRaceAborted  = "race:aborted"
	EventRaceSnapshot = "race:snapshot"
)

// Race states as exposed over the wire.
const (
	RaceStateRunning  = "running"
	RaceStateFinished = "finished"
	RaceStateAborted  = "aborted"
)

type CardView struct {
	Rank  int    `json:"rank"`
	Suit  string `json:"suit"`
	Label string `json:"label"`
}

type HorseView struct {
	Number   int    `json:"number"`
	Suit     string `json:"suit"`
	Position int    `json:"position"`
	Won      bool   `json:"won"`
}

type TurnView struct {
	Number         int         `json:"number"`
	Card           CardView    `json:"card"`
	AfterDraw      []HorseView `json:"after_draw"`
	Penitence      *CardView   `json:"penitence,omitempty"`
	AfterPenitence []HorseView `json:"after_penitence,omitempty"`
	DrawPile       int         `json:"draw_pile"`
	DiscardPile    int         `json:"discard_pile"`
}

// RaceEvent is one step of a race as seen from outside the game core.
type RaceEvent struct {
	Type       string      `json:"type"`
	RaceID     string      `json:"race_id"`
	Seed       uint64      `json:"seed"`
	Turns      int         `json:"turns"`
	Turn       *TurnView   `json:"turn,omitempty"`
	Horses     []HorseView `json:"horses"`
	Winner     string      `json:"winner,omitempty"`
	Error      string      `json:"error,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// RaceSnapshot is the latest known state of the race.
type RaceSnapshot struct {
	RaceID    string      `json:"race_id"`
	Seed      uint64      `json:"seed"`
	State     string      `json:"state"`
	Turns     int         `json:"turns"`
	Horses    []HorseView `json:"horses"`
	LastTurn  *TurnView   `json:"last_turn,omitempty"`
	Winner    string      `json:"winner,omitempty"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}
