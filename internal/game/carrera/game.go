package carrera

import (
	"errors"
	"fmt"

	"carrera/internal/game/common"
	"carrera/internal/models"

	"github.com/google/uuid"
)

// DefaultMaxTurns bounds a race that, through a bad policy pairing, can no
// longer make progress.
const DefaultMaxTurns = 10000

type State int

const (
	Running State = iota
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Options struct {
	// Seed drives every shuffle when Rand is nil.
	Seed uint64
	Rand common.Randomizer

	// Order, when set, is used as the initial draw order instead of a
	// shuffled deck. It must be one complete Spanish deck.
	Order []common.Card

	// Penitence defaults to DefaultPenitence when either policy is nil.
	Penitence Penitence

	// MaxTurns defaults to DefaultMaxTurns; negative disables the limit.
	MaxTurns int
}

// TurnResult records everything one turn did.
type TurnResult struct {
	Turn           int
	Card           common.Card
	AfterDraw      Track
	Penitence      *common.Card
	AfterPenitence Track
	DrawPile       int
	DiscardPile    int
	Finished       bool
	Winner         common.Suit
}

// Game is the whole mutable state of one race.
type Game struct {
	ID   uuid.UUID
	Seed uint64

	deck      *Deck
	track     Track
	penitence Penitence
	maxTurns  int

	turn   int
	state  State
	winner common.Suit
}

func NewGame(opts Options) (*Game, error) {
	rng := opts.Rand
	if rng == nil {
		rng = common.NewSeeded(opts.Seed)
	}

	var order []common.Card
	if opts.Order != nil {
		if err := common.ValidateDeck(opts.Order); err != nil {
			return nil, fmt.Errorf("new game: %w", err)
		}
		order = append(order, opts.Order...)
	} else {
		order = common.NewSpanishDeck()
		common.Shuffle(rng, order)
	}

	pen := opts.Penitence
	if pen.Trigger == nil || pen.Reveal == nil {
		def := DefaultPenitence()
		if pen.Trigger == nil {
			pen.Trigger = def.Trigger
		}
		if pen.Reveal == nil {
			pen.Reveal = def.Reveal
		}
	}

	maxTurns := opts.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}

	return &Game{
		ID:        uuid.New(),
		Seed:      opts.Seed,
		deck:      NewDeck(order, rng),
		penitence: pen,
		maxTurns:  maxTurns,
		state:     Running,
	}, nil
}

// Step plays one turn: draw, discard, advance, maybe penitence, then the win check.
func (g *Game) Step() (TurnResult, error) {
	if g.state == Finished {
		return TurnResult{}, models.ErrGameFinished
	}
	if g.maxTurns > 0 && g.turn >= g.maxTurns {
		return TurnResult{}, fmt.Errorf("turn %d: %w (limit %d)", g.turn+1, models.ErrTurnLimitExceeded, g.maxTurns)
	}

	c, err := g.deck.Draw()
	if err != nil {
		return TurnResult{}, fmt.Errorf("turn %d: %w", g.turn+1, err)
	}
	g.turn++
	g.deck.Discard(c)
	g.track.Advance(c.Suit, 1)

	res := TurnResult{Turn: g.turn, Card: c, AfterDraw: g.track}

	if g.penitence.Trigger(g.track, c.Suit) {
		pc, err := g.penitence.Resolve(g.deck, &g.track)
		if err != nil {
			return res, fmt.Errorf("turn %d: %w", g.turn, err)
		}
		res.Penitence = &pc
	}
	res.AfterPenitence = g.track

	if err := g.deck.Check(); err != nil {
		return res, fmt.Errorf("turn %d: %w", g.turn, err)
	}
	res.DrawPile, res.DiscardPile = g.deck.Sizes()

	if w, ok := g.track.Winner(); ok {
		g.state = Finished
		g.winner = w
		res.Finished = true
		res.Winner = w
	}
	return res, nil
}

// Play runs turns until the race finishes or a fatal error occurs.
// onTurn may be nil.
func (g *Game) Play(onTurn func(TurnResult)) (common.Suit, error) {
	for g.state == Running {
		res, err := g.Step()
		if err != nil {
			if errors.Is(err, models.ErrGameFinished) {
				break
			}
			return "", err
		}
		if onTurn != nil {
			onTurn(res)
		}
	}
	return g.winner, nil
}

func (g *Game) State() State { return g.state }
func (g *Game) Turn() int    { return g.turn }
func (g *Game) Track() Track { return g.track }

func (g *Game) Winner() common.Suit { return g.winner }

func (g *Game) piles() (draw, discard int) { return g.deck.Sizes() }
