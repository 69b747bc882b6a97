package models

import "errors"

var (
	ErrDeckExhausted     = errors.New("deck exhausted: draw and discard piles are both empty")
	ErrInvariantViolated = errors.New("card conservation invariant violated")
	ErrGameFinished      = errors.New("game already finished")
	ErrTurnLimitExceeded = errors.New("turn limit exceeded")
	ErrInvalidDeck       = errors.New("invalid deck")
	ErrInvalidCard       = errors.New("invalid card")
	ErrUnknownPolicy     = errors.New("unknown penitence policy")
	ErrUnwinnablePolicy  = errors.New("penitence policy combination can never finish a race")
	ErrRaceNotStarted    = errors.New("race not started")
)

// IsFatal reports whether err aborts a race rather than being a caller mistake.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDeckExhausted) ||
		errors.Is(err, ErrInvariantViolated) ||
		errors.Is(err, ErrTurnLimitExceeded)
}
