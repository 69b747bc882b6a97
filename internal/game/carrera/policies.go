package carrera

import (
	"fmt"
	"sort"

	"carrera/internal/game/common"
	"carrera/internal/models"
)

const (
	TriggerFixedHorse = "fixed-horse"
	TriggerLastMoved  = "last-moved"

	RevealMostRecent = "most-recent"
	RevealRandom     = "random"
)

var triggers = map[string]TriggerPolicy{
	TriggerFixedHorse: FixedHorse(common.Basto),
	TriggerLastMoved:  LastMoved,
}

var reveals = map[string]RevealPolicy{
	RevealMostRecent: MostRecentDiscard,
	RevealRandom:     RandomDiscard,
}

// PenitenceFromNames resolves configured policy names. Empty names select the
// defaults.
//
// last-moved with most-recent is rejected: every move that leaves the mover
// alone on its square is undone by its own card, and from the start line
// every move does.
func PenitenceFromNames(trigger, reveal string) (Penitence, error) {
	if trigger == "" {
		trigger = TriggerFixedHorse
	}
	if reveal == "" {
		reveal = RevealMostRecent
	}
	tp, ok := triggers[trigger]
	if !ok {
		return Penitence{}, fmt.Errorf("%w: trigger %q (known: %v)", models.ErrUnknownPolicy, trigger, names(triggers))
	}
	rp, ok := reveals[reveal]
	if !ok {
		return Penitence{}, fmt.Errorf("%w: reveal %q (known: %v)", models.ErrUnknownPolicy, reveal, names(reveals))
	}
	if trigger == TriggerLastMoved && reveal == RevealMostRecent {
		return Penitence{}, fmt.Errorf("%w: %s with %s", models.ErrUnwinnablePolicy, trigger, reveal)
	}
	return Penitence{Trigger: tp, Reveal: rp}, nil
}

func names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
