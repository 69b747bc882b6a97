package race

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carrera/internal/game/carrera"
	"carrera/internal/game/common"
	"carrera/internal/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type sinkFunc func(ctx context.Context, ev models.RaceEvent) error

func (f sinkFunc) Publish(ctx context.Context, ev models.RaceEvent) error { return f(ctx, ev) }

type recorder struct {
	mu     sync.Mutex
	events []models.RaceEvent
}

func (r *recorder) Publish(_ context.Context, ev models.RaceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func stackedOrder(prefix ...common.Card) []common.Card {
	used := map[common.Card]bool{}
	order := append([]common.Card(nil), prefix...)
	for _, c := range prefix {
		used[c] = true
	}
	for _, c := range common.NewSpanishDeck() {
		if !used[c] {
			order = append(order, c)
		}
	}
	return order
}

func positions(hs []models.HorseView) []int {
	out := make([]int, len(hs))
	for i, h := range hs {
		out[i] = h.Position
	}
	return out
}

func TestRunner_SeededRaceFinishes(t *testing.T) {
	g, err := carrera.NewGame(carrera.Options{Seed: 42})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	rec := &recorder{}
	mgr := NewManager()
	r := &Runner{Game: g, Sinks: []Sink{rec, mgr}}

	winner, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !winner.Valid() {
		t.Fatalf("winner = %q", winner)
	}

	types := rec.types()
	if types[0] != models.EventRaceStarted || types[len(types)-1] != models.EventRaceFinished {
		t.Fatalf("event bracket = %s ... %s", types[0], types[len(types)-1])
	}
	turns := rec.events[1 : len(rec.events)-1]
	if len(turns) != g.Turn() {
		t.Fatalf("got %d turn events, game played %d turns", len(turns), g.Turn())
	}
	for i, ev := range turns {
		if ev.Type != models.EventRaceTurn || ev.Turn == nil || ev.Turn.Number != i+1 {
			t.Fatalf("event %d = %+v", i+1, ev)
		}
		if ev.RaceID != g.ID.String() || ev.Seed != 42 {
			t.Fatalf("event %d identity = %s/%d", i+1, ev.RaceID, ev.Seed)
		}
	}
	last := rec.events[len(rec.events)-1]
	if last.Winner != string(winner) {
		t.Errorf("finished winner = %q, want %q", last.Winner, winner)
	}

	snap, err := mgr.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != models.RaceStateFinished || snap.Winner != string(winner) || snap.Turns != g.Turn() {
		t.Errorf("snapshot = %+v", snap)
	}
	won := 0
	for _, h := range snap.Horses {
		if h.Won {
			won++
			if h.Suit != string(winner) || h.Position < carrera.WinningPosition {
				t.Errorf("winning horse = %+v", h)
			}
		}
	}
	if won != 1 {
		t.Errorf("%d horses marked as won", won)
	}
}

func TestRunner_AbortsOnTurnLimit(t *testing.T) {
	c := func(r common.Rank, s common.Suit) common.Card { return common.Card{Rank: r, Suit: s} }
	order := stackedOrder(c(1, common.Oro), c(2, common.Espada), c(3, common.Copa), c(4, common.Basto), c(5, common.Oro))
	g, err := carrera.NewGame(carrera.Options{Order: order, MaxTurns: 4})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	rec := &recorder{}
	mgr := NewManager()
	core, logs := observer.New(zapcore.InfoLevel)
	r := &Runner{Game: g, Sinks: []Sink{rec, mgr}, Logger: zap.New(core)}

	_, err = r.Run(context.Background())
	if !errors.Is(err, models.ErrTurnLimitExceeded) {
		t.Fatalf("Run err = %v, want turn limit", err)
	}
	aborted := logs.FilterMessage("race aborted").All()
	if len(aborted) != 1 || aborted[0].Level != zapcore.ErrorLevel || aborted[0].ContextMap()["fatal"] != true {
		t.Errorf("fatal abort log = %+v", aborted)
	}

	want := []string{
		models.EventRaceStarted,
		models.EventRaceTurn, models.EventRaceTurn, models.EventRaceTurn, models.EventRaceTurn,
		models.EventRaceAborted,
	}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	third := rec.events[3].Turn
	if third.Penitence == nil || third.Penitence.Label != "3 de Copa" {
		t.Fatalf("turn 3 penitence = %+v", third.Penitence)
	}
	if p := positions(third.AfterDraw); p[2] != 1 {
		t.Errorf("turn 3 after draw = %v", p)
	}
	if p := positions(third.AfterPenitence); p[2] != 0 {
		t.Errorf("turn 3 after penitence = %v", p)
	}
	if rec.events[4].Turn.Penitence != nil {
		t.Error("turn 4 should not trigger penitence")
	}

	snap, err := mgr.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != models.RaceStateAborted || snap.Error == "" || snap.Turns != 4 {
		t.Errorf("snapshot = %+v", snap)
	}
	if p := positions(snap.Horses); p[0] != 1 || p[1] != 1 || p[2] != 0 || p[3] != 1 {
		t.Errorf("positions = %v, want [1 1 0 1]", p)
	}
}

func TestRunner_SinkErrorDoesNotStopRace(t *testing.T) {
	g, err := carrera.NewGame(carrera.Options{Seed: 7})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	failing := sinkFunc(func(context.Context, models.RaceEvent) error { return errors.New("broker down") })
	rec := &recorder{}
	r := &Runner{Game: g, Sinks: []Sink{failing, nil, rec}}

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	types := rec.types()
	if types[len(types)-1] != models.EventRaceFinished {
		t.Errorf("last event = %s", types[len(types)-1])
	}
}

func TestRunner_CancelDuringDelay(t *testing.T) {
	g, err := carrera.NewGame(carrera.Options{Seed: 3})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	core, logs := observer.New(zapcore.InfoLevel)
	stopper := sinkFunc(func(_ context.Context, ev models.RaceEvent) error {
		if ev.Type == models.EventRaceTurn {
			cancel()
		}
		return nil
	})
	r := &Runner{Game: g, Sinks: []Sink{rec, stopper}, TurnDelay: time.Hour, Logger: zap.New(core)}

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}

	types := rec.types()
	if len(types) != 3 || types[2] != models.EventRaceAborted {
		t.Errorf("events = %v", types)
	}
	if g.Turn() != 1 {
		t.Errorf("played %d turns, want 1", g.Turn())
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Errorf("cancellation logged %d errors", n)
	}
	if logs.FilterMessage("race interrupted").Len() != 1 {
		t.Error("cancellation not logged as an interruption")
	}
}

func TestManager_NotStarted(t *testing.T) {
	if _, err := NewManager().Snapshot(); !errors.Is(err, models.ErrRaceNotStarted) {
		t.Fatalf("Snapshot err = %v", err)
	}
}

func TestManager_SnapshotIsCopy(t *testing.T) {
	m := NewManager()
	_ = m.Publish(context.Background(), models.RaceEvent{
		Type:   models.EventRaceStarted,
		RaceID: "r1",
		Horses: []models.HorseView{{Number: 1, Suit: "Oro"}},
	})
	s1, _ := m.Snapshot()
	s1.Horses[0].Position = 9
	s2, _ := m.Snapshot()
	if s2.Horses[0].Position != 0 || s2.State != models.RaceStateRunning {
		t.Errorf("snapshot shared state: %+v", s2)
	}
}
