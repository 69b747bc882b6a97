// Package race drives a carrera game turn by turn and fans each step out to
// the sinks watching it: the console report, spectators and publishers.
package race

import (
	"context"
	"errors"
	"strconv"
	"time"

	"carrera/internal/game/carrera"
	"carrera/internal/game/common"
	"carrera/internal/models"
	"carrera/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Sink receives every race event in order.
type Sink interface {
	Publish(ctx context.Context, ev models.RaceEvent) error
}

type Runner struct {
	Game  *carrera.Game
	Sinks []Sink
	// TurnDelay paces the race for spectators. Zero runs flat out.
	TurnDelay time.Duration
	Logger    *zap.Logger

	now func() time.Time
}

// Run plays the race to its end. A sink failure is logged and never stops the
// race; a fatal game error publishes race:aborted and is returned.
func (r *Runner) Run(ctx context.Context) (common.Suit, error) {
	g := r.Game
	log := r.logger().With(zap.String("race_id", g.ID.String()), zap.Uint64("seed", g.Seed))

	ctx, span := tracing.StartSpan(ctx, "race.run",
		attribute.String("race.id", g.ID.String()),
		attribute.String("race.seed", strconv.FormatUint(g.Seed, 10)),
	)
	defer span.End()

	log.Info("race started")
	r.publish(ctx, log, r.event(models.EventRaceStarted, nil))

	for g.State() == carrera.Running {
		res, err := r.step(ctx)
		if err != nil {
			return "", r.abort(ctx, log, err)
		}
		r.publish(ctx, log, r.event(models.EventRaceTurn, turnView(res)))
		if res.Finished {
			break
		}
		if err := r.wait(ctx); err != nil {
			return "", r.abort(ctx, log, err)
		}
	}

	winner := g.Winner()
	span.SetAttributes(
		attribute.String("race.winner", string(winner)),
		attribute.Int("race.turns", g.Turn()),
	)
	log.Info("race finished", zap.String("winner", string(winner)), zap.Int("turns", g.Turn()))
	ev := r.event(models.EventRaceFinished, nil)
	ev.Winner = string(winner)
	r.publish(ctx, log, ev)
	return winner, nil
}

func (r *Runner) step(ctx context.Context) (carrera.TurnResult, error) {
	_, span := tracing.StartSpan(ctx, "race.turn", attribute.Int("race.turn", r.Game.Turn()+1))
	defer span.End()

	res, err := r.Game.Step()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	span.SetAttributes(
		attribute.String("race.card", res.Card.String()),
		attribute.Bool("race.penitence", res.Penitence != nil),
		attribute.IntSlice("race.positions", res.AfterPenitence[:]),
	)
	if res.Penitence != nil {
		span.SetAttributes(attribute.String("race.penitence_card", res.Penitence.String()))
	}
	return res, nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.TurnDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.TurnDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) abort(ctx context.Context, log *zap.Logger, err error) error {
	turn := zap.Int("turn", r.Game.Turn())
	switch {
	case models.IsFatal(err):
		log.Error("race aborted", turn, zap.Bool("fatal", true), zap.Error(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("race interrupted", turn, zap.Error(err))
	default:
		log.Error("race stopped", turn, zap.Bool("fatal", false), zap.Error(err))
	}
	ev := r.event(models.EventRaceAborted, nil)
	ev.Error = err.Error()
	// Sinks still get the abort when the race context is already done.
	r.publish(context.WithoutCancel(ctx), log, ev)
	return err
}

func (r *Runner) publish(ctx context.Context, log *zap.Logger, ev models.RaceEvent) {
	for _, s := range r.Sinks {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, ev); err != nil {
			log.Warn("race sink publish failed", zap.String("event", ev.Type), zap.Error(err))
		}
	}
}

func (r *Runner) event(typ string, turn *models.TurnView) models.RaceEvent {
	return models.RaceEvent{
		Type:       typ,
		RaceID:     r.Game.ID.String(),
		Seed:       r.Game.Seed,
		Turns:      r.Game.Turn(),
		Turn:       turn,
		Horses:     horsesView(r.Game.Track()),
		OccurredAt: r.clock(),
	}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now().UTC()
}
