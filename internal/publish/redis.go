// Package publish mirrors race events onto external brokers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carrera/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	channelPrefix = "carrera:race:"
	// lastEventTTL keeps the most recent event around for late subscribers.
	lastEventTTL = time.Hour
)

// Message is the envelope written to the channel. It has the websocket
// envelope's fields, but Timestamp is when the event occurred rather than
// when it was sent.
type Message struct {
	Type      string           `json:"type"`
	Payload   models.RaceEvent `json:"payload"`
	Timestamp string           `json:"timestamp"`
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisPublisher publishes every race event on carrera:race:<race_id> and
// keeps the latest one under carrera:race:<race_id>:last.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(ctx context.Context, opts RedisOptions) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisPublisher{rdb: rdb}, nil
}

func Channel(raceID string) string {
	return channelPrefix + raceID
}

func Encode(ev models.RaceEvent) ([]byte, error) {
	return json.Marshal(Message{
		Type:      ev.Type,
		Payload:   ev,
		Timestamp: ev.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
}

func (p *RedisPublisher) Publish(ctx context.Context, ev models.RaceEvent) error {
	b, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	ch := Channel(ev.RaceID)
	_, err = p.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, ch, b)
		pipe.Set(ctx, ch+":last", b, lastEventTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", ch, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
