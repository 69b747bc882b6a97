package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"carrera/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestChannel(t *testing.T) {
	if got := Channel("abc"); got != "carrera:race:abc" {
		t.Errorf("Channel = %q", got)
	}
}

func TestEncode(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := models.RaceEvent{
		Type:       models.EventRaceFinished,
		RaceID:     "abc",
		Seed:       9,
		Turns:      40,
		Winner:     "Oro",
		OccurredAt: at,
	}
	b, err := Encode(ev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(b, &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Type != models.EventRaceFinished || msg.Timestamp != "2024-05-01T12:00:00Z" {
		t.Errorf("envelope = %+v", msg)
	}
	if msg.Payload.Winner != "Oro" || msg.Payload.Turns != 40 || msg.Payload.Seed != 9 {
		t.Errorf("payload = %+v", msg.Payload)
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub, err := NewRedisPublisher(ctx, RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisPublisher: %v", err)
	}
	defer pub.Close()

	subClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer subClient.Close()
	sub := subClient.Subscribe(ctx, Channel("r1"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ev := models.RaceEvent{
		Type:       models.EventRaceTurn,
		RaceID:     "r1",
		Turns:      3,
		Turn:       &models.TurnView{Number: 3, Card: models.CardView{Rank: 3, Suit: "Copa", Label: "3 de Copa"}},
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := pub.Publish(ctx, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want, _ := Encode(ev)

	select {
	case m := <-sub.Channel():
		if m.Channel != "carrera:race:r1" || m.Payload != string(want) {
			t.Errorf("received %s on %s", m.Payload, m.Channel)
		}
	case <-ctx.Done():
		t.Fatal("no message on the race channel")
	}

	last, err := mr.Get("carrera:race:r1:last")
	if err != nil {
		t.Fatalf("get last: %v", err)
	}
	if last != string(want) {
		t.Errorf("last = %s, want %s", last, want)
	}
	if ttl := mr.TTL("carrera:race:r1:last"); ttl != time.Hour {
		t.Errorf("last TTL = %s, want 1h", ttl)
	}
}

func TestNewRedisPublisher_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := NewRedisPublisher(ctx, RedisOptions{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatal("expected ping failure for closed port")
	}
}
