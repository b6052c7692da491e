package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/engine"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := engine.NewSession("s1", []domain.Question{{ID: "q1", Tier: 1}}, false, engine.Config{}, engine.NewManualScheduler())
	store.Put("s1", session)
	if !mr.Exists("session:live:s1") {
		t.Fatalf("expected redis key to be set")
	}

	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if mr.Exists("session:live:s1") {
		t.Fatalf("expected redis key to be removed")
	}
}
