package http

import (
	"context"
	"testing"
	"time"

	"buzzquiz-service/internal/app"
	"buzzquiz-service/internal/infra/memory"
)

func TestHubDeliversSnapshotsOnChange(t *testing.T) {
	store := memory.NewGameStore()
	hub := NewHub(store)
	service := app.NewGameService(store, hub)

	game, err := service.CreateGame(context.Background(), "user-alice", "Alice")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	updates, cancel := hub.Subscribe(game.Code)
	defer cancel()

	if _, err := service.JoinGame(context.Background(), game.Code, "user-bob", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	select {
	case snap := <-updates:
		if len(snap.Players) != 2 {
			t.Fatalf("expected 2 players in snapshot, got %d", len(snap.Players))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestHubIgnoresChangesWithoutSubscribers(t *testing.T) {
	store := memory.NewGameStore()
	hub := NewHub(store)
	// No panic and no fetch for a code nobody watches.
	hub.GameChanged("ZZZZ99")
}

func TestHubCancelStopsDelivery(t *testing.T) {
	store := memory.NewGameStore()
	hub := NewHub(store)
	service := app.NewGameService(store, hub)

	game, err := service.CreateGame(context.Background(), "user-alice", "Alice")
	if err != nil {
		t.Fatal(err)
	}

	updates, cancel := hub.Subscribe(game.Code)
	cancel()

	if _, err := service.JoinGame(context.Background(), game.Code, "user-bob", "Bob"); err != nil {
		t.Fatal(err)
	}

	// The channel is closed; a receive must not block.
	select {
	case _, ok := <-updates:
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("closed channel should be immediately readable")
	}
}
