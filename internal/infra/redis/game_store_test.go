package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"buzzquiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*GameStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewGameStore(client, time.Hour), mr
}

func sampleGame(code string) *domain.Game {
	game := &domain.Game{
		ID:    domain.NewID(),
		Code:  code,
		State: domain.StateWaitingForCategories,
	}
	p := &domain.Player{ID: domain.NewID(), UserID: "user-1", Name: "Alice", IsCreator: true}
	p.Category = &domain.Category{
		ID:          domain.NewID(),
		Title:       "Capitals",
		PlayerID:    p.ID,
		IsSubmitted: true,
		Clues: []*domain.Clue{
			{ID: domain.NewID(), Question: "q", Answer: "a", PointValue: 100},
		},
	}
	game.Players = []*domain.Player{p}
	return game
}

func TestCreateAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	game := sampleGame("AAAA22")
	if err := store.CreateGame(ctx, game); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("game:AAAA22") {
		t.Fatal("expected game key in redis")
	}

	loaded, err := store.LoadGame(ctx, "AAAA22")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != game.ID || len(loaded.Players) != 1 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if loaded.Players[0].Category.Clues[0].PointValue != 100 {
		t.Fatal("clue graph did not survive the round trip")
	}
}

func TestCreateGameDetectsCodeConflict(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if err := store.CreateGame(ctx, sampleGame("BBBB22")); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateGame(ctx, sampleGame("BBBB22")); !errors.Is(err, domain.ErrCodeConflict) {
		t.Fatalf("expected code conflict, got %v", err)
	}
}

func TestLoadGameNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.LoadGame(context.Background(), "ZZZZ99"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadClueUsesIndex(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	game := sampleGame("CCCC22")
	if err := store.CreateGame(ctx, game); err != nil {
		t.Fatal(err)
	}
	clueID := game.Players[0].Category.Clues[0].ID
	if !mr.Exists("clue:" + clueID) {
		t.Fatal("expected clue index key")
	}

	clue, err := store.LoadClue(ctx, clueID)
	if err != nil {
		t.Fatalf("load clue: %v", err)
	}
	if clue.ID != clueID {
		t.Fatalf("expected clue %s, got %s", clueID, clue.ID)
	}

	if _, err := store.LoadClue(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveGamePersistsMutations(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	game := sampleGame("DDDD22")
	if err := store.CreateGame(ctx, game); err != nil {
		t.Fatal(err)
	}
	game.State = domain.StateInProgress
	game.CurrentChoosingPlayerID = game.Players[0].ID
	if err := store.SaveGame(ctx, game); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadGame(ctx, "DDDD22")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.State != domain.StateInProgress {
		t.Fatalf("expected in-progress, got %s", loaded.State)
	}
}

func TestSaveCategoryUpserts(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	game := sampleGame("EEEE22")
	if err := store.CreateGame(ctx, game); err != nil {
		t.Fatal(err)
	}
	player := game.Players[0]

	replacement := &domain.Category{
		ID:          player.Category.ID,
		Title:       "Rivers",
		PlayerID:    player.ID,
		IsSubmitted: true,
		Clues: []*domain.Clue{
			{ID: domain.NewID(), Question: "q2", Answer: "a2", PointValue: 200},
		},
	}
	if err := store.SaveCategory(ctx, "EEEE22", replacement); err != nil {
		t.Fatalf("save category: %v", err)
	}

	loaded, err := store.LoadGame(ctx, "EEEE22")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Players[0].Category.Title != "Rivers" {
		t.Fatalf("expected replaced category, got %+v", loaded.Players[0].Category)
	}
	if _, err := store.LoadClue(ctx, replacement.Clues[0].ID); err != nil {
		t.Fatalf("new clue should be indexed: %v", err)
	}
}
