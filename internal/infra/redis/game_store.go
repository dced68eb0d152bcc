package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buzzquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// GameStore keeps each game aggregate as a single JSON document keyed by its
// join code, plus one index key per clue so clues resolve back to their game.
// Keys:
//
//	game:{code}  -> JSON aggregate
//	clue:{id}    -> game code
//
// Join-code uniqueness rides on SET NX at create time.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{client: client, ttl: ttl}
}

func (s *GameStore) CreateGame(ctx context.Context, game *domain.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.gameKey(game.Code), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCodeConflict, game.Code)
	}
	return s.indexClues(ctx, game)
}

func (s *GameStore) LoadGame(ctx context.Context, code string) (*domain.Game, error) {
	data, err := s.client.Get(ctx, s.gameKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	var game domain.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("unmarshal game: %w", err)
	}
	return &game, nil
}

func (s *GameStore) LoadClue(ctx context.Context, clueID string) (*domain.Clue, error) {
	code, err := s.client.Get(ctx, s.clueKey(clueID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: clue %s", domain.ErrNotFound, clueID)
	}
	if err != nil {
		return nil, fmt.Errorf("load clue: %w", err)
	}
	game, err := s.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	clue := game.FindClue(clueID)
	if clue == nil {
		return nil, fmt.Errorf("%w: clue %s", domain.ErrNotFound, clueID)
	}
	return clue, nil
}

func (s *GameStore) SaveGame(ctx context.Context, game *domain.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}
	if err := s.client.Set(ctx, s.gameKey(game.Code), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return s.indexClues(ctx, game)
}

func (s *GameStore) SaveCategory(ctx context.Context, code string, category *domain.Category) error {
	game, err := s.LoadGame(ctx, code)
	if err != nil {
		return err
	}
	player := game.FindPlayer(category.PlayerID)
	if player == nil {
		return fmt.Errorf("%w: player %s in game %s", domain.ErrNotFound, category.PlayerID, code)
	}
	player.Category = category.Clone()
	return s.SaveGame(ctx, game)
}

func (s *GameStore) indexClues(ctx context.Context, game *domain.Game) error {
	pipe := s.client.Pipeline()
	for _, p := range game.Players {
		if p.Category == nil {
			continue
		}
		for _, c := range p.Category.Clues {
			pipe.Set(ctx, s.clueKey(c.ID), game.Code, s.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index clues: %w", err)
	}
	return nil
}

func (s *GameStore) gameKey(code string) string {
	return "game:" + code
}

func (s *GameStore) clueKey(clueID string) string {
	return "clue:" + clueID
}
