package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"buzzquiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// GameStore persists game aggregates as one JSONB row per game, with a side
// table mapping clue IDs to their game code for clue lookups.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

func (s *GameStore) CreateGame(ctx context.Context, game *domain.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO games (code, data) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
		game.Code, data)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCodeConflict, game.Code)
	}
	return s.reindexClues(ctx, game)
}

func (s *GameStore) LoadGame(ctx context.Context, code string) (*domain.Game, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM games WHERE code = $1`, code).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	var game domain.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, fmt.Errorf("unmarshal game: %w", err)
	}
	return &game, nil
}

func (s *GameStore) LoadClue(ctx context.Context, clueID string) (*domain.Clue, error) {
	var code string
	err := s.pool.QueryRow(ctx, `SELECT game_code FROM game_clues WHERE clue_id = $1`, clueID).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
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
	tag, err := s.pool.Exec(ctx,
		`UPDATE games SET data = $2, updated_at = now() WHERE code = $1`,
		game.Code, data)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: game %s", domain.ErrNotFound, game.Code)
	}
	return s.reindexClues(ctx, game)
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

func (s *GameStore) reindexClues(ctx context.Context, game *domain.Game) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM game_clues WHERE game_code = $1`, game.Code)
	for _, p := range game.Players {
		if p.Category == nil {
			continue
		}
		for _, c := range p.Category.Clues {
			batch.Queue(`INSERT INTO game_clues (clue_id, game_code) VALUES ($1, $2)`, c.ID, game.Code)
		}
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("index clues: %w", err)
		}
	}
	return nil
}
