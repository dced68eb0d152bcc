package memory

import (
	"context"
	"fmt"
	"sync"

	"buzzquiz-service/internal/domain"
)

// GameStore is an in-memory implementation of app.GameStore. Aggregates are
// deep-copied on every load and save so the stored graph stays authoritative;
// callers can only change it by saving.
type GameStore struct {
	mu    sync.RWMutex
	games map[string]*domain.Game
	clues map[string]string // clue ID -> game code
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[string]*domain.Game),
		clues: make(map[string]string),
	}
}

func (s *GameStore) CreateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.Code]; ok {
		return fmt.Errorf("%w: %s", domain.ErrCodeConflict, game.Code)
	}
	s.putLocked(game)
	return nil
}

func (s *GameStore) LoadGame(_ context.Context, code string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[code]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, code)
	}
	return game.Clone(), nil
}

func (s *GameStore) LoadClue(_ context.Context, clueID string) (*domain.Clue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.clues[clueID]
	if !ok {
		return nil, fmt.Errorf("%w: clue %s", domain.ErrNotFound, clueID)
	}
	game, ok := s.games[code]
	if !ok {
		return nil, fmt.Errorf("%w: clue %s", domain.ErrNotFound, clueID)
	}
	clue := game.FindClue(clueID)
	if clue == nil {
		return nil, fmt.Errorf("%w: clue %s", domain.ErrNotFound, clueID)
	}
	dup := *clue
	return &dup, nil
}

func (s *GameStore) SaveGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.Code]; !ok {
		return fmt.Errorf("%w: game %s", domain.ErrNotFound, game.Code)
	}
	s.putLocked(game)
	return nil
}

func (s *GameStore) SaveCategory(_ context.Context, code string, category *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[code]
	if !ok {
		return fmt.Errorf("%w: game %s", domain.ErrNotFound, code)
	}
	player := game.FindPlayer(category.PlayerID)
	if player == nil {
		return fmt.Errorf("%w: player %s in game %s", domain.ErrNotFound, category.PlayerID, code)
	}
	if player.Category != nil {
		for _, c := range player.Category.Clues {
			delete(s.clues, c.ID)
		}
	}
	player.Category = category.Clone()
	for _, c := range player.Category.Clues {
		s.clues[c.ID] = code
	}
	return nil
}

func (s *GameStore) putLocked(game *domain.Game) {
	stored := game.Clone()
	s.games[stored.Code] = stored
	for _, p := range stored.Players {
		if p.Category == nil {
			continue
		}
		for _, c := range p.Category.Clues {
			s.clues[c.ID] = stored.Code
		}
	}
}
