package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"buzzquiz-service/internal/domain"
)

// GameStore abstracts how game aggregates are persisted (in-memory, Redis,
// Postgres). Loads return fully hydrated graphs; the engine reasons over the
// whole aggregate per call and never caches between calls.
type GameStore interface {
	// CreateGame persists a new game, returning domain.ErrCodeConflict if
	// the join code is already taken.
	CreateGame(ctx context.Context, game *domain.Game) error
	LoadGame(ctx context.Context, code string) (*domain.Game, error)
	// LoadClue resolves a clue by ID across all games.
	LoadClue(ctx context.Context, clueID string) (*domain.Clue, error)
	SaveGame(ctx context.Context, game *domain.Game) error
	// SaveCategory upserts one player's category inside the game aggregate.
	SaveCategory(ctx context.Context, code string, category *domain.Category) error
}

// Notifier receives a fire-and-forget change signal after every successful
// mutation; subscribers re-fetch the game themselves.
type Notifier interface {
	GameChanged(code string)
}

// GameService contains the game session use cases and the state machine
// guarding them.
type GameService struct {
	store    GameStore
	notifier Notifier
	now      func() time.Time
	intn     func(int) int
	locks    codeLocks
}

func NewGameService(store GameStore, notifier Notifier) *GameService {
	return &GameService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		intn:     rand.Intn,
	}
}

// NewGameServiceWithClock is test-only for deterministic timestamps and
// random draws.
func NewGameServiceWithClock(store GameStore, notifier Notifier, now func() time.Time, intn func(int) int) *GameService {
	return &GameService{
		store:    store,
		notifier: notifier,
		now:      now,
		intn:     intn,
	}
}

// CategoryInput carries a category submission from the authoring UI.
type CategoryInput struct {
	Title string
	Clues []ClueInput
}

type ClueInput struct {
	Question   string
	Answer     string
	PointValue int
}

const maxCodeAttempts = 5

// CreateGame starts a new session with the caller attached as its creator.
// Join codes are random; the store detects collisions and the engine retries
// with a fresh code.
func (s *GameService) CreateGame(ctx context.Context, userID, name string) (*domain.Game, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}

	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		game := &domain.Game{
			ID:        domain.NewID(),
			Code:      newJoinCode(s.intn),
			CreatedAt: s.now(),
			State:     domain.StateWaitingForCategories,
			Players: []*domain.Player{{
				ID:        domain.NewID(),
				UserID:    userID,
				Name:      name,
				IsCreator: true,
			}},
		}
		err := s.store.CreateGame(ctx, game)
		if err == nil {
			return game, nil
		}
		if !errors.Is(err, domain.ErrCodeConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("could not allocate a unique game code: %w", lastErr)
}

// JoinGame adds a player for the user unless one already exists, in which
// case the current game is returned unchanged and nobody is notified.
func (s *GameService) JoinGame(ctx context.Context, code, userID, name string) (*domain.Game, error) {
	code = normalizeCode(code)
	game, err := s.store.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}

	if existing := game.FindPlayerByUser(userID); existing != nil {
		return game, nil
	}

	game.Players = append(game.Players, &domain.Player{
		ID:     domain.NewID(),
		UserID: userID,
		Name:   name,
	})
	if err := s.store.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	s.notifier.GameChanged(code)
	return game, nil
}

// SaveCategory validates and upserts the player's category. Input validation
// runs before any storage access so a malformed submission never partially
// persists. With submit set, the category must hold exactly five clues with
// point values 100 through 500.
func (s *GameService) SaveCategory(ctx context.Context, code, playerID string, input CategoryInput, submit bool) (*domain.Game, error) {
	if err := validateCategoryInput(input, submit); err != nil {
		return nil, err
	}

	code = normalizeCode(code)
	game, err := s.store.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	player := game.FindPlayer(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s is not in game %s", domain.ErrNotFound, playerID, code)
	}

	category := &domain.Category{
		ID:          domain.NewID(),
		Title:       input.Title,
		PlayerID:    player.ID,
		IsSubmitted: submit,
	}
	if player.Category != nil {
		category.ID = player.Category.ID
		category.IsSubmitted = player.Category.IsSubmitted || submit
	}
	for _, in := range input.Clues {
		category.Clues = append(category.Clues, &domain.Clue{
			ID:         domain.NewID(),
			Question:   in.Question,
			Answer:     in.Answer,
			PointValue: in.PointValue,
			CategoryID: category.ID,
		})
	}
	player.Category = category

	if err := s.store.SaveCategory(ctx, code, category); err != nil {
		return nil, err
	}
	s.notifier.GameChanged(code)
	return game, nil
}

// StartGame moves the session into play. Only the creator may start, every
// player needs a submitted category, and a game of one is not a game.
func (s *GameService) StartGame(ctx context.Context, code, userID string) (*domain.Game, error) {
	code = normalizeCode(code)
	game, err := s.store.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}

	creator := game.Creator()
	if creator == nil || creator.UserID != userID {
		return nil, fmt.Errorf("%w: only the game creator can start the game", domain.ErrInvalidOperation)
	}
	if len(game.Players) < 2 {
		return nil, fmt.Errorf("%w: at least two players are required to start", domain.ErrInvalidOperation)
	}
	if !game.AllCategoriesSubmitted() {
		return nil, fmt.Errorf("%w: all players must submit their categories before starting", domain.ErrInvalidOperation)
	}

	game.State = domain.StateInProgress
	game.CurrentChoosingPlayerID = creator.ID

	if err := s.store.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	s.notifier.GameChanged(code)
	return game, nil
}

// SelectClue puts a clue in play. A clue that is unknown or already answered
// fails the same way; clients cannot tell the two apart.
func (s *GameService) SelectClue(ctx context.Context, code, clueID string) (*domain.Game, error) {
	code = normalizeCode(code)
	game, err := s.store.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.State != domain.StateInProgress {
		return nil, fmt.Errorf("%w: game is not in progress", domain.ErrInvalidOperation)
	}

	clue, err := s.store.LoadClue(ctx, clueID)
	if err != nil || clue.IsAnswered() || game.FindClue(clueID) == nil {
		return nil, fmt.Errorf("%w: clue is already answered or does not exist", domain.ErrInvalidOperation)
	}

	game.SelectedClueID = clueID
	game.State = domain.StateClueSelected

	if err := s.store.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	s.notifier.GameChanged(code)
	return game, nil
}

// PressBuzzer registers the first buzz for the selected clue. Concurrent
// presses serialize on a per-game lock; losers get the winning state back
// unchanged, which is an outcome, not an error.
func (s *GameService) PressBuzzer(ctx context.Context, code, playerID string) (*domain.Game, error) {
	code = normalizeCode(code)
	mu := s.locks.forCode(code)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.store.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.State != domain.StateClueSelected && game.State != domain.StateBuzzerPressed {
		return nil, fmt.Errorf("%w: buzzer cannot be pressed in the current game state", domain.ErrInvalidOperation)
	}
	clue := game.SelectedClue()
	if clue == nil {
		return nil, fmt.Errorf("%w: no clue is currently selected", domain.ErrInvalidOperation)
	}
	player := game.FindPlayer(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: player %s is not in game %s", domain.ErrNotFound, playerID, code)
	}
	if owner := game.ClueOwner(clue.ID); owner != nil && owner.ID == player.ID {
		return nil, fmt.Errorf("%w: you cannot buzz for your own clue", domain.ErrInvalidOperation)
	}

	// Lost race: someone already buzzed. Return their state untouched.
	if game.BuzzedPlayerID != "" {
		return game, nil
	}

	now := s.now()
	game.BuzzedPlayerID = player.ID
	game.BuzzedAt = &now
	game.State = domain.StateBuzzerPressed

	if err := s.store.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	s.notifier.GameChanged(code)
	return game, nil
}

// JudgeAnswer lets the clue owner rule on the buzzed player's answer. A
// correct ruling claims the clue for the buzzed player and hands them control
// (or finishes the game); an incorrect one reopens the same clue for buzzing.
func (s *GameService) JudgeAnswer(ctx context.Context, code, judgingPlayerID string, isCorrect bool) (*domain.Game, error) {
	code = normalizeCode(code)
	game, err := s.store.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.State != domain.StateBuzzerPressed {
		return nil, fmt.Errorf("%w: cannot judge an answer when the buzzer has not been pressed", domain.ErrInvalidOperation)
	}
	clue := game.SelectedClue()
	if clue == nil {
		return nil, fmt.Errorf("%w: no clue is currently selected", domain.ErrInvalidOperation)
	}
	if game.BuzzedPlayerID == "" {
		return nil, fmt.Errorf("%w: no player has buzzed in", domain.ErrInvalidOperation)
	}
	owner := game.ClueOwner(clue.ID)
	if owner == nil || owner.ID != judgingPlayerID {
		return nil, fmt.Errorf("%w: only the owner of the clue can judge the answer", domain.ErrInvalidOperation)
	}

	if isCorrect {
		clue.AnsweredByPlayerID = game.BuzzedPlayerID
		s.advanceAfterAnswer(game, game.BuzzedPlayerID)
	} else {
		game.State = domain.StateClueSelected
	}
	game.BuzzedPlayerID = ""
	game.BuzzedAt = nil

	if err := s.store.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	s.notifier.GameChanged(code)
	return game, nil
}

// NoOneCanAnswer closes out a clue nobody buzzed for. The clue is claimed by
// its owner with the no-answer flag set, which the score fold counts as a
// penalty against them.
func (s *GameService) NoOneCanAnswer(ctx context.Context, code, judgingPlayerID string) (*domain.Game, error) {
	code = normalizeCode(code)
	game, err := s.store.LoadGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.State != domain.StateClueSelected {
		return nil, fmt.Errorf("%w: no clue is open for answers", domain.ErrInvalidOperation)
	}
	clue := game.SelectedClue()
	if clue == nil {
		return nil, fmt.Errorf("%w: no clue is currently selected", domain.ErrInvalidOperation)
	}
	owner := game.ClueOwner(clue.ID)
	if owner == nil || owner.ID != judgingPlayerID {
		return nil, fmt.Errorf("%w: only the owner of the clue can mark it as unanswered", domain.ErrInvalidOperation)
	}

	clue.AnsweredByPlayerID = owner.ID
	clue.NoOneCouldAnswer = true
	s.advanceAfterAnswer(game, owner.ID)
	game.BuzzedPlayerID = ""
	game.BuzzedAt = nil

	if err := s.store.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	s.notifier.GameChanged(code)
	return game, nil
}

// advanceAfterAnswer runs the shared tail of both answer paths: finish the
// game when the board is exhausted, otherwise hand off control, and clear the
// selection either way.
func (s *GameService) advanceAfterAnswer(game *domain.Game, answererID string) {
	if game.AllCluesAnswered() {
		game.State = domain.StateFinished
	} else {
		game.CurrentChoosingPlayerID = nextChooser(game, answererID, s.intn)
		game.State = domain.StateInProgress
	}
	game.SelectedClueID = ""
}

func validateCategoryInput(input CategoryInput, submit bool) error {
	for _, c := range input.Clues {
		if c.PointValue < 100 || c.PointValue > 500 || c.PointValue%100 != 0 {
			return fmt.Errorf("%w: clue point values must be 100, 200, 300, 400, or 500", domain.ErrInvalidArgument)
		}
	}
	if !submit {
		return nil
	}

	if len(input.Clues) != 5 {
		return fmt.Errorf("%w: a submitted category must have exactly 5 clues with point values 100 through 500", domain.ErrInvalidArgument)
	}
	seen := make(map[int]bool, 5)
	for _, c := range input.Clues {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return fmt.Errorf("%w: every clue needs question and answer text", domain.ErrInvalidArgument)
		}
		if seen[c.PointValue] {
			return fmt.Errorf("%w: a submitted category must have exactly 5 clues with point values 100 through 500", domain.ErrInvalidArgument)
		}
		seen[c.PointValue] = true
	}
	return nil
}
