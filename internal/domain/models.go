package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameState tracks where a game is in its lifecycle.
type GameState string

const (
	StateWaitingForCategories GameState = "waiting_for_categories"
	StateInProgress           GameState = "in_progress"
	StateClueSelected         GameState = "clue_selected"
	StateBuzzerPressed        GameState = "buzzer_pressed"
	StateFinished             GameState = "finished"
)

// Game is the full session aggregate. It is loaded, mutated, and persisted
// wholesale per operation; nothing outside the current call caches it.
type Game struct {
	ID                      string     `json:"id"`
	Code                    string     `json:"code"`
	CreatedAt               time.Time  `json:"createdAt"`
	State                   GameState  `json:"state"`
	Players                 []*Player  `json:"players"`
	CurrentChoosingPlayerID string     `json:"currentChoosingPlayerId,omitempty"`
	SelectedClueID          string     `json:"selectedClueId,omitempty"`
	BuzzedPlayerID          string     `json:"buzzedPlayerId,omitempty"`
	BuzzedAt                *time.Time `json:"buzzedAt,omitempty"`
}

// Player belongs to exactly one game and owns at most one category.
type Player struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	IsCreator bool      `json:"isCreator"`
	Category  *Category `json:"category,omitempty"`
}

// Category is one player's board column: five clues once submitted.
type Category struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	IsSubmitted bool    `json:"isSubmitted"`
	PlayerID    string  `json:"playerId"`
	Clues       []*Clue `json:"clues"`
}

// Clue is a single question/answer pair. Answered-ness is derived from
// AnsweredByPlayerID rather than stored separately.
type Clue struct {
	ID                 string `json:"id"`
	Question           string `json:"question"`
	Answer             string `json:"answer"`
	PointValue         int    `json:"pointValue"`
	CategoryID         string `json:"categoryId"`
	AnsweredByPlayerID string `json:"answeredByPlayerId,omitempty"`
	NoOneCouldAnswer   bool   `json:"noOneCouldAnswer,omitempty"`
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// IsAnswered reports whether the clue has been claimed, correctly or via the
// no-answer path.
func (c *Clue) IsAnswered() bool {
	return c.AnsweredByPlayerID != ""
}

// FindPlayer returns the player with the given ID, or nil.
func (g *Game) FindPlayer(playerID string) *Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// FindPlayerByUser returns the player owned by the given user identity, or nil.
func (g *Game) FindPlayerByUser(userID string) *Player {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Creator returns the player that created the game, or nil.
func (g *Game) Creator() *Player {
	for _, p := range g.Players {
		if p.IsCreator {
			return p
		}
	}
	return nil
}

// FindClue looks the clue up across every player's category.
func (g *Game) FindClue(clueID string) *Clue {
	for _, p := range g.Players {
		if p.Category == nil {
			continue
		}
		for _, c := range p.Category.Clues {
			if c.ID == clueID {
				return c
			}
		}
	}
	return nil
}

// ClueOwner returns the player whose category contains the clue, or nil.
func (g *Game) ClueOwner(clueID string) *Player {
	for _, p := range g.Players {
		if p.Category == nil {
			continue
		}
		for _, c := range p.Category.Clues {
			if c.ID == clueID {
				return p
			}
		}
	}
	return nil
}

// SelectedClue resolves SelectedClueID against the aggregate, or nil when no
// clue is in play.
func (g *Game) SelectedClue() *Clue {
	if g.SelectedClueID == "" {
		return nil
	}
	return g.FindClue(g.SelectedClueID)
}

// AllCategoriesSubmitted reports whether every player has a submitted category.
func (g *Game) AllCategoriesSubmitted() bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, p := range g.Players {
		if p.Category == nil || !p.Category.IsSubmitted {
			return false
		}
	}
	return true
}

// AllCluesAnswered reports whether the board is exhausted.
func (g *Game) AllCluesAnswered() bool {
	for _, p := range g.Players {
		if p.Category == nil {
			continue
		}
		for _, c := range p.Category.Clues {
			if !c.IsAnswered() {
				return false
			}
		}
	}
	return true
}

// HasUnansweredClues reports whether the player's own category still has
// clues in play.
func (g *Game) HasUnansweredClues(playerID string) bool {
	p := g.FindPlayer(playerID)
	if p == nil || p.Category == nil {
		return false
	}
	for _, c := range p.Category.Clues {
		if !c.IsAnswered() {
			return true
		}
	}
	return false
}

// ScoreFor folds the player's score from answered clues across the whole
// board. A clue claimed through the no-answer path counts against its owner
// instead of for them; this function is the only place that sign convention
// lives.
func (g *Game) ScoreFor(playerID string) int {
	score := 0
	for _, p := range g.Players {
		if p.Category == nil {
			continue
		}
		for _, c := range p.Category.Clues {
			if c.AnsweredByPlayerID != playerID {
				continue
			}
			if c.NoOneCouldAnswer {
				score -= c.PointValue
			} else {
				score += c.PointValue
			}
		}
	}
	return score
}

// Clone deep-copies the aggregate so stores can hand out independent graphs.
func (g *Game) Clone() *Game {
	dup := *g
	if g.BuzzedAt != nil {
		t := *g.BuzzedAt
		dup.BuzzedAt = &t
	}
	dup.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		dup.Players[i] = p.Clone()
	}
	return &dup
}

// Clone deep-copies the player and its category.
func (p *Player) Clone() *Player {
	dup := *p
	dup.Category = p.Category.Clone()
	return &dup
}

// Clone deep-copies the category and its clues. Safe on a nil receiver.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Clues = make([]*Clue, len(c.Clues))
	for i, clue := range c.Clues {
		cc := *clue
		dup.Clues[i] = &cc
	}
	return &dup
}
