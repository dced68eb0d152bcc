package domain

import "time"

// GameSnapshot is the wire-friendly view pushed to clients. Scores are
// computed at snapshot time from the clue graph.
type GameSnapshot struct {
	Code                    string           `json:"code"`
	State                   GameState        `json:"state"`
	CurrentChoosingPlayerID string           `json:"currentChoosingPlayerId,omitempty"`
	SelectedClueID          string           `json:"selectedClueId,omitempty"`
	BuzzedPlayerID          string           `json:"buzzedPlayerId,omitempty"`
	BuzzedAt                *time.Time       `json:"buzzedAt,omitempty"`
	Players                 []PlayerSnapshot `json:"players"`
}

type PlayerSnapshot struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	IsCreator bool              `json:"isCreator"`
	Score     int               `json:"score"`
	Category  *CategorySnapshot `json:"category,omitempty"`
}

type CategorySnapshot struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	IsSubmitted bool           `json:"isSubmitted"`
	Clues       []ClueSnapshot `json:"clues"`
}

// ClueSnapshot includes the answer text because the clue owner judges from
// the same view everyone else renders the board from.
type ClueSnapshot struct {
	ID                 string `json:"id"`
	Question           string `json:"question"`
	Answer             string `json:"answer"`
	PointValue         int    `json:"pointValue"`
	Answered           bool   `json:"answered"`
	AnsweredByPlayerID string `json:"answeredByPlayerId,omitempty"`
	NoOneCouldAnswer   bool   `json:"noOneCouldAnswer,omitempty"`
}

// Snapshot renders the aggregate into its client view.
func (g *Game) Snapshot() GameSnapshot {
	snap := GameSnapshot{
		Code:                    g.Code,
		State:                   g.State,
		CurrentChoosingPlayerID: g.CurrentChoosingPlayerID,
		SelectedClueID:          g.SelectedClueID,
		BuzzedPlayerID:          g.BuzzedPlayerID,
		BuzzedAt:                g.BuzzedAt,
		Players:                 make([]PlayerSnapshot, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		ps := PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			IsCreator: p.IsCreator,
			Score:     g.ScoreFor(p.ID),
		}
		if p.Category != nil {
			cs := CategorySnapshot{
				ID:          p.Category.ID,
				Title:       p.Category.Title,
				IsSubmitted: p.Category.IsSubmitted,
				Clues:       make([]ClueSnapshot, 0, len(p.Category.Clues)),
			}
			for _, c := range p.Category.Clues {
				cs.Clues = append(cs.Clues, ClueSnapshot{
					ID:                 c.ID,
					Question:           c.Question,
					Answer:             c.Answer,
					PointValue:         c.PointValue,
					Answered:           c.IsAnswered(),
					AnsweredByPlayerID: c.AnsweredByPlayerID,
					NoOneCouldAnswer:   c.NoOneCouldAnswer,
				})
			}
			ps.Category = &cs
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}
