package app

import "buzzquiz-service/internal/domain"

// nextChooser picks who selects the next clue after answererID answered (or
// was penalized). The answerer keeps control while any other player still has
// unanswered clues in their own category; once only the answerer's category
// has clues left, control passes to a uniformly-random other player, since
// players never choose from their own category.
func nextChooser(g *domain.Game, answererID string, intn func(int) int) string {
	for _, p := range g.Players {
		if p.ID != answererID && g.HasUnansweredClues(p.ID) {
			return answererID
		}
	}

	others := make([]*domain.Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.ID != answererID {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return answererID
	}
	return others[intn(len(others))].ID
}
