package app

import (
	"testing"

	"buzzquiz-service/internal/domain"
)

// turnGame builds n players, each with a single-clue category. answered marks
// which players' own clues are already off the board.
func turnGame(n int, answered ...int) *domain.Game {
	game := &domain.Game{ID: domain.NewID(), Code: "TTTTT2", State: domain.StateInProgress}
	for i := 0; i < n; i++ {
		p := &domain.Player{ID: domain.NewID(), UserID: domain.NewID()}
		p.Category = &domain.Category{
			ID:          domain.NewID(),
			IsSubmitted: true,
			PlayerID:    p.ID,
			Clues:       []*domain.Clue{{ID: domain.NewID(), PointValue: 100}},
		}
		game.Players = append(game.Players, p)
	}
	for _, idx := range answered {
		game.Players[idx].Category.Clues[0].AnsweredByPlayerID = game.Players[idx].ID
	}
	return game
}

func TestAnswererKeepsControlWhileOthersHaveClues(t *testing.T) {
	game := turnGame(3)
	answerer := game.Players[0].ID

	intn := func(int) int { t.Fatal("randomness must not be consulted"); return 0 }
	if got := nextChooser(game, answerer, intn); got != answerer {
		t.Fatalf("expected answerer to keep control, got %s", got)
	}
}

func TestControlPassesToRandomOtherWhenOnlyAnswererHasClues(t *testing.T) {
	// Players 1 and 2 have empty boards; only player 0's category has clues.
	game := turnGame(3, 1, 2)
	answerer := game.Players[0].ID

	for pick := 0; pick < 2; pick++ {
		got := nextChooser(game, answerer, func(n int) int {
			if n != 2 {
				t.Fatalf("expected a draw over 2 others, got %d", n)
			}
			return pick
		})
		if got == answerer {
			t.Fatal("answerer must never be chosen in the random branch")
		}
		if got != game.Players[pick+1].ID {
			t.Fatalf("expected player %d, got %s", pick+1, got)
		}
	}
}

func TestTwoPlayerAnswererKeepsControl(t *testing.T) {
	game := turnGame(2)
	answerer := game.Players[0].ID
	intn := func(int) int { return 0 }
	if got := nextChooser(game, answerer, intn); got != answerer {
		t.Fatalf("expected answerer to keep control with opponent clues left, got %s", got)
	}
}

func TestTwoPlayerControlPassesWhenOpponentExhausted(t *testing.T) {
	game := turnGame(2, 1)
	answerer := game.Players[0].ID
	if got := nextChooser(game, answerer, func(int) int { return 0 }); got != game.Players[1].ID {
		t.Fatalf("expected the opponent, got %s", got)
	}
}

func TestLonePlayerKeepsControl(t *testing.T) {
	game := turnGame(1)
	answerer := game.Players[0].ID
	if got := nextChooser(game, answerer, func(int) int { return 0 }); got != answerer {
		t.Fatalf("expected the only player to keep control, got %s", got)
	}
}
