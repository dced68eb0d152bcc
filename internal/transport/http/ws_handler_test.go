package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buzzquiz-service/internal/app"
	"buzzquiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketCategoryFlow(t *testing.T) {
	store := memory.NewGameStore()
	hub := NewHub(store)
	service := app.NewGameService(store, hub)
	wsHandler := NewWSHandler(service, hub)

	game, err := service.CreateGame(context.Background(), "user-alice", "Alice")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?code=" + game.Code + "&userId=user-bob&name=Bob"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The initial snapshot includes both players after the implicit join.
	_, payload := readNext(conn, t, "game")
	players, ok := payload["players"].([]any)
	if !ok || len(players) != 2 {
		t.Fatalf("expected 2 players in snapshot, got %v", payload["players"])
	}

	// Submit a category over the socket and expect an updated snapshot.
	clues := make([]map[string]any, 0, 5)
	for _, pv := range []int{100, 200, 300, 400, 500} {
		clues = append(clues, map[string]any{
			"question":   "q",
			"answer":     "a",
			"pointValue": pv,
		})
	}
	msg := map[string]any{
		"type": "saveCategory",
		"payload": map[string]any{
			"title":  "Capitals",
			"clues":  clues,
			"submit": true,
		},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write saveCategory: %v", err)
	}

	// Hub pushes are asynchronous; skim a few snapshots until the
	// submission shows up.
	for i := 0; i < 5; i++ {
		_, payload = readNext(conn, t, "game")
		if bobHasSubmittedCategory(payload) {
			return
		}
	}
	t.Fatal("never saw bob's submitted category")
}

func bobHasSubmittedCategory(payload map[string]any) bool {
	players, ok := payload["players"].([]any)
	if !ok {
		return false
	}
	for _, p := range players {
		player, ok := p.(map[string]any)
		if !ok || player["name"] != "Bob" {
			continue
		}
		category, ok := player["category"].(map[string]any)
		return ok && category["isSubmitted"] == true
	}
	return false
}

func TestWebSocketRejectsInvalidOperation(t *testing.T) {
	store := memory.NewGameStore()
	hub := NewHub(store)
	service := app.NewGameService(store, hub)
	wsHandler := NewWSHandler(service, hub)

	game, err := service.CreateGame(context.Background(), "user-alice", "Alice")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?code=" + game.Code + "&userId=user-bob&name=Bob"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "game")

	// Buzzing before any clue is selected is a state violation.
	if err := conn.WriteJSON(map[string]any{"type": "buzz"}); err != nil {
		t.Fatalf("write buzz: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["message"] == "" {
		t.Fatal("expected an error message")
	}
}

// readNext reads frames until one of the expected type arrives. Hub
// broadcasts interleave with direct replies, so unrelated snapshots are
// skipped rather than treated as failures.
func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < 10; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type == expect {
			return msg.Type, msg.Payload
		}
	}
	t.Fatalf("no %s frame received", expect)
	return "", nil
}
