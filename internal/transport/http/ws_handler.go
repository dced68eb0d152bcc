package http

import (
	"encoding/json"
	"log"
	"net/http"

	"buzzquiz-service/internal/app"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.GameService
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, hub *Hub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type saveCategoryPayload struct {
	Title  string        `json:"title"`
	Clues  []cluePayload `json:"clues"`
	Submit bool          `json:"submit"`
}

type cluePayload struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	PointValue int    `json:"pointValue"`
}

type selectCluePayload struct {
	ClueID string `json:"clueId"`
}

type judgePayload struct {
	IsCorrect bool `json:"isCorrect"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection, joins the caller into the game (a repeat
// join is a no-op), and maps inbound messages onto engine operations. Every
// successful operation fans the new state out through the hub; the caller
// also receives it directly so a lost buzz race still answers them.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	userID := r.URL.Query().Get("userId")
	name := r.URL.Query().Get("name")
	if code == "" || userID == "" || name == "" {
		http.Error(w, "missing code, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	game, err := h.service.JoinGame(r.Context(), code, userID, name)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	player := game.FindPlayerByUser(userID)
	if player == nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "player missing after join"}})
		return
	}

	updates, cancel := h.hub.Subscribe(game.Code)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "game", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "game", Payload: game.Snapshot()}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, &inbound, game.Code, userID, player.ID, send)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, inbound *inboundMessage, code, userID, playerID string, send chan outboundMessage[any]) {
	fail := func(msg string) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	switch inbound.Type {
	case "saveCategory":
		var payload saveCategoryPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail("invalid saveCategory payload")
			return
		}
		input := app.CategoryInput{Title: payload.Title}
		for _, c := range payload.Clues {
			input.Clues = append(input.Clues, app.ClueInput{
				Question:   c.Question,
				Answer:     c.Answer,
				PointValue: c.PointValue,
			})
		}
		if _, err := h.service.SaveCategory(r.Context(), code, playerID, input, payload.Submit); err != nil {
			fail(err.Error())
		}
	case "start":
		if _, err := h.service.StartGame(r.Context(), code, userID); err != nil {
			fail(err.Error())
		}
	case "selectClue":
		var payload selectCluePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail("invalid selectClue payload")
			return
		}
		if _, err := h.service.SelectClue(r.Context(), code, payload.ClueID); err != nil {
			fail(err.Error())
		}
	case "buzz":
		game, err := h.service.PressBuzzer(r.Context(), code, playerID)
		if err != nil {
			fail(err.Error())
			return
		}
		// A lost race triggers no broadcast; tell this caller who won.
		send <- outboundMessage[any]{Type: "game", Payload: game.Snapshot()}
	case "judge":
		var payload judgePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail("invalid judge payload")
			return
		}
		if _, err := h.service.JudgeAnswer(r.Context(), code, playerID, payload.IsCorrect); err != nil {
			fail(err.Error())
		}
	case "noAnswer":
		if _, err := h.service.NoOneCanAnswer(r.Context(), code, playerID); err != nil {
			fail(err.Error())
		}
	default:
		fail("unsupported message type")
	}
}
