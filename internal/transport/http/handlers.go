package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"buzzquiz-service/internal/app"
	"buzzquiz-service/internal/domain"
	qrcode "github.com/skip2/go-qrcode"
)

// API serves the plain-HTTP endpoints that sit outside the websocket: game
// creation and the join QR code.
type API struct {
	service *app.GameService
	store   app.GameStore
	baseURL string
}

func NewAPI(service *app.GameService, store app.GameStore, baseURL string) *API {
	return &API{service: service, store: store, baseURL: baseURL}
}

type createGameRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type createGameResponse struct {
	Code string              `json:"code"`
	Game domain.GameSnapshot `json:"game"`
}

func (a *API) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	game, err := a.service.CreateGame(r.Context(), req.UserID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createGameResponse{Code: game.Code, Game: game.Snapshot()})
}

// JoinQR renders a PNG QR code pointing at the join URL for an existing game.
func (a *API) JoinQR(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if _, err := a.store.LoadGame(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	joinURL := fmt.Sprintf("%s/?code=%s", a.baseURL, url.QueryEscape(code))
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("qr encode for %s: %v", code, err)
		http.Error(w, "failed to render qr code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidOperation):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
