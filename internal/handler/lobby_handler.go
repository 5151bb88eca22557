package handler

import (
	"errors"
	"net/http"

	"github.com/zksprint/land-battle-arbiter/internal/lobby"
)

// LobbyHandler serves the HTTP pairing surface.
type LobbyHandler struct {
	lobby *lobby.Lobby
}

// NewLobbyHandler creates a LobbyHandler.
func NewLobbyHandler(l *lobby.Lobby) *LobbyHandler {
	return &LobbyHandler{lobby: l}
}

// Join handles GET /join?pubkey=&access_code=.
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	pubkey := r.URL.Query().Get("pubkey")
	accessCode := r.URL.Query().Get("access_code")
	if pubkey == "" || accessCode == "" {
		writeError(w, http.StatusBadRequest, "pubkey and access_code are required")
		return
	}

	gameID, err := h.lobby.Join(pubkey, accessCode)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, lobby.ErrGameStarted) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJoinResult(w, gameID)
}

// JoinGet handles GET /join/{pubkey}.
func (h *LobbyHandler) JoinGet(w http.ResponseWriter, r *http.Request) {
	pubkey := r.PathValue("pubkey")
	if pubkey == "" {
		writeError(w, http.StatusBadRequest, "pubkey is required")
		return
	}

	gameID, err := h.lobby.JoinGet(pubkey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJoinResult(w, gameID)
}
