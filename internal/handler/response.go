package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zksprint/land-battle-arbiter/internal/protocol"
)

// joinResult is the payload of a successful join response.
type joinResult struct {
	GameID protocol.GameID `json:"game_id"`
}

// appResponse is the lobby's response envelope. Exactly one field is set,
// mirroring the externally tagged form clients already parse.
type appResponse struct {
	JoinResult *joinResult `json:"JoinResult,omitempty"`
	Error      string      `json:"Error,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeJoinResult writes the success envelope for the join endpoints.
func writeJoinResult(w http.ResponseWriter, gameID protocol.GameID) {
	writeJSON(w, http.StatusOK, appResponse{JoinResult: &joinResult{GameID: gameID}})
}

// writeError writes the error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, appResponse{Error: msg})
}
