package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zksprint/land-battle-arbiter/internal/lobby"
	"github.com/zksprint/land-battle-arbiter/internal/match"
	"github.com/zksprint/land-battle-arbiter/internal/protocol"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware; tighten in production
	},
}

// GameHandler upgrades a player's duplex channel and bridges it to the
// player's match actor. The bridge hands the outbound sink to the actor at
// connection time and never writes to it afterward.
type GameHandler struct {
	lobby *lobby.Lobby
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(l *lobby.Lobby) *GameHandler {
	return &GameHandler{lobby: l}
}

// ServeGame handles GET /game?player=&game_id= — upgrades to WebSocket.
func (h *GameHandler) ServeGame(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	gameIDStr := r.URL.Query().Get("game_id")
	if player == "" || gameIDStr == "" {
		writeError(w, http.StatusBadRequest, "player and game_id are required")
		return
	}
	gameID, err := strconv.ParseUint(gameIDStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game_id")
		return
	}

	handle, err := h.lobby.EnterGame(player, protocol.GameID(gameID))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	logCtx := log.With().Str("player", player).Str("gameId", gameIDStr).Logger()

	sink := make(chan []byte, sendBufSize)
	exit := make(chan struct{})
	if !handle.Enqueue(match.PlayerConnected{Player: player, Sink: sink, Exit: exit}) {
		logCtx.Warn().Msg("Match actor already exited, dropping connection")
		conn.Close()
		return
	}

	go writePump(conn, sink, exit, logCtx)
	go readPump(conn, handle, player, exit, logCtx)

	logCtx.Info().Msg("Player channel bridged")
}

// readPump decodes inbound frames into the actor's queue. It exits on read
// error, decode error, or the actor's exit signal (which closes the
// connection out from under the blocking read), then reports the disconnect.
func readPump(conn *websocket.Conn, handle *match.Handle, player string, exit chan struct{}, logCtx zerolog.Logger) {
	defer func() {
		conn.Close()
		handle.Enqueue(match.PlayerDisconnected{Player: player, Exit: exit})
		logCtx.Info().Msg("Player channel closed")
	}()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logCtx.Warn().Err(err).Msg("WebSocket unexpected close")
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			logCtx.Warn().Err(err).Msg("Undecodable frame, dropping connection")
			return
		}

		if !handle.Enqueue(match.FromPlayer{Player: player, Msg: msg}) {
			return
		}
	}
}

// writePump drains the sink the actor writes to. It exits when the actor
// signals exit or the peer stops answering pings, closing the connection so
// the read pump unblocks.
func writePump(conn *websocket.Conn, sink chan []byte, exit chan struct{}, logCtx zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data := <-sink:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logCtx.Warn().Err(err).Msg("Outbound write failed")
				return
			}
		case <-exit:
			// Flush anything the actor queued before signaling exit, so the
			// final moveResult is not lost to the race.
			for {
				select {
				case data := <-sink:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					conn.SetWriteDeadline(time.Now().Add(writeWait))
					conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
