// Package match implements the per-match coordination engine: one actor
// goroutine per match owns all match state and both players' outbound sinks,
// and serializes every event through a single command queue.
package match

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zksprint/land-battle-arbiter/internal/model"
	"github.com/zksprint/land-battle-arbiter/internal/protocol"
	"github.com/zksprint/land-battle-arbiter/internal/repository"
	"github.com/zksprint/land-battle-arbiter/pkg/junqi"
)

// storeTimeout caps each best-effort call into the recorder or status cache
// so a slow backend cannot stall adjudication.
const storeTimeout = 2 * time.Second

// Actor drives one match. All fields are owned by the Run goroutine; nothing
// else touches them after construction.
type Actor struct {
	id      protocol.GameID
	arbiter string

	players [2]*player
	turn    int
	started bool

	terminated bool
	abandoned  bool
	winner     string

	handle *Handle

	recorder repository.MatchRecorder
	cache    repository.MatchStatusCache
	log      zerolog.Logger
}

// New creates an actor for a freshly formed match. player1 moves first.
// recorder and cache may be nil when the corresponding backend is disabled.
func New(id protocol.GameID, arbiter, player1, player2 string, recorder repository.MatchRecorder, cache repository.MatchStatusCache) *Actor {
	a := &Actor{
		id:      id,
		arbiter: arbiter,
		players: [2]*player{
			{id: player1},
			{id: player2},
		},
		recorder: recorder,
		cache:    cache,
		log:      log.With().Str("gameId", id.String()).Logger(),
	}
	a.handle = &Handle{
		ID:      id,
		Player1: player1,
		Player2: player2,
		cmds:    make(chan Command, queueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	return a
}

// Handle returns the lobby-facing handle for this actor.
func (a *Actor) Handle() *Handle {
	return a.handle
}

// Run consumes the command queue until the match terminates or the lobby
// stops it. It must be called exactly once, on its own goroutine.
func (a *Actor) Run() {
	defer a.finish()
	a.log.Info().Str("player1", a.players[0].id).Str("player2", a.players[1].id).Msg("Match actor started")
	for {
		select {
		case cmd := <-a.handle.cmds:
			a.dispatch(cmd)
			if a.terminated {
				return
			}
		case <-a.handle.stop:
			a.log.Info().Msg("Match actor stopping on lobby shutdown")
			return
		}
	}
}

func (a *Actor) dispatch(cmd Command) {
	switch c := cmd.(type) {
	case PlayerConnected:
		a.onConnected(c)
	case FromPlayer:
		a.onMessage(c)
	case PlayerDisconnected:
		a.onDisconnected(c)
	}
}

// finish tears down both bridges and flushes the final state to the stores,
// then closes done and drains the queue. Runs exactly once, when Run returns.
func (a *Actor) finish() {
	a.teardown()
	close(a.handle.done)
	for {
		select {
		case cmd := <-a.handle.cmds:
			if c, ok := cmd.(PlayerConnected); ok {
				close(c.Exit)
			}
		default:
			return
		}
	}
}

func (a *Actor) teardown() {
	for _, p := range a.players {
		if p.exit != nil {
			close(p.exit)
			p.sink, p.exit = nil, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	switch {
	case a.winner != "":
		if a.recorder != nil {
			if err := a.recorder.SetResult(ctx, uint64(a.id), a.winner); err != nil {
				a.log.Error().Err(err).Msg("Failed to record match result")
			}
		}
		a.mirror()
	default:
		if a.recorder != nil {
			if err := a.recorder.SetAbandoned(ctx, uint64(a.id)); err != nil {
				a.log.Error().Err(err).Msg("Failed to record match abandonment")
			}
		}
		if a.cache != nil {
			if err := a.cache.DeleteStatus(ctx, uint64(a.id)); err != nil {
				a.log.Error().Err(err).Msg("Failed to delete match status")
			}
		}
	}
	a.log.Info().Str("winner", a.winner).Bool("abandoned", a.winner == "").Msg("Match actor exited")
}

func (a *Actor) slot(pubkey string) (*player, *player) {
	if a.players[0].id == pubkey {
		return a.players[0], a.players[1]
	}
	if a.players[1].id == pubkey {
		return a.players[1], a.players[0]
	}
	return nil, nil
}

func (a *Actor) onConnected(c PlayerConnected) {
	p, _ := a.slot(c.Player)
	if p == nil {
		a.log.Warn().Str("player", c.Player).Msg("Connection for unknown player, signaling exit")
		close(c.Exit)
		return
	}

	if p.exit != nil {
		// A fresh bridge replaces a live one: signal the old bridge out,
		// keep the player's protocol state.
		a.log.Info().Str("player", c.Player).Msg("Replacing existing connection")
		close(p.exit)
	}
	p.sink, p.exit = c.Sink, c.Exit
	if p.state == Disconnected {
		p.state = Connected
	}

	a.send(p, protocol.Role{
		GameID:  a.id,
		Arbiter: a.arbiter,
		Player1: a.players[0].id,
		Player2: a.players[1].id,
	})
	a.mirror()
}

func (a *Actor) onDisconnected(c PlayerDisconnected) {
	p, other := a.slot(c.Player)
	if p == nil {
		return
	}
	if p.exit != c.Exit {
		// The bridge this disconnect came from was already replaced.
		a.log.Debug().Str("player", c.Player).Msg("Stale disconnect ignored")
		return
	}

	close(p.exit)
	p.sink, p.exit = nil, nil
	p.state = Disconnected
	p.clearPending()
	a.log.Info().Str("player", c.Player).Msg("Player disconnected")

	if other.state != Disconnected {
		a.send(other, protocol.OpponentDisconnected{GameID: a.id})
	} else {
		// Nobody left to wait for; the slots cannot recover on their own.
		a.terminated = true
		a.abandoned = true
	}
	a.mirror()
}

func (a *Actor) onMessage(c FromPlayer) {
	p, other := a.slot(c.Player)
	if p == nil {
		a.log.Warn().Str("player", c.Player).Msg("Message from unknown player dropped")
		return
	}

	switch msg := c.Msg.(type) {
	case protocol.Ready:
		a.onReady(p, other)
	case protocol.Move:
		a.onMove(p, other, msg)
	case protocol.Whisper:
		a.onWhisper(p, other, msg)
	case protocol.Hello:
		a.log.Debug().Str("player", p.id).Msg("Hello received")
	default:
		a.violation(p, "unexpected message type "+msg.MessageType())
	}
}

func (a *Actor) onReady(p, other *player) {
	if p.state != Connected {
		a.violation(p, "ready in state "+p.state.String())
		return
	}
	p.state = Ready
	a.log.Info().Str("player", p.id).Msg("Player ready")

	if other.state == Ready {
		a.started = true
		start := protocol.GameStart{GameID: a.id, Turn: a.players[a.turn].id}
		a.send(a.players[0], start)
		a.send(a.players[1], start)
		a.log.Info().Str("turn", start.Turn).Msg("Game started")
	}
	a.mirror()
}

func (a *Actor) onMove(p, other *player, msg protocol.Move) {
	switch {
	case !a.started || p.state != Ready || other.state != Ready:
		a.violation(p, "move before game start")
		return
	case a.players[a.turn] != p:
		a.violation(p, "move out of turn")
		return
	case p.pendingPiece != nil:
		a.violation(p, "move with a move already pending")
		return
	case msg.Piece == junqi.Empty || !msg.Piece.Ranked() && msg.Piece != junqi.Flag && msg.Piece != junqi.Bomb && msg.Piece != junqi.Landmine:
		a.violation(p, "move of unplayable piece "+msg.Piece.String())
		return
	}

	p.pendingPiece = &junqi.PieceInfo{Piece: msg.Piece, FlagX: msg.FlagX, FlagY: msg.FlagY}
	p.pendingMove = &junqi.MovePos{X: msg.X, Y: msg.Y, TargetX: msg.TargetX, TargetY: msg.TargetY}

	a.send(other, protocol.PiecePos{
		X:       msg.X,
		Y:       msg.Y,
		TargetX: msg.TargetX,
		TargetY: msg.TargetY,
	})
}

func (a *Actor) onWhisper(p, other *player, msg protocol.Whisper) {
	switch {
	case !a.started || p.state != Ready || other.state != Ready:
		a.violation(p, "whisper before game start")
		return
	case a.players[a.turn] == p:
		a.violation(p, "whisper from the turn player")
		return
	case other.pendingPiece == nil:
		a.violation(p, "whisper with no pending move")
		return
	case msg.Piece == junqi.Unchanged || msg.Piece == junqi.Opponent:
		a.violation(p, "whisper of reserved piece "+msg.Piece.String())
		return
	}

	attacker := *other.pendingPiece
	mv := *other.pendingMove
	other.clearPending()

	defender := junqi.PieceInfo{Piece: msg.Piece, FlagX: msg.FlagX, FlagY: msg.FlagY}
	result := junqi.Adjudicate(attacker, defender, mv)

	out := protocol.MoveResult{PieceMove: result}
	a.send(a.players[0], out)
	a.send(a.players[1], out)

	// The defender moves next.
	if a.players[0] == p {
		a.turn = 0
	} else {
		a.turn = 1
	}

	a.log.Info().
		Str("attacker", other.id).
		Str("defender", p.id).
		Str("result", result.AttackResult.String()).
		Uint32("gameWinner", result.GameWinner).
		Msg("Move adjudicated")

	if result.GameWinner != 0 {
		a.terminated = true
		if result.GameWinner == 1 {
			a.winner = other.id
		} else {
			a.winner = p.id
		}
		return
	}
	a.mirror()
}

func (a *Actor) violation(p *player, detail string) {
	a.log.Warn().Str("player", p.id).Str("detail", detail).Msg("Protocol violation dropped")
}

// send encodes and queues a message on a player's sink. The sink is buffered
// and drained by the bridge; a full sink drops the message with a warning
// rather than blocking the match.
func (a *Actor) send(p *player, msg protocol.GameMessage) {
	if p.sink == nil {
		return
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		a.log.Error().Err(err).Str("type", msg.MessageType()).Msg("Failed to encode outbound message")
		return
	}
	select {
	case p.sink <- data:
	default:
		a.log.Warn().Str("player", p.id).Str("type", msg.MessageType()).Msg("Dropping outbound message, sink full")
	}
}

// mirror pushes the live status snapshot to the cache, best-effort.
func (a *Actor) mirror() {
	if a.cache == nil {
		return
	}
	status := model.MatchStatus{
		Status:     model.MatchWaiting,
		Player1:    a.players[0].id,
		Player2:    a.players[1].id,
		Connected1: a.players[0].state != Disconnected,
		Connected2: a.players[1].state != Disconnected,
	}
	switch {
	case a.winner != "":
		status.Status = model.MatchFinished
		status.Winner = a.winner
	case a.abandoned:
		status.Status = model.MatchAbandoned
	case a.started:
		status.Status = model.MatchInPlay
		status.Turn = a.players[a.turn].id
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := a.cache.SetStatus(ctx, uint64(a.id), status); err != nil {
		a.log.Error().Err(err).Msg("Failed to mirror match status")
	}
}
