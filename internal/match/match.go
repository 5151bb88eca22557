package match

import (
	"sync"

	"github.com/zksprint/land-battle-arbiter/internal/protocol"
	"github.com/zksprint/land-battle-arbiter/pkg/junqi"
)

// PlayerState is a player's position in the connection lifecycle.
type PlayerState int

const (
	Disconnected PlayerState = iota
	Connected
	Ready
)

func (s PlayerState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// player is one slot of a match. pendingPiece and pendingMove are set
// together when the slot's owner has a move awaiting the opponent's whisper.
type player struct {
	id    string
	state PlayerState

	sink chan []byte
	exit chan struct{}

	pendingPiece *junqi.PieceInfo
	pendingMove  *junqi.MovePos
}

func (p *player) clearPending() {
	p.pendingPiece = nil
	p.pendingMove = nil
}

// queueSize bounds a match's inbound command queue. Two well-behaved clients
// produce one or two messages per turn exchange.
const queueSize = 64

// Handle is the lobby's grip on a running match actor: the roster needed to
// admit bridges, and the inbound queue.
type Handle struct {
	ID      protocol.GameID
	Player1 string
	Player2 string

	cmds chan Command
	stop chan struct{}
	done chan struct{}

	stopOnce sync.Once
}

// HasPlayer reports whether pubkey is one of the match's two players.
func (h *Handle) HasPlayer(pubkey string) bool {
	return pubkey == h.Player1 || pubkey == h.Player2
}

// Enqueue submits a command to the actor, blocking on a full queue. It
// reports false when the actor has already exited.
func (h *Handle) Enqueue(cmd Command) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.cmds <- cmd:
		return true
	case <-h.done:
		return false
	}
}

// Stop asks the actor to exit. Used by lobby shutdown; safe to call twice.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Done is closed when the actor has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
