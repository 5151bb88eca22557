package match

import "github.com/zksprint/land-battle-arbiter/internal/protocol"

// Command is an event on a match actor's inbound queue. The queue is the
// only way anything reaches a match: bridges enqueue, the actor consumes.
type Command interface {
	isCommand()
}

// PlayerConnected hands a player's outbound sink to the actor. Sink is the
// buffered channel drained by the bridge's write pump; once enqueued, the
// actor is its sole sender. Exit is a single-slot signal the actor closes to
// tell the bridge to tear down; it also serves as the bridge's identity.
type PlayerConnected struct {
	Player string
	Sink   chan []byte
	Exit   chan struct{}
}

// FromPlayer carries one decoded inbound message.
type FromPlayer struct {
	Player string
	Msg    protocol.GameMessage
}

// PlayerDisconnected reports that a player's bridge exited. Exit identifies
// which bridge: a disconnect from a bridge that has already been replaced is
// stale and ignored.
type PlayerDisconnected struct {
	Player string
	Exit   chan struct{}
}

func (PlayerConnected) isCommand()    {}
func (FromPlayer) isCommand()         {}
func (PlayerDisconnected) isCommand() {}
