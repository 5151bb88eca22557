// Package lobby pairs players by shared access code and owns the only
// shared mutable state in the process: the user and match maps. Everything
// long-running is delegated to match actors that own their own state, so the
// lobby's lock is held only across map transitions.
package lobby

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zksprint/land-battle-arbiter/internal/match"
	"github.com/zksprint/land-battle-arbiter/internal/protocol"
	"github.com/zksprint/land-battle-arbiter/internal/repository"
)

var (
	// ErrAccessCodeUsed means two other players already paired on the code.
	ErrAccessCodeUsed = errors.New("access code used")
	// ErrGameStarted means the caller already has a formed match on the code.
	ErrGameStarted = errors.New("game started")
	// ErrUnknownUser means the pubkey never joined.
	ErrUnknownUser = errors.New("user not found")
	// ErrUnknownMatch means no live match has the requested id.
	ErrUnknownMatch = errors.New("unknown match")
	// ErrNotParticipant means the pubkey is not one of the match's players.
	ErrNotParticipant = errors.New("not a participant")
)

// user is a pubkey waiting on, or paired through, an access code.
type user struct {
	pubkey     string
	accessCode string
	gameID     protocol.GameID
}

// Lobby pairs users and routes duplex channels to match actors.
type Lobby struct {
	arbiter  string
	recorder repository.MatchRecorder
	cache    repository.MatchStatusCache

	mu      sync.RWMutex
	users   map[string]*user
	matches map[protocol.GameID]*match.Handle
}

// New creates a Lobby. recorder and cache may be nil when the corresponding
// backend is disabled; they are passed through to spawned actors.
func New(arbiter string, recorder repository.MatchRecorder, cache repository.MatchStatusCache) *Lobby {
	return &Lobby{
		arbiter:  arbiter,
		recorder: recorder,
		cache:    cache,
		users:    make(map[string]*user),
		matches:  make(map[protocol.GameID]*match.Handle),
	}
}

// recordTimeout caps the durable-record write after a match forms, so a
// slow backend cannot stall joins.
const recordTimeout = 2 * time.Second

// Join registers pubkey under an access code. The first joiner on a code
// gets game id 0; the second joiner with a different pubkey forms the match,
// spawns its actor, and both players can fetch the minted id. Re-joining
// with the same pubkey before pairing updates the stored access code.
func (l *Lobby) Join(pubkey, accessCode string) (protocol.GameID, error) {
	id, players, err := l.pair(pubkey, accessCode)
	if err != nil || id == 0 {
		return 0, err
	}

	// The durable record is written after the lock is released: the map
	// transitions are the only critical section, and a slow database must
	// not stall the lobby.
	if l.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := l.recorder.CreateMatch(ctx, uint64(id), players[0], players[1]); err != nil {
			log.Error().Err(err).Str("gameId", id.String()).Msg("Failed to record match creation")
		}
	}
	log.Info().
		Str("gameId", id.String()).
		Str("player1", players[0]).
		Str("player2", players[1]).
		Msg("Match formed")
	return id, nil
}

// pair holds the write lock for the map transitions only. A non-zero id
// means a match was formed between the returned players.
func (l *Lobby) pair(pubkey, accessCode string) (protocol.GameID, [2]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var holders []*user
	for _, u := range l.users {
		if u.accessCode == accessCode {
			holders = append(holders, u)
		}
	}

	switch len(holders) {
	case 0:
		l.users[pubkey] = &user{pubkey: pubkey, accessCode: accessCode}
		return 0, [2]string{}, nil

	case 1:
		first := holders[0]
		if first.pubkey == pubkey {
			// Same player refreshing the code; nothing to pair yet.
			first.accessCode = accessCode
			return 0, [2]string{}, nil
		}

		id := l.mintID()
		l.users[pubkey] = &user{pubkey: pubkey, accessCode: accessCode, gameID: id}
		first.gameID = id

		actor := match.New(id, l.arbiter, first.pubkey, pubkey, l.recorder, l.cache)
		l.matches[id] = actor.Handle()
		go actor.Run()

		return id, [2]string{first.pubkey, pubkey}, nil

	default:
		if holders[0].pubkey == pubkey || holders[1].pubkey == pubkey {
			return 0, [2]string{}, ErrGameStarted
		}
		return 0, [2]string{}, ErrAccessCodeUsed
	}
}

// JoinGet returns the match id previously assigned to pubkey, or 0 when the
// user joined but is still unpaired.
func (l *Lobby) JoinGet(pubkey string) (protocol.GameID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	u, ok := l.users[pubkey]
	if !ok {
		return 0, ErrUnknownUser
	}
	return u.gameID, nil
}

// EnterGame resolves the match actor a player's duplex channel should be
// bridged to.
func (l *Lobby) EnterGame(pubkey string, gameID protocol.GameID) (*match.Handle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	h, ok := l.matches[gameID]
	if !ok {
		return nil, ErrUnknownMatch
	}
	if !h.HasPlayer(pubkey) {
		return nil, ErrNotParticipant
	}
	return h, nil
}

// mintID draws a fresh non-zero 64-bit match id. Caller holds the write
// lock.
func (l *Lobby) mintID() protocol.GameID {
	for {
		id := protocol.GameID(rand.Uint64())
		if id == 0 {
			continue
		}
		if _, taken := l.matches[id]; !taken {
			return id
		}
	}
}

// Shutdown stops every live actor and waits for them to drain.
func (l *Lobby) Shutdown(ctx context.Context) {
	l.mu.Lock()
	handles := make([]*match.Handle, 0, len(l.matches))
	for _, h := range l.matches {
		handles = append(handles, h)
	}
	l.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
	for _, h := range handles {
		select {
		case <-h.Done():
		case <-ctx.Done():
			log.Warn().Str("gameId", h.ID.String()).Msg("Gave up waiting for match actor")
			return
		}
	}
}

// reapInterval is how often terminated actors are swept out of the match map.
const reapInterval = time.Minute

// Reap removes handles whose actors have exited. Run it on its own
// goroutine; it returns when ctx is cancelled.
func (l *Lobby) Reap(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.reapOnce()
		case <-ctx.Done():
			return
		}
	}
}

func (l *Lobby) reapOnce() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, h := range l.matches {
		select {
		case <-h.Done():
			delete(l.matches, id)
			for pubkey, u := range l.users {
				if u.gameID == id {
					delete(l.users, pubkey)
				}
			}
			log.Debug().Str("gameId", id.String()).Msg("Reaped finished match")
		default:
		}
	}
}
