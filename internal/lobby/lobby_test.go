package lobby

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zksprint/land-battle-arbiter/internal/model"
	"github.com/zksprint/land-battle-arbiter/internal/protocol"
)

const (
	alice = "arb1alice"
	bob   = "arb1bob"
	carol = "arb1carol"
)

type recorderMock struct {
	mu      sync.Mutex
	created map[uint64][2]string
}

func newRecorderMock() *recorderMock {
	return &recorderMock{created: make(map[uint64][2]string)}
}

func (m *recorderMock) CreateMatch(_ context.Context, id uint64, player1, player2 string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[id] = [2]string{player1, player2}
	return nil
}

func (m *recorderMock) SetResult(_ context.Context, id uint64, winner string) error { return nil }
func (m *recorderMock) SetAbandoned(_ context.Context, id uint64) error             { return nil }
func (m *recorderMock) FindMatch(_ context.Context, id uint64) (*model.MatchRecord, error) {
	return nil, nil
}

func (m *recorderMock) players(id uint64) ([2]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.created[id]
	return p, ok
}

func shutdown(t *testing.T, l *Lobby) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	l.Shutdown(ctx)
}

func TestJoinPairsSecondPlayer(t *testing.T) {
	rec := newRecorderMock()
	l := New("arb1arbiter", rec, nil)
	defer shutdown(t, l)

	id, err := l.Join(alice, "123")
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("first joiner must get game id 0, got %d", id)
	}

	id, err = l.Join(bob, "123")
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("second joiner must get a minted game id")
	}

	// The first joiner is back-filled.
	got, err := l.JoinGet(alice)
	if err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Errorf("JoinGet(alice) = %d, want %d", got, id)
	}

	// First joiner is player 1.
	if p, ok := rec.players(uint64(id)); !ok || p[0] != alice || p[1] != bob {
		t.Errorf("recorded match roster wrong: %v", p)
	}

	for _, pubkey := range []string{alice, bob} {
		if _, err := l.EnterGame(pubkey, id); err != nil {
			t.Errorf("EnterGame(%s) failed: %v", pubkey, err)
		}
	}
}

func TestJoinSamePubkeyUpdatesAccessCode(t *testing.T) {
	l := New("arb1arbiter", nil, nil)
	defer shutdown(t, l)

	if id, _ := l.Join(alice, "old"); id != 0 {
		t.Fatalf("unexpected id %d", id)
	}
	if id, err := l.Join(alice, "new"); err != nil || id != 0 {
		t.Fatalf("re-join must update the code and return 0, got %d, %v", id, err)
	}

	// The old code is free again; the new one pairs.
	if id, err := l.Join(bob, "old"); err != nil || id != 0 {
		t.Fatalf("old code should be unclaimed, got %d, %v", id, err)
	}
	id, err := l.Join(carol, "new")
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Error("new code should have paired alice and carol")
	}
}

func TestJoinFormedMatchRejections(t *testing.T) {
	l := New("arb1arbiter", nil, nil)
	defer shutdown(t, l)

	l.Join(alice, "123")
	if _, err := l.Join(bob, "123"); err != nil {
		t.Fatal(err)
	}

	// A third party on the same code is refused.
	if _, err := l.Join(carol, "123"); !errors.Is(err, ErrAccessCodeUsed) {
		t.Errorf("expected ErrAccessCodeUsed, got %v", err)
	}
	// A participant re-joining is told the game already started.
	if _, err := l.Join(alice, "123"); !errors.Is(err, ErrGameStarted) {
		t.Errorf("expected ErrGameStarted, got %v", err)
	}
}

// lockProbeRecorder re-enters the lobby's read surface from CreateMatch.
// If Join still held the write lock across the recorder call, the probe
// would deadlock.
type lockProbeRecorder struct {
	*recorderMock
	lobby *Lobby
	got   chan protocol.GameID
}

func (m *lockProbeRecorder) CreateMatch(ctx context.Context, id uint64, player1, player2 string) error {
	gid, err := m.lobby.JoinGet(player1)
	if err != nil {
		return err
	}
	m.got <- gid
	return m.recorderMock.CreateMatch(ctx, id, player1, player2)
}

func TestJoinRecordsOutsideLock(t *testing.T) {
	rec := &lockProbeRecorder{recorderMock: newRecorderMock(), got: make(chan protocol.GameID, 1)}
	l := New("arb1arbiter", rec, nil)
	rec.lobby = l
	defer shutdown(t, l)

	if _, err := l.Join(alice, "123"); err != nil {
		t.Fatal(err)
	}

	paired := make(chan protocol.GameID, 1)
	go func() {
		id, err := l.Join(bob, "123")
		if err != nil {
			id = 0
		}
		paired <- id
	}()

	select {
	case id := <-paired:
		if id == 0 {
			t.Fatal("pairing join failed")
		}
		if probed := <-rec.got; probed != id {
			t.Errorf("probe read game id %d, want %d", probed, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("join deadlocked while recording the match")
	}
}

func TestJoinGetUnknownUser(t *testing.T) {
	l := New("arb1arbiter", nil, nil)
	defer shutdown(t, l)

	if _, err := l.JoinGet(alice); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("expected ErrUnknownUser, got %v", err)
	}
}

func TestEnterGameRejections(t *testing.T) {
	l := New("arb1arbiter", nil, nil)
	defer shutdown(t, l)

	l.Join(alice, "123")
	id, err := l.Join(bob, "123")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := l.EnterGame(alice, protocol.GameID(uint64(id)+1)); !errors.Is(err, ErrUnknownMatch) {
		t.Errorf("expected ErrUnknownMatch, got %v", err)
	}
	if _, err := l.EnterGame(carol, id); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestShutdownStopsActors(t *testing.T) {
	l := New("arb1arbiter", nil, nil)

	l.Join(alice, "123")
	id, err := l.Join(bob, "123")
	if err != nil {
		t.Fatal(err)
	}
	h, err := l.EnterGame(alice, id)
	if err != nil {
		t.Fatal(err)
	}

	shutdown(t, l)
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("actor still running after shutdown")
	}
}

func TestReapRemovesFinishedMatches(t *testing.T) {
	l := New("arb1arbiter", nil, nil)

	l.Join(alice, "123")
	id, err := l.Join(bob, "123")
	if err != nil {
		t.Fatal(err)
	}
	h, _ := l.EnterGame(alice, id)
	h.Stop()
	<-h.Done()

	l.reapOnce()
	if _, err := l.EnterGame(alice, id); !errors.Is(err, ErrUnknownMatch) {
		t.Errorf("reaped match still resolvable: %v", err)
	}
	if _, err := l.JoinGet(alice); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("reap must also drop the paired users, got %v", err)
	}
}
