package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zksprint/land-battle-arbiter/internal/lobby"
)

func newLobbyServer(t *testing.T) (*httptest.Server, *lobby.Lobby) {
	t.Helper()
	l := lobby.New("arb1arbiter", nil, nil)
	lh := NewLobbyHandler(l)
	gh := NewGameHandler(l)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /join", lh.Join)
	mux.HandleFunc("GET /join/{pubkey}", lh.JoinGet)
	mux.HandleFunc("GET /game", gh.ServeGame)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, l
}

type joinResponse struct {
	JoinResult *struct {
		GameID string `json:"game_id"`
	} `json:"JoinResult"`
	Error string `json:"Error"`
}

func getJoin(t *testing.T, srv *httptest.Server, path string) (int, joinResponse) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body joinResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("undecodable response: %v", err)
	}
	return resp.StatusCode, body
}

func TestJoinEndpointPairsPlayers(t *testing.T) {
	srv, _ := newLobbyServer(t)

	status, body := getJoin(t, srv, "/join?pubkey=arb1alice&access_code=123")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body.JoinResult == nil || body.JoinResult.GameID != "0" {
		t.Fatalf("first joiner must get game_id \"0\", got %+v", body)
	}

	status, body = getJoin(t, srv, "/join?pubkey=arb1bob&access_code=123")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body.JoinResult == nil || body.JoinResult.GameID == "0" {
		t.Fatalf("second joiner must get a minted game_id, got %+v", body)
	}
	minted := body.JoinResult.GameID

	// The first joiner can fetch the assignment by pubkey.
	status, body = getJoin(t, srv, "/join/arb1alice")
	if status != http.StatusOK || body.JoinResult == nil || body.JoinResult.GameID != minted {
		t.Fatalf("expected back-filled game_id %s, got %d %+v", minted, status, body)
	}
}

func TestJoinEndpointErrors(t *testing.T) {
	srv, _ := newLobbyServer(t)

	getJoin(t, srv, "/join?pubkey=arb1alice&access_code=123")
	getJoin(t, srv, "/join?pubkey=arb1bob&access_code=123")

	status, body := getJoin(t, srv, "/join?pubkey=arb1carol&access_code=123")
	if status != http.StatusBadRequest || body.Error != "access code used" {
		t.Errorf("expected 400 access code used, got %d %+v", status, body)
	}

	status, body = getJoin(t, srv, "/join?pubkey=arb1alice&access_code=123")
	if status != http.StatusConflict || body.Error != "game started" {
		t.Errorf("expected 409 game started, got %d %+v", status, body)
	}

	status, body = getJoin(t, srv, "/join?pubkey=arb1dave")
	if status != http.StatusBadRequest || body.Error == "" {
		t.Errorf("expected 400 for missing access_code, got %d %+v", status, body)
	}

	status, body = getJoin(t, srv, "/join/arb1nobody")
	if status != http.StatusBadRequest || body.Error != "user not found" {
		t.Errorf("expected 400 user not found, got %d %+v", status, body)
	}
}

func TestGameEndpointRejectsOutsiders(t *testing.T) {
	srv, _ := newLobbyServer(t)

	getJoin(t, srv, "/join?pubkey=arb1alice&access_code=123")
	_, body := getJoin(t, srv, "/join?pubkey=arb1bob&access_code=123")
	minted := body.JoinResult.GameID

	resp, err := http.Get(srv.URL + "/game?player=arb1carol&game_id=" + minted)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-participant, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/game?player=arb1alice&game_id=42")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown match, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/game?player=arb1alice&game_id=notanumber")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed game_id, got %d", resp.StatusCode)
	}
}
