// Package protocol defines the wire vocabulary spoken over a match's duplex
// channel and its JSON codec. Messages are tag-discriminated by a "type"
// field carrying the camel-cased variant name; match ids travel as decimal
// strings; pieces and attack results travel as their stable integers.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zksprint/land-battle-arbiter/pkg/junqi"
)

// Message type discriminators.
const (
	TypeOpponentDisconnected = "opponentDisconnected"
	TypeReady                = "ready"
	TypeGameStart            = "gameStart"
	TypeHello                = "hello"
	TypeRole                 = "role"
	TypeMove                 = "move"
	TypePiecePos             = "piecePos"
	TypeWhisper              = "whisper"
	TypeMoveResult           = "moveResult"
)

// GameID is a 64-bit match identifier. It marshals as a decimal string, the
// form the wire contract requires, but accepts bare numbers on decode.
type GameID uint64

func (id GameID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(id), 10))
}

func (id *GameID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Tolerate a bare JSON number.
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("game_id must be a decimal string: %w", err)
		}
		*id = GameID(n)
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("game_id %q: %w", s, err)
	}
	*id = GameID(n)
	return nil
}

func (id GameID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// GameMessage is implemented by every wire message variant.
type GameMessage interface {
	MessageType() string
}

// OpponentDisconnected tells a player their opponent's channel dropped.
type OpponentDisconnected struct {
	GameID GameID `json:"game_id"`
}

// Ready is sent by a client once it has its board set up.
type Ready struct {
	GameID GameID `json:"game_id"`
}

// GameStart tells both players the match is live and whose turn it is.
type GameStart struct {
	GameID GameID `json:"game_id"`
	Turn   string `json:"turn"`
}

// Hello is a reserved client greeting; the arbiter ignores it.
type Hello struct {
	GameID GameID `json:"game_id"`
}

// Role tells a freshly connected player the match roster.
type Role struct {
	GameID  GameID `json:"game_id"`
	Arbiter string `json:"arbiter"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// Move is the turn player's claim about one of their own pieces and where it
// is going. Flag coordinates ride along only when the piece is the
// FieldMarshal.
type Move struct {
	Piece   junqi.Piece `json:"piece"`
	X       uint32      `json:"x"`
	Y       uint32      `json:"y"`
	TargetX uint32      `json:"target_x"`
	TargetY uint32      `json:"target_y"`
	FlagX   *uint32     `json:"flag_x,omitempty"`
	FlagY   *uint32     `json:"flag_y,omitempty"`
}

// PiecePos relays a move's coordinates, and nothing else, to the opponent.
type PiecePos struct {
	X       uint32 `json:"x"`
	Y       uint32 `json:"y"`
	TargetX uint32 `json:"target_x"`
	TargetY uint32 `json:"target_y"`
}

// Whisper is the defender's private disclosure of what occupies the targeted
// square. Flag coordinates ride along only when that occupant is the
// defender's FieldMarshal.
type Whisper struct {
	Piece junqi.Piece `json:"piece"`
	X     uint32      `json:"x"`
	Y     uint32      `json:"y"`
	FlagX *uint32     `json:"flag_x,omitempty"`
	FlagY *uint32     `json:"flag_y,omitempty"`
}

// MoveResult carries the adjudicated outcome to both players.
type MoveResult struct {
	junqi.PieceMove
}

func (OpponentDisconnected) MessageType() string { return TypeOpponentDisconnected }
func (Ready) MessageType() string                { return TypeReady }
func (GameStart) MessageType() string            { return TypeGameStart }
func (Hello) MessageType() string                { return TypeHello }
func (Role) MessageType() string                 { return TypeRole }
func (Move) MessageType() string                 { return TypeMove }
func (PiecePos) MessageType() string             { return TypePiecePos }
func (Whisper) MessageType() string              { return TypeWhisper }
func (MoveResult) MessageType() string           { return TypeMoveResult }
