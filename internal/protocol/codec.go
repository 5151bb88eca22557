package protocol

import (
	"encoding/json"
	"fmt"
)

// Sentinel coordinates clients may send instead of omitting flag fields.
// They are one past the board's last column and row.
const (
	sentinelFlagX = 5
	sentinelFlagY = 12
)

// Encode serializes a message with its type discriminator spliced into the
// object. It never fails for the variants defined in this package.
func Encode(msg GameMessage) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.MessageType(), err)
	}
	head := []byte(`{"type":"` + msg.MessageType() + `"`)
	if len(body) > 2 {
		head = append(head, ',')
	}
	return append(head, body[1:]...), nil
}

// Decode parses a wire frame into its message variant. Decoding is strict:
// an unknown discriminator, a malformed body, or an out-of-vocabulary piece
// value is an error. Sentinel flag coordinates are normalized to absent.
func Decode(data []byte) (GameMessage, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch envelope.Type {
	case TypeOpponentDisconnected:
		var msg OpponentDisconnected
		return msg, json.Unmarshal(data, &msg)
	case TypeReady:
		var msg Ready
		return msg, json.Unmarshal(data, &msg)
	case TypeGameStart:
		var msg GameStart
		return msg, json.Unmarshal(data, &msg)
	case TypeHello:
		var msg Hello
		return msg, json.Unmarshal(data, &msg)
	case TypeRole:
		var msg Role
		return msg, json.Unmarshal(data, &msg)
	case TypeMove:
		var msg Move
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}
		if !msg.Piece.Valid() {
			return nil, fmt.Errorf("move: unknown piece %d", msg.Piece)
		}
		msg.FlagX, msg.FlagY = normalizeFlag(msg.FlagX, msg.FlagY)
		return msg, nil
	case TypePiecePos:
		var msg PiecePos
		return msg, json.Unmarshal(data, &msg)
	case TypeWhisper:
		var msg Whisper
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}
		if !msg.Piece.Valid() {
			return nil, fmt.Errorf("whisper: unknown piece %d", msg.Piece)
		}
		msg.FlagX, msg.FlagY = normalizeFlag(msg.FlagX, msg.FlagY)
		return msg, nil
	case TypeMoveResult:
		var msg MoveResult
		return msg, json.Unmarshal(data, &msg)
	case "":
		return nil, fmt.Errorf("frame has no type discriminator")
	default:
		return nil, fmt.Errorf("unknown message type %q", envelope.Type)
	}
}

// normalizeFlag maps the (5,12) sentinel, or a half-present pair, to absent.
func normalizeFlag(x, y *uint32) (*uint32, *uint32) {
	if x == nil || y == nil {
		return nil, nil
	}
	if *x == sentinelFlagX && *y == sentinelFlagY {
		return nil, nil
	}
	return x, y
}
