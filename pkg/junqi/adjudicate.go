package junqi

// AttackResult is the outcome of a move from the attacker's perspective.
// The integer values are part of the wire contract.
type AttackResult uint32

const (
	SimpleMove AttackResult = 0
	Win        AttackResult = 1
	Draw       AttackResult = 2
	Lose       AttackResult = 3
)

func (r AttackResult) String() string {
	switch r {
	case SimpleMove:
		return "simpleMove"
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Lose:
		return "lose"
	}
	return "unknown"
}

// PieceInfo is one side's private knowledge about a piece involved in a move:
// its identity, and the owner's flag location when the piece is the
// FieldMarshal (so that its death reveals the flag).
type PieceInfo struct {
	Piece Piece
	FlagX *uint32
	FlagY *uint32
}

// MovePos is a move's origin and destination.
type MovePos struct {
	X       uint32 `json:"x"`
	Y       uint32 `json:"y"`
	TargetX uint32 `json:"target_x"`
	TargetY uint32 `json:"target_y"`
}

// PieceMove is the authoritative result of an adjudicated move, sent to both
// players. FlagX/FlagY are set when the attacker died and was the
// FieldMarshal; OppFlagX/OppFlagY when the defender died and was the
// FieldMarshal. GameWinner is 1 when the defender's flag fell, 2 when the
// attacker's did, 0 otherwise.
type PieceMove struct {
	X       uint32 `json:"x"`
	Y       uint32 `json:"y"`
	TargetX uint32 `json:"target_x"`
	TargetY uint32 `json:"target_y"`

	AttackResult AttackResult `json:"attack_result"`

	FlagX    *uint32 `json:"flag_x,omitempty"`
	FlagY    *uint32 `json:"flag_y,omitempty"`
	OppFlagX *uint32 `json:"opp_flag_x,omitempty"`
	OppFlagY *uint32 `json:"opp_flag_y,omitempty"`

	GameWinner uint32 `json:"game_winner"`
}

// Adjudicate resolves a move of the attacker's piece onto the square occupied
// by the defender's piece. It is pure: the result depends only on the two
// PieceInfos and the move coordinates.
//
// Clause order matters and is fixed: empty square, then bombs, then
// landmines, then rank comparison.
func Adjudicate(attacker, defender PieceInfo, mv MovePos) PieceMove {
	var result AttackResult
	switch {
	case defender.Piece == Empty:
		result = SimpleMove
	case attacker.Piece == Bomb || defender.Piece == Bomb:
		result = Draw
	case defender.Piece == Landmine:
		if attacker.Piece == Engineer {
			result = Win
		} else {
			result = Lose
		}
	case attacker.Piece.Outranks(defender.Piece):
		result = Win
	case attacker.Piece == defender.Piece:
		result = Draw
	default:
		result = Lose
	}

	victim, oppVictim := Empty, Empty
	switch result {
	case Win:
		oppVictim = defender.Piece
	case Draw:
		oppVictim = defender.Piece
		victim = attacker.Piece
	case Lose:
		victim = attacker.Piece
	}

	out := PieceMove{
		X:            mv.X,
		Y:            mv.Y,
		TargetX:      mv.TargetX,
		TargetY:      mv.TargetY,
		AttackResult: result,
	}

	if victim == FieldMarshal {
		out.FlagX = attacker.FlagX
		out.FlagY = attacker.FlagY
	}
	if oppVictim == FieldMarshal {
		out.OppFlagX = defender.FlagX
		out.OppFlagY = defender.FlagY
	}

	// A fallen flag decides the match. The attacker-lost-flag check comes
	// first, so a (theoretical) double flag loss yields winner 2.
	if victim == Flag {
		out.GameWinner = 2
	} else if oppVictim == Flag {
		out.GameWinner = 1
	}

	return out
}
