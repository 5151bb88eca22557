// Package junqi implements the rules core for Land Battle Chess (Junqi):
// piece identities, the attack adjudicator used by the arbiter, and the
// packed board encoding used by the offline board generator.
package junqi

// Piece identifies the occupant of a board square. The integer values are
// part of the wire contract and must not change without versioning.
type Piece uint32

const (
	Empty        Piece = 0
	Flag         Piece = 1
	Bomb         Piece = 2
	Landmine     Piece = 3
	Engineer     Piece = 4
	Lieutenant   Piece = 5
	Captain      Piece = 6
	Major        Piece = 7
	Colonel      Piece = 8
	Brigadier    Piece = 9
	MajorGeneral Piece = 10
	General      Piece = 11
	FieldMarshal Piece = 12

	// Unchanged and Opponent are reserved: they are defined by the wire
	// contract and accepted on decode, but the arbiter never emits them.
	Unchanged Piece = 15
	Opponent  Piece = 16
)

var pieceNames = map[Piece]string{
	Empty:        "empty",
	Flag:         "flag",
	Bomb:         "bomb",
	Landmine:     "landmine",
	Engineer:     "engineer",
	Lieutenant:   "lieutenant",
	Captain:      "captain",
	Major:        "major",
	Colonel:      "colonel",
	Brigadier:    "brigadier",
	MajorGeneral: "majorGeneral",
	General:      "general",
	FieldMarshal: "fieldMarshal",
	Unchanged:    "unchanged",
	Opponent:     "opponent",
}

func (p Piece) String() string {
	if name, ok := pieceNames[p]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether p is one of the defined piece values.
func (p Piece) Valid() bool {
	_, ok := pieceNames[p]
	return ok
}

// Ranked reports whether p participates in the rank order. Flag, Bomb,
// Landmine and the reserved values are handled by rule, not by comparison.
func (p Piece) Ranked() bool {
	return p >= Engineer && p <= FieldMarshal
}

// Outranks reports whether p beats q in open battle. Bombs and defending
// landmines are settled by the adjudicator before it compares ranks; Flag
// and an attacking Landmine do reach this comparison, where their integer
// values place them below every ranked piece.
func (p Piece) Outranks(q Piece) bool {
	return p > q
}
