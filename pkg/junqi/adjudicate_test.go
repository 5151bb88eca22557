package junqi

import "testing"

func u32(v uint32) *uint32 { return &v }

func info(p Piece) PieceInfo { return PieceInfo{Piece: p} }

func infoWithFlag(p Piece, fx, fy uint32) PieceInfo {
	return PieceInfo{Piece: p, FlagX: u32(fx), FlagY: u32(fy)}
}

var testMove = MovePos{X: 1, Y: 3, TargetX: 1, TargetY: 4}

func TestAdjudicateSimpleMove(t *testing.T) {
	out := Adjudicate(info(Lieutenant), info(Empty), testMove)
	if out.AttackResult != SimpleMove {
		t.Errorf("expected simpleMove, got %s", out.AttackResult)
	}
	if out.FlagX != nil || out.OppFlagX != nil {
		t.Error("simple move must not reveal any flag")
	}
	if out.GameWinner != 0 {
		t.Errorf("expected no winner, got %d", out.GameWinner)
	}
	if out.X != 1 || out.Y != 3 || out.TargetX != 1 || out.TargetY != 4 {
		t.Error("move coordinates not carried through")
	}
}

func TestAdjudicateRankBattles(t *testing.T) {
	cases := []struct {
		name     string
		attacker Piece
		defender Piece
		want     AttackResult
	}{
		{"higher rank wins", General, Captain, Win},
		{"lower rank loses", Captain, General, Lose},
		{"equal ranks draw", Major, Major, Draw},
		{"field marshal beats general", FieldMarshal, General, Win},
		{"engineer loses to lieutenant", Engineer, Lieutenant, Lose},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Adjudicate(info(tc.attacker), info(tc.defender), testMove)
			if out.AttackResult != tc.want {
				t.Errorf("%s vs %s: expected %s, got %s", tc.attacker, tc.defender, tc.want, out.AttackResult)
			}
			if out.GameWinner != 0 {
				t.Errorf("rank battle must not decide the game, got winner %d", out.GameWinner)
			}
		})
	}
}

func TestAdjudicateBomb(t *testing.T) {
	// A bomb draws against anything occupied, on either side of the move.
	for _, target := range []Piece{Engineer, FieldMarshal, Landmine, Flag, Bomb} {
		out := Adjudicate(info(Bomb), info(target), testMove)
		if out.AttackResult != Draw {
			t.Errorf("bomb vs %s: expected draw, got %s", target, out.AttackResult)
		}
	}
	out := Adjudicate(info(FieldMarshal), info(Bomb), testMove)
	if out.AttackResult != Draw {
		t.Errorf("fieldMarshal vs bomb: expected draw, got %s", out.AttackResult)
	}
}

func TestAdjudicateLandmine(t *testing.T) {
	out := Adjudicate(info(Engineer), info(Landmine), testMove)
	if out.AttackResult != Win {
		t.Errorf("engineer vs landmine: expected win, got %s", out.AttackResult)
	}
	for _, attacker := range []Piece{Lieutenant, Colonel, FieldMarshal} {
		out := Adjudicate(info(attacker), info(Landmine), testMove)
		if out.AttackResult != Lose {
			t.Errorf("%s vs landmine: expected lose, got %s", attacker, out.AttackResult)
		}
	}
}

func TestAdjudicateFieldMarshalDeathRevealsFlag(t *testing.T) {
	// Defender's field marshal dies: opponent flag revealed.
	out := Adjudicate(info(Bomb), infoWithFlag(FieldMarshal, 0, 0), testMove)
	if out.AttackResult != Draw {
		t.Fatalf("expected draw, got %s", out.AttackResult)
	}
	if out.OppFlagX == nil || out.OppFlagY == nil || *out.OppFlagX != 0 || *out.OppFlagY != 0 {
		t.Error("defender field marshal death must reveal opponent flag")
	}
	if out.FlagX != nil || out.FlagY != nil {
		t.Error("attacker was a bomb, its flag must stay hidden")
	}
	if out.GameWinner != 0 {
		t.Errorf("expected no winner, got %d", out.GameWinner)
	}

	// Attacker's field marshal dies against a bomb: own flag revealed.
	out = Adjudicate(infoWithFlag(FieldMarshal, 2, 1), info(Bomb), testMove)
	if out.FlagX == nil || *out.FlagX != 2 || out.FlagY == nil || *out.FlagY != 1 {
		t.Error("attacker field marshal death must reveal attacker flag")
	}
	if out.OppFlagX != nil {
		t.Error("defender was a bomb, its flag must stay hidden")
	}

	// Mutual field marshal death reveals both flags.
	out = Adjudicate(infoWithFlag(FieldMarshal, 2, 0), infoWithFlag(FieldMarshal, 3, 11), testMove)
	if out.AttackResult != Draw {
		t.Fatalf("expected draw, got %s", out.AttackResult)
	}
	if out.FlagX == nil || *out.FlagX != 2 || out.OppFlagX == nil || *out.OppFlagX != 3 {
		t.Error("mutual field marshal death must reveal both flags")
	}
}

func TestAdjudicateFlagCapture(t *testing.T) {
	out := Adjudicate(info(Lieutenant), info(Flag), testMove)
	if out.AttackResult != Win {
		t.Fatalf("expected win, got %s", out.AttackResult)
	}
	if out.GameWinner != 1 {
		t.Errorf("defender flag fell: expected winner 1, got %d", out.GameWinner)
	}
}

func TestAdjudicateAttackerFlagLoss(t *testing.T) {
	// Attacker-lost-flag is checked before defender-lost-flag, so an
	// attacking flag drawing against a bomb yields winner 2.
	out := Adjudicate(info(Flag), info(Bomb), testMove)
	if out.AttackResult != Draw {
		t.Fatalf("expected draw, got %s", out.AttackResult)
	}
	if out.GameWinner != 2 {
		t.Errorf("attacker flag fell: expected winner 2, got %d", out.GameWinner)
	}

	out = Adjudicate(info(Flag), info(Lieutenant), testMove)
	if out.AttackResult != Lose {
		t.Fatalf("expected lose, got %s", out.AttackResult)
	}
	if out.GameWinner != 2 {
		t.Errorf("attacker flag fell: expected winner 2, got %d", out.GameWinner)
	}
}

var allOccupants = []Piece{
	Flag, Bomb, Landmine, Engineer, Lieutenant, Captain, Major,
	Colonel, Brigadier, MajorGeneral, General, FieldMarshal,
}

func TestAdjudicateSimpleMoveIffEmpty(t *testing.T) {
	for _, attacker := range allOccupants {
		out := Adjudicate(info(attacker), info(Empty), testMove)
		if out.AttackResult != SimpleMove {
			t.Errorf("%s onto empty: expected simpleMove, got %s", attacker, out.AttackResult)
		}
		for _, defender := range allOccupants {
			out := Adjudicate(info(attacker), info(defender), testMove)
			if out.AttackResult == SimpleMove {
				t.Errorf("%s vs %s: simpleMove on an occupied square", attacker, defender)
			}
		}
	}
}

func TestAdjudicateDeterministic(t *testing.T) {
	for _, attacker := range allOccupants {
		for _, defender := range allOccupants {
			a := infoWithFlag(attacker, 4, 0)
			d := infoWithFlag(defender, 0, 11)
			first := Adjudicate(a, d, testMove)
			second := Adjudicate(a, d, testMove)
			if first != second {
				t.Fatalf("%s vs %s: adjudication not deterministic", attacker, defender)
			}
		}
	}
}

func TestAdjudicateWinnerImpliesFlagLoss(t *testing.T) {
	for _, attacker := range allOccupants {
		for _, defender := range allOccupants {
			out := Adjudicate(info(attacker), info(defender), testMove)
			switch out.GameWinner {
			case 0:
			case 1:
				if defender != Flag {
					t.Errorf("%s vs %s: winner 1 without defender flag loss", attacker, defender)
				}
			case 2:
				if attacker != Flag {
					t.Errorf("%s vs %s: winner 2 without attacker flag loss", attacker, defender)
				}
			default:
				t.Errorf("%s vs %s: impossible winner %d", attacker, defender, out.GameWinner)
			}
		}
	}
}
