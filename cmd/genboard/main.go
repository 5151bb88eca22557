// Command genboard packs an initial placement into the five line integers
// consumed off-line by the on-chain program. The input is a JSON file with
// six rows of five piece names, counted from the player's own edge.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zksprint/land-battle-arbiter/internal/logger"
	"github.com/zksprint/land-battle-arbiter/pkg/junqi"
)

// namedPieces maps the accepted spellings. The Chinese names are the legacy
// input format; empty strings mark vacant squares.
var namedPieces = map[string]junqi.Piece{
	"":             junqi.Empty,
	"flag":         junqi.Flag,
	"军棋":           junqi.Flag,
	"bomb":         junqi.Bomb,
	"炸弹":           junqi.Bomb,
	"landmine":     junqi.Landmine,
	"地雷":           junqi.Landmine,
	"engineer":     junqi.Engineer,
	"工兵":           junqi.Engineer,
	"lieutenant":   junqi.Lieutenant,
	"排长":           junqi.Lieutenant,
	"captain":      junqi.Captain,
	"连长":           junqi.Captain,
	"major":        junqi.Major,
	"营长":           junqi.Major,
	"colonel":      junqi.Colonel,
	"团长":           junqi.Colonel,
	"brigadier":    junqi.Brigadier,
	"旅长":           junqi.Brigadier,
	"majorGeneral": junqi.MajorGeneral,
	"师长":           junqi.MajorGeneral,
	"general":      junqi.General,
	"军长":           junqi.General,
	"fieldMarshal": junqi.FieldMarshal,
	"司令":           junqi.FieldMarshal,
}

func main() {
	logger.Init()

	path := flag.String("path", "", "JSON placement file")
	player2 := flag.Bool("player2", false, "mirror the placement into player 2's half")
	flag.Parse()
	if *path == "" {
		log.Fatal().Msg("-path is required")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read placement file")
	}

	var names [][]string
	if err := json.Unmarshal(data, &names); err != nil {
		log.Fatal().Err(err).Msg("Placement file is not a JSON grid of names")
	}

	placement := make([][]junqi.Piece, len(names))
	for y, row := range names {
		placement[y] = make([]junqi.Piece, len(row))
		for x, name := range row {
			piece, ok := namedPieces[name]
			if !ok {
				log.Fatal().Str("name", name).Int("row", y).Int("col", x).Msg("Unknown piece name")
			}
			placement[y][x] = piece
		}
	}

	board, err := junqi.Generate(placement, *player2)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate board")
	}

	fmt.Print(board.String())
	for i, line := range board.Lines {
		fmt.Printf("LINE%d=%du64\n", i, line)
	}
}
