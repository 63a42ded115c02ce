package board

import (
	"context"
	"errors"

	"github.com/quizdeck/quizdeck/go/internal/models"
)

// Catalog is the complete persisted document: every board keyed by id plus
// the single active selection.
type Catalog struct {
	ActiveBoardID string                  `json:"activeBoardId"`
	Boards        map[string]*StoredBoard `json:"boards"`
}

// StoredBoard is one board entry inside the catalog document.
type StoredBoard struct {
	Name string    `json:"name"`
	Data BoardData `json:"data"`
}

// BoardData is the playable content of a board.
type BoardData struct {
	Rounds        models.BoardRounds `json:"rounds"`
	FinalJeopardy models.FinalRound  `json:"finalJeopardy"`
}

// Store persists the catalog as a single document. Implementations: a JSON
// file on disk and a Postgres table.
type Store interface {
	Load(ctx context.Context) (*Catalog, error)
	Save(ctx context.Context, catalog *Catalog) error
}

var (
	// ErrBoardNotFound is returned when a board id is not in the catalog.
	ErrBoardNotFound = errors.New("board not found")
	// ErrLastBoard is returned when deleting the only remaining board.
	ErrLastBoard = errors.New("cannot delete the last board")
)
