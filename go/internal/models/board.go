package models

// Round identifies a stage of the game. Play moves strictly forward:
// jeopardy -> double -> final -> finished.
type Round string

const (
	RoundJeopardy Round = "jeopardy"
	RoundDouble   Round = "double"
	RoundFinal    Round = "final"
	RoundFinished Round = "finished"
)

// BoardRounds holds the per-round grids that are addressable cell by cell.
// Only the first two rounds have grids; the final round is a single clue.
const (
	CategoriesPerRound   = 5
	QuestionsPerCategory = 5
)

// Question is a single grid cell.
type Question struct {
	Value    int    `json:"value"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Category is a named column of five questions.
type Category struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// RoundBoard is the 5x5 grid for one of the two regular rounds.
type RoundBoard struct {
	Categories []Category `json:"categories"`
}

// FinalRound is the single clue played in Final Jeopardy.
type FinalRound struct {
	Category string `json:"category"`
	Clue     string `json:"clue"`
	Answer   string `json:"answer"`
}

// BoardRounds groups the two grid rounds.
type BoardRounds struct {
	Jeopardy RoundBoard `json:"jeopardy"`
	Double   RoundBoard `json:"double"`
}

// Board is a complete named game document: both grids plus the final clue.
// Boards are authored externally and persisted as one JSON document per id.
type Board struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Rounds        BoardRounds `json:"rounds"`
	FinalJeopardy FinalRound  `json:"finalJeopardy"`
}

// Grid returns the round's grid, or nil for rounds without one.
func (b *Board) Grid(round Round) *RoundBoard {
	switch round {
	case RoundJeopardy:
		return &b.Rounds.Jeopardy
	case RoundDouble:
		return &b.Rounds.Double
	default:
		return nil
	}
}
