package events

import "github.com/quizdeck/quizdeck/go/internal/models"

// Payload types shared between the session controller and the gateway.

// BuzzWinnerPayload announces the first accepted buzz for a clue.
type BuzzWinnerPayload struct {
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
}

// FeedbackKind distinguishes the two scoring cues.
type FeedbackKind string

const (
	FeedbackCorrect FeedbackKind = "correct"
	FeedbackWrong   FeedbackKind = "wrong"
)

// FeedbackPayload is emitted alongside every score change so displays can
// animate the outcome without diffing snapshots.
type FeedbackPayload struct {
	Kind       FeedbackKind `json:"type"`
	PlayerID   string       `json:"playerId"`
	PlayerName string       `json:"playerName"`
	Points     int          `json:"points"`
}

// BoardUpdatePayload carries the active board and the round currently in play.
type BoardUpdatePayload struct {
	Board        *models.Board `json:"board"`
	CurrentRound models.Round  `json:"currentRound"`
}

// FinalCategoryPayload reveals the Final Jeopardy category to all screens.
type FinalCategoryPayload struct {
	Category string `json:"category"`
}
