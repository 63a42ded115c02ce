package events

import "encoding/json"

// Action identifies an inbound request from a connected client.
type Action string

const (
	ActionJoin              Action = "join"
	ActionBuzz              Action = "buzz"
	ActionSubmitWager       Action = "submit-wager"
	ActionSubmitFinalAnswer Action = "submit-final-answer"

	ActionHostUnlockBuzzers  Action = "host-unlock-buzzers"
	ActionHostResetBuzzers   Action = "host-reset-buzzers"
	ActionHostOpenQuestion   Action = "host-open-question"
	ActionHostCloseQuestion  Action = "host-close-question"
	ActionHostUnplayQuestion Action = "host-unplay-question"
	ActionHostAwardPoints    Action = "host-award-points"
	ActionHostAdvanceRound   Action = "host-advance-round"
	ActionHostStartTimer     Action = "host-start-timer"
	ActionHostResetGame      Action = "host-reset-game"

	ActionHostFJShowCategory Action = "host-fj-show-category"
	ActionHostFJStartWagers  Action = "host-fj-start-wagers"
	ActionHostFJShowClue     Action = "host-fj-show-clue"
	ActionHostFJStartAnswers Action = "host-fj-start-answers"
	ActionHostFJStartReveal  Action = "host-fj-start-reveal"
	ActionHostFJRevealPlayer Action = "host-fj-reveal-player"
	ActionHostFJFinish       Action = "host-fj-finish"
)

// ActionEnvelope is the wire frame for every inbound request. Payloads are
// decoded into the typed request structs below before they reach the
// controller; malformed payloads are dropped at the gateway boundary.
type ActionEnvelope struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRequest binds a connection to a durable player identity.
type JoinRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// CellRequest addresses one cell of the current round's grid.
type CellRequest struct {
	CategoryIndex int `json:"categoryIndex"`
	QuestionIndex int `json:"questionIndex"`
}

// CloseQuestionRequest closes the open clue, optionally marking it played.
type CloseQuestionRequest struct {
	MarkAsPlayed bool `json:"markAsPlayed"`
}

// AwardPointsRequest resolves the open clue for one player. Points is
// advisory: the controller derives the actual delta from the pending wager or
// the clue's face value.
type AwardPointsRequest struct {
	PlayerID  string `json:"playerId"`
	Points    int    `json:"points"`
	IsCorrect bool   `json:"isCorrect"`
}

// WagerRequest submits a Daily Double or Final Jeopardy wager.
type WagerRequest struct {
	Amount int `json:"amount"`
}

// FinalAnswerRequest submits a Final Jeopardy answer.
type FinalAnswerRequest struct {
	Answer string `json:"answer"`
}

// RevealPlayerRequest resolves one player during the Final Jeopardy reveal.
type RevealPlayerRequest struct {
	PlayerID  string `json:"playerId"`
	IsCorrect bool   `json:"isCorrect"`
}
