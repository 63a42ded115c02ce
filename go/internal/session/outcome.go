package session

// Reason explains why an action was rejected. Rejected actions never mutate
// state and never broadcast; callers decide whether to surface the reason.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonInvalidRequest  Reason = "invalid-request"
	ReasonUnknownPlayer   Reason = "unknown-player"
	ReasonBuzzersLocked   Reason = "buzzers-locked"
	ReasonQuestionOpen    Reason = "question-already-open"
	ReasonNoQuestion      Reason = "no-open-question"
	ReasonCellOutOfRange  Reason = "cell-out-of-range"
	ReasonCellPlayed      Reason = "cell-already-played"
	ReasonCellNotPlayed   Reason = "cell-not-played"
	ReasonWrongRound      Reason = "wrong-round"
	ReasonWrongPhase      Reason = "wrong-phase"
	ReasonGameFinished    Reason = "game-finished"
	ReasonNotActivePlayer Reason = "not-active-player"
	ReasonNotEligible     Reason = "not-eligible"
	ReasonDuplicateWager  Reason = "duplicate-wager"
	ReasonDuplicateAnswer Reason = "duplicate-answer"
	ReasonNoWager         Reason = "no-wager"
	ReasonAlreadyRevealed Reason = "already-revealed"
	ReasonResolved        Reason = "question-resolved"
	ReasonTimerSuperseded Reason = "timer-superseded"
)

// Outcome is the explicit result of every controller action.
type Outcome struct {
	Accepted bool
	Reason   Reason
}

func accepted() Outcome {
	return Outcome{Accepted: true}
}

func rejected(r Reason) Outcome {
	return Outcome{Reason: r}
}
