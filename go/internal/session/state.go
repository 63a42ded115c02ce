package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/quizdeck/quizdeck/go/internal/models"
)

// FinalPhase is the nested sub-state inside the final round. Phases advance
// strictly in order: category -> wager -> clue -> answer -> reveal.
type FinalPhase string

const (
	FinalPhaseNone     FinalPhase = ""
	FinalPhaseCategory FinalPhase = "category"
	FinalPhaseWager    FinalPhase = "wager"
	FinalPhaseClue     FinalPhase = "clue"
	FinalPhaseAnswer   FinalPhase = "answer"
	FinalPhaseReveal   FinalPhase = "reveal"
)

// CurrentQuestion describes the single open clue, if any.
type CurrentQuestion struct {
	CategoryIndex int  `json:"categoryIndex"`
	QuestionIndex int  `json:"questionIndex"`
	Value         int  `json:"value"`
	IsDailyDouble bool `json:"isDailyDouble"`
	// Resolved is set once a correct answer has been scored. Further awards
	// for the same clue instance are rejected.
	Resolved bool `json:"resolved"`
}

// Wager is a pending Daily Double wager awaiting resolution.
type Wager struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// Snapshot is the full session record broadcast to every client after each
// accepted mutation. Field names match the wire format the display clients
// consume.
type Snapshot struct {
	Round                   models.Round              `json:"round"`
	Players                 map[string]*models.Player `json:"players"`
	ActivePlayer            string                    `json:"activePlayer"`
	IsBuzzersLocked         bool                      `json:"isBuzzersLocked"`
	CurrentQuestion         *CurrentQuestion          `json:"currentQuestion"`
	PlayedQuestions         []string                  `json:"playedQuestions"`
	JeopardyPlayedQuestions []string                  `json:"jeopardyPlayedQuestions"`
	DoublePlayedQuestions   []string                  `json:"doublePlayedQuestions"`
	DailyDoubles            []string                  `json:"dailyDoubles"`
	CurrentWager            *Wager                    `json:"currentWager"`
	ControllingPlayer       string                    `json:"controllingPlayer"`
	TimerEndTime            *time.Time                `json:"timerEndTime"`
	FinalJeopardyPhase      FinalPhase                `json:"finalJeopardyPhase"`
	FinalJeopardyWagers     map[string]int            `json:"finalJeopardyWagers"`
	FinalJeopardyAnswers    map[string]string         `json:"finalJeopardyAnswers"`
	FinalJeopardyRevealed   []string                  `json:"finalJeopardyRevealed"`
	FinalJeopardyEligible   []string                  `json:"finalJeopardyEligible"`
}

// state is the live session record. It is owned exclusively by the
// controller's command loop; nothing outside the loop reads or writes it.
type state struct {
	round          models.Round
	players        map[string]*models.Player
	joinOrder      []string
	activePlayer   string
	buzzersLocked  bool
	current        *CurrentQuestion
	played         map[string]struct{}
	playedJeopardy map[string]struct{}
	playedDouble   map[string]struct{}
	dailyDoubles   map[string]struct{}
	currentWager   *Wager
	controlling    string
	timerEnd       *time.Time
	finalPhase     FinalPhase
	finalWagers    map[string]int
	finalAnswers   map[string]string
	finalRevealed  []string
	finalEligible  map[string]struct{}
}

func newState() *state {
	return &state{
		round:          models.RoundJeopardy,
		players:        make(map[string]*models.Player),
		buzzersLocked:  true,
		played:         make(map[string]struct{}),
		playedJeopardy: make(map[string]struct{}),
		playedDouble:   make(map[string]struct{}),
		dailyDoubles:   make(map[string]struct{}),
		finalWagers:    make(map[string]int),
		finalAnswers:   make(map[string]string),
		finalRevealed:  []string{},
		finalEligible:  make(map[string]struct{}),
	}
}

// cellKey addresses one grid cell as "categoryIndex-questionIndex".
func cellKey(categoryIndex, questionIndex int) string {
	return fmt.Sprintf("%d-%d", categoryIndex, questionIndex)
}

func (s *state) snapshot() *Snapshot {
	players := make(map[string]*models.Player, len(s.players))
	for id, p := range s.players {
		cp := *p
		players[id] = &cp
	}

	snap := &Snapshot{
		Round:                   s.round,
		Players:                 players,
		ActivePlayer:            s.activePlayer,
		IsBuzzersLocked:         s.buzzersLocked,
		PlayedQuestions:         sortedKeys(s.played),
		JeopardyPlayedQuestions: sortedKeys(s.playedJeopardy),
		DoublePlayedQuestions:   sortedKeys(s.playedDouble),
		DailyDoubles:            sortedKeys(s.dailyDoubles),
		ControllingPlayer:       s.controlling,
		FinalJeopardyPhase:      s.finalPhase,
		FinalJeopardyWagers:     make(map[string]int, len(s.finalWagers)),
		FinalJeopardyAnswers:    make(map[string]string, len(s.finalAnswers)),
		FinalJeopardyRevealed:   append([]string{}, s.finalRevealed...),
		FinalJeopardyEligible:   sortedKeys(s.finalEligible),
	}
	if s.current != nil {
		cq := *s.current
		snap.CurrentQuestion = &cq
	}
	if s.currentWager != nil {
		w := *s.currentWager
		snap.CurrentWager = &w
	}
	if s.timerEnd != nil {
		end := *s.timerEnd
		snap.TimerEndTime = &end
	}
	for id, amount := range s.finalWagers {
		snap.FinalJeopardyWagers[id] = amount
	}
	for id, answer := range s.finalAnswers {
		snap.FinalJeopardyAnswers[id] = answer
	}
	return snap
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clearBuzzer locks the buzzers and drops any buzz winner.
func (s *state) clearBuzzer() {
	s.buzzersLocked = true
	s.activePlayer = ""
}

// lowestScoringOnline picks the controlling player for the double round:
// lowest score among online players, ties broken by join order.
func (s *state) lowestScoringOnline() string {
	best := ""
	for _, id := range s.joinOrder {
		p := s.players[id]
		if p == nil || !p.Online {
			continue
		}
		if best == "" || p.Score < s.players[best].Score {
			best = id
		}
	}
	return best
}
