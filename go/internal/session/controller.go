package session

import (
	"context"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/events"
	"github.com/quizdeck/quizdeck/go/internal/models"
)

// Config holds the game tunables.
type Config struct {
	AnswerTimeout      time.Duration
	FinalWagerTimeout  time.Duration
	FinalAnswerTimeout time.Duration
}

// DefaultConfig mirrors the timings the display clients count down from.
func DefaultConfig() Config {
	return Config{
		AnswerTimeout:      5 * time.Second,
		FinalWagerTimeout:  30 * time.Second,
		FinalAnswerTimeout: 30 * time.Second,
	}
}

// BoardProvider is the controller's read-only view of the active board.
type BoardProvider interface {
	ActiveBoard() *models.Board
	RoundCategories(round models.Round) []models.Category
	FinalRound() models.FinalRound
}

// Sink receives every outbound event the controller emits. The gateway fans
// envelopes out to connected clients; additional sinks may bridge them to an
// external bus.
type Sink interface {
	Publish(ev events.Envelope)
}

// MultiSink publishes to every sink in order.
type MultiSink []Sink

func (m MultiSink) Publish(ev events.Envelope) {
	for _, s := range m {
		s.Publish(ev)
	}
}

type command struct {
	fn    func() Outcome
	reply chan Outcome
}

// Controller is the sole authority over the live session. Every action is a
// command on a single queue consumed by Run; commands apply one at a time, so
// the buzzer race and the one-open-question invariant need no locking.
type Controller struct {
	cfg    Config
	boards BoardProvider
	sink   Sink
	clock  clockwork.Clock
	// randInt draws Daily Double positions; replaced in tests.
	randInt func(n int) int

	st    *state
	cmdCh chan command

	timer       clockwork.Timer
	timerCancel chan struct{}
	timerGen    uint64
}

// NewController creates a controller with a fresh session: round one, no
// players, buzzers locked, one Daily Double on the board.
func NewController(cfg Config, boards BoardProvider, sink Sink) *Controller {
	c := &Controller{
		cfg:     cfg,
		boards:  boards,
		sink:    sink,
		clock:   clockwork.NewRealClock(),
		randInt: rand.Intn,
		st:      newState(),
		cmdCh:   make(chan command, 64),
	}
	c.st.dailyDoubles = generateDailyDoubles(dailyDoublesPerRound(models.RoundJeopardy), c.randInt)
	return c
}

// Run consumes the command queue until ctx is cancelled. It must be running
// for any action to complete.
func (c *Controller) Run(ctx context.Context) {
	log.Info().Msg("session controller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session controller shutting down")
			return
		case cmd := <-c.cmdCh:
			out := cmd.fn()
			if cmd.reply != nil {
				cmd.reply <- out
			}
		}
	}
}

// do runs fn on the command loop and waits for its outcome.
func (c *Controller) do(fn func() Outcome) Outcome {
	cmd := command{fn: fn, reply: make(chan Outcome, 1)}
	c.cmdCh <- cmd
	return <-cmd.reply
}

// enqueue schedules fn without waiting; used by timer expiries.
func (c *Controller) enqueue(fn func() Outcome) {
	c.cmdCh <- command{fn: fn}
}

// Snapshot returns a copy of the current session record.
func (c *Controller) Snapshot() *Snapshot {
	var snap *Snapshot
	c.do(func() Outcome {
		snap = c.st.snapshot()
		return accepted()
	})
	return snap
}

func (c *Controller) publish(t events.Type, payload any) {
	ev, err := events.New(t, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(t)).Msg("failed to build event")
		return
	}
	c.sink.Publish(ev)
}

// publishState broadcasts the full snapshot. Called after every accepted
// mutation, never after a rejection.
func (c *Controller) publishState() {
	c.publish(events.TypeStateUpdate, c.st.snapshot())
}

// Join creates a Player on first join or revives it on reconnect. The durable
// id is client-generated; a rejoin with the same id recovers name and score.
func (c *Controller) Join(playerID, name string) Outcome {
	return c.do(func() Outcome {
		if playerID == "" {
			return rejected(ReasonInvalidRequest)
		}
		p, ok := c.st.players[playerID]
		if !ok {
			if name == "" {
				name = defaultPlayerName(playerID)
			}
			c.st.players[playerID] = &models.Player{
				ID:     playerID,
				Name:   name,
				Online: true,
			}
			c.st.joinOrder = append(c.st.joinOrder, playerID)
			log.Info().Str("player_id", playerID).Str("name", name).Msg("player joined")
		} else {
			p.Online = true
			if name != "" {
				p.Name = name
			}
			log.Info().Str("player_id", playerID).Msg("player rejoined")
		}
		c.publishState()
		return accepted()
	})
}

// Disconnect marks the player offline. The record and its score persist so
// the same durable id can reconnect without loss.
func (c *Controller) Disconnect(playerID string) Outcome {
	return c.do(func() Outcome {
		p, ok := c.st.players[playerID]
		if !ok {
			return rejected(ReasonUnknownPlayer)
		}
		p.Online = false
		log.Info().Str("player_id", playerID).Msg("player disconnected")
		c.publishState()
		return accepted()
	})
}

// Buzz arbitrates the buzzer race: the first buzz while unlocked with no
// active player wins and locks the buzzers; every later buzz is rejected.
func (c *Controller) Buzz(playerID string) Outcome {
	return c.do(func() Outcome {
		p, ok := c.st.players[playerID]
		if !ok {
			return rejected(ReasonUnknownPlayer)
		}
		if c.st.buzzersLocked || c.st.activePlayer != "" {
			return rejected(ReasonBuzzersLocked)
		}
		c.st.activePlayer = playerID
		c.st.buzzersLocked = true
		c.cancelTimer()
		log.Info().Str("player_id", playerID).Msg("buzz accepted")
		c.publish(events.TypeBuzzWinner, events.BuzzWinnerPayload{
			WinnerID:   playerID,
			WinnerName: p.Name,
		})
		c.publishState()
		return accepted()
	})
}

// UnlockBuzzers opens the race for the current clue.
func (c *Controller) UnlockBuzzers() Outcome {
	return c.do(func() Outcome {
		c.st.buzzersLocked = false
		c.st.activePlayer = ""
		c.cancelTimer()
		c.publishState()
		return accepted()
	})
}

// ResetBuzzers locks the buzzers and drops any buzz winner.
func (c *Controller) ResetBuzzers() Outcome {
	return c.do(func() Outcome {
		c.st.clearBuzzer()
		c.cancelTimer()
		c.publishState()
		return accepted()
	})
}

// StartAnswerTimer starts the response countdown for the current buzz winner.
// Expiry scores the clue as wrong for that player.
func (c *Controller) StartAnswerTimer() Outcome {
	return c.do(func() Outcome {
		if c.st.activePlayer == "" {
			return rejected(ReasonNotActivePlayer)
		}
		c.startTimer(c.cfg.AnswerTimeout, c.expireAnswerTimer)
		c.publishState()
		return accepted()
	})
}

// AdvanceRound moves the session one step forward. There is no backward
// transition and no skip; advancing past finished is rejected.
func (c *Controller) AdvanceRound() Outcome {
	return c.do(func() Outcome {
		switch c.st.round {
		case models.RoundJeopardy:
			c.archiveAndClearRound()
			c.st.round = models.RoundDouble
			c.st.dailyDoubles = generateDailyDoubles(dailyDoublesPerRound(models.RoundDouble), c.randInt)
			c.st.controlling = c.st.lowestScoringOnline()
		case models.RoundDouble:
			c.archiveAndClearRound()
			c.st.round = models.RoundFinal
			c.st.dailyDoubles = make(map[string]struct{})
			c.st.finalPhase = FinalPhaseCategory
			for id, p := range c.st.players {
				if p.Score > 0 {
					c.st.finalEligible[id] = struct{}{}
				}
			}
		case models.RoundFinal:
			c.st.round = models.RoundFinished
			c.st.finalPhase = FinalPhaseNone
			c.cancelTimer()
		default:
			return rejected(ReasonGameFinished)
		}
		log.Info().Str("round", string(c.st.round)).Msg("round advanced")
		c.publishState()
		return accepted()
	})
}

// archiveAndClearRound moves the played set into the per-round archive and
// clears every round-scoped field.
func (c *Controller) archiveAndClearRound() {
	switch c.st.round {
	case models.RoundJeopardy:
		c.st.playedJeopardy = c.st.played
	case models.RoundDouble:
		c.st.playedDouble = c.st.played
	}
	c.st.played = make(map[string]struct{})
	c.st.current = nil
	c.st.currentWager = nil
	c.st.clearBuzzer()
	c.cancelTimer()
}

// ResetGame clears everything except board selection and the player roster:
// scores zero out, round returns to jeopardy, a fresh Daily Double is drawn.
func (c *Controller) ResetGame() Outcome {
	return c.do(func() Outcome {
		c.resetGameState()
		log.Info().Msg("game reset by host")
		c.publishState()
		return accepted()
	})
}

func (c *Controller) resetGameState() {
	c.st.round = models.RoundJeopardy
	for _, p := range c.st.players {
		p.Score = 0
	}
	c.st.played = make(map[string]struct{})
	c.st.playedJeopardy = make(map[string]struct{})
	c.st.playedDouble = make(map[string]struct{})
	c.st.dailyDoubles = generateDailyDoubles(dailyDoublesPerRound(models.RoundJeopardy), c.randInt)
	c.st.current = nil
	c.st.currentWager = nil
	c.st.controlling = ""
	c.st.clearBuzzer()
	c.st.finalPhase = FinalPhaseNone
	c.st.finalWagers = make(map[string]int)
	c.st.finalAnswers = make(map[string]string)
	c.st.finalRevealed = []string{}
	c.st.finalEligible = make(map[string]struct{})
	c.cancelTimer()
}

// BoardChanged is invoked when the active board switches. The session fully
// resets and every client receives the new board before the fresh snapshot.
func (c *Controller) BoardChanged() Outcome {
	return c.do(func() Outcome {
		c.resetGameState()
		log.Info().Msg("active board changed, session reset")
		c.publish(events.TypeBoardUpdate, events.BoardUpdatePayload{
			Board:        c.boards.ActiveBoard(),
			CurrentRound: c.st.round,
		})
		c.publishState()
		return accepted()
	})
}

func defaultPlayerName(playerID string) string {
	if len(playerID) > 4 {
		playerID = playerID[:4]
	}
	return "Player " + playerID
}
