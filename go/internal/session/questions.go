package session

import (
	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/events"
	"github.com/quizdeck/quizdeck/go/internal/models"
)

// OpenQuestion opens an unplayed cell of the current round's grid. At most
// one clue is open at a time. A Daily Double bypasses the buzzer race: the
// controlling player seizes the buzzer immediately and owes a wager before
// the clue is scored.
func (c *Controller) OpenQuestion(categoryIndex, questionIndex int) Outcome {
	return c.do(func() Outcome {
		if c.st.round != models.RoundJeopardy && c.st.round != models.RoundDouble {
			return rejected(ReasonWrongRound)
		}
		if c.st.current != nil {
			return rejected(ReasonQuestionOpen)
		}
		categories := c.boards.RoundCategories(c.st.round)
		if categoryIndex < 0 || categoryIndex >= len(categories) {
			return rejected(ReasonCellOutOfRange)
		}
		questions := categories[categoryIndex].Questions
		if questionIndex < 0 || questionIndex >= len(questions) {
			return rejected(ReasonCellOutOfRange)
		}
		key := cellKey(categoryIndex, questionIndex)
		if _, played := c.st.played[key]; played {
			return rejected(ReasonCellPlayed)
		}

		_, isDailyDouble := c.st.dailyDoubles[key]
		c.st.current = &CurrentQuestion{
			CategoryIndex: categoryIndex,
			QuestionIndex: questionIndex,
			Value:         questions[questionIndex].Value,
			IsDailyDouble: isDailyDouble,
		}
		c.st.clearBuzzer()
		if isDailyDouble {
			c.st.activePlayer = c.st.controlling
		}
		log.Info().
			Str("cell", key).
			Int("value", c.st.current.Value).
			Bool("daily_double", isDailyDouble).
			Msg("question opened")
		c.publishState()
		return accepted()
	})
}

// CloseQuestion closes the open clue. Leaving markAsPlayed false keeps the
// cell selectable again, which is how the host undoes an accidental open.
func (c *Controller) CloseQuestion(markAsPlayed bool) Outcome {
	return c.do(func() Outcome {
		if c.st.current == nil {
			return rejected(ReasonNoQuestion)
		}
		if markAsPlayed {
			key := cellKey(c.st.current.CategoryIndex, c.st.current.QuestionIndex)
			c.st.played[key] = struct{}{}
		}
		c.st.current = nil
		c.st.currentWager = nil
		c.st.clearBuzzer()
		c.cancelTimer()
		c.publishState()
		return accepted()
	})
}

// UnplayQuestion removes a cell from the played set so it can be opened
// again. Scores already awarded for it are deliberately left untouched.
func (c *Controller) UnplayQuestion(categoryIndex, questionIndex int) Outcome {
	return c.do(func() Outcome {
		key := cellKey(categoryIndex, questionIndex)
		if _, played := c.st.played[key]; !played {
			return rejected(ReasonCellNotPlayed)
		}
		delete(c.st.played, key)
		c.publishState()
		return accepted()
	})
}

// AwardPoints scores the open clue for one player. The delta is the pending
// wager if that player placed one, otherwise the clue's face value. A correct
// answer transfers board control to the scorer and resolves the clue, so a
// second award for the same instance is rejected.
func (c *Controller) AwardPoints(playerID string, correct bool) Outcome {
	return c.do(func() Outcome {
		return c.applyAward(playerID, correct)
	})
}

// applyAward must run on the command loop.
func (c *Controller) applyAward(playerID string, correct bool) Outcome {
	p, ok := c.st.players[playerID]
	if !ok {
		return rejected(ReasonUnknownPlayer)
	}
	if c.st.current == nil {
		return rejected(ReasonNoQuestion)
	}
	if c.st.current.Resolved {
		return rejected(ReasonResolved)
	}

	var delta int
	switch {
	case c.st.currentWager != nil && c.st.currentWager.PlayerID == playerID:
		delta = c.st.currentWager.Amount
	case c.st.activePlayer == playerID:
		delta = c.st.current.Value
	default:
		return rejected(ReasonNotActivePlayer)
	}

	kind := events.FeedbackCorrect
	if correct {
		p.Score += delta
		c.st.controlling = playerID
		c.st.current.Resolved = true
	} else {
		p.Score -= delta
		kind = events.FeedbackWrong
		delta = -delta
	}
	c.st.currentWager = nil
	c.st.clearBuzzer()
	c.cancelTimer()

	log.Info().
		Str("player_id", playerID).
		Int("points", delta).
		Bool("correct", correct).
		Msg("points awarded")
	c.publish(events.TypeFeedback, events.FeedbackPayload{
		Kind:       kind,
		PlayerID:   playerID,
		PlayerName: p.Name,
		Points:     delta,
	})
	c.publishState()
	return accepted()
}

// expireAnswerTimer scores the current buzz as wrong when the response
// countdown runs out. Runs on the command loop via the timer queue.
func (c *Controller) expireAnswerTimer() Outcome {
	target := c.st.activePlayer
	if target == "" && c.st.currentWager != nil {
		target = c.st.currentWager.PlayerID
	}
	if target == "" {
		c.publishState()
		return accepted()
	}
	log.Info().Str("player_id", target).Msg("answer timer expired")
	return c.applyAward(target, false)
}
