package session

import (
	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/events"
	"github.com/quizdeck/quizdeck/go/internal/models"
)

// The final round runs a nested phase machine:
// category -> wager -> clue -> answer -> reveal. Each phase is advanced only
// by an explicit host action, except wager and answer, which also force-
// advance when their countdown expires.

func (c *Controller) requireFinalPhase(phase FinalPhase) Outcome {
	if c.st.round != models.RoundFinal {
		return rejected(ReasonWrongRound)
	}
	if c.st.finalPhase != phase {
		return rejected(ReasonWrongPhase)
	}
	return accepted()
}

// ShowFinalCategory cues every screen to reveal the Final Jeopardy category.
func (c *Controller) ShowFinalCategory() Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseCategory); !out.Accepted {
			return out
		}
		c.publish(events.TypeFinalCategory, events.FinalCategoryPayload{
			Category: c.boards.FinalRound().Category,
		})
		c.publishState()
		return accepted()
	})
}

// StartFinalWagers opens the wager window for all eligible players and starts
// the wager countdown. Expiry forces the phase forward to the clue.
func (c *Controller) StartFinalWagers() Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseCategory); !out.Accepted {
			return out
		}
		c.st.finalPhase = FinalPhaseWager
		c.startTimer(c.cfg.FinalWagerTimeout, c.expireFinalWagers)
		log.Info().Msg("final jeopardy wagers open")
		c.publishState()
		return accepted()
	})
}

// ShowFinalClue closes the wager window and reveals the clue.
func (c *Controller) ShowFinalClue() Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseWager); !out.Accepted {
			return out
		}
		c.st.finalPhase = FinalPhaseClue
		c.cancelTimer()
		c.publishState()
		return accepted()
	})
}

// StartFinalAnswers opens the answer window and starts the answer countdown.
// Expiry forces the phase forward to the reveal.
func (c *Controller) StartFinalAnswers() Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseClue); !out.Accepted {
			return out
		}
		c.st.finalPhase = FinalPhaseAnswer
		c.startTimer(c.cfg.FinalAnswerTimeout, c.expireFinalAnswers)
		log.Info().Msg("final jeopardy answers open")
		c.publishState()
		return accepted()
	})
}

// SubmitFinalAnswer captures a player's answer. Only players who placed a
// wager may answer, and only once; there is no edit after submit.
func (c *Controller) SubmitFinalAnswer(playerID, answer string) Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseAnswer); !out.Accepted {
			return out
		}
		if _, ok := c.st.players[playerID]; !ok {
			return rejected(ReasonUnknownPlayer)
		}
		if _, wagered := c.st.finalWagers[playerID]; !wagered {
			return rejected(ReasonNoWager)
		}
		if _, dup := c.st.finalAnswers[playerID]; dup {
			return rejected(ReasonDuplicateAnswer)
		}
		c.st.finalAnswers[playerID] = answer
		log.Info().Str("player_id", playerID).Msg("final answer captured")
		c.publishState()
		return accepted()
	})
}

// StartFinalReveal closes the answer window and begins the reveal.
func (c *Controller) StartFinalReveal() Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseAnswer); !out.Accepted {
			return out
		}
		c.st.finalPhase = FinalPhaseReveal
		c.cancelTimer()
		c.publishState()
		return accepted()
	})
}

// RevealFinalPlayer resolves one player: their wager is awarded or deducted
// and they join the revealed list. The host picks the order; revealing the
// same player twice is rejected.
func (c *Controller) RevealFinalPlayer(playerID string, correct bool) Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseReveal); !out.Accepted {
			return out
		}
		p, ok := c.st.players[playerID]
		if !ok {
			return rejected(ReasonUnknownPlayer)
		}
		wager, wagered := c.st.finalWagers[playerID]
		if !wagered {
			return rejected(ReasonNoWager)
		}
		for _, id := range c.st.finalRevealed {
			if id == playerID {
				return rejected(ReasonAlreadyRevealed)
			}
		}

		kind := events.FeedbackCorrect
		delta := wager
		if correct {
			p.Score += wager
		} else {
			p.Score -= wager
			kind = events.FeedbackWrong
			delta = -wager
		}
		c.st.finalRevealed = append(c.st.finalRevealed, playerID)

		log.Info().
			Str("player_id", playerID).
			Int("points", delta).
			Bool("correct", correct).
			Msg("final jeopardy player revealed")
		c.publish(events.TypeFeedback, events.FeedbackPayload{
			Kind:       kind,
			PlayerID:   playerID,
			PlayerName: p.Name,
			Points:     delta,
		})
		c.publishState()
		return accepted()
	})
}

// FinishGame ends the final round once the reveal is done.
func (c *Controller) FinishGame() Outcome {
	return c.do(func() Outcome {
		if out := c.requireFinalPhase(FinalPhaseReveal); !out.Accepted {
			return out
		}
		c.st.round = models.RoundFinished
		c.st.finalPhase = FinalPhaseNone
		c.cancelTimer()
		log.Info().Msg("game finished")
		c.publishState()
		return accepted()
	})
}

// expireFinalWagers force-advances wager -> clue when the countdown runs out.
func (c *Controller) expireFinalWagers() Outcome {
	if out := c.requireFinalPhase(FinalPhaseWager); !out.Accepted {
		return out
	}
	c.st.finalPhase = FinalPhaseClue
	log.Info().Msg("final wager window expired")
	c.publishState()
	return accepted()
}

// expireFinalAnswers force-advances answer -> reveal when the countdown runs
// out.
func (c *Controller) expireFinalAnswers() Outcome {
	if out := c.requireFinalPhase(FinalPhaseAnswer); !out.Accepted {
		return out
	}
	c.st.finalPhase = FinalPhaseReveal
	log.Info().Msg("final answer window expired")
	c.publishState()
	return accepted()
}
