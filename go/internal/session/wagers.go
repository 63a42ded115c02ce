package session

import (
	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/models"
)

// SubmitWager is context-sensitive: during a regular round it is a Daily
// Double wager from the player holding the buzzer; during the final round's
// wager phase it is that player's Final Jeopardy wager. Amounts outside the
// legal range are clamped, not rejected.
func (c *Controller) SubmitWager(playerID string, amount int) Outcome {
	return c.do(func() Outcome {
		p, ok := c.st.players[playerID]
		if !ok {
			return rejected(ReasonUnknownPlayer)
		}

		if c.st.round == models.RoundFinal {
			return c.applyFinalWager(p, amount)
		}

		// Daily Double path.
		if c.st.current == nil || !c.st.current.IsDailyDouble {
			return rejected(ReasonNoQuestion)
		}
		if c.st.activePlayer != playerID {
			return rejected(ReasonNotActivePlayer)
		}
		if c.st.currentWager != nil {
			return rejected(ReasonDuplicateWager)
		}
		wager := clamp(amount, minDailyDoubleWager, trueDailyDoubleMax(p.Score, c.st.current.Value))
		c.st.currentWager = &Wager{PlayerID: playerID, Amount: wager}
		log.Info().
			Str("player_id", playerID).
			Int("requested", amount).
			Int("wager", wager).
			Msg("daily double wager accepted")
		c.publishState()
		return accepted()
	})
}

// applyFinalWager must run on the command loop.
func (c *Controller) applyFinalWager(p *models.Player, amount int) Outcome {
	if c.st.finalPhase != FinalPhaseWager {
		return rejected(ReasonWrongPhase)
	}
	if _, eligible := c.st.finalEligible[p.ID]; !eligible {
		return rejected(ReasonNotEligible)
	}
	if _, dup := c.st.finalWagers[p.ID]; dup {
		return rejected(ReasonDuplicateWager)
	}
	wager := clamp(amount, 0, p.Score)
	c.st.finalWagers[p.ID] = wager
	log.Info().
		Str("player_id", p.ID).
		Int("requested", amount).
		Int("wager", wager).
		Msg("final jeopardy wager accepted")
	c.publishState()
	return accepted()
}
