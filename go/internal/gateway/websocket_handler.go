package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/board"
	"github.com/quizdeck/quizdeck/go/internal/events"
	"github.com/quizdeck/quizdeck/go/internal/session"
)

// WebSocketHandler upgrades client connections, gates the host role behind
// the shared secret, decodes inbound action frames, and routes them to the
// session controller.
type WebSocketHandler struct {
	cm         *ConnectionManager
	registry   *Registry
	controller *session.Controller
	boards     *board.Service
	hostSecret string
}

// NewWebSocketHandler wires the handler and its connection manager.
func NewWebSocketHandler(config ConnectionConfig, controller *session.Controller, boards *board.Service, hostSecret string) *WebSocketHandler {
	h := &WebSocketHandler{
		registry:   NewRegistry(),
		controller: controller,
		boards:     boards,
		hostSecret: hostSecret,
	}
	h.cm = NewConnectionManager(config, h.handleMessage, h.handleDisconnect)
	return h
}

// Manager exposes the connection manager for wiring (Start, broadcast sink).
func (h *WebSocketHandler) Manager() *ConnectionManager {
	return h.cm
}

// RegisterRoutes registers the WebSocket endpoint and the stats read.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleConnection)
	mux.HandleFunc("GET /api/stats", h.handleStats)
}

// handleStats reports the live connections. Open like the board reads so the
// host screen can show who is on.
func (h *WebSocketHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cm.Stats())
}

// HandleConnection upgrades a client. Role comes from the query string; host
// connections must present the shared secret.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	role := Role(r.URL.Query().Get("role"))
	switch role {
	case RoleHost:
		if r.URL.Query().Get("secret") != h.hostSecret {
			log.Warn().Msg("host connection rejected: bad secret")
			http.Error(w, "invalid host secret", http.StatusUnauthorized)
			return
		}
	case RoleBoard, RolePlayer:
	case "":
		role = RolePlayer
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	conn, err := h.cm.Upgrade(w, r, role)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	h.sendInitialSync(conn)
}

// sendInitialSync pushes the active board and the current snapshot to a
// freshly connected client.
func (h *WebSocketHandler) sendInitialSync(conn *Connection) {
	snap := h.controller.Snapshot()

	boardEv, err := events.New(events.TypeBoardUpdate, events.BoardUpdatePayload{
		Board:        h.boards.ActiveBoard(),
		CurrentRound: snap.Round,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build initial board event")
	} else {
		h.cm.SendTo(conn, boardEv)
	}

	stateEv, err := events.New(events.TypeStateUpdate, snap)
	if err != nil {
		log.Error().Err(err).Msg("failed to build initial state event")
		return
	}
	h.cm.SendTo(conn, stateEv)
}

func (h *WebSocketHandler) handleDisconnect(conn *Connection) {
	playerID, ok := h.registry.Drop(conn.ID)
	if !ok {
		return
	}
	h.controller.Disconnect(playerID)
}

// handleMessage decodes one inbound frame and dispatches it. Malformed frames
// and role violations are dropped at this boundary; the controller only ever
// sees well-formed typed requests.
func (h *WebSocketHandler) handleMessage(conn *Connection, data []byte) {
	var envelope events.ActionEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", conn.ID).
			Msg("dropping malformed action frame")
		return
	}

	if hostOnly(envelope.Action) && conn.Role != RoleHost {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("role", string(conn.Role)).
			Str("action", string(envelope.Action)).
			Msg("dropping host action from non-host connection")
		return
	}

	out := h.dispatch(conn, envelope)
	if !out.Accepted && out.Reason != session.ReasonNone {
		log.Debug().
			Str("connection_id", conn.ID).
			Str("action", string(envelope.Action)).
			Str("reason", string(out.Reason)).
			Msg("action rejected")
	}
}

func (h *WebSocketHandler) dispatch(conn *Connection, envelope events.ActionEnvelope) session.Outcome {
	switch envelope.Action {
	case events.ActionJoin:
		var req events.JoinRequest
		if !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		out := h.controller.Join(req.PlayerID, req.Name)
		if out.Accepted {
			h.registry.Bind(conn.ID, req.PlayerID)
		}
		return out

	case events.ActionBuzz:
		playerID, ok := h.registry.Resolve(conn.ID)
		if !ok {
			return session.Outcome{Reason: session.ReasonUnknownPlayer}
		}
		return h.controller.Buzz(playerID)

	case events.ActionSubmitWager:
		playerID, ok := h.registry.Resolve(conn.ID)
		if !ok {
			return session.Outcome{Reason: session.ReasonUnknownPlayer}
		}
		var req events.WagerRequest
		if !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		return h.controller.SubmitWager(playerID, req.Amount)

	case events.ActionSubmitFinalAnswer:
		playerID, ok := h.registry.Resolve(conn.ID)
		if !ok {
			return session.Outcome{Reason: session.ReasonUnknownPlayer}
		}
		var req events.FinalAnswerRequest
		if !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		return h.controller.SubmitFinalAnswer(playerID, req.Answer)

	case events.ActionHostUnlockBuzzers:
		return h.controller.UnlockBuzzers()

	case events.ActionHostResetBuzzers:
		return h.controller.ResetBuzzers()

	case events.ActionHostOpenQuestion:
		var req events.CellRequest
		if !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		return h.controller.OpenQuestion(req.CategoryIndex, req.QuestionIndex)

	case events.ActionHostCloseQuestion:
		req := events.CloseQuestionRequest{MarkAsPlayed: true}
		if len(envelope.Payload) > 0 && !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		return h.controller.CloseQuestion(req.MarkAsPlayed)

	case events.ActionHostUnplayQuestion:
		var req events.CellRequest
		if !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		return h.controller.UnplayQuestion(req.CategoryIndex, req.QuestionIndex)

	case events.ActionHostAwardPoints:
		var req events.AwardPointsRequest
		if !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		return h.controller.AwardPoints(req.PlayerID, req.IsCorrect)

	case events.ActionHostAdvanceRound:
		return h.controller.AdvanceRound()

	case events.ActionHostStartTimer:
		return h.controller.StartAnswerTimer()

	case events.ActionHostResetGame:
		return h.controller.ResetGame()

	case events.ActionHostFJShowCategory:
		return h.controller.ShowFinalCategory()

	case events.ActionHostFJStartWagers:
		return h.controller.StartFinalWagers()

	case events.ActionHostFJShowClue:
		return h.controller.ShowFinalClue()

	case events.ActionHostFJStartAnswers:
		return h.controller.StartFinalAnswers()

	case events.ActionHostFJStartReveal:
		return h.controller.StartFinalReveal()

	case events.ActionHostFJRevealPlayer:
		var req events.RevealPlayerRequest
		if !decode(envelope.Payload, &req) {
			return session.Outcome{Reason: session.ReasonInvalidRequest}
		}
		return h.controller.RevealFinalPlayer(req.PlayerID, req.IsCorrect)

	case events.ActionHostFJFinish:
		return h.controller.FinishGame()

	default:
		log.Debug().Str("action", string(envelope.Action)).Msg("unknown action")
		return session.Outcome{Reason: session.ReasonInvalidRequest}
	}
}

func decode(payload json.RawMessage, dst any) bool {
	if len(payload) == 0 {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		log.Debug().Err(err).Msg("dropping malformed action payload")
		return false
	}
	return true
}

// hostOnly reports whether an action is restricted to the host connection.
func hostOnly(action events.Action) bool {
	switch action {
	case events.ActionJoin, events.ActionBuzz, events.ActionSubmitWager, events.ActionSubmitFinalAnswer:
		return false
	}
	return true
}
