package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quizdeck/quizdeck/go/internal/board"
	"github.com/quizdeck/quizdeck/go/internal/events"
	"github.com/quizdeck/quizdeck/go/internal/session"
)

const testSecret = "letmein"

type nopSink struct{}

func (nopSink) Publish(events.Envelope) {}

// newTestHandler wires a live controller and board service behind a handler.
func newTestHandler(t *testing.T) *WebSocketHandler {
	t.Helper()

	store := board.NewFileStore(filepath.Join(t.TempDir(), "games.json"))
	boards, err := board.NewService(context.Background(), store)
	if err != nil {
		t.Fatalf("board service: %v", err)
	}

	controller := session.NewController(session.DefaultConfig(), boards, nopSink{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go controller.Run(ctx)

	return NewWebSocketHandler(DefaultConnectionConfig(), controller, boards, testSecret)
}

func actionFrame(t *testing.T, action events.Action, payload any) []byte {
	t.Helper()
	envelope := map[string]any{"action": action}
	if payload != nil {
		envelope["payload"] = payload
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal action frame: %v", err)
	}
	return data
}

func TestHandleMessageJoinBindsConnection(t *testing.T) {
	h := newTestHandler(t)
	conn := &Connection{ID: "c1", Role: RolePlayer}

	h.handleMessage(conn, actionFrame(t, events.ActionJoin, events.JoinRequest{
		PlayerID: "p1-abcdef",
		Name:     "Alice",
	}))

	playerID, ok := h.registry.Resolve("c1")
	if !ok || playerID != "p1-abcdef" {
		t.Fatalf("expected join to bind the connection, got %q (ok=%v)", playerID, ok)
	}
	p := h.controller.Snapshot().Players["p1-abcdef"]
	if p == nil || p.Name != "Alice" {
		t.Fatalf("expected joined player Alice, got %+v", p)
	}
}

func TestHandleMessageHostActionsGated(t *testing.T) {
	h := newTestHandler(t)
	player := &Connection{ID: "c1", Role: RolePlayer}
	host := &Connection{ID: "c2", Role: RoleHost}

	h.handleMessage(player, actionFrame(t, events.ActionHostUnlockBuzzers, nil))
	if !h.controller.Snapshot().IsBuzzersLocked {
		t.Fatalf("a player frame must not unlock the buzzers")
	}

	h.handleMessage(host, actionFrame(t, events.ActionHostUnlockBuzzers, nil))
	if h.controller.Snapshot().IsBuzzersLocked {
		t.Fatalf("the host frame must unlock the buzzers")
	}
}

func TestHandleMessageMalformedFramesDropped(t *testing.T) {
	h := newTestHandler(t)
	conn := &Connection{ID: "c1", Role: RoleHost}

	before := h.controller.Snapshot()
	h.handleMessage(conn, []byte("{not json"))
	h.handleMessage(conn, actionFrame(t, events.Action("no-such-action"), nil))
	h.handleMessage(conn, actionFrame(t, events.ActionHostOpenQuestion, "string-payload"))
	after := h.controller.Snapshot()

	if before.IsBuzzersLocked != after.IsBuzzersLocked || after.CurrentQuestion != nil {
		t.Fatalf("malformed frames must not change session state")
	}
}

func TestHandleMessageCloseQuestionDefaultsToPlayed(t *testing.T) {
	h := newTestHandler(t)
	host := &Connection{ID: "c1", Role: RoleHost}

	h.handleMessage(host, actionFrame(t, events.ActionHostOpenQuestion, events.CellRequest{
		CategoryIndex: 0,
		QuestionIndex: 0,
	}))
	h.handleMessage(host, actionFrame(t, events.ActionHostCloseQuestion, nil))

	snap := h.controller.Snapshot()
	if snap.CurrentQuestion != nil {
		t.Fatalf("expected the clue to close")
	}
	if len(snap.PlayedQuestions) != 1 || snap.PlayedQuestions[0] != "0-0" {
		t.Fatalf("closing with no payload must mark the cell played, got %v", snap.PlayedQuestions)
	}
}

func TestHandleMessageBuzzRequiresJoinedConnection(t *testing.T) {
	h := newTestHandler(t)
	conn := &Connection{ID: "c1", Role: RolePlayer}
	host := &Connection{ID: "c2", Role: RoleHost}

	h.handleMessage(host, actionFrame(t, events.ActionHostUnlockBuzzers, nil))
	h.handleMessage(conn, actionFrame(t, events.ActionBuzz, nil))
	if got := h.controller.Snapshot().ActivePlayer; got != "" {
		t.Fatalf("an unjoined connection must not buzz, got %q", got)
	}

	h.handleMessage(conn, actionFrame(t, events.ActionJoin, events.JoinRequest{PlayerID: "p1"}))
	h.handleMessage(conn, actionFrame(t, events.ActionBuzz, nil))
	if got := h.controller.Snapshot().ActivePlayer; got != "p1" {
		t.Fatalf("expected p1 to hold the buzzer, got %q", got)
	}
}

func TestHandleDisconnectMarksPlayerOffline(t *testing.T) {
	h := newTestHandler(t)
	conn := &Connection{ID: "c1", Role: RolePlayer}

	h.handleMessage(conn, actionFrame(t, events.ActionJoin, events.JoinRequest{PlayerID: "p1"}))
	h.handleDisconnect(conn)

	p := h.controller.Snapshot().Players["p1"]
	if p == nil || p.Online {
		t.Fatalf("expected p1 to survive offline, got %+v", p)
	}
	if _, ok := h.registry.Resolve("c1"); ok {
		t.Fatalf("expected the binding to be dropped")
	}
}

func TestHostConnectionRequiresSecret(t *testing.T) {
	h := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?role=host&secret=wrong", nil)
	if err == nil {
		t.Fatalf("expected the dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s?role=host&secret=%s", wsURL, testSecret), nil)
	if err != nil {
		t.Fatalf("host dial with correct secret: %v", err)
	}
	conn.Close()
}

func TestUnknownRoleRejected(t *testing.T) {
	h := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?role=referee", nil)
	if err == nil {
		t.Fatalf("expected the dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %+v", resp)
	}
}

func TestInitialSyncSendsBoardThenState(t *testing.T) {
	h := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	want := []events.Type{events.TypeBoardUpdate, events.TypeStateUpdate}
	for _, wantType := range want {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read initial sync: %v", err)
		}
		var envelope events.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope.Type != wantType {
			t.Fatalf("expected %q, got %q", wantType, envelope.Type)
		}
	}
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	h := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Manager().Start(ctx)

	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		defer conn.Close()
		// Drain the initial sync frames.
		for j := 0; j < 2; j++ {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				t.Fatalf("drain initial sync: %v", err)
			}
		}
		conns = append(conns, conn)
	}

	ev, err := events.New(events.TypeFeedback, events.FeedbackPayload{Kind: events.FeedbackCorrect})
	if err != nil {
		t.Fatalf("build event: %v", err)
	}
	h.Manager().Publish(ev)

	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("connection %d missed the broadcast: %v", i, err)
		}
		var envelope events.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope.Type != events.TypeFeedback {
			t.Fatalf("expected feedback event, got %q", envelope.Type)
		}
	}
}
