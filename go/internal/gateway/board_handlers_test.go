package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/quizdeck/quizdeck/go/internal/board"
	"github.com/quizdeck/quizdeck/go/internal/models"
	"github.com/quizdeck/quizdeck/go/internal/session"
)

func newBoardAPIServer(t *testing.T) (*httptest.Server, *board.Service, *session.Controller) {
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

	cm := NewConnectionManager(DefaultConnectionConfig(), nil, nil)
	mux := http.NewServeMux()
	NewBoardHandler(boards, controller, cm, testSecret).RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, boards, controller
}

func doJSON(t *testing.T, method, url string, body any, secret string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestBoardAPIMutationsRequireSecret(t *testing.T) {
	server, _, _ := newBoardAPIServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/boards", map[string]string{"name": "X"}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/api/boards", map[string]string{"name": "X"}, "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad secret, got %d", resp.StatusCode)
	}

	// Reads stay open.
	resp = doJSON(t, http.MethodGet, server.URL+"/api/boards", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on open read, got %d", resp.StatusCode)
	}
}

func TestBoardAPICreateListGet(t *testing.T) {
	server, _, _ := newBoardAPIServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/boards", map[string]string{"name": "Quiz Night"}, testSecret)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created models.Board
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created board: %v", err)
	}
	if created.ID == "" || created.Name != "Quiz Night" {
		t.Fatalf("unexpected created board %+v", created)
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/api/boards", nil, "")
	var list struct {
		ActiveBoardID string          `json:"activeBoardId"`
		Boards        []*models.Board `json:"boards"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Boards) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(list.Boards))
	}
	if list.ActiveBoardID != "default" {
		t.Fatalf("creating must not switch the active board, got %q", list.ActiveBoardID)
	}

	resp = doJSON(t, http.MethodGet, server.URL+"/api/boards/"+created.ID, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, server.URL+"/api/boards/missing", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestBoardAPIDeleteRules(t *testing.T) {
	server, _, _ := newBoardAPIServer(t)

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/boards/default", nil, testSecret)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("deleting the last board must 409, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/api/boards", map[string]string{"name": "Second"}, testSecret)
	var created models.Board
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created board: %v", err)
	}

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/boards/"+created.ID, nil, testSecret)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, server.URL+"/api/boards/"+created.ID, nil, testSecret)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on double delete, got %d", resp.StatusCode)
	}
}

func TestBoardAPIActivateResetsSession(t *testing.T) {
	server, boards, controller := newBoardAPIServer(t)

	// Put the session mid-game.
	controller.Join("p1", "Alice")
	controller.OpenQuestion(0, 0)
	controller.CloseQuestion(true)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/boards", map[string]string{"name": "Second"}, testSecret)
	var created models.Board
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created board: %v", err)
	}

	resp = doJSON(t, http.MethodPost, server.URL+"/api/boards/"+created.ID+"/activate", nil, testSecret)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := boards.ActiveBoardID(); got != created.ID {
		t.Fatalf("expected active board %q, got %q", created.ID, got)
	}

	snap := controller.Snapshot()
	if len(snap.PlayedQuestions) != 0 {
		t.Fatalf("switching boards must reset play, got %v", snap.PlayedQuestions)
	}
	if snap.Players["p1"] == nil {
		t.Fatalf("switching boards must keep the roster")
	}
}

func TestBoardAPIUpdateActiveDoesNotReset(t *testing.T) {
	server, _, controller := newBoardAPIServer(t)

	controller.Join("p1", "Alice")
	controller.OpenQuestion(0, 0)
	controller.CloseQuestion(true)

	name := "Edited Live"
	resp := doJSON(t, http.MethodPut, server.URL+"/api/boards/default", board.UpdateBoardRequest{Name: &name}, testSecret)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	snap := controller.Snapshot()
	if len(snap.PlayedQuestions) != 1 {
		t.Fatalf("editing the live board must not reset play, got %v", snap.PlayedQuestions)
	}
}
