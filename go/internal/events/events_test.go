package events

import (
	"encoding/json"
	"testing"
)

func TestNewEnvelope(t *testing.T) {
	ev, err := New(TypeBuzzWinner, BuzzWinnerPayload{WinnerID: "p1", WinnerName: "Alice"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ev.ID == "" || ev.Type != TypeBuzzWinner || ev.Timestamp.IsZero() {
		t.Fatalf("incomplete envelope %+v", ev)
	}

	var payload BuzzWinnerPayload
	if err := json.Unmarshal(ev.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.WinnerID != "p1" || payload.WinnerName != "Alice" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestNewRejectsUnmarshalablePayload(t *testing.T) {
	if _, err := New(TypeFeedback, func() {}); err == nil {
		t.Fatalf("expected an error for an unmarshalable payload")
	}
}

func TestActionEnvelopeDecodesClientFrame(t *testing.T) {
	frame := []byte(`{"action":"host-open-question","payload":{"categoryIndex":2,"questionIndex":4}}`)

	var envelope ActionEnvelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if envelope.Action != ActionHostOpenQuestion {
		t.Fatalf("expected %q, got %q", ActionHostOpenQuestion, envelope.Action)
	}

	var req CellRequest
	if err := json.Unmarshal(envelope.Payload, &req); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if req.CategoryIndex != 2 || req.QuestionIndex != 4 {
		t.Fatalf("unexpected cell request %+v", req)
	}
}

func TestFeedbackPayloadWireNames(t *testing.T) {
	data, err := json.Marshal(FeedbackPayload{
		Kind:       FeedbackWrong,
		PlayerID:   "p1",
		PlayerName: "Alice",
		Points:     -400,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Display clients key the animation off the "type" field.
	if wire["type"] != "wrong" {
		t.Fatalf("expected type %q, got %v", "wrong", wire["type"])
	}
	if wire["playerId"] != "p1" {
		t.Fatalf("expected playerId %q, got %v", "p1", wire["playerId"])
	}
}
