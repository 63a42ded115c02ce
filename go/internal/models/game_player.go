package models

// Player represents a contestant in the live session. Records are created on
// first join and kept for the lifetime of the session, even while offline, so
// a reconnecting client with the same durable id recovers its score.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Online bool   `json:"online"`
}
