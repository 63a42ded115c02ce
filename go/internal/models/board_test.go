package models

import "testing"

func TestBoardGrid(t *testing.T) {
	b := &Board{}
	b.Rounds.Jeopardy.Categories = []Category{{Name: "HISTORY"}}
	b.Rounds.Double.Categories = []Category{{Name: "SCIENCE"}, {Name: "SPORTS"}}

	if got := b.Grid(RoundJeopardy); len(got.Categories) != 1 {
		t.Fatalf("expected the jeopardy grid, got %+v", got)
	}
	if got := b.Grid(RoundDouble); len(got.Categories) != 2 {
		t.Fatalf("expected the double grid, got %+v", got)
	}
	if got := b.Grid(RoundFinal); got != nil {
		t.Fatalf("the final round has no grid, got %+v", got)
	}
	if got := b.Grid(RoundFinished); got != nil {
		t.Fatalf("the finished round has no grid, got %+v", got)
	}
}
