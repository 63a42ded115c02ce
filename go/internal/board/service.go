package board

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/models"
)

// Service owns the in-memory board catalog and writes it through to the
// store. The in-memory copy stays authoritative: a persistence failure is
// logged and play continues on the prior content.
type Service struct {
	store Store

	mu      sync.RWMutex
	catalog *Catalog
}

// NewService loads the catalog from the store.
func NewService(ctx context.Context, store Store) (*Service, error) {
	catalog, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load board catalog: %w", err)
	}
	if catalog.ActiveBoardID == "" || catalog.Boards[catalog.ActiveBoardID] == nil {
		catalog.ActiveBoardID = firstBoardID(catalog)
	}
	return &Service{store: store, catalog: catalog}, nil
}

// UpdateBoardRequest carries the optional fields of a board update.
type UpdateBoardRequest struct {
	Name *string    `json:"name,omitempty"`
	Data *BoardData `json:"data,omitempty"`
}

// List returns every board, sorted by name for stable output.
func (s *Service) List() []*models.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()

	boards := make([]*models.Board, 0, len(s.catalog.Boards))
	for id, b := range s.catalog.Boards {
		boards = append(boards, toModel(id, b))
	}
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Name != boards[j].Name {
			return boards[i].Name < boards[j].Name
		}
		return boards[i].ID < boards[j].ID
	})
	return boards
}

// Get returns one board by id.
func (s *Service) Get(id string) (*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.catalog.Boards[id]
	if !ok {
		return nil, ErrBoardNotFound
	}
	return toModel(id, b), nil
}

// Create adds a new board seeded with placeholder content.
func (s *Service) Create(name string) (*models.Board, error) {
	if name == "" {
		name = "New Game Board"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.catalog.Boards[id] = &StoredBoard{Name: name, Data: emptyBoardData()}
	s.persist()
	log.Info().Str("board_id", id).Str("name", name).Msg("board created")
	return toModel(id, s.catalog.Boards[id]), nil
}

// Update replaces a board's name and/or content.
func (s *Service) Update(id string, req UpdateBoardRequest) (*models.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.catalog.Boards[id]
	if !ok {
		return nil, ErrBoardNotFound
	}
	if req.Name != nil && *req.Name != "" {
		b.Name = *req.Name
	}
	if req.Data != nil {
		b.Data = *req.Data
	}
	s.persist()
	log.Info().Str("board_id", id).Msg("board updated")
	return toModel(id, b), nil
}

// Delete removes a board. The last remaining board cannot be deleted;
// deleting the active board activates another surviving one.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.Boards[id]; !ok {
		return ErrBoardNotFound
	}
	if len(s.catalog.Boards) <= 1 {
		return ErrLastBoard
	}
	delete(s.catalog.Boards, id)
	if s.catalog.ActiveBoardID == id {
		s.catalog.ActiveBoardID = firstBoardID(s.catalog)
		log.Info().Str("board_id", s.catalog.ActiveBoardID).Msg("active board reassigned after delete")
	}
	s.persist()
	log.Info().Str("board_id", id).Msg("board deleted")
	return nil
}

// SetActive switches the active board.
func (s *Service) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.Boards[id]; !ok {
		return ErrBoardNotFound
	}
	s.catalog.ActiveBoardID = id
	s.persist()
	log.Info().Str("board_id", id).Msg("active board switched")
	return nil
}

// ActiveBoardID returns the id of the active board.
func (s *Service) ActiveBoardID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.ActiveBoardID
}

// ActiveBoard returns a copy of the active board.
func (s *Service) ActiveBoard() *models.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := s.catalog.ActiveBoardID
	b, ok := s.catalog.Boards[id]
	if !ok {
		return toModel(id, &StoredBoard{Data: BoardData{}})
	}
	return toModel(id, b)
}

// RoundCategories returns the active board's grid for the given round.
func (s *Service) RoundCategories(round models.Round) []models.Category {
	board := s.ActiveBoard()
	grid := board.Grid(round)
	if grid == nil {
		return nil
	}
	return grid.Categories
}

// FinalRound returns the active board's Final Jeopardy clue.
func (s *Service) FinalRound() models.FinalRound {
	return s.ActiveBoard().FinalJeopardy
}

// persist writes the catalog through to the store. Callers hold the lock.
// Failures are logged, not surfaced: the in-memory catalog stays
// authoritative for the running session.
func (s *Service) persist() {
	if err := s.store.Save(context.Background(), s.catalog); err != nil {
		log.Error().Err(err).Msg("failed to persist board catalog")
	}
}

func firstBoardID(catalog *Catalog) string {
	ids := make([]string, 0, len(catalog.Boards))
	for id := range catalog.Boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// toModel builds a detached copy safe for callers to hold.
func toModel(id string, b *StoredBoard) *models.Board {
	return &models.Board{
		ID:            id,
		Name:          b.Name,
		Rounds:        cloneRounds(b.Data.Rounds),
		FinalJeopardy: b.Data.FinalJeopardy,
	}
}

func cloneRounds(r models.BoardRounds) models.BoardRounds {
	return models.BoardRounds{
		Jeopardy: cloneRound(r.Jeopardy),
		Double:   cloneRound(r.Double),
	}
}

func cloneRound(rb models.RoundBoard) models.RoundBoard {
	out := models.RoundBoard{Categories: make([]models.Category, len(rb.Categories))}
	for i, cat := range rb.Categories {
		out.Categories[i] = models.Category{
			Name:      cat.Name,
			Questions: append([]models.Question{}, cat.Questions...),
		}
	}
	return out
}
