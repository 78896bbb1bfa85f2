package todo

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// lastUpdatedLayout matches the fixed universal sortable timestamp format
// used on the wire, e.g. "2021-07-10 12:41:05Z".
const lastUpdatedLayout = "2006-01-02 15:04:05Z"

// ItemView is the wire projection of a stored item.
type ItemView struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
	LastUpdated string `json:"lastUpdated"`
}

// ListView wraps a user's items for the list endpoint.
type ListView struct {
	Items []ItemView `json:"items"`
}

// Service adapts raw string identifiers from the HTTP layer onto the
// repository's typed operations and maps stored items to view-models.
// It performs no I/O of its own.
type Service struct {
	Repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo}
}

// parseItemID reports whether raw is a well-formed item identifier. A
// malformed identifier is treated the same as an unknown one, so callers
// never learn whether an id could have existed.
func parseItemID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (s *Service) AddItem(ctx context.Context, userID, text string) (string, error) {
	item, err := s.Repo.Add(ctx, userID, text)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

func (s *Service) CompleteItem(ctx context.Context, userID, rawID string) (CompleteResult, error) {
	id, ok := parseItemID(rawID)
	if !ok {
		return CompleteNotFound, nil
	}
	return s.Repo.Complete(ctx, userID, id)
}

func (s *Service) DeleteItem(ctx context.Context, userID, rawID string) (bool, error) {
	id, ok := parseItemID(rawID)
	if !ok {
		return false, nil
	}
	return s.Repo.Delete(ctx, userID, id)
}

func (s *Service) GetItem(ctx context.Context, userID, rawID string) (*ItemView, error) {
	id, ok := parseItemID(rawID)
	if !ok {
		return nil, nil
	}
	item, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil
		}
		return nil, err
	}
	view := mapItem(item)
	return &view, nil
}

// ListItems returns the user's items, open items first in creation order
// followed by completed items in creation order. An empty userID yields
// an empty list without touching the store.
func (s *Service) ListItems(ctx context.Context, userID string) (ListView, error) {
	result := ListView{Items: []ItemView{}}
	if userID == "" {
		return result, nil
	}

	items, err := s.Repo.List(ctx, userID)
	if err != nil {
		return ListView{}, err
	}
	for _, item := range items {
		result.Items = append(result.Items, mapItem(item))
	}
	return result, nil
}

func mapItem(item Item) ItemView {
	lastUpdated := item.CreatedAt
	if item.CompletedAt != nil {
		lastUpdated = *item.CompletedAt
	}
	return ItemView{
		ID:          item.ID,
		Text:        item.Text,
		IsCompleted: item.CompletedAt != nil,
		LastUpdated: lastUpdated.UTC().Format(lastUpdatedLayout),
	}
}
