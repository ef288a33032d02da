package service

import (
	"context"
	"fmt"

	"github.com/stemsi/ascent-backend/internal/model"
)

// AtlasService builds the student's view of which journeys are open.
type AtlasService struct {
	catalog  CatalogReader
	sessions SessionStore
}

// NewAtlasService creates a new AtlasService.
func NewAtlasService(catalog CatalogReader, sessions SessionStore) *AtlasService {
	return &AtlasService{catalog: catalog, sessions: sessions}
}

// Atlas lists every journey with its unlock state, the user's best score and
// the active session, if any.
func (s *AtlasService) Atlas(ctx context.Context, userID int) (*model.Atlas, error) {
	journeys, err := s.catalog.ListJourneys(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	atlas := &model.Atlas{Journeys: make([]model.AtlasEntry, 0, len(journeys))}
	for i := range history {
		if history[i].Status.Active() {
			atlas.ActiveSession = &history[i]
			break
		}
	}

	for _, j := range journeys {
		entry := model.AtlasEntry{
			Journey:   j,
			Unlocked:  IsUnlocked(j, history),
			BestScore: BestScorePercent(j.ID, history),
		}
		if atlas.ActiveSession != nil && atlas.ActiveSession.JourneyID == j.ID {
			entry.Active = true
		}
		atlas.Journeys = append(atlas.Journeys, entry)
	}
	return atlas, nil
}
