package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/repository"
)

// DashboardStore is the read model behind the admin dashboard.
// Implemented by repository.DashboardRepository.
type DashboardStore interface {
	ListActiveExpeditions(ctx context.Context) ([]repository.ActiveExpedition, error)
	GetSessionCounts(ctx context.Context) (repository.SessionCounts, error)
	ListCompletedScores(ctx context.Context) ([]repository.CompletedScore, error)
}

// DashboardService serves the admin expedition map, analytics and traveler detail.
type DashboardService struct {
	dashboard DashboardStore
	sessions  SessionStore
	users     UserStore
	catalog   CatalogReader
	log       zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboard DashboardStore, sessions SessionStore, users UserStore, catalog CatalogReader, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		dashboard: dashboard,
		sessions:  sessions,
		users:     users,
		catalog:   catalog,
		log:       logger.Component(log, "dashboard_service"),
	}
}

// ExpeditionMap returns one marker per active session.
func (s *DashboardService) ExpeditionMap(ctx context.Context) ([]model.ExpeditionMarker, error) {
	active, err := s.dashboard.ListActiveExpeditions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active expeditions: %w", err)
	}

	markers := make([]model.ExpeditionMarker, 0, len(active))
	for _, e := range active {
		markers = append(markers, markerFrom(e))
	}
	return markers, nil
}

func markerFrom(e repository.ActiveExpedition) model.ExpeditionMarker {
	status := "active"
	if e.Status == model.SessionStatusDistress {
		status = "distress"
	}
	name := e.UserName
	if name == "" {
		name = "Unknown"
	}
	return model.ExpeditionMarker{
		SessionID:  e.SessionID,
		UserID:     e.UserID,
		Name:       name,
		Journey:    e.JourneyTitle,
		Progress:   ProgressPercent(e.CurrentStep, max(e.TotalQuestions, 1)),
		Status:     status,
		LastActive: e.StartTime,
	}
}

// Analytics summarizes sessions and per-journey completion scores.
func (s *DashboardService) Analytics(ctx context.Context) (*model.Analytics, error) {
	counts, err := s.dashboard.GetSessionCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session counts: %w", err)
	}
	scores, err := s.dashboard.ListCompletedScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completed scores: %w", err)
	}
	a := summarize(counts, scores)
	return &a, nil
}

func summarize(counts repository.SessionCounts, scores []repository.CompletedScore) model.Analytics {
	a := model.Analytics{
		TotalSessions:     counts.Total,
		ActiveSessions:    counts.Active,
		CompletedSessions: counts.Completed,
		TotalStudents:     counts.Students,
		Journeys:          []model.JourneyAnalytics{},
	}
	if counts.Total > 0 {
		a.CompletionRate = int(math.Round(float64(counts.Completed) / float64(counts.Total) * 100))
	}

	type acc struct {
		title string
		n     int
		sum   float64
	}
	byJourney := map[string]*acc{}
	var overall float64
	for _, sc := range scores {
		pct := 0.0
		if sc.TotalPoints > 0 {
			pct = float64(sc.Score) / float64(sc.TotalPoints) * 100
		}
		overall += pct
		j, ok := byJourney[sc.JourneyID]
		if !ok {
			j = &acc{title: sc.JourneyTitle}
			byJourney[sc.JourneyID] = j
		}
		j.n++
		j.sum += pct
	}
	if len(scores) > 0 {
		a.AverageScorePercent = int(math.Round(overall / float64(len(scores))))
	}

	for id, j := range byJourney {
		a.Journeys = append(a.Journeys, model.JourneyAnalytics{
			JourneyID:    id,
			Name:         j.title,
			Completions:  j.n,
			AverageScore: int(math.Round(j.sum / float64(j.n))),
		})
	}
	sort.Slice(a.Journeys, func(i, k int) bool {
		if a.Journeys[i].Name != a.Journeys[k].Name {
			return a.Journeys[i].Name < a.Journeys[k].Name
		}
		return a.Journeys[i].JourneyID < a.Journeys[k].JourneyID
	})
	return a
}

// Traveler returns a session with its owner, journey and audit trail.
func (s *DashboardService) Traveler(ctx context.Context, sessionID uuid.UUID) (*model.TravelerDetail, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	journey, err := s.catalog.GetJourney(ctx, session.JourneyID)
	if err != nil {
		return nil, err
	}
	logs, err := s.sessions.ListLogs(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	return &model.TravelerDetail{
		Session: *session,
		User:    *user,
		Journey: *journey,
		Logs:    logs,
	}, nil
}
