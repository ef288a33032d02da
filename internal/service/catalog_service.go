package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/config"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/repository"
)

// CatalogService serves journeys and their question sequences. Reads go
// through a Redis cache; any cache failure falls back to PostgreSQL.
type CatalogService struct {
	journeys  JourneyStore
	questions QuestionStore
	cache     KeyValueCache
	ttl       time.Duration
	log       zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(journeys JourneyStore, questions QuestionStore, cache KeyValueCache, cfg *config.Config, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		journeys:  journeys,
		questions: questions,
		cache:     cache,
		ttl:       cfg.CatalogCacheTTL,
		log:       logger.Component(log, "catalog_service"),
	}
}

// ListJourneys returns the catalog ordered by title.
func (s *CatalogService) ListJourneys(ctx context.Context) ([]model.Journey, error) {
	key := config.CacheKey.JourneyCatalogKey()

	var journeys []model.Journey
	if s.readCache(ctx, key, &journeys) {
		return journeys, nil
	}

	journeys, err := s.journeys.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}
	s.writeCache(ctx, key, journeys)
	return journeys, nil
}

// GetJourney returns one journey by id.
func (s *CatalogService) GetJourney(ctx context.Context, id string) (*model.Journey, error) {
	journeys, err := s.ListJourneys(ctx)
	if err == nil {
		for i := range journeys {
			if journeys[i].ID == id {
				return &journeys[i], nil
			}
		}
	}

	j, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("journey %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get journey: %w", err)
	}
	return j, nil
}

// ListQuestions returns a journey's questions in waypoint order.
func (s *CatalogService) ListQuestions(ctx context.Context, journeyID string) ([]model.Question, error) {
	key := config.CacheKey.JourneyQuestionsKey(journeyID)

	var questions []model.Question
	if s.readCache(ctx, key, &questions) {
		return questions, nil
	}

	questions, err := s.questions.ListByJourney(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	OrderQuestions(questions)
	s.writeCache(ctx, key, questions)
	return questions, nil
}

// GetQuestion returns one question by id.
func (s *CatalogService) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("question %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// QuestionAt returns the question shown at a 1-based step of a journey.
func (s *CatalogService) QuestionAt(ctx context.Context, journeyID string, step int) (*model.Question, error) {
	questions, err := s.ListQuestions(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	return QuestionAt(questions, step)
}

// Invalidate drops cached catalog entries after the seeder rewrites them.
func (s *CatalogService) Invalidate(ctx context.Context, journeyIDs ...string) error {
	keys := []string{config.CacheKey.JourneyCatalogKey()}
	for _, id := range journeyIDs {
		keys = append(keys, config.CacheKey.JourneyQuestionsKey(id))
	}
	return s.cache.Del(ctx, keys...).Err()
}

// PrewarmCache loads the catalog and every question sequence into Redis on startup.
func (s *CatalogService) PrewarmCache(ctx context.Context) error {
	if err := s.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear catalog cache")
	}

	journeys, err := s.ListJourneys(ctx)
	if err != nil {
		return err
	}
	if len(journeys) == 0 {
		s.log.Info().Msg("No journeys to prewarm")
		return nil
	}

	warmed := 0
	for _, j := range journeys {
		if err := s.cache.Del(ctx, config.CacheKey.JourneyQuestionsKey(j.ID)).Err(); err != nil {
			s.log.Warn().Err(err).Str("journey_id", j.ID).Msg("Failed to clear question cache")
		}
		questions, err := s.ListQuestions(ctx, j.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("journey_id", j.ID).Msg("Failed to warm journey, skipping")
			continue
		}
		if len(questions) != j.TotalQuestions {
			s.log.Warn().
				Str("journey_id", j.ID).
				Int("declared", j.TotalQuestions).
				Int("stored", len(questions)).
				Msg("Question count differs from journey total")
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(journeys)).
		Msg("Prewarming complete")
	return nil
}

func (s *CatalogService) readCache(ctx context.Context, key string, dst any) bool {
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Catalog cache entry corrupt")
		return false
	}
	return true
}

func (s *CatalogService) writeCache(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Catalog cache write failed")
	}
}
