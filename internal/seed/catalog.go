// Package seed loads reference data: the journey catalog with its answer key,
// and the demo accounts.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/validator"
)

// ErrInvalidCatalog is returned when a catalog file fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// JourneySeed is one journey in a catalog file, with its questions inline.
type JourneySeed struct {
	model.Journey
	Questions []model.Question `json:"questions"`
}

// Catalog is the content of a catalog file.
type Catalog struct {
	Journeys []JourneySeed `json:"journeys"`
}

// JourneyWriter is implemented by repository.JourneyRepository.
type JourneyWriter interface {
	Upsert(ctx context.Context, j *model.Journey) error
}

// QuestionWriter is implemented by repository.QuestionRepository.
type QuestionWriter interface {
	Upsert(ctx context.Context, q *model.Question) error
}

// CacheInvalidator is implemented by service.CatalogService.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, journeyIDs ...string) error
}

// DecodeCatalog reads, normalizes and validates a catalog file.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// normalize fills fields the file may omit: the parent journey id on each
// question, positional order indexes and the declared question count.
func (c *Catalog) normalize() {
	for i := range c.Journeys {
		j := &c.Journeys[i]
		if j.PrerequisiteID != nil && *j.PrerequisiteID == "" {
			j.PrerequisiteID = nil
		}
		for k := range j.Questions {
			q := &j.Questions[k]
			if q.JourneyID == "" {
				q.JourneyID = j.ID
			}
			if q.OrderIndex == 0 {
				q.OrderIndex = k + 1
			}
		}
		if j.TotalQuestions == 0 {
			j.TotalQuestions = len(j.Questions)
		}
	}
}

// Validate checks identifiers, the answer key and the prerequisite graph.
func (c *Catalog) Validate() error {
	if len(c.Journeys) == 0 {
		return fmt.Errorf("%w: no journeys", ErrInvalidCatalog)
	}

	journeys := make(map[string]*JourneySeed, len(c.Journeys))
	questions := make(map[string]string)
	for i := range c.Journeys {
		j := &c.Journeys[i]
		if !validator.IsSlug(j.ID) {
			return fmt.Errorf("%w: journey id %q", ErrInvalidCatalog, j.ID)
		}
		if _, dup := journeys[j.ID]; dup {
			return fmt.Errorf("%w: duplicate journey %q", ErrInvalidCatalog, j.ID)
		}
		journeys[j.ID] = j

		if j.Title == "" {
			return fmt.Errorf("%w: journey %q has no title", ErrInvalidCatalog, j.ID)
		}
		if j.MinScoreToUnlock < 0 || j.MinScoreToUnlock > 100 {
			return fmt.Errorf("%w: journey %q min score %d outside 0-100", ErrInvalidCatalog, j.ID, j.MinScoreToUnlock)
		}

		for _, q := range j.Questions {
			if !validator.IsSlug(q.ID) {
				return fmt.Errorf("%w: question id %q in %q", ErrInvalidCatalog, q.ID, j.ID)
			}
			if owner, dup := questions[q.ID]; dup {
				return fmt.Errorf("%w: question %q in both %q and %q", ErrInvalidCatalog, q.ID, owner, j.ID)
			}
			questions[q.ID] = j.ID
			if q.JourneyID != j.ID {
				return fmt.Errorf("%w: question %q claims journey %q", ErrInvalidCatalog, q.ID, q.JourneyID)
			}
			for _, o := range q.Options {
				if !validator.IsSlug(o.ID) {
					return fmt.Errorf("%w: option id %q in %q", ErrInvalidCatalog, o.ID, q.ID)
				}
			}
			if !q.HasOption(q.CorrectOption) {
				return fmt.Errorf("%w: question %q answer %q is not an option", ErrInvalidCatalog, q.ID, q.CorrectOption)
			}
		}
	}

	for _, j := range c.Journeys {
		if !j.HasPrerequisite() {
			continue
		}
		if _, ok := journeys[*j.PrerequisiteID]; !ok {
			return fmt.Errorf("%w: journey %q requires unknown %q", ErrInvalidCatalog, j.ID, *j.PrerequisiteID)
		}
	}
	if _, err := c.ordered(); err != nil {
		return err
	}
	return nil
}

// ordered returns the journeys with every prerequisite ahead of its dependents.
func (c *Catalog) ordered() ([]*JourneySeed, error) {
	byID := make(map[string]*JourneySeed, len(c.Journeys))
	for i := range c.Journeys {
		byID[c.Journeys[i].ID] = &c.Journeys[i]
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(byID))
	out := make([]*JourneySeed, 0, len(byID))

	var visit func(j *JourneySeed) error
	visit = func(j *JourneySeed) error {
		switch state[j.ID] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: prerequisite cycle through %q", ErrInvalidCatalog, j.ID)
		}
		state[j.ID] = visiting
		if j.HasPrerequisite() {
			if err := visit(byID[*j.PrerequisiteID]); err != nil {
				return err
			}
		}
		state[j.ID] = done
		out = append(out, j)
		return nil
	}

	for i := range c.Journeys {
		if err := visit(&c.Journeys[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Apply upserts every journey (prerequisites first) and question, then
// drops the cached catalog so the server picks the changes up.
func Apply(ctx context.Context, c *Catalog, journeys JourneyWriter, questions QuestionWriter, cache CacheInvalidator, log zerolog.Logger) error {
	ordered, err := c.ordered()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(ordered))
	for _, j := range ordered {
		journey := j.Journey
		if err := journeys.Upsert(ctx, &journey); err != nil {
			return fmt.Errorf("upsert journey %q: %w", j.ID, err)
		}
		ids = append(ids, j.ID)

		for i := range j.Questions {
			if err := questions.Upsert(ctx, &j.Questions[i]); err != nil {
				return fmt.Errorf("upsert question %q: %w", j.Questions[i].ID, err)
			}
		}
		if len(j.Questions) != j.TotalQuestions {
			log.Warn().
				Str("journey_id", j.ID).
				Int("declared", j.TotalQuestions).
				Int("seeded", len(j.Questions)).
				Msg("Question count differs from journey total")
		}
		log.Info().Str("journey_id", j.ID).Int("questions", len(j.Questions)).Msg("Seeded journey")
	}

	if cache != nil {
		if err := cache.Invalidate(ctx, ids...); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate catalog cache")
		}
	}
	return nil
}
