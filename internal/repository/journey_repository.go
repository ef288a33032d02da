package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/ascent-backend/internal/model"
)

const journeyColumns = `id, title, description, difficulty, duration, total_questions, prerequisite_id, min_score_to_unlock`

// JourneyRepository handles journey catalog data access.
type JourneyRepository struct {
	pool *pgxpool.Pool
}

// NewJourneyRepository creates a new JourneyRepository.
func NewJourneyRepository(pool *pgxpool.Pool) *JourneyRepository {
	return &JourneyRepository{pool: pool}
}

func scanJourney(row pgx.Row) (*model.Journey, error) {
	j := &model.Journey{}
	err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Difficulty, &j.Duration,
		&j.TotalQuestions, &j.PrerequisiteID, &j.MinScoreToUnlock)
	if err != nil {
		return nil, translate(err)
	}
	return j, nil
}

// List returns every journey ordered by title.
func (r *JourneyRepository) List(ctx context.Context) ([]model.Journey, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+journeyColumns+` FROM journeys ORDER BY title ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var journeys []model.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, *j)
	}
	return journeys, rows.Err()
}

// GetByID retrieves a journey by its ID.
func (r *JourneyRepository) GetByID(ctx context.Context, id string) (*model.Journey, error) {
	return scanJourney(r.pool.QueryRow(ctx,
		`SELECT `+journeyColumns+` FROM journeys WHERE id = $1`, id))
}

// Upsert inserts or replaces a journey. Used by the seeder only.
func (r *JourneyRepository) Upsert(ctx context.Context, j *model.Journey) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO journeys (`+journeyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   description = EXCLUDED.description,
		   difficulty = EXCLUDED.difficulty,
		   duration = EXCLUDED.duration,
		   total_questions = EXCLUDED.total_questions,
		   prerequisite_id = EXCLUDED.prerequisite_id,
		   min_score_to_unlock = EXCLUDED.min_score_to_unlock`,
		j.ID, j.Title, j.Description, j.Difficulty, j.Duration,
		j.TotalQuestions, j.PrerequisiteID, j.MinScoreToUnlock,
	)
	return translate(err)
}
