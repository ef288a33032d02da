package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/ascent-backend/internal/model"
)

const questionColumns = `id, journey_id, order_index, text, options, correct_option, explanation`

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	if err := row.Scan(&q.ID, &q.JourneyID, &q.OrderIndex, &q.Text, &q.Options, &q.CorrectOption, &q.Explanation); err != nil {
		return nil, translate(err)
	}
	return q, nil
}

// ListByJourney retrieves a journey's questions in waypoint order.
// The id tie-break keeps the order stable should two rows ever share an index.
func (r *QuestionRepository) ListByJourney(ctx context.Context, journeyID string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE journey_id = $1
		 ORDER BY order_index ASC, id ASC`, journeyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question including its answer key.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// Upsert inserts or replaces a question. Used by the seeder only.
func (r *QuestionRepository) Upsert(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO questions (`+questionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   journey_id = EXCLUDED.journey_id,
		   order_index = EXCLUDED.order_index,
		   text = EXCLUDED.text,
		   options = EXCLUDED.options,
		   correct_option = EXCLUDED.correct_option,
		   explanation = EXCLUDED.explanation`,
		q.ID, q.JourneyID, q.OrderIndex, q.Text, q.Options, q.CorrectOption, q.Explanation,
	)
	return translate(err)
}
