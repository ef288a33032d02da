package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/ascent-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// ActiveExpedition is an active session joined with its owner and journey.
type ActiveExpedition struct {
	SessionID      uuid.UUID
	UserID         int
	UserName       string
	JourneyTitle   string
	TotalQuestions int
	CurrentStep    int
	Status         model.SessionStatus
	StartTime      time.Time
}

// ListActiveExpeditions returns every IN_PROGRESS or DISTRESS session, newest first.
func (r *DashboardRepository) ListActiveExpeditions(ctx context.Context) ([]ActiveExpedition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.id, es.user_id, u.name, j.title, j.total_questions, es.current_step, es.status, es.start_time
		 FROM exam_sessions es
		 JOIN users u ON u.id = es.user_id
		 JOIN journeys j ON j.id = es.journey_id
		 WHERE es.status IN ('IN_PROGRESS', 'DISTRESS')
		 ORDER BY es.start_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActiveExpedition
	for rows.Next() {
		var e ActiveExpedition
		if err := rows.Scan(&e.SessionID, &e.UserID, &e.UserName, &e.JourneyTitle,
			&e.TotalQuestions, &e.CurrentStep, &e.Status, &e.StartTime); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SessionCounts holds the headline numbers of the analytics panel.
type SessionCounts struct {
	Total     int
	Active    int
	Completed int
	Students  int
}

// GetSessionCounts retrieves session and student totals in one round trip.
func (r *DashboardRepository) GetSessionCounts(ctx context.Context) (SessionCounts, error) {
	var c SessionCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM exam_sessions),
			(SELECT COUNT(*) FROM exam_sessions WHERE status IN ('IN_PROGRESS', 'DISTRESS')),
			(SELECT COUNT(*) FROM exam_sessions WHERE status = 'COMPLETED'),
			(SELECT COUNT(*) FROM users WHERE role = 'STUDENT')`,
	).Scan(&c.Total, &c.Active, &c.Completed, &c.Students)
	return c, err
}

// CompletedScore is the score of one completed session with its journey.
type CompletedScore struct {
	JourneyID    string
	JourneyTitle string
	Score        int
	TotalPoints  int
}

// ListCompletedScores returns the scores of every completed session.
func (r *DashboardRepository) ListCompletedScores(ctx context.Context) ([]CompletedScore, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.journey_id, COALESCE(j.title, 'Unknown'), es.score, es.total_points
		 FROM exam_sessions es
		 LEFT JOIN journeys j ON j.id = es.journey_id
		 WHERE es.status = 'COMPLETED'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompletedScore
	for rows.Next() {
		var s CompletedScore
		if err := rows.Scan(&s.JourneyID, &s.JourneyTitle, &s.Score, &s.TotalPoints); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
