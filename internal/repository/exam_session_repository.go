package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/ascent-backend/internal/model"
)

const sessionColumns = `id, user_id, journey_id, status, current_step, score, total_points, start_time, end_time`

// ExamSessionRepository handles exam session and journey log data access.
// Every state change is written together with its log entry in one transaction.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.UserID, &s.JourneyID, &s.Status, &s.CurrentStep,
		&s.Score, &s.TotalPoints, &s.StartTime, &s.EndTime)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

func collectSessions(rows pgx.Rows) ([]model.ExamSession, error) {
	defer rows.Close()
	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func insertLog(ctx context.Context, db execer, l *model.JourneyLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	_, err := db.Exec(ctx,
		`INSERT INTO journey_logs (id, session_id, step_index, action, metadata, is_correct, points_earned, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.SessionID, l.StepIndex, l.Action, l.Metadata, l.IsCorrect, l.PointsEarned, l.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert %s log: %w", l.Action, err)
	}
	return nil
}

// GetByID retrieves a session by ID.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// FindActiveByUser returns the user's IN_PROGRESS or DISTRESS session.
func (r *ExamSessionRepository) FindActiveByUser(ctx context.Context, userID int) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE user_id = $1 AND status IN ('IN_PROGRESS', 'DISTRESS')
		 ORDER BY start_time DESC
		 LIMIT 1`, userID))
}

// ListByUser retrieves all sessions of a user, newest first.
func (r *ExamSessionRepository) ListByUser(ctx context.Context, userID int) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE user_id = $1
		 ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// CreateWithLog inserts a new session and its START entry atomically.
// A second active session for the same user violates
// exam_sessions_one_active_per_user and yields ErrDuplicate.
func (r *ExamSessionRepository) CreateWithLog(ctx context.Context, s *model.ExamSession, l *model.JourneyLog) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO exam_sessions (id, user_id, journey_id, status, current_step, score, total_points, start_time)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING start_time`,
			s.ID, s.UserID, s.JourneyID, s.Status, s.CurrentStep, s.Score, s.TotalPoints, s.StartTime,
		).Scan(&s.StartTime)
		if err != nil {
			return translate(err)
		}
		return insertLog(ctx, tx, l)
	})
}

// AdvanceStep moves the session one step forward, adds the earned and possible
// points and appends the answer log, all conditioned on the session still
// being at expectedStep and not completed. Returns ErrStaleWrite otherwise.
func (r *ExamSessionRepository) AdvanceStep(ctx context.Context, id uuid.UUID, expectedStep, earned, possible int, l *model.JourneyLog) (*model.ExamSession, error) {
	var updated *model.ExamSession
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx,
			`UPDATE exam_sessions
			 SET current_step = current_step + 1,
			     score = score + $3,
			     total_points = total_points + $4
			 WHERE id = $1 AND current_step = $2 AND status <> 'COMPLETED'
			 RETURNING `+sessionColumns,
			id, expectedStep, earned, possible))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrStaleWrite
			}
			return err
		}
		updated = s
		return insertLog(ctx, tx, l)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete marks a not-yet-completed session COMPLETED and appends the summit log.
// Returns ErrStaleWrite if the session was already completed.
func (r *ExamSessionRepository) Complete(ctx context.Context, id uuid.UUID, endTime time.Time, l *model.JourneyLog) (*model.ExamSession, error) {
	var updated *model.ExamSession
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx,
			`UPDATE exam_sessions
			 SET status = 'COMPLETED', end_time = $2
			 WHERE id = $1 AND status <> 'COMPLETED'
			 RETURNING `+sessionColumns,
			id, endTime))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrStaleWrite
			}
			return err
		}
		updated = s
		return insertLog(ctx, tx, l)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// TransitionStatus moves a session from one status to another and appends the log.
// Returns ErrStaleWrite if the session is not currently in from.
func (r *ExamSessionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus, l *model.JourneyLog) (*model.ExamSession, error) {
	var updated *model.ExamSession
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := scanSession(tx.QueryRow(ctx,
			`UPDATE exam_sessions SET status = $3
			 WHERE id = $1 AND status = $2
			 RETURNING `+sessionColumns,
			id, from, to))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrStaleWrite
			}
			return err
		}
		updated = s
		return insertLog(ctx, tx, l)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AppendLog records a checkpoint event that does not change session state.
func (r *ExamSessionRepository) AppendLog(ctx context.Context, l *model.JourneyLog) error {
	return insertLog(ctx, r.pool, l)
}

// HasLog reports whether the session already has an entry with the given action.
func (r *ExamSessionRepository) HasLog(ctx context.Context, sessionID uuid.UUID, action model.LogAction) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journey_logs WHERE session_id = $1 AND action = $2)`,
		sessionID, action,
	).Scan(&exists)
	return exists, err
}

// ListLogs returns a session's audit trail in chronological order.
func (r *ExamSessionRepository) ListLogs(ctx context.Context, sessionID uuid.UUID) ([]model.JourneyLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, step_index, action, metadata, is_correct, points_earned, timestamp
		 FROM journey_logs
		 WHERE session_id = $1
		 ORDER BY timestamp ASC, step_index ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.JourneyLog
	for rows.Next() {
		var l model.JourneyLog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.StepIndex, &l.Action, &l.Metadata, &l.IsCorrect, &l.PointsEarned, &l.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
