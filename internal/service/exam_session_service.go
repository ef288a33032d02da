package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/config"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/repository"
)

// ExamSessionService drives a student's session through a journey:
// embark, answer, overlook, distress and sign-off.
type ExamSessionService struct {
	sessions          SessionStore
	catalog           CatalogReader
	users             UserStore
	notifier          Notifier
	pointsPerQuestion int
	overlookStep      int
	now               func() time.Time
	log               zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	sessions SessionStore,
	catalog CatalogReader,
	users UserStore,
	notifier Notifier,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		sessions:          sessions,
		catalog:           catalog,
		users:             users,
		notifier:          notifier,
		pointsPerQuestion: cfg.PointsPerQuestion,
		overlookStep:      cfg.OverlookStep,
		now:               time.Now,
		log:               logger.Component(log, "exam_session_service"),
	}
}

// Embark resumes the user's active session on journeyID or starts a new one.
// An active session on another journey is a conflict.
func (s *ExamSessionService) Embark(ctx context.Context, userID int, journeyID string) (*model.ExamSession, error) {
	active, err := s.findActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.JourneyID == journeyID {
			return active, nil
		}
		return nil, ErrActiveJourney
	}

	journey, err := s.catalog.GetJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	if journey.HasPrerequisite() {
		history, err := s.sessions.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		if !IsUnlocked(*journey, history) {
			return nil, ErrJourneyLocked
		}
	}

	now := s.now()
	session := &model.ExamSession{
		ID:          uuid.New(),
		UserID:      userID,
		JourneyID:   journeyID,
		Status:      model.SessionStatusInProgress,
		CurrentStep: 1,
		StartTime:   now,
	}
	startLog := model.NewJourneyLog(session.ID, 1, model.LogActionStart, now)

	if err := s.sessions.CreateWithLog(ctx, session, startLog); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create session: %w", err)
		}
		// A concurrent embark won the one-active-session index.
		winner, ferr := s.findActive(ctx, userID)
		if ferr != nil {
			return nil, ferr
		}
		if winner != nil && winner.JourneyID == journeyID {
			return winner, nil
		}
		return nil, ErrActiveJourney
	}

	s.log.Info().
		Int("user_id", userID).
		Str("journey_id", journeyID).
		Str("session_id", session.ID.String()).
		Msg("Journey started")

	s.notifier.Notify(model.ProgressEvent{
		Name: config.Broadcast.EventSessionsChanged,
		Payload: model.SessionsChanged{
			UserID:    userID,
			SessionID: session.ID,
			JourneyID: journeyID,
		},
	})
	return session, nil
}

// SubmitAnswer grades an answer for the session's current step, advances the
// step and accrues points. An unknown question is graded incorrect.
func (s *ExamSessionService) SubmitAnswer(ctx context.Context, actor Actor, sessionID uuid.UUID, questionID, answerID string) (*model.AnswerFeedback, error) {
	session, err := s.loadOwned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, ErrSessionCompleted
	}

	question, err := s.catalog.GetQuestion(ctx, questionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	isCorrect := question != nil && question.CorrectOption == answerID
	earned := 0
	if isCorrect {
		earned = s.pointsPerQuestion
	}

	entry := model.NewJourneyLog(session.ID, session.CurrentStep, model.LogActionAnswerQuestion, s.now())
	entry.Metadata["questionId"] = questionID
	entry.Metadata["answerId"] = answerID
	entry.Metadata["isCorrect"] = isCorrect
	entry.IsCorrect = &isCorrect
	entry.PointsEarned = &earned

	updated, err := s.sessions.AdvanceStep(ctx, session.ID, session.CurrentStep, earned, s.pointsPerQuestion, entry)
	if err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, ErrStaleStep
		}
		return nil, fmt.Errorf("advance step: %w", err)
	}

	s.notifyMoved(ctx, updated)

	feedback := &model.AnswerFeedback{IsCorrect: isCorrect, Session: updated}
	if question != nil {
		feedback.CorrectOption = &question.CorrectOption
		feedback.Explanation = &question.Explanation
	}
	return feedback, nil
}

// SignOff completes the session at the summit. Signing off a completed
// session returns it unchanged.
func (s *ExamSessionService) SignOff(ctx context.Context, actor Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.loadOwned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return session, nil
	}

	now := s.now()
	entry := model.NewJourneyLog(session.ID, session.CurrentStep, model.LogActionSummitReached, now)
	entry.Metadata["finalScore"] = session.Score

	updated, err := s.sessions.Complete(ctx, session.ID, now, entry)
	if err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return s.reload(ctx, session.ID)
		}
		return nil, fmt.Errorf("complete session: %w", err)
	}

	s.log.Info().
		Int("user_id", updated.UserID).
		Str("session_id", updated.ID.String()).
		Int("score", updated.Score).
		Int("total_points", updated.TotalPoints).
		Msg("Summit reached")

	s.notifier.Notify(model.ProgressEvent{
		Name: config.Broadcast.EventPlayerCompleted,
		Payload: model.PlayerCompleted{
			SessionID: updated.ID,
			UserID:    updated.UserID,
			Status:    updated.Status,
			Score:     updated.Score,
			Total:     updated.TotalPoints,
		},
	})
	return updated, nil
}

// MarkDistress flags an in-progress session as needing help.
func (s *ExamSessionService) MarkDistress(ctx context.Context, actor Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.toggleDistress(ctx, actor, sessionID,
		model.SessionStatusInProgress, model.SessionStatusDistress, model.LogActionDistressSignaled)
}

// ClearDistress returns a distressed session to IN_PROGRESS.
func (s *ExamSessionService) ClearDistress(ctx context.Context, actor Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.toggleDistress(ctx, actor, sessionID,
		model.SessionStatusDistress, model.SessionStatusInProgress, model.LogActionDistressCleared)
}

func (s *ExamSessionService) toggleDistress(ctx context.Context, actor Actor, sessionID uuid.UUID, from, to model.SessionStatus, action model.LogAction) (*model.ExamSession, error) {
	session, err := s.loadOwned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case model.SessionStatusCompleted:
		return nil, ErrSessionCompleted
	case to:
		return session, nil
	}

	entry := model.NewJourneyLog(session.ID, session.CurrentStep, action, s.now())
	entry.Metadata["by"] = string(actor.Role)
	entry.Metadata["userId"] = actor.UserID

	updated, err := s.sessions.TransitionStatus(ctx, session.ID, from, to, entry)
	if err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, ErrSessionChanged
		}
		return nil, fmt.Errorf("transition status: %w", err)
	}

	s.log.Info().
		Str("session_id", updated.ID.String()).
		Str("status", string(updated.Status)).
		Int("actor_id", actor.UserID).
		Msg("Distress toggled")

	s.notifyMoved(ctx, updated)
	return updated, nil
}

// ReachOverlook records arrival at the mid-journey checkpoint. It is only
// valid right after the overlook step of a journey long enough to have one.
// Repeat calls are ignored.
func (s *ExamSessionService) ReachOverlook(ctx context.Context, actor Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.checkpoint(ctx, actor, sessionID, model.LogActionEnterOverlook)
}

// ResumeAscent records leaving the checkpoint, which must have been reached
// first. Repeat calls are ignored.
func (s *ExamSessionService) ResumeAscent(ctx context.Context, actor Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.checkpoint(ctx, actor, sessionID, model.LogActionResumeAscent)
}

func (s *ExamSessionService) checkpoint(ctx context.Context, actor Actor, sessionID uuid.UUID, action model.LogAction) (*model.ExamSession, error) {
	session, err := s.loadOwned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, ErrSessionCompleted
	}

	logged, err := s.sessions.HasLog(ctx, session.ID, action)
	if err != nil {
		return nil, fmt.Errorf("check log: %w", err)
	}
	if logged {
		return session, nil
	}

	journey, err := s.catalog.GetJourney(ctx, session.JourneyID)
	if err != nil {
		return nil, err
	}
	if !s.atOverlook(session, journey) {
		return nil, ErrNotAtOverlook
	}
	if action == model.LogActionResumeAscent {
		reached, err := s.sessions.HasLog(ctx, session.ID, model.LogActionEnterOverlook)
		if err != nil {
			return nil, fmt.Errorf("check log: %w", err)
		}
		if !reached {
			return nil, ErrNotAtOverlook
		}
	}

	entry := model.NewJourneyLog(session.ID, s.overlookStep+1, action, s.now())
	if err := s.sessions.AppendLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("append log: %w", err)
	}
	return session, nil
}

// GetActiveSession returns the user's IN_PROGRESS or DISTRESS session with its
// journey, or nils when there is none.
func (s *ExamSessionService) GetActiveSession(ctx context.Context, userID int) (*model.ExamSession, *model.Journey, error) {
	session, err := s.findActive(ctx, userID)
	if err != nil || session == nil {
		return nil, nil, err
	}
	journey, err := s.catalog.GetJourney(ctx, session.JourneyID)
	if err != nil {
		return nil, nil, err
	}
	return session, journey, nil
}

// NextWaypoint tells the client where the session stands: the current
// question, the overlook checkpoint, or the summit.
func (s *ExamSessionService) NextWaypoint(ctx context.Context, actor Actor, sessionID uuid.UUID) (*model.Waypoint, error) {
	session, err := s.loadOwned(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	journey, err := s.catalog.GetJourney(ctx, session.JourneyID)
	if err != nil {
		return nil, err
	}

	wp := &model.Waypoint{
		Step:    session.CurrentStep,
		Total:   journey.TotalQuestions,
		Session: session,
	}

	if session.Status == model.SessionStatusCompleted || session.CurrentStep > journey.TotalQuestions {
		wp.Kind = model.WaypointSummit
		return wp, nil
	}

	if s.atOverlook(session, journey) {
		resumed, err := s.sessions.HasLog(ctx, session.ID, model.LogActionResumeAscent)
		if err != nil {
			return nil, fmt.Errorf("check log: %w", err)
		}
		if !resumed {
			wp.Kind = model.WaypointOverlook
			return wp, nil
		}
	}

	questions, err := s.catalog.ListQuestions(ctx, journey.ID)
	if err != nil {
		return nil, err
	}
	OrderQuestions(questions)
	q, err := QuestionAt(questions, session.CurrentStep)
	if err != nil {
		if errors.Is(err, ErrJourneyExhausted) {
			wp.Kind = model.WaypointSummit
			return wp, nil
		}
		return nil, err
	}

	student := q.ForStudent()
	wp.Kind = model.WaypointQuestion
	wp.Question = &student
	return wp, nil
}

// GetSessionLogs returns a session's audit trail ordered by timestamp.
func (s *ExamSessionService) GetSessionLogs(ctx context.Context, actor Actor, sessionID uuid.UUID) ([]model.JourneyLog, error) {
	if _, err := s.loadOwned(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	logs, err := s.sessions.ListLogs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

// atOverlook reports whether the session stands at the checkpoint between the
// overlook step and the rest of the journey.
func (s *ExamSessionService) atOverlook(session *model.ExamSession, journey *model.Journey) bool {
	return journey.TotalQuestions > s.overlookStep && session.CurrentStep == s.overlookStep+1
}

func (s *ExamSessionService) findActive(ctx context.Context, userID int) (*model.ExamSession, error) {
	session, err := s.sessions.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return session, nil
}

func (s *ExamSessionService) reload(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *ExamSessionService) loadOwned(ctx context.Context, actor Actor, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.reload(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && session.UserID != actor.UserID {
		return nil, ErrNotOwner
	}
	return session, nil
}

// notifyMoved enqueues a player-moved event. Lookup failures degrade the
// payload instead of failing the operation that already committed.
func (s *ExamSessionService) notifyMoved(ctx context.Context, session *model.ExamSession) {
	total := 0
	if journey, err := s.catalog.GetJourney(ctx, session.JourneyID); err == nil {
		total = journey.TotalQuestions
	} else {
		s.log.Warn().Err(err).Str("journey_id", session.JourneyID).Msg("Journey lookup failed for progress event")
	}

	var user *model.User
	if u, err := s.users.GetByID(ctx, session.UserID); err == nil {
		user = u
	} else {
		s.log.Warn().Err(err).Int("user_id", session.UserID).Msg("User lookup failed for progress event")
	}

	s.notifier.Notify(model.ProgressEvent{
		Name: config.Broadcast.EventPlayerMoved,
		Payload: model.PlayerMoved{
			SessionID: session.ID,
			UserID:    session.UserID,
			UserName:  user.DisplayName(),
			Progress:  ProgressPercent(session.CurrentStep, total),
			Status:    session.Status,
			Step:      session.CurrentStep,
		},
	})
}
