package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/ascent-backend/internal/middleware"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/response"
	"github.com/stemsi/ascent-backend/internal/service"
	"github.com/stemsi/ascent-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSessions records the last call and returns err when set.
type stubSessions struct {
	err      error
	lastCall string
	actor    service.Actor
	id       uuid.UUID
	answer   [2]string
}

func (s *stubSessions) record(call string, actor service.Actor, id uuid.UUID) (*model.ExamSession, error) {
	s.lastCall, s.actor, s.id = call, actor, id
	if s.err != nil {
		return nil, s.err
	}
	return &model.ExamSession{ID: id, UserID: actor.UserID, Status: model.SessionStatusInProgress}, nil
}

func (s *stubSessions) Embark(_ context.Context, userID int, journeyID string) (*model.ExamSession, error) {
	sess, err := s.record("embark", service.Actor{UserID: userID}, uuid.Nil)
	if sess != nil {
		sess.JourneyID = journeyID
	}
	return sess, err
}

func (s *stubSessions) SubmitAnswer(_ context.Context, actor service.Actor, id uuid.UUID, questionID, answerID string) (*model.AnswerFeedback, error) {
	s.answer = [2]string{questionID, answerID}
	sess, err := s.record("answer", actor, id)
	if err != nil {
		return nil, err
	}
	return &model.AnswerFeedback{IsCorrect: answerID == "a", Session: sess}, nil
}

func (s *stubSessions) SignOff(_ context.Context, a service.Actor, id uuid.UUID) (*model.ExamSession, error) {
	return s.record("sign-off", a, id)
}

func (s *stubSessions) MarkDistress(_ context.Context, a service.Actor, id uuid.UUID) (*model.ExamSession, error) {
	return s.record("mark-distress", a, id)
}

func (s *stubSessions) ClearDistress(_ context.Context, a service.Actor, id uuid.UUID) (*model.ExamSession, error) {
	return s.record("clear-distress", a, id)
}

func (s *stubSessions) ReachOverlook(_ context.Context, a service.Actor, id uuid.UUID) (*model.ExamSession, error) {
	return s.record("overlook", a, id)
}

func (s *stubSessions) ResumeAscent(_ context.Context, a service.Actor, id uuid.UUID) (*model.ExamSession, error) {
	return s.record("resume", a, id)
}

func (s *stubSessions) GetActiveSession(_ context.Context, userID int) (*model.ExamSession, *model.Journey, error) {
	s.lastCall = "active"
	if s.err != nil {
		return nil, nil, s.err
	}
	return nil, nil, nil
}

func (s *stubSessions) NextWaypoint(_ context.Context, a service.Actor, id uuid.UUID) (*model.Waypoint, error) {
	sess, err := s.record("waypoint", a, id)
	if err != nil {
		return nil, err
	}
	return &model.Waypoint{Kind: model.WaypointSummit, Step: 4, Total: 3, Session: sess}, nil
}

func (s *stubSessions) GetSessionLogs(_ context.Context, a service.Actor, id uuid.UUID) ([]model.JourneyLog, error) {
	if _, err := s.record("logs", a, id); err != nil {
		return nil, err
	}
	return []model.JourneyLog{}, nil
}

// withActor stands in for RequireAuth.
func withActor(userID int, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: userID, Role: role})
		c.Next()
	}
}

func newSessionRouter(stub *stubSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	h := NewSessionHandler(stub)
	r := gin.New()
	g := r.Group("/student", withActor(1, model.RoleStudent))
	g.GET("/sessions/active", h.GetActiveSession)
	g.POST("/journeys/:journey_id/embark", h.Embark)
	g.GET("/sessions/:session_id/waypoint", h.GetWaypoint)
	g.POST("/sessions/:session_id/answers", h.SubmitAnswer)
	g.POST("/sessions/:session_id/overlook", h.ReachOverlook)
	g.POST("/sessions/:session_id/resume", h.ResumeAscent)
	g.POST("/sessions/:session_id/sign-off", h.SignOff)
	g.POST("/sessions/:session_id/distress", h.MarkDistress)
	g.DELETE("/sessions/:session_id/distress", h.ClearDistress)
	g.GET("/sessions/:session_id/logs", h.GetLogs)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestSessionHandler_Embark(t *testing.T) {
	stub := &stubSessions{}
	r := newSessionRouter(stub)

	w := do(r, http.MethodPost, "/student/journeys/basecamp/embark", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "embark", stub.lastCall)
	assert.Equal(t, 1, stub.actor.UserID)
	assert.Contains(t, w.Body.String(), `"journey_id":"basecamp"`)
}

func TestSessionHandler_EmbarkRejectsBadJourneyID(t *testing.T) {
	stub := &stubSessions{}
	r := newSessionRouter(stub)

	w := do(r, http.MethodPost, "/student/journeys/Base%20Camp/embark", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidID, decodeError(t, w).Code)
	assert.Empty(t, stub.lastCall)
}

func TestSessionHandler_SubmitAnswer(t *testing.T) {
	stub := &stubSessions{}
	r := newSessionRouter(stub)
	id := uuid.New()

	w := do(r, http.MethodPost, "/student/sessions/"+id.String()+"/answers",
		gin.H{"question_id": "basecamp-q01", "answer_id": "a"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, stub.id)
	assert.Equal(t, [2]string{"basecamp-q01", "a"}, stub.answer)
	assert.Contains(t, w.Body.String(), `"is_correct":true`)
}

func TestSessionHandler_SubmitAnswerValidation(t *testing.T) {
	stub := &stubSessions{}
	r := newSessionRouter(stub)
	path := "/student/sessions/" + uuid.NewString() + "/answers"

	w := do(r, http.MethodPost, path, gin.H{"question_id": "basecamp-q01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, response.ErrValidation, body.Code)
	assert.Contains(t, body.Fields, "answer_id")

	w = do(r, http.MethodPost, path, gin.H{"question_id": "../etc", "answer_id": "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "question_id")

	assert.Empty(t, stub.lastCall)
}

func TestSessionHandler_InvalidSessionID(t *testing.T) {
	stub := &stubSessions{}
	r := newSessionRouter(stub)

	w := do(r, http.MethodGet, "/student/sessions/not-a-uuid/waypoint", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidID, decodeError(t, w).Code)
}

func TestSessionHandler_TransitionsRouteToService(t *testing.T) {
	cases := []struct {
		method, suffix, call string
	}{
		{http.MethodPost, "/overlook", "overlook"},
		{http.MethodPost, "/resume", "resume"},
		{http.MethodPost, "/sign-off", "sign-off"},
		{http.MethodPost, "/distress", "mark-distress"},
		{http.MethodDelete, "/distress", "clear-distress"},
		{http.MethodGet, "/waypoint", "waypoint"},
		{http.MethodGet, "/logs", "logs"},
	}
	for _, tc := range cases {
		t.Run(tc.call, func(t *testing.T) {
			stub := &stubSessions{}
			r := newSessionRouter(stub)
			id := uuid.New()

			w := do(r, tc.method, "/student/sessions/"+id.String()+tc.suffix, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.call, stub.lastCall)
			assert.Equal(t, id, stub.id)
		})
	}
}

func TestSessionHandler_ActiveSessionNone(t *testing.T) {
	r := newSessionRouter(&stubSessions{})

	w := do(r, http.MethodGet, "/student/sessions/active", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":null,"journey":null}`, dataOf(t, w))
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	return string(raw.Data)
}

func TestFailFromError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrActiveJourney, http.StatusConflict, response.ErrActiveJourneyExists},
		{fmt.Errorf("embark: %w", service.ErrSessionCompleted), http.StatusConflict, response.ErrSessionCompleted},
		{service.ErrStaleStep, http.StatusConflict, response.ErrStaleStep},
		{service.ErrSessionChanged, http.StatusConflict, response.ErrSessionChanged},
		{service.ErrNotAtOverlook, http.StatusConflict, response.ErrNotAtOverlook},
		{service.ErrJourneyLocked, http.StatusForbidden, response.ErrJourneyLocked},
		{service.ErrNotOwner, http.StatusForbidden, response.ErrNotSessionOwner},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
		{service.ErrLoginSuperseded, http.StatusUnauthorized, response.ErrSessionInvalidated},
		{service.ErrEmailTaken, http.StatusConflict, response.ErrConflict},
		{fmt.Errorf("journey %q: %w", "x", service.ErrNotFound), http.StatusNotFound, response.ErrNotFound},
		{fmt.Errorf("boom"), http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			r := newSessionRouter(&stubSessions{err: tc.err})

			w := do(r, http.MethodPost, "/student/sessions/"+uuid.NewString()+"/sign-off", nil)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestSessionHandler_MalformedBodyIsInvalidPayload(t *testing.T) {
	stub := &stubSessions{}
	r := newSessionRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/student/sessions/"+uuid.NewString()+"/answers", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidPayload, decodeError(t, w).Code)
	assert.Empty(t, stub.lastCall)
}
