package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/ascent-backend/internal/model"
	"github.com/stemsi/ascent-backend/internal/repository"
)

// fakeSessionStore mirrors the conditional-write semantics of ExamSessionRepository.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.ExamSession
	order    []uuid.UUID
	logs     []model.JourneyLog

	// beforeAdvance runs under the lock ahead of the step check, to simulate
	// a concurrent writer.
	beforeAdvance func(s *model.ExamSession)
	// beforeCreate runs under the lock ahead of the unique-index check.
	beforeCreate func(f *fakeSessionStore)
	failCreate   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uuid.UUID]*model.ExamSession{}}
}

func (f *fakeSessionStore) put(s model.ExamSession) *model.ExamSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := s
	f.sessions[s.ID] = &cp
	f.order = append(f.order, s.ID)
	return &cp
}

func (f *fakeSessionStore) snapshot(id uuid.UUID) model.ExamSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.sessions[id]
}

func (f *fakeSessionStore) logsFor(id uuid.UUID) []model.JourneyLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.JourneyLog
	for _, l := range f.logs {
		if l.SessionID == id {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) FindActiveByUser(_ context.Context, userID int) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.order) - 1; i >= 0; i-- {
		s := f.sessions[f.order[i]]
		if s.UserID == userID && s.Status.Active() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionStore) ListByUser(_ context.Context, userID int) ([]model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ExamSession
	for i := len(f.order) - 1; i >= 0; i-- {
		if s := f.sessions[f.order[i]]; s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) CreateWithLog(_ context.Context, s *model.ExamSession, l *model.JourneyLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	if f.beforeCreate != nil {
		f.beforeCreate(f)
	}
	for _, existing := range f.sessions {
		if existing.UserID == s.UserID && existing.Status.Active() {
			return fmt.Errorf("%w: exam_sessions_one_active_per_user", repository.ErrDuplicate)
		}
	}
	cp := *s
	f.sessions[s.ID] = &cp
	f.order = append(f.order, s.ID)
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeSessionStore) AdvanceStep(_ context.Context, id uuid.UUID, expectedStep, earned, possible int, l *model.JourneyLog) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrStaleWrite
	}
	if f.beforeAdvance != nil {
		f.beforeAdvance(s)
	}
	if s.CurrentStep != expectedStep || s.Status == model.SessionStatusCompleted {
		return nil, repository.ErrStaleWrite
	}
	s.CurrentStep++
	s.Score += earned
	s.TotalPoints += possible
	f.logs = append(f.logs, *l)
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Complete(_ context.Context, id uuid.UUID, endTime time.Time, l *model.JourneyLog) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status == model.SessionStatusCompleted {
		return nil, repository.ErrStaleWrite
	}
	s.Status = model.SessionStatusCompleted
	s.EndTime = &endTime
	f.logs = append(f.logs, *l)
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to model.SessionStatus, l *model.JourneyLog) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != from {
		return nil, repository.ErrStaleWrite
	}
	s.Status = to
	f.logs = append(f.logs, *l)
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) AppendLog(_ context.Context, l *model.JourneyLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeSessionStore) HasLog(_ context.Context, sessionID uuid.UUID, action model.LogAction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.logs {
		if l.SessionID == sessionID && l.Action == action {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionStore) ListLogs(_ context.Context, sessionID uuid.UUID) ([]model.JourneyLog, error) {
	logs := f.logsFor(sessionID)
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Timestamp.Before(logs[j].Timestamp) })
	return logs, nil
}

// fakeCatalog is an in-memory CatalogReader.
type fakeCatalog struct {
	journeys  []model.Journey
	questions map[string]model.Question
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{questions: map[string]model.Question{}}
}

func (c *fakeCatalog) addJourney(j model.Journey, questions int) {
	c.journeys = append(c.journeys, j)
	for i := 1; i <= questions; i++ {
		id := fmt.Sprintf("%s-q%02d", j.ID, i)
		c.questions[id] = model.Question{
			ID:         id,
			JourneyID:  j.ID,
			OrderIndex: i,
			Text:       "Question " + id,
			Options: []model.Option{
				{ID: "a", Text: "Alpha"},
				{ID: "b", Text: "Bravo"},
			},
			CorrectOption: "a",
			Explanation:   "Alpha is right for " + id,
		}
	}
}

func (c *fakeCatalog) ListJourneys(context.Context) ([]model.Journey, error) {
	return c.journeys, nil
}

func (c *fakeCatalog) GetJourney(_ context.Context, id string) (*model.Journey, error) {
	for i := range c.journeys {
		if c.journeys[i].ID == id {
			j := c.journeys[i]
			return &j, nil
		}
	}
	return nil, fmt.Errorf("journey %q: %w", id, ErrNotFound)
}

func (c *fakeCatalog) ListQuestions(_ context.Context, journeyID string) ([]model.Question, error) {
	var out []model.Question
	for _, q := range c.questions {
		if q.JourneyID == journeyID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetQuestion(_ context.Context, id string) (*model.Question, error) {
	q, ok := c.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %q: %w", id, ErrNotFound)
	}
	return &q, nil
}

// fakeUsers is an in-memory UserStore keyed by id.
type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int]*model.User
	nextID int
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[int]*model.User{}, nextID: 100}
	for i := range users {
		u := users[i]
		f.byID[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpsertByEmail(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.byID {
		if existing.Email == u.Email {
			u.ID = id
			cp := *u
			f.byID[id] = &cp
			return nil
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

// recordingNotifier captures enqueued events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (n *recordingNotifier) Notify(e model.ProgressEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) named(name string) []model.ProgressEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []model.ProgressEvent
	for _, e := range n.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// fakeCache is a map-backed KeyValueCache. Setting err makes every call fail.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
	gets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return redis.NewStringResult("", c.err)
	}
	v, ok := c.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewStatusResult("", c.err)
	}
	switch v := value.(type) {
	case string:
		c.data[key] = v
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	c.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return redis.NewIntResult(0, c.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

var errBoom = errors.New("boom")
