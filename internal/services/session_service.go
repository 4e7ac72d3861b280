package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"leadsync/internal/caching"
	"leadsync/internal/models"
	"leadsync/internal/repositories"
)

var ErrSessionNotFound = errors.New("session not found")

// DefaultLeadsLoadTimeout bounds the lead fetch that starts with a session
const DefaultLeadsLoadTimeout = 30 * time.Second

// Session is one signed-in dashboard: its backend conversation, account and
// lead store.
type Session struct {
	ID        string
	Backend   Backend
	Leads     LeadsService
	CreatedAt time.Time

	mu       sync.RWMutex
	account  models.Account
	lastSeen time.Time

	// ctx ends when the session is logged out or swept
	ctx    context.Context
	cancel context.CancelFunc
	// ready is closed once the first lead fetch has returned
	ready chan struct{}
}

// Account returns a copy of the signed-in principal
func (s *Session) Account() *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account := s.account
	return &account
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen is when the session last served a request
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// WaitForLeads blocks until the lead fetch started with the session has
// returned or ctx ends, then reports the lead store's state.
func (s *Session) WaitForLeads(ctx context.Context) LeadsState {
	if s.ready == nil {
		return s.Leads.State()
	}
	select {
	case <-s.ready:
	case <-ctx.Done():
	}
	return s.Leads.State()
}

func (s *Session) close() {
	if s.cancel != nil {
		s.cancel()
	}
}

type SessionService interface {
	Login(ctx context.Context, req models.LoginRequest) (*Session, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context, sessionID string) error

	// Resolve finds a live session, restoring it from the mirror if needed
	Resolve(ctx context.Context, sessionID string) (*Session, error)
	// Lookup never blocks; loading is true while a restore is in flight
	Lookup(sessionID string) (sess *Session, loading bool)

	Active() []*Session
	// Sweep drops sessions idle for longer than idle from memory. Their
	// mirrors stay so a later request can restore them.
	Sweep(idle time.Duration) int
}

type sessionService struct {
	newBackend BackendFactory
	cache      caching.CacheService
	notifier   NotificationService
	audit      repositories.LeadAuditRepository
	ttl        time.Duration
	loadLimit  time.Duration
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*Session
	restoring map[string]struct{}
	group     singleflight.Group
}

// NewSessionService creates the session registry. cache and audit may be nil.
func NewSessionService(
	newBackend BackendFactory,
	cache caching.CacheService,
	notifier NotificationService,
	audit repositories.LeadAuditRepository,
	ttl time.Duration,
	logger *zap.Logger,
) SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionService{
		newBackend: newBackend,
		cache:      cache,
		notifier:   notifier,
		audit:      audit,
		ttl:        ttl,
		loadLimit:  DefaultLeadsLoadTimeout,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*Session),
		restoring:  make(map[string]struct{}),
	}
}

func (s *sessionService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	backend, err := s.newBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	account, err := backend.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	sess := s.newSession(uuid.NewString(), backend, account)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.persist(ctx, sess)
	s.logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("account_id", account.ID),
		zap.String("role", string(account.Role)))
	return sess, nil
}

func (s *sessionService) Register(ctx context.Context, req models.RegisterRequest) error {
	backend, err := s.newBackend()
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}
	return backend.Register(ctx, req)
}

func (s *sessionService) Logout(ctx context.Context, sessionID string) error {
	sess, err := s.Resolve(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	if sess != nil {
		if err := sess.Backend.Logout(ctx); err != nil {
			// Local state is cleared regardless
			s.logger.Warn("backend logout failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		sess.close()
		sess.Leads.Reset()
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Clear(sessionID)
	}
	if s.cache != nil {
		if err := s.cache.DeleteSession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session mirror: %w", err)
		}
	}

	s.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

func (s *sessionService) Resolve(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		sess.touch(s.now())
		return sess, nil
	}

	v, err, _ := s.group.Do(sessionID, func() (interface{}, error) {
		return s.restore(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	sess = v.(*Session)
	sess.touch(s.now())
	return sess, nil
}

func (s *sessionService) restore(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[sessionID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.restoring[sessionID] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.restoring, sessionID)
		s.mu.Unlock()
	}()

	if s.cache == nil {
		return nil, ErrSessionNotFound
	}

	record, err := s.cache.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session mirror: %w", err)
	}
	if record == nil || record.Account == nil {
		return nil, ErrSessionNotFound
	}

	backend, err := s.newBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	backend.SetCookies(record.Cookies)

	sess := s.newSession(sessionID, backend, record.Account)
	sess.CreatedAt = record.CreatedAt

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.mu.Unlock()

	s.logger.Info("session restored", zap.String("session_id", sessionID))
	return sess, nil
}

func (s *sessionService) Lookup(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, false
	}
	_, loading := s.restoring[sessionID]
	return nil, loading
}

func (s *sessionService) Active() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		active = append(active, sess)
	}
	return active
}

func (s *sessionService) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var swept []*Session
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			swept = append(swept, sess)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range swept {
		sess.close()
		if s.notifier != nil {
			s.notifier.Clear(sess.ID)
		}
	}
	if len(swept) > 0 {
		s.logger.Info("swept idle sessions", zap.Int("removed", len(swept)), zap.Int("remaining", remaining))
	}
	return len(swept)
}

func (s *sessionService) newSession(id string, backend Backend, account *models.Account) *Session {
	customerID := account.CustomerID
	if customerID == "" {
		customerID = account.ID
	}
	leads := NewLeadsService(backend, s.notifier, s.audit, s.logger, LeadsOptions{
		SessionID:  id,
		CustomerID: customerID,
		ActorID:    account.ID,
	})
	sess := NewSession(id, backend, leads, *account, s.now())
	// Started before the session is published so ready is never swapped
	// under a concurrent reader
	s.loadLeads(sess)
	return sess
}

// NewSession assembles a session around an already signed-in backend. No
// lead fetch is started, so WaitForLeads returns immediately.
func NewSession(id string, backend Backend, leads LeadsService, account models.Account, now time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	close(ready)
	return &Session{
		ID:        id,
		Backend:   backend,
		Leads:     leads,
		CreatedAt: now.UTC(),
		account:   account,
		lastSeen:  now,
		ctx:       ctx,
		cancel:    cancel,
		ready:     ready,
	}
}

// loadLeads fetches the session's leads in the background. The fetch is
// detached from the request that created the session and stops when the
// session ends. Admin sessions have no lead list.
func (s *sessionService) loadLeads(sess *Session) {
	if sess.Account().IsAdmin() {
		return
	}
	ready := make(chan struct{})
	sess.ready = ready

	go func() {
		defer close(ready)
		ctx, cancel := context.WithTimeout(sess.ctx, s.loadLimit)
		defer cancel()
		if ctx.Err() != nil {
			return
		}
		state := sess.Leads.Fetch(ctx)
		s.logger.Debug("initial lead fetch finished",
			zap.String("session_id", sess.ID),
			zap.String("state", string(state.State)),
			zap.Int("count", state.Count))
	}()
}

func (s *sessionService) persist(ctx context.Context, sess *Session) {
	if s.cache == nil {
		return
	}
	record := &models.SessionRecord{
		SessionID: sess.ID,
		Account:   sess.Account(),
		Cookies:   sess.Backend.Cookies(),
		CreatedAt: sess.CreatedAt,
	}
	if err := s.cache.SetSession(ctx, record, s.ttl); err != nil {
		// The session still works in memory, it just will not survive a restart
		s.logger.Warn("failed to mirror session", zap.String("session_id", sess.ID), zap.Error(err))
	}
}
