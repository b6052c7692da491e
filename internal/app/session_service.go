package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/engine"
)

// SessionRepository abstracts how live sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(sessionID string, session *engine.Session)
	Get(sessionID string) (*engine.Session, bool)
	Delete(sessionID string)
}

// ResultRepository persists finished sessions. Saving is best-effort;
// a session without a durable record is still a valid session.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.Result) error
}

// SessionService contains the session use cases: start a session from a
// purchase, route player input to the engine, and persist results.
type SessionService struct {
	sessions SessionRepository
	loader   *PoolLoader
	results  ResultRepository // may be nil
	cfg      engine.Config
	sched    engine.Scheduler
	log      zerolog.Logger
}

func NewSessionService(sessions SessionRepository, loader *PoolLoader, results ResultRepository, cfg engine.Config, sched engine.Scheduler, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		loader:   loader,
		results:  results,
		cfg:      cfg,
		sched:    sched,
		log:      log,
	}
}

// StartSession loads the question pool for the descriptor and starts a
// session. Reconnecting with a known session ID returns the live
// session instead of assembling a new pool. Fails with
// domain.ErrPoolEmpty when the purchase has no questions.
func (s *SessionService) StartSession(ctx context.Context, desc domain.SessionDescriptor) (*engine.Session, error) {
	if desc.SessionID == "" {
		desc.SessionID = uuid.NewString()
	}
	if existing, ok := s.sessions.Get(desc.SessionID); ok {
		return existing, nil
	}

	pool, err := s.loader.Load(ctx, desc.PurchaseRef, desc.TeamMode)
	if err != nil {
		return nil, err
	}

	session := engine.NewSession(desc.SessionID, pool, desc.TeamMode, s.cfg, s.sched)
	session.OnFinish(func(result domain.Result) {
		go s.saveResult(result)
	})
	s.sessions.Put(desc.SessionID, session)
	session.Start()
	return session, nil
}

// Answer settles the option for the session's current question.
func (s *SessionService) Answer(sessionID string, label domain.OptionLabel) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.SelectAnswer(label)
	return nil
}

// LifelineKind names a single-use assist.
type LifelineKind string

const (
	LifelineHint      LifelineKind = "hint"
	LifelineSkip      LifelineKind = "skip"
	LifelineEliminate LifelineKind = "eliminate"
)

// UseLifeline triggers the named lifeline. Unknown kinds are ignored,
// matching the engine's lenient no-op policy.
func (s *SessionService) UseLifeline(sessionID string, kind LifelineKind) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	switch kind {
	case LifelineHint:
		session.UseHint()
	case LifelineSkip:
		session.UseSkip()
	case LifelineEliminate:
		session.UseEliminate()
	}
	return nil
}

// Subscribe returns a snapshot channel for the session. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *SessionService) Subscribe(sessionID string) (<-chan engine.Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave tears the session down and discards its state.
func (s *SessionService) Leave(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

func (s *SessionService) saveResult(result domain.Result) {
	if s.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.results.SaveResult(ctx, result); err != nil {
		s.log.Warn().Err(err).Str("session", result.SessionID).Msg("failed to save session result")
	}
}
