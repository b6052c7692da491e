package engine

import (
	"sync"
	"time"

	"trivia-session-service/internal/domain"
)

// Config holds the per-question timing policy. Durations are expressed
// in countdown units; TickInterval is the real length of one unit.
type Config struct {
	QuestionSeconds      int
	FeedbackDelaySeconds int
	TickInterval         time.Duration
}

func (c Config) withDefaults() Config {
	if c.QuestionSeconds <= 0 {
		c.QuestionSeconds = 30
	}
	if c.FeedbackDelaySeconds <= 0 {
		c.FeedbackDelaySeconds = 2
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Feedback is the per-question outcome surfaced between an answer (or
// timeout) and the next question.
type Feedback struct {
	Selected      *domain.OptionLabel `json:"selected,omitempty"`
	Correct       bool                `json:"correct"`
	CorrectOption domain.OptionLabel  `json:"correctOption"`
	Awarded       int                 `json:"awarded"`
	TimedOut      bool                `json:"timedOut,omitempty"`
	StealOpened   bool                `json:"stealOpened,omitempty"`
}

// Session is the quiz session state machine. All state is owned by one
// mutex; user input and timer callbacks are the only entry points, and
// operations invoked outside their valid phase are silent no-ops. Timer
// callbacks carry the epoch they were scheduled in and bail out if the
// session advanced in the meantime, so a stale timer can never fire
// against a newer question.
type Session struct {
	id       string
	teamMode bool
	pool     []domain.Question
	cfg      Config
	sched    Scheduler
	now      func() time.Time

	mu            sync.Mutex
	phase         domain.Phase
	closed        bool
	idx           int
	epoch         int
	remaining     int
	answered      bool
	feedback      *Feedback
	hintShown     bool
	eliminated    []domain.OptionLabel
	lifelines     Lifelines
	turn          turnState
	totals        domain.Totals
	records       []domain.AnswerRecord
	result        *domain.Result
	cancelTick    func()
	cancelPending func()
	onFinish      func(domain.Result)
	subscribers   map[chan Snapshot]struct{}
}

// NewSession builds a session over a non-empty pool. Call Start to
// begin play.
func NewSession(id string, pool []domain.Question, teamMode bool, cfg Config, sched Scheduler) *Session {
	return NewSessionWithClock(id, pool, teamMode, cfg, sched, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, pool []domain.Question, teamMode bool, cfg Config, sched Scheduler, now func() time.Time) *Session {
	return &Session{
		id:          id,
		teamMode:    teamMode,
		pool:        pool,
		cfg:         cfg.withDefaults(),
		sched:       sched,
		now:         now,
		phase:       domain.PhaseLoading,
		turn:        newTurnState(),
		records:     make([]domain.AnswerRecord, 0, len(pool)),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// TeamMode reports whether the session plays the team protocol.
func (s *Session) TeamMode() bool { return s.teamMode }

// OnFinish registers a callback invoked once when the session reaches
// the finished phase. The callback runs with the session lock held and
// must not call back into the session.
func (s *Session) OnFinish(fn func(domain.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// Start moves the session from loading to in-progress at index 0 and
// starts the countdown. No-op on an empty pool or if already started.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseLoading || s.closed || len(s.pool) == 0 {
		return
	}
	s.phase = domain.PhaseInProgress
	s.idx = 0
	s.remaining = s.cfg.QuestionSeconds
	s.scheduleTickLocked()
	s.broadcastLocked()
}

// SelectAnswer settles the chosen option for the current question.
// Ignored outside in-progress, after an answer was already selected, or
// for an eliminated or unknown label.
func (s *Session) SelectAnswer(label domain.OptionLabel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptingAnswerLocked() {
		return
	}
	question := s.pool[s.idx]
	if _, ok := question.Option(label); !ok {
		return
	}
	for _, excluded := range s.eliminated {
		if excluded == label {
			return
		}
	}
	selected := label
	s.settleLocked(&selected, false)
}

// UseHint reveals the current question's explanation. Single use per
// session; ignored once an answer is selected.
func (s *Session) UseHint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptingAnswerLocked() || s.lifelines.HintUsed {
		return
	}
	s.lifelines.HintUsed = true
	s.hintShown = true
	s.broadcastLocked()
}

// UseSkip records the current question as declined (zero points, not
// counted incorrect) and advances immediately. Single use per session.
func (s *Session) UseSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptingAnswerLocked() || s.lifelines.SkipUsed {
		return
	}
	s.lifelines.SkipUsed = true
	question := s.pool[s.idx]
	s.appendRecordLocked(domain.AnswerRecord{
		QuestionID: question.ID,
		Skipped:    true,
		ElapsedSec: s.cfg.QuestionSeconds - s.remaining,
		Team:       s.answeringTeamLocked(),
	})
	if s.teamMode {
		// A skip alternates the turn normally without opening a steal.
		s.turn.current = s.turn.current.Opponent()
		s.turn.clear()
	}
	s.advanceLocked()
}

// UseEliminate removes two incorrect options from play for the current
// question. Single use per session; the correct option is never removed.
func (s *Session) UseEliminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptingAnswerLocked() || s.lifelines.EliminateUsed {
		return
	}
	s.lifelines.EliminateUsed = true
	s.eliminated = eliminateLabels(s.pool[s.idx])
	s.broadcastLocked()
}

// Close tears down pending timers. Further operations are no-ops. Used
// when the player leaves the session; state is discarded, not persisted.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.epoch++
	s.stopTimersLocked()
}

// Subscribe returns a channel receiving state snapshots, starting with
// the current one. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) acceptingAnswerLocked() bool {
	return s.phase == domain.PhaseInProgress && !s.closed && !s.answered
}

func (s *Session) answeringTeamLocked() domain.Team {
	if !s.teamMode {
		return domain.TeamNone
	}
	return s.turn.current
}

// settleLocked applies scoring and turn transitions for an answer or a
// timeout (selected == nil).
func (s *Session) settleLocked(selected *domain.OptionLabel, timedOut bool) {
	question := s.pool[s.idx]
	correct := selected != nil && *selected == question.Correct
	awarded := 0
	if correct {
		awarded = Points(question.Tier)
	}
	team := s.answeringTeamLocked()

	s.answered = true
	s.appendRecordLocked(domain.AnswerRecord{
		QuestionID: question.ID,
		Selected:   selected,
		Correct:    correct,
		ElapsedSec: s.cfg.QuestionSeconds - s.remaining,
		Points:     awarded,
		Team:       team,
	})
	if awarded > 0 {
		switch team {
		case domain.Team1:
			s.totals.Team1Score += awarded
		case domain.Team2:
			s.totals.Team2Score += awarded
		default:
			s.totals.Score += awarded
		}
	}

	feedback := &Feedback{
		Selected:      selected,
		Correct:       correct,
		CorrectOption: question.Correct,
		Awarded:       awarded,
		TimedOut:      timedOut,
	}

	advance := true
	if s.teamMode {
		advance = s.turn.settle(correct)
		feedback.StealOpened = !advance
	}
	s.feedback = feedback

	epoch := s.epoch
	delay := time.Duration(s.cfg.FeedbackDelaySeconds) * s.cfg.TickInterval
	if advance {
		s.cancelPending = s.sched.After(delay, func() { s.onAdvanceTimer(epoch) })
	} else {
		s.cancelPending = s.sched.After(delay, func() { s.onStealReopen(epoch) })
	}
	s.broadcastLocked()
}

func (s *Session) onAdvanceTimer(epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.phase != domain.PhaseInProgress {
		return
	}
	s.advanceLocked()
}

// onStealReopen ends the feedback pause and hands the same question to
// the stealing team with a fresh countdown.
func (s *Session) onStealReopen(epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.phase != domain.PhaseInProgress {
		return
	}
	s.answered = false
	s.feedback = nil
	s.remaining = s.cfg.QuestionSeconds
	// The tick chain dies when a timeout settles; restart it so the
	// stealing team runs against a live countdown.
	if s.cancelTick != nil {
		s.cancelTick()
	}
	s.scheduleTickLocked()
	s.broadcastLocked()
}

func (s *Session) scheduleTickLocked() {
	epoch := s.epoch
	s.cancelTick = s.sched.After(s.cfg.TickInterval, func() { s.onTick(epoch) })
}

func (s *Session) onTick(epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.phase != domain.PhaseInProgress {
		return
	}
	if s.answered {
		// Countdown is paused while feedback is showing.
		s.scheduleTickLocked()
		return
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.settleLocked(nil, true)
		return
	}
	s.scheduleTickLocked()
	s.broadcastLocked()
}

// advanceLocked moves to the next question or finishes the session.
// Bumping the epoch invalidates every timer scheduled before this point.
func (s *Session) advanceLocked() {
	s.epoch++
	s.stopTimersLocked()
	s.answered = false
	s.feedback = nil
	s.hintShown = false
	s.eliminated = nil
	s.turn.clear()

	s.idx++
	if s.idx >= len(s.pool) {
		s.phase = domain.PhaseFinished
		s.result = s.computeResultLocked()
		s.broadcastLocked()
		if s.onFinish != nil {
			s.onFinish(*s.result)
		}
		return
	}
	s.remaining = s.cfg.QuestionSeconds
	s.scheduleTickLocked()
	s.broadcastLocked()
}

func (s *Session) stopTimersLocked() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	if s.cancelPending != nil {
		s.cancelPending()
		s.cancelPending = nil
	}
}

func (s *Session) appendRecordLocked(record domain.AnswerRecord) {
	record.RecordedAt = s.now()
	s.records = append(s.records, record)
}

func (s *Session) computeResultLocked() *domain.Result {
	max := MaxScore(s.pool)
	result := &domain.Result{
		SessionID:  s.id,
		TeamMode:   s.teamMode,
		MaxScore:   max,
		Records:    append([]domain.AnswerRecord(nil), s.records...),
		FinishedAt: s.now(),
	}
	if s.teamMode {
		result.Team1Score = s.totals.Team1Score
		result.Team2Score = s.totals.Team2Score
		result.Team1Percent = Percent(result.Team1Score, max)
		result.Team2Percent = Percent(result.Team2Score, max)
		switch {
		case result.Team1Score > result.Team2Score:
			result.Winner = domain.WinnerTeam1
		case result.Team2Score > result.Team1Score:
			result.Winner = domain.WinnerTeam2
		default:
			result.Winner = domain.WinnerTie
		}
		return result
	}
	result.Score = s.totals.Score
	result.Percent = Percent(result.Score, max)
	result.Band = BandFor(result.Percent)
	return result
}
