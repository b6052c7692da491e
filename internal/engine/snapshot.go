package engine

import "trivia-session-service/internal/domain"

// Snapshot is the full engine state handed to transports. It carries
// unlocalized, unsanitized questions; rendering for a client (language
// selection, hiding the correct option) happens at the transport layer.
type Snapshot struct {
	SessionID    string
	TeamMode     bool
	Phase        domain.Phase
	Index        int
	Total        int
	Question     *domain.Question
	RemainingSec int
	Lifelines    Lifelines
	Eliminated   []domain.OptionLabel
	HintShown    bool
	Turn         domain.Team
	StealActive  bool
	Totals       domain.Totals
	Feedback     *Feedback
	Answered     int
	Result       *domain.Result
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:    s.id,
		TeamMode:     s.teamMode,
		Phase:        s.phase,
		Index:        s.idx,
		Total:        len(s.pool),
		RemainingSec: s.remaining,
		Lifelines:    s.lifelines,
		HintShown:    s.hintShown,
		Totals:       s.totals,
		Answered:     len(s.records),
		Result:       s.result,
	}
	if s.phase == domain.PhaseInProgress && s.idx < len(s.pool) {
		question := s.pool[s.idx]
		snap.Question = &question
	}
	if len(s.eliminated) > 0 {
		snap.Eliminated = append([]domain.OptionLabel(nil), s.eliminated...)
	}
	if s.teamMode {
		snap.Turn = s.turn.current
		snap.StealActive = s.turn.stealActive
	}
	if s.feedback != nil {
		feedback := *s.feedback
		snap.Feedback = &feedback
	}
	return snap
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest update so a slow client never blocks the engine.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
