package engine

import "trivia-session-service/internal/domain"

// turnState drives team-mode alternation and the steal window. A missed
// answer with no steal in progress hands the same question to the
// opposing team; a second miss on the same question forces advancement,
// so a question is contested by at most two attempts.
type turnState struct {
	current     domain.Team
	stealActive bool
	stealOrigin domain.Team // team that missed first, set while stealActive
}

func newTurnState() turnState {
	return turnState{current: domain.Team1}
}

// settle applies the transition rule for an answer (or timeout) by the
// current team and reports whether the engine should advance.
func (t *turnState) settle(correct bool) (advance bool) {
	if correct {
		t.current = t.current.Opponent()
		t.stealActive = false
		t.stealOrigin = domain.TeamNone
		return true
	}
	if !t.stealActive {
		t.stealActive = true
		t.stealOrigin = t.current
		t.current = t.current.Opponent()
		return false
	}
	// Failed steal: alternate from the team that missed first, which
	// leaves the turn with the stealing team for the next question.
	t.current = t.stealOrigin.Opponent()
	t.stealActive = false
	t.stealOrigin = domain.TeamNone
	return true
}

// clear drops any steal window on question advance.
func (t *turnState) clear() {
	t.stealActive = false
	t.stealOrigin = domain.TeamNone
}
