package engine

import "trivia-session-service/internal/domain"

// Lifelines tracks the three single-use assists. Flags only ever move
// from unused to used within a session; the per-question effects (hint
// visibility, eliminated labels) live on the session and reset on advance.
type Lifelines struct {
	HintUsed      bool `json:"hintUsed"`
	SkipUsed      bool `json:"skipUsed"`
	EliminateUsed bool `json:"eliminateUsed"`
}

// eliminateLabels picks the two options removed by the eliminate
// lifeline: the first two labels in A-D order that are not the correct
// answer. The correct option is never excluded.
func eliminateLabels(q domain.Question) []domain.OptionLabel {
	out := make([]domain.OptionLabel, 0, 2)
	for _, label := range domain.OptionLabels {
		if label == q.Correct {
			continue
		}
		out = append(out, label)
		if len(out) == 2 {
			break
		}
	}
	return out
}
