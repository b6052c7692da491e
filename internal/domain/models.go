package domain

import "time"

// Language selects which side of a bilingual text pair is rendered.
type Language string

const (
	LangArabic  Language = "ar"
	LangEnglish Language = "en"
)

// Text is a bilingual string pair. Either side may be empty; rendering
// falls back to the other side.
type Text struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// In returns the text for lang, falling back to the other language when
// that side is unauthored.
func (t Text) In(lang Language) string {
	if lang == LangArabic {
		if t.Ar != "" {
			return t.Ar
		}
		return t.En
	}
	if t.En != "" {
		return t.En
	}
	return t.Ar
}

// OptionLabel identifies one of the four answer options.
type OptionLabel string

const (
	OptionA OptionLabel = "A"
	OptionB OptionLabel = "B"
	OptionC OptionLabel = "C"
	OptionD OptionLabel = "D"
)

// OptionLabels lists the labels in presentation order.
var OptionLabels = []OptionLabel{OptionA, OptionB, OptionC, OptionD}

// Option is one labeled answer choice.
type Option struct {
	Label OptionLabel `json:"label"`
	Text  Text        `json:"text"`
}

// Team identifies a side in team mode. Empty outside team mode.
type Team string

const (
	TeamNone Team = ""
	Team1    Team = "team1"
	Team2    Team = "team2"
)

// Opponent returns the other team. TeamNone maps to itself.
func (t Team) Opponent() Team {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	}
	return TeamNone
}

// Question is immutable once loaded into a pool.
type Question struct {
	ID          string      `json:"id"`
	CategoryID  string      `json:"categoryId"`
	Prompt      Text        `json:"prompt"`
	Options     []Option    `json:"options"` // exactly four, labels A-D
	Correct     OptionLabel `json:"correct"`
	Tier        int         `json:"tier"` // difficulty 1-5
	Explanation Text        `json:"explanation,omitempty"`
	Team        Team        `json:"team,omitempty"` // owning team in team mode
}

// Option returns the option with the given label, if present.
func (q Question) Option(label OptionLabel) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Label == label {
			return opt, true
		}
	}
	return Option{}, false
}

// SessionDescriptor identifies a playable session handed in by the
// purchase flow.
type SessionDescriptor struct {
	SessionID   string `json:"sessionId"`
	PurchaseRef string `json:"purchaseRef"`
	TeamMode    bool   `json:"teamMode"`
}

// AnswerRecord is one entry in the session's audit trail. Appended on
// answer, skip, or timeout; never mutated afterwards.
type AnswerRecord struct {
	QuestionID string       `json:"questionId"`
	Selected   *OptionLabel `json:"selected,omitempty"` // nil on timeout or skip
	Correct    bool         `json:"correct"`
	Skipped    bool         `json:"skipped,omitempty"`
	ElapsedSec int          `json:"elapsedSec"`
	Points     int          `json:"points"`
	Team       Team         `json:"team,omitempty"` // answering team, not the question tag
	RecordedAt time.Time    `json:"recordedAt"`
}

// Phase is the coarse session lifecycle state.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseInProgress Phase = "in-progress"
	PhaseFinished   Phase = "finished"
)

// Totals holds the running scores. Points are only ever added.
type Totals struct {
	Score      int `json:"score"`
	Team1Score int `json:"team1Score"`
	Team2Score int `json:"team2Score"`
}

// Band is the narrative result tier for individual sessions.
type Band string

const (
	BandExceptional Band = "exceptional"
	BandGreat       Band = "great"
	BandGood        Band = "good"
	BandTryAgain    Band = "try-again"
)

// Winner is the team-mode outcome.
type Winner string

const (
	WinnerTeam1 Winner = "team1"
	WinnerTeam2 Winner = "team2"
	WinnerTie   Winner = "tie"
)

// Result is the terminal payload of a finished session.
type Result struct {
	SessionID string `json:"sessionId"`
	TeamMode  bool   `json:"teamMode"`
	MaxScore  int    `json:"maxScore"`

	// Individual mode.
	Score   int     `json:"score"`
	Percent float64 `json:"percent"`
	Band    Band    `json:"band,omitempty"`

	// Team mode. Percentages are shares of MaxScore, the grand total
	// of the whole pool, not of each team's own question subset.
	Team1Score   int     `json:"team1Score"`
	Team2Score   int     `json:"team2Score"`
	Team1Percent float64 `json:"team1Percent"`
	Team2Percent float64 `json:"team2Percent"`
	Winner       Winner  `json:"winner,omitempty"`

	Records    []AnswerRecord `json:"records"`
	FinishedAt time.Time      `json:"finishedAt"`
}
