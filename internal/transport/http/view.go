package http

import (
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/engine"
)

// View rendering selects the 'ar' or 'en' side of every bilingual field
// and hides the correct option until feedback time. The engine never
// sees the language flag.

type optionView struct {
	Label      string `json:"label"`
	Text       string `json:"text"`
	Eliminated bool   `json:"eliminated,omitempty"`
}

type questionView struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Options []optionView `json:"options"`
	Tier    int          `json:"tier"`
	Team    string       `json:"team,omitempty"`
}

type feedbackView struct {
	Selected      string `json:"selected,omitempty"`
	Correct       bool   `json:"correct"`
	CorrectOption string `json:"correctOption"`
	Awarded       int    `json:"awarded"`
	TimedOut      bool   `json:"timedOut,omitempty"`
	StealOpened   bool   `json:"stealOpened,omitempty"`
}

type stateView struct {
	SessionID    string           `json:"sessionId"`
	Phase        domain.Phase     `json:"phase"`
	Index        int              `json:"index"`
	Total        int              `json:"total"`
	RemainingSec int              `json:"remainingSec"`
	Question     *questionView    `json:"question,omitempty"`
	Lifelines    engine.Lifelines `json:"lifelines"`
	Hint         string           `json:"hint,omitempty"`
	TeamMode     bool             `json:"teamMode,omitempty"`
	Turn         domain.Team      `json:"turn,omitempty"`
	StealActive  bool             `json:"stealActive,omitempty"`
	Score        int              `json:"score"`
	Team1Score   int              `json:"team1Score,omitempty"`
	Team2Score   int              `json:"team2Score,omitempty"`
	Feedback     *feedbackView    `json:"feedback,omitempty"`
}

type resultView struct {
	SessionID    string  `json:"sessionId"`
	MaxScore     int     `json:"maxScore"`
	Score        int     `json:"score"`
	Percent      float64 `json:"percent"`
	Band         string  `json:"band,omitempty"`
	BandText     string  `json:"bandText,omitempty"`
	TeamMode     bool    `json:"teamMode,omitempty"`
	Team1Score   int     `json:"team1Score,omitempty"`
	Team2Score   int     `json:"team2Score,omitempty"`
	Team1Percent float64 `json:"team1Percent,omitempty"`
	Team2Percent float64 `json:"team2Percent,omitempty"`
	Winner       string  `json:"winner,omitempty"`
	Answered     int     `json:"answered"`
}

var hintFallback = domain.Text{
	Ar: "لا يوجد تلميح لهذا السؤال",
	En: "No hint is available for this question.",
}

var noQuestionsText = domain.Text{
	Ar: "لا توجد أسئلة متاحة لهذه الباقة",
	En: "No questions are available for this package.",
}

var bandTexts = map[domain.Band]domain.Text{
	domain.BandExceptional: {Ar: "استثنائي!", En: "Exceptional!"},
	domain.BandGreat:       {Ar: "رائع!", En: "Great!"},
	domain.BandGood:        {Ar: "جيد", En: "Good"},
	domain.BandTryAgain:    {Ar: "حاول مرة أخرى", En: "Try again"},
}

func renderState(snap engine.Snapshot, lang domain.Language) stateView {
	view := stateView{
		SessionID:    snap.SessionID,
		Phase:        snap.Phase,
		Index:        snap.Index,
		Total:        snap.Total,
		RemainingSec: snap.RemainingSec,
		Lifelines:    snap.Lifelines,
		TeamMode:     snap.TeamMode,
		Turn:         snap.Turn,
		StealActive:  snap.StealActive,
		Score:        snap.Totals.Score,
		Team1Score:   snap.Totals.Team1Score,
		Team2Score:   snap.Totals.Team2Score,
	}
	if snap.Question != nil {
		view.Question = renderQuestion(*snap.Question, snap.Eliminated, lang)
		if snap.HintShown {
			hint := snap.Question.Explanation.In(lang)
			if hint == "" {
				hint = hintFallback.In(lang)
			}
			view.Hint = hint
		}
	}
	if snap.Feedback != nil {
		feedback := &feedbackView{
			Correct:       snap.Feedback.Correct,
			CorrectOption: string(snap.Feedback.CorrectOption),
			Awarded:       snap.Feedback.Awarded,
			TimedOut:      snap.Feedback.TimedOut,
			StealOpened:   snap.Feedback.StealOpened,
		}
		if snap.Feedback.Selected != nil {
			feedback.Selected = string(*snap.Feedback.Selected)
		}
		view.Feedback = feedback
	}
	return view
}

func renderQuestion(q domain.Question, eliminated []domain.OptionLabel, lang domain.Language) *questionView {
	view := &questionView{
		ID:     q.ID,
		Prompt: q.Prompt.In(lang),
		Tier:   q.Tier,
		Team:   string(q.Team),
	}
	for _, opt := range q.Options {
		view.Options = append(view.Options, optionView{
			Label:      string(opt.Label),
			Text:       opt.Text.In(lang),
			Eliminated: contains(eliminated, opt.Label),
		})
	}
	return view
}

func renderResult(result domain.Result, lang domain.Language) resultView {
	view := resultView{
		SessionID:    result.SessionID,
		MaxScore:     result.MaxScore,
		Score:        result.Score,
		Percent:      result.Percent,
		TeamMode:     result.TeamMode,
		Team1Score:   result.Team1Score,
		Team2Score:   result.Team2Score,
		Team1Percent: result.Team1Percent,
		Team2Percent: result.Team2Percent,
		Winner:       string(result.Winner),
		Answered:     len(result.Records),
	}
	if result.Band != "" {
		view.Band = string(result.Band)
		view.BandText = bandTexts[result.Band].In(lang)
	}
	return view
}

func contains(labels []domain.OptionLabel, label domain.OptionLabel) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
