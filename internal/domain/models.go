package domain

import "time"

// Category identifies a content pool slice. Repositories translate
// CategoryAll into an unfiltered query rather than comparing strings at
// call sites.
type Category string

// CategoryAll selects every content item regardless of tag.
const CategoryAll Category = "all"

// All reports whether the category selects the unfiltered pool.
func (c Category) All() bool {
	return c == "" || c == CategoryAll
}

// ContentItem is one entry in a content pool: a prompt-facing value, the
// answer-facing value, and an optional annotation (transliteration, hint).
type ContentItem struct {
	ID         string   `json:"id"`
	Primary    string   `json:"primary"`
	Secondary  string   `json:"secondary"`
	Annotation string   `json:"annotation,omitempty"`
	Category   Category `json:"category,omitempty"`
}

// Round is one unit of play. CorrectAnswer holds one token for
// single-answer rounds and the full ordered token sequence for ordering
// rounds. Options is empty for free-form rounds. Immutable once built.
type Round struct {
	Prompt        string   `json:"prompt"`
	CorrectAnswer []string `json:"correctAnswer"`
	Options       []string `json:"options,omitempty"`
	Annotation    string   `json:"annotation,omitempty"`
}

// Phase is the lifecycle state of a game session.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseActive        Phase = "active"
	PhaseRoundResolved Phase = "roundResolved"
	PhaseComplete      Phase = "complete"
)

// Score tracks resolved rounds. Correct never exceeds Total and Total
// never exceeds the round count.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Percent is the displayed score as a rounded percentage. Zero when no
// round has been resolved yet.
func (s Score) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return (200*s.Correct + s.Total) / (2 * s.Total)
}

// Verdict is the stored outcome of one resolved round.
type Verdict struct {
	RoundIndex int      `json:"roundIndex"`
	Correct    bool     `json:"correct"`
	Expected   []string `json:"expected"`
	Given      []string `json:"given,omitempty"`
	Expired    bool     `json:"expired,omitempty"`
}

// RankOrder says how a leaderboard metric sorts: ascending for
// best-time games, descending for best-score games.
type RankOrder string

const (
	RankAscending  RankOrder = "asc"
	RankDescending RankOrder = "desc"
)

// GameResult is the summary handed to the result store when a session
// completes. MetricValue is the ranking metric for the game: elapsed
// seconds for speed games, score percent for accuracy games.
type GameResult struct {
	UserID         string    `json:"userId"`
	GameTag        string    `json:"gameTag"`
	MetricValue    int       `json:"metricValue"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	ScorePercent   int       `json:"scorePercent"`
	CompletedAt    time.Time `json:"completedAt"`
}

// LeaderboardEntry is one ranked row read back from the result store.
type LeaderboardEntry struct {
	UserID       string `json:"userId"`
	MetricValue  int    `json:"metricValue"`
	AttemptCount int    `json:"attemptCount"`
}
