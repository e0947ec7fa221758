package game

import (
	"sync"
	"time"

	"lamed-game-service/internal/domain"
)

// Session is the state machine for one run of a game: a fixed round
// sequence played through idle -> active -> roundResolved -> complete.
// The WS reader and the tick runner both touch it, so every transition
// holds the mutex.
type Session struct {
	id      string
	userID  string
	gameTag string
	now     func() time.Time

	mu             sync.Mutex
	phase          domain.Phase
	rounds         []domain.Round
	currentIndex   int
	score          domain.Score
	elapsedSeconds int
	countdownBound int
	remaining      int
	verdict        *domain.Verdict
	timerGen       uint64
	timeRanked     bool
	subscribers    map[chan SessionView]struct{}
}

func NewSession(id, userID, gameTag string) *Session {
	return newSessionWithClock(id, userID, gameTag, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id, userID, gameTag string, now func() time.Time) *Session {
	return newSessionWithClock(id, userID, gameTag, now)
}

func newSessionWithClock(id, userID, gameTag string, now func() time.Time) *Session {
	return &Session{
		id:          id,
		userID:      userID,
		gameTag:     gameTag,
		now:         now,
		phase:       domain.PhaseIdle,
		subscribers: make(map[chan SessionView]struct{}),
	}
}

func (s *Session) ID() string      { return s.id }
func (s *Session) UserID() string  { return s.userID }
func (s *Session) GameTag() string { return s.gameTag }

// Start installs the round sequence and moves idle -> active. The
// returned generation token identifies the tick stream for this run;
// ticks carrying an older token are discarded. countdownBound of zero
// disables the per-round countdown. timeRanked selects elapsed seconds
// over score percent as the leaderboard metric for this run.
func (s *Session) Start(rounds []domain.Round, countdownBound int, timeRanked bool) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == domain.PhaseActive || s.phase == domain.PhaseRoundResolved {
		return 0, domain.ErrSessionActive
	}
	if len(rounds) == 0 {
		return 0, domain.ErrEmptySession
	}

	s.rounds = rounds
	s.currentIndex = 0
	s.score = domain.Score{}
	s.elapsedSeconds = 0
	s.countdownBound = countdownBound
	s.remaining = countdownBound
	s.verdict = nil
	s.timeRanked = timeRanked
	s.phase = domain.PhaseActive
	s.timerGen++
	return s.timerGen, nil
}

// SubmitAnswer resolves the current round against the given response and
// moves active -> roundResolved. A second submission for the same round
// is a no-op that replays the stored verdict: each round is scored at
// most once.
func (s *Session) SubmitAnswer(response []string) (domain.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case domain.PhaseRoundResolved:
		return *s.verdict, nil
	case domain.PhaseActive:
		return s.resolveLocked(response, false), nil
	default:
		return domain.Verdict{}, domain.ErrNoCurrentRound
	}
}

// TimeExpired scores the current round as an automatic incorrect answer.
// Only meaningful while active; any other phase is a no-op.
func (s *Session) TimeExpired() (domain.Verdict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseActive {
		return domain.Verdict{}, false
	}
	return s.resolveLocked(nil, true), true
}

func (s *Session) resolveLocked(response []string, expired bool) domain.Verdict {
	round := s.rounds[s.currentIndex]
	correct := !expired && sequenceEqual(response, round.CorrectAnswer)

	s.score.Total++
	if correct {
		s.score.Correct++
	}
	verdict := domain.Verdict{
		RoundIndex: s.currentIndex,
		Correct:    correct,
		Expected:   round.CorrectAnswer,
		Given:      response,
		Expired:    expired,
	}
	s.verdict = &verdict
	s.phase = domain.PhaseRoundResolved
	return verdict
}

// Advance moves roundResolved -> active for the next round, or
// roundResolved -> complete after the last one. The completed flag is
// true exactly once per session, on the transition into complete.
func (s *Session) Advance() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseRoundResolved {
		return false, domain.ErrNoCurrentRound
	}

	s.verdict = nil
	if s.currentIndex+1 < len(s.rounds) {
		s.currentIndex++
		s.remaining = s.countdownBound
		s.phase = domain.PhaseActive
		return false, nil
	}

	s.currentIndex++
	s.phase = domain.PhaseComplete
	return true, nil
}

// Reset discards the rounds and returns to idle. Bumping the generation
// invalidates any tick runner still scheduled for the previous run.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rounds = nil
	s.currentIndex = 0
	s.score = domain.Score{}
	s.elapsedSeconds = 0
	s.remaining = 0
	s.verdict = nil
	s.phase = domain.PhaseIdle
	s.timerGen++
}

// Tick advances the clocks by one second. It reports whether the tick
// source should keep scheduling: false once the generation is stale or
// the session has left its playing phases. Ticks never mutate anything
// outside active.
func (s *Session) Tick(gen uint64) bool {
	s.mu.Lock()

	if gen != s.timerGen {
		s.mu.Unlock()
		return false
	}
	switch s.phase {
	case domain.PhaseComplete, domain.PhaseIdle:
		s.mu.Unlock()
		return false
	case domain.PhaseRoundResolved:
		// Between rounds the clock is paused but the run is still live.
		s.mu.Unlock()
		return true
	}

	s.elapsedSeconds++
	if s.countdownBound > 0 {
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = s.countdownBound
			s.resolveLocked(nil, true)
		}
	}
	s.broadcastLocked()
	s.mu.Unlock()
	return true
}

// Subscribe returns a channel fed with snapshots on timer-driven
// changes (clock movement and expiry resolutions). The caller must
// invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan SessionView, func()) {
	ch := make(chan SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

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

func (s *Session) broadcastLocked() {
	view := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// Drop the stale snapshot so a slow consumer never blocks
			// the tick runner.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

// Result builds the summary submitted to the result store.
func (s *Session) Result() domain.GameResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	metric := s.score.Percent()
	if s.timeRanked {
		metric = s.elapsedSeconds
	}
	return domain.GameResult{
		UserID:         s.userID,
		GameTag:        s.gameTag,
		MetricValue:    metric,
		ElapsedSeconds: s.elapsedSeconds,
		ScorePercent:   s.score.Percent(),
		CompletedAt:    s.now(),
	}
}

// RoundView is the player-facing shape of the current round; the correct
// answer is deliberately absent.
type RoundView struct {
	Index      int      `json:"index"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options,omitempty"`
	Annotation string   `json:"annotation,omitempty"`
}

// SessionView is a consistent snapshot for transports.
type SessionView struct {
	ID               string          `json:"id"`
	GameTag          string          `json:"gameTag"`
	Phase            domain.Phase    `json:"phase"`
	RoundCount       int             `json:"roundCount"`
	CurrentIndex     int             `json:"currentIndex"`
	Score            domain.Score    `json:"score"`
	ScorePercent     int             `json:"scorePercent"`
	ElapsedSeconds   int             `json:"elapsedSeconds"`
	RemainingSeconds int             `json:"remainingSeconds,omitempty"`
	Round            *RoundView      `json:"round,omitempty"`
	Verdict          *domain.Verdict `json:"verdict,omitempty"`
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() SessionView {
	view := SessionView{
		ID:             s.id,
		GameTag:        s.gameTag,
		Phase:          s.phase,
		RoundCount:     len(s.rounds),
		CurrentIndex:   s.currentIndex,
		Score:          s.score,
		ScorePercent:   s.score.Percent(),
		ElapsedSeconds: s.elapsedSeconds,
	}
	if s.countdownBound > 0 && s.phase == domain.PhaseActive {
		view.RemainingSeconds = s.remaining
	}
	if s.verdict != nil {
		verdict := *s.verdict
		view.Verdict = &verdict
	}
	if s.currentIndex < len(s.rounds) && (s.phase == domain.PhaseActive || s.phase == domain.PhaseRoundResolved) {
		round := s.rounds[s.currentIndex]
		view.Round = &RoundView{
			Index:      s.currentIndex,
			Prompt:     round.Prompt,
			Options:    round.Options,
			Annotation: round.Annotation,
		}
	}
	return view
}

func sequenceEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
