package game

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"lamed-game-service/internal/domain"
)

// SessionRepository abstracts how live game sessions are stored
// (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// ContentRepository loads the content pool for a category
// (from cache/backing store).
type ContentRepository interface {
	GetPool(ctx context.Context, category domain.Category) ([]domain.ContentItem, error)
}

// ResultStore appends completed results and reads ranked entries back.
// TopEntries returns an empty slice, not an error, when nothing has been
// recorded yet.
type ResultStore interface {
	AppendResult(ctx context.Context, result domain.GameResult) error
	TopEntries(ctx context.Context, gameTag string, order domain.RankOrder, limit int) ([]domain.LeaderboardEntry, error)
}

// StartParams shapes one game run.
type StartParams struct {
	UserID           string
	GameTag          string
	Category         domain.Category
	RoundCount       int
	OptionCount      int
	CountdownSeconds int
	Ordering         bool
	TimeRanked       bool
}

// GameService contains the engine use cases: start a run, score answers,
// advance rounds, and read leaderboards.
type GameService struct {
	sessions SessionRepository
	content  ContentRepository
	results  ResultStore

	newRand      func() *rand.Rand
	tickInterval time.Duration
	resultWait   time.Duration
}

func NewGameService(sessions SessionRepository, content ContentRepository, results ResultStore) *GameService {
	return &GameService{
		sessions: sessions,
		content:  content,
		results:  results,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		tickInterval: DefaultTickInterval,
		resultWait:   5 * time.Second,
	}
}

// WithRand injects a deterministic random source for tests.
func (s *GameService) WithRand(newRand func() *rand.Rand) *GameService {
	s.newRand = newRand
	return s
}

// WithTickInterval overrides the wall-clock tick period. A negative
// interval disables the runner entirely; tests then drive Session.Tick
// themselves.
func (s *GameService) WithTickInterval(interval time.Duration) *GameService {
	s.tickInterval = interval
	return s
}

// StartGame fetches the content pool, generates the round sequence, and
// starts a fresh session keyed by a new UUID.
func (s *GameService) StartGame(ctx context.Context, p StartParams) (SessionView, error) {
	pool, err := s.content.GetPool(ctx, p.Category)
	if err != nil {
		return SessionView{}, err
	}

	gen := NewGenerator(s.newRand())
	var rounds []domain.Round
	if p.Ordering {
		rounds, err = gen.OrderingRounds(pool, p.RoundCount, strings.Fields)
	} else {
		rounds, err = gen.Rounds(pool, p.RoundCount, p.OptionCount)
	}
	if err != nil {
		return SessionView{}, err
	}

	session := NewSession(uuid.NewString(), p.UserID, p.GameTag)
	timerGen, err := session.Start(rounds, p.CountdownSeconds, p.TimeRanked)
	if err != nil {
		return SessionView{}, err
	}
	s.sessions.Put(session)
	if s.tickInterval >= 0 {
		StartTicker(session, timerGen, s.tickInterval)
	}
	return session.Snapshot(), nil
}

// SubmitAnswer scores a response for the session's current round.
func (s *GameService) SubmitAnswer(ctx context.Context, sessionID string, response []string) (SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	if _, err := session.SubmitAnswer(response); err != nil {
		return SessionView{}, err
	}
	return session.Snapshot(), nil
}

// Advance moves the session past a resolved round. Completing the last
// round submits the result to the leaderboard store exactly once,
// fire-and-forget: a failed submission is logged and never blocks the
// transition the player sees.
func (s *GameService) Advance(ctx context.Context, sessionID string) (SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	completed, err := session.Advance()
	if err != nil {
		return SessionView{}, err
	}
	if completed {
		result := session.Result()
		go s.submitResult(result)
	}
	return session.Snapshot(), nil
}

func (s *GameService) submitResult(result domain.GameResult) {
	ctx, cancel := context.WithTimeout(context.Background(), s.resultWait)
	defer cancel()
	if err := s.results.AppendResult(ctx, result); err != nil {
		log.Printf("result submission failed user=%s game=%s: %v", result.UserID, result.GameTag, err)
	}
}

// Subscribe returns a channel that receives snapshots for timer-driven
// session changes. The caller must invoke the returned cancel function
// to avoid leaks.
func (s *GameService) Subscribe(sessionID string) (<-chan SessionView, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Snapshot returns the current view of a session.
func (s *GameService) Snapshot(sessionID string) (SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SessionView{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Abandon resets a session and drops it from the store; pending ticks
// for the old run are invalidated by the reset.
func (s *GameService) Abandon(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Reset()
	s.sessions.Delete(sessionID)
}

// TopEntries reads the ranked leaderboard for a game tag.
func (s *GameService) TopEntries(ctx context.Context, gameTag string, order domain.RankOrder, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := s.results.TopEntries(ctx, gameTag, order, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, nil
}
