package game

import (
	"testing"

	"lamed-game-service/internal/domain"
)

func threeRounds() []domain.Round {
	return []domain.Round{
		{Prompt: "שלום", CorrectAnswer: []string{"hello"}, Options: []string{"hello", "bread", "water"}},
		{Prompt: "לחם", CorrectAnswer: []string{"bread"}, Options: []string{"milk", "bread", "hello"}},
		{Prompt: "מים", CorrectAnswer: []string{"water"}, Options: []string{"water", "house", "book"}},
	}
}

func startedSession(t *testing.T, countdown int) (*Session, uint64) {
	t.Helper()
	session := NewSession("s1", "u1", "multiple-choice")
	gen, err := session.Start(threeRounds(), countdown, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return session, gen
}

func TestSessionScoringFlow(t *testing.T) {
	session, _ := startedSession(t, 0)

	// Round 0 correct, round 1 incorrect, round 2 correct.
	answers := [][]string{{"hello"}, {"milk"}, {"water"}}
	for i, answer := range answers {
		verdict, err := session.SubmitAnswer(answer)
		if err != nil {
			t.Fatalf("submit round %d: %v", i, err)
		}
		wantCorrect := i != 1
		if verdict.Correct != wantCorrect {
			t.Fatalf("round %d: expected correct=%v, got %+v", i, wantCorrect, verdict)
		}
		completed, err := session.Advance()
		if err != nil {
			t.Fatalf("advance round %d: %v", i, err)
		}
		if wantCompleted := i == 2; completed != wantCompleted {
			t.Fatalf("round %d: expected completed=%v, got %v", i, wantCompleted, completed)
		}
	}

	view := session.Snapshot()
	if view.Phase != domain.PhaseComplete {
		t.Fatalf("expected complete phase, got %s", view.Phase)
	}
	if view.Score.Correct != 2 || view.Score.Total != 3 {
		t.Fatalf("expected score 2/3, got %+v", view.Score)
	}
	if view.ScorePercent != 67 {
		t.Fatalf("expected 67%%, got %d", view.ScorePercent)
	}
}

func TestSessionScoreBoundsAndMonotonicIndex(t *testing.T) {
	session, _ := startedSession(t, 0)

	lastIndex := -1
	for {
		view := session.Snapshot()
		if view.Score.Correct < 0 || view.Score.Correct > view.Score.Total || view.Score.Total > view.RoundCount {
			t.Fatalf("score bounds violated: %+v", view.Score)
		}
		if view.CurrentIndex < lastIndex {
			t.Fatalf("current index decreased: %d -> %d", lastIndex, view.CurrentIndex)
		}
		lastIndex = view.CurrentIndex
		if view.Phase == domain.PhaseComplete {
			break
		}
		if _, err := session.SubmitAnswer([]string{"hello"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := session.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
}

func TestSessionDuplicateSubmissionScoresOnce(t *testing.T) {
	session, _ := startedSession(t, 0)

	first, err := session.SubmitAnswer([]string{"hello"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := session.SubmitAnswer([]string{"bread"})
	if err != nil {
		t.Fatalf("duplicate submit: %v", err)
	}
	if second.Correct != first.Correct || second.RoundIndex != first.RoundIndex {
		t.Fatalf("duplicate submission changed the verdict: %+v vs %+v", first, second)
	}

	view := session.Snapshot()
	if view.Score.Total != 1 || view.Score.Correct != 1 {
		t.Fatalf("expected single scored round, got %+v", view.Score)
	}
}

func TestSessionStartRejectsEmptyRounds(t *testing.T) {
	session := NewSession("s1", "u1", "hangman")
	if _, err := session.Start(nil, 0, false); err != domain.ErrEmptySession {
		t.Fatalf("expected empty session error, got %v", err)
	}
	if got := session.Snapshot().Phase; got != domain.PhaseIdle {
		t.Fatalf("expected session to stay idle, got %s", got)
	}
}

func TestSessionStartRejectsWhileActive(t *testing.T) {
	session, _ := startedSession(t, 0)
	if _, err := session.Start(threeRounds(), 0, false); err != domain.ErrSessionActive {
		t.Fatalf("expected active error, got %v", err)
	}
}

func TestSessionCompleteIsTerminalUntilReset(t *testing.T) {
	session, _ := startedSession(t, 0)
	for i := 0; i < 3; i++ {
		if _, err := session.SubmitAnswer([]string{"hello"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := session.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	if _, err := session.SubmitAnswer([]string{"hello"}); err != domain.ErrNoCurrentRound {
		t.Fatalf("expected no current round after complete, got %v", err)
	}
	if _, err := session.Advance(); err != domain.ErrNoCurrentRound {
		t.Fatalf("expected advance rejected after complete, got %v", err)
	}

	session.Reset()
	if got := session.Snapshot().Phase; got != domain.PhaseIdle {
		t.Fatalf("expected idle after reset, got %s", got)
	}
	if _, err := session.Start(threeRounds(), 0, false); err != nil {
		t.Fatalf("restart after reset: %v", err)
	}
}

func TestSessionSnapshotHidesCorrectAnswer(t *testing.T) {
	session, _ := startedSession(t, 0)

	view := session.Snapshot()
	if view.Round == nil {
		t.Fatalf("expected current round in view")
	}
	if view.Verdict != nil {
		t.Fatalf("no verdict expected before submission")
	}
	// The round view carries prompt and options only; a verdict appears
	// with the expected answer once the round is resolved.
	if _, err := session.SubmitAnswer([]string{"bread"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	view = session.Snapshot()
	if view.Verdict == nil || len(view.Verdict.Expected) == 0 {
		t.Fatalf("expected verdict with expected answer after resolve")
	}
}
