package game

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"lamed-game-service/internal/domain"
)

func TestRoundsDrawsDistinctItemsWithOptions(t *testing.T) {
	pool := wordPool(6)
	gen := NewGenerator(rand.New(rand.NewSource(42)))

	rounds, err := gen.Rounds(pool, 5, 4)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(rounds) != 5 {
		t.Fatalf("expected 5 rounds, got %d", len(rounds))
	}

	seenCorrect := map[string]bool{}
	for i, round := range rounds {
		if len(round.Options) != 4 {
			t.Fatalf("round %d: expected 4 options, got %d", i, len(round.Options))
		}
		if len(round.CorrectAnswer) != 1 {
			t.Fatalf("round %d: expected single correct answer", i)
		}
		correct := round.CorrectAnswer[0]
		if seenCorrect[correct] {
			t.Fatalf("round %d: correct item %q reused", i, correct)
		}
		seenCorrect[correct] = true

		found := false
		dupes := map[string]bool{}
		for _, opt := range round.Options {
			if dupes[opt] {
				t.Fatalf("round %d: duplicate option %q", i, opt)
			}
			dupes[opt] = true
			if opt == correct {
				found = true
			}
		}
		if !found {
			t.Fatalf("round %d: correct answer %q not among options %v", i, correct, round.Options)
		}
	}
}

func TestRoundsInsufficientContent(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(1)))

	if _, err := gen.Rounds(wordPool(3), 3, 4); err != domain.ErrInsufficientContent {
		t.Fatalf("expected insufficient content for small pool, got %v", err)
	}
	if _, err := gen.Rounds(wordPool(3), 5, 0); err != domain.ErrInsufficientContent {
		t.Fatalf("expected insufficient content for round count, got %v", err)
	}
	if _, err := gen.Rounds(wordPool(3), 0, 0); err != domain.ErrEmptySession {
		t.Fatalf("expected empty session for zero rounds, got %v", err)
	}
}

func TestRoundsDeterministicUnderFixedSeed(t *testing.T) {
	pool := wordPool(8)

	first, err := NewGenerator(rand.New(rand.NewSource(7))).Rounds(pool, 4, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := NewGenerator(rand.New(rand.NewSource(7))).Rounds(pool, 4, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for i := range first {
		if first[i].Prompt != second[i].Prompt {
			t.Fatalf("round %d prompts differ: %q vs %q", i, first[i].Prompt, second[i].Prompt)
		}
		if len(first[i].Options) != len(second[i].Options) {
			t.Fatalf("round %d option counts differ", i)
		}
		for j := range first[i].Options {
			if first[i].Options[j] != second[i].Options[j] {
				t.Fatalf("round %d option %d differs", i, j)
			}
		}
	}
}

func TestRoundsFreeFormHasNoOptions(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(3)))

	rounds, err := gen.Rounds(wordPool(5), 3, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i, round := range rounds {
		if len(round.Options) != 0 {
			t.Fatalf("round %d: expected free-form round without options", i)
		}
	}
}

func TestOrderingRoundsShapeTokenSequences(t *testing.T) {
	pool := []domain.ContentItem{
		{ID: "s1", Primary: "The boy eats bread", Secondary: "הילד אוכל לחם"},
		{ID: "s2", Primary: "The girl drinks water", Secondary: "הילדה שותה מים"},
	}
	gen := NewGenerator(rand.New(rand.NewSource(11)))

	rounds, err := gen.OrderingRounds(pool, 2, strings.Fields)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i, round := range rounds {
		if len(round.CorrectAnswer) != 3 {
			t.Fatalf("round %d: expected 3 tokens, got %v", i, round.CorrectAnswer)
		}
		if len(round.Options) != len(round.CorrectAnswer) {
			t.Fatalf("round %d: options must carry the same tokens", i)
		}
		counts := map[string]int{}
		for _, token := range round.CorrectAnswer {
			counts[token]++
		}
		for _, token := range round.Options {
			counts[token]--
		}
		for token, n := range counts {
			if n != 0 {
				t.Fatalf("round %d: token %q unbalanced between answer and options", i, token)
			}
		}
	}
}

func wordPool(n int) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.ContentItem{
			ID:        fmt.Sprintf("w%d", i),
			Primary:   fmt.Sprintf("word-%d", i),
			Secondary: fmt.Sprintf("answer-%d", i),
		})
	}
	return items
}
