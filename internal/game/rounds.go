package game

import (
	"math/rand"

	"lamed-game-service/internal/domain"
)

// Generator turns a content pool into the fixed round sequence for one
// session. It is a pure function of (pool, counts, rand): a fixed seed
// yields a fixed session, which the tests rely on.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Rounds draws roundCount distinct items from pool without replacement and
// shapes one Round per item. When optionCount > 0 each round carries
// optionCount answer options: the item's own answer plus optionCount-1
// distractors drawn from the rest of the pool, shuffled so the correct
// answer has no positional bias.
//
// Returns domain.ErrInsufficientContent when the pool cannot satisfy the
// requested counts; no Round is built in that case.
func (g *Generator) Rounds(pool []domain.ContentItem, roundCount, optionCount int) ([]domain.Round, error) {
	if roundCount <= 0 {
		return nil, domain.ErrEmptySession
	}
	if len(pool) < roundCount {
		return nil, domain.ErrInsufficientContent
	}
	if optionCount > 0 && len(pool) < optionCount+1 {
		return nil, domain.ErrInsufficientContent
	}

	drawn := make([]domain.ContentItem, len(pool))
	copy(drawn, pool)
	g.rnd.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})

	rounds := make([]domain.Round, 0, roundCount)
	for i := 0; i < roundCount; i++ {
		item := drawn[i]
		round := domain.Round{
			Prompt:        item.Primary,
			CorrectAnswer: []string{item.Secondary},
			Annotation:    item.Annotation,
		}
		if optionCount > 0 {
			round.Options = g.options(drawn, i, optionCount)
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}

// options builds the shuffled option list for the item at index correct.
// Distractors are drawn from the other items of the already-shuffled pool,
// so no option repeats within a round.
func (g *Generator) options(drawn []domain.ContentItem, correct, optionCount int) []string {
	options := make([]string, 0, optionCount)
	options = append(options, drawn[correct].Secondary)

	// Walk the shuffled pool from a random offset so distractor sets differ
	// between rounds that share pool items.
	offset := g.rnd.Intn(len(drawn))
	for i := 0; len(options) < optionCount && i < len(drawn); i++ {
		idx := (offset + i) % len(drawn)
		if idx == correct {
			continue
		}
		candidate := drawn[idx].Secondary
		if containsOption(options, candidate) {
			continue
		}
		options = append(options, candidate)
	}

	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

func containsOption(options []string, candidate string) bool {
	for _, opt := range options {
		if opt == candidate {
			return true
		}
	}
	return false
}

// OrderingRounds shapes rounds whose answer is an ordered token sequence
// (sentence builder games). The prompt is the item's primary text and the
// expected answer is its secondary text split into tokens; options carry
// the same tokens shuffled for the player to rearrange.
func (g *Generator) OrderingRounds(pool []domain.ContentItem, roundCount int, tokenize func(string) []string) ([]domain.Round, error) {
	if roundCount <= 0 {
		return nil, domain.ErrEmptySession
	}
	if len(pool) < roundCount {
		return nil, domain.ErrInsufficientContent
	}

	drawn := make([]domain.ContentItem, len(pool))
	copy(drawn, pool)
	g.rnd.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})

	rounds := make([]domain.Round, 0, roundCount)
	for i := 0; i < roundCount; i++ {
		item := drawn[i]
		tokens := tokenize(item.Secondary)
		shuffled := make([]string, len(tokens))
		copy(shuffled, tokens)
		g.rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		rounds = append(rounds, domain.Round{
			Prompt:        item.Primary,
			CorrectAnswer: tokens,
			Options:       shuffled,
			Annotation:    item.Annotation,
		})
	}
	return rounds, nil
}
