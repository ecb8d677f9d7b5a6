// Package generator prepares question sequences for a quiz run.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/quizstat/internal/model"
)

// Generator produces randomized question orders.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Prepare returns a copy of test with questions and answer options ordered
// for one run. MaxQuestions > 0 keeps only that many questions. The input
// is never modified.
func (g *Generator) Prepare(test model.Test, cfg model.QuizConfig) model.Test {
	out := test
	out.Questions = make([]model.Question, len(test.Questions))
	copy(out.Questions, test.Questions)
	if cfg.Shuffle {
		g.rnd.Shuffle(len(out.Questions), func(i, j int) {
			out.Questions[i], out.Questions[j] = out.Questions[j], out.Questions[i]
		})
	}
	if cfg.MaxQuestions > 0 && cfg.MaxQuestions < len(out.Questions) {
		out.Questions = out.Questions[:cfg.MaxQuestions]
	}
	for i, q := range out.Questions {
		answers := make([]model.AnswerOption, len(q.Answers))
		copy(answers, q.Answers)
		if cfg.ShuffleAnswers {
			g.rnd.Shuffle(len(answers), func(a, b int) {
				answers[a], answers[b] = answers[b], answers[a]
			})
		}
		out.Questions[i].Answers = answers
	}
	return out
}
