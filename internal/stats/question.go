package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/verte-zerg/quizstat/internal/model"
)

// QuestionLookup returns every answer record of a question.
type QuestionLookup func(ctx context.Context, questionID int64) ([]model.AnswerRecord, error)

// AggregateQuestion reduces the records of one question. Zero attempts
// yield a zero average.
func AggregateQuestion(description string, records []model.AnswerRecord) model.QuestionStat {
	return model.QuestionStat{
		Description: description,
		Attempts:    len(records),
		Average:     Percentage(CalculateRightAnswers(records), len(records)),
	}
}

type testAccumulator struct {
	sum   int
	total int
	last  int
	most  int
}

func (a testAccumulator) add(q model.QuestionStat) testAccumulator {
	return testAccumulator{
		sum:   a.sum + q.Average,
		total: a.total + q.Attempts,
		last:  q.Attempts,
		most:  max(a.most, q.Attempts),
	}
}

func (a testAccumulator) attempts(policy model.AttemptPolicy) int {
	switch policy {
	case model.AttemptsLast:
		return a.last
	case model.AttemptsMax:
		return a.most
	default:
		return a.total
	}
}

// AggregateTest builds the stat of one test from its questions' records.
// With no questions the average is the untouched running sum, i.e. 0.
func AggregateTest(ctx context.Context, test model.Test, lookup QuestionLookup, policy model.AttemptPolicy) (model.TestStat, error) {
	acc := testAccumulator{}
	questions := make([]model.QuestionStat, 0, len(test.Questions))
	for _, q := range test.Questions {
		records, err := lookup(ctx, q.ID)
		if err != nil {
			return model.TestStat{}, fmt.Errorf("failed to load records for question %d: %w", q.ID, err)
		}
		qs := AggregateQuestion(q.Description, records)
		acc = acc.add(qs)
		questions = append(questions, qs)
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Average < questions[j].Average
	})

	average := acc.sum
	if len(questions) > 0 {
		average = acc.sum / len(questions)
	}
	return model.TestStat{
		Name:      test.Name,
		Attempts:  acc.attempts(policy),
		Average:   average,
		Questions: questions,
	}, nil
}

// RankTestStats orders tests weakest first. Ties keep their order.
func RankTestStats(tests []model.TestStat) []model.TestStat {
	out := append([]model.TestStat(nil), tests...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Average < out[j].Average
	})
	return out
}

// ParseAttemptPolicy validates a policy name. Empty selects the default.
func ParseAttemptPolicy(name string) (model.AttemptPolicy, error) {
	switch model.AttemptPolicy(name) {
	case "":
		return model.AttemptsSum, nil
	case model.AttemptsSum, model.AttemptsMax, model.AttemptsLast:
		return model.AttemptPolicy(name), nil
	default:
		return "", fmt.Errorf("unknown attempts policy %q (use sum, max or last)", name)
	}
}
