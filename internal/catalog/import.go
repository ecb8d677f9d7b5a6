package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/quizstat/internal/model"
)

// Writer is the persistence an import writes through.
type Writer interface {
	SaveUser(ctx context.Context, u model.User) (int64, error)
	FindUserByLogin(ctx context.Context, login string) (model.User, error)
	SaveTopic(ctx context.Context, topic model.Topic) (model.Topic, error)
	SaveRecords(ctx context.Context, recs []model.AnswerRecord) error
	FindRecordsByUser(ctx context.Context, userID int64) ([]model.AnswerRecord, error)
}

// Summary counts what an import stored.
type Summary struct {
	Users     int
	Topics    int
	Tests     int
	Questions int
	Sessions  int
	Records   int
	Skipped   int // sessions whose user already had an attempt at that time
}

// Import stores the catalog. Topics are always inserted as new rows; users
// are matched by login. A session is skipped when its user already has an
// attempt stored at the same time, so importing a catalog twice never puts
// two tests under one attempt.
func Import(ctx context.Context, w Writer, cat Catalog) (Summary, error) {
	var sum Summary
	for _, u := range cat.Users {
		if _, err := w.SaveUser(ctx, model.User{FirstName: u.FirstName, LastName: u.LastName, Login: u.Login}); err != nil {
			return sum, fmt.Errorf("failed to save user %q: %w", u.Login, err)
		}
		sum.Users++
	}

	saved := make(map[string]model.Topic, len(cat.Topics))
	for _, topic := range cat.Topics {
		st, err := w.SaveTopic(ctx, toModelTopic(topic))
		if err != nil {
			return sum, fmt.Errorf("failed to save topic %q: %w", topic.Name, err)
		}
		saved[topic.Name] = st
		sum.Topics++
		sum.Tests += len(st.Tests)
		for _, test := range st.Tests {
			sum.Questions += len(test.Questions)
		}
	}

	userIDs := map[string]int64{}
	taken := map[int64]map[int64]bool{}
	for _, s := range cat.Sessions {
		id, ok := userIDs[s.Login]
		if !ok {
			u, err := w.FindUserByLogin(ctx, s.Login)
			if err != nil {
				return sum, fmt.Errorf("failed to find user %q: %w", s.Login, err)
			}
			id = u.ID
			userIDs[s.Login] = id
			dates, err := attemptDates(ctx, w, id)
			if err != nil {
				return sum, fmt.Errorf("failed to load attempts of %q: %w", s.Login, err)
			}
			taken[id] = dates
		}
		if taken[id][attemptKey(s.Date)] {
			sum.Skipped++
			continue
		}
		taken[id][attemptKey(s.Date)] = true
		test, ok := findSavedTest(saved[s.Topic], s.Test)
		if !ok {
			return sum, fmt.Errorf("test %q not found in topic %q", s.Test, s.Topic)
		}
		recs := make([]model.AnswerRecord, 0, len(s.Results))
		for i, correct := range s.Results {
			q := test.Questions[i]
			recs = append(recs, model.AnswerRecord{
				UserID:     id,
				QuestionID: q.ID,
				TestID:     test.ID,
				TestName:   test.Name,
				Correct:    correct,
				Date:       s.Date,
			})
		}
		if err := w.SaveRecords(ctx, recs); err != nil {
			return sum, fmt.Errorf("failed to save session of %q: %w", s.Login, err)
		}
		sum.Sessions++
		sum.Records += len(recs)
	}
	return sum, nil
}

// attemptKey truncates to microseconds so keys match across both stores.
func attemptKey(t time.Time) int64 {
	return t.UTC().Truncate(time.Microsecond).UnixNano()
}

func attemptDates(ctx context.Context, w Writer, userID int64) (map[int64]bool, error) {
	recs, err := w.FindRecordsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dates := make(map[int64]bool, len(recs))
	for _, rec := range recs {
		dates[attemptKey(rec.Date)] = true
	}
	return dates, nil
}

func toModelTopic(topic Topic) model.Topic {
	out := model.Topic{Name: topic.Name, Tests: make([]model.Test, 0, len(topic.Tests))}
	for _, test := range topic.Tests {
		mt := model.Test{Name: test.Name, Questions: make([]model.Question, 0, len(test.Questions))}
		for _, q := range test.Questions {
			mq := model.Question{Description: q.Text, Answers: make([]model.AnswerOption, 0, len(q.Answers))}
			for _, a := range q.Answers {
				mq.Answers = append(mq.Answers, model.AnswerOption{Description: a.Text, Correct: a.Correct})
			}
			mt.Questions = append(mt.Questions, mq)
		}
		out.Tests = append(out.Tests, mt)
	}
	return out
}

func findSavedTest(topic model.Topic, name string) (model.Test, bool) {
	for _, test := range topic.Tests {
		if test.Name == name {
			return test, true
		}
	}
	return model.Test{}, false
}
