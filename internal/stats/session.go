package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/quizstat/internal/model"
)

var (
	// ErrMixedSession is returned when one timestamp covers answers to more than one test.
	ErrMixedSession = errors.New("session spans more than one test")
	// ErrOrphanRecord is returned for a record whose question has no parent test.
	ErrOrphanRecord = errors.New("record has no parent test")
)

// SessionError reports which attempt failed validation. Tests lists the
// conflicting tests as "name#id".
type SessionError struct {
	Date  time.Time
	Tests []string
	Err   error
}

func (e *SessionError) Error() string {
	if len(e.Tests) > 0 {
		return fmt.Sprintf("session %s: %v: %q", e.Date.Format(time.RFC3339Nano), e.Err, e.Tests)
	}
	return fmt.Sprintf("session %s: %v", e.Date.Format(time.RFC3339Nano), e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// SummarizeSessions turns every bucket into the score of one named test attempt.
func SummarizeSessions(buckets []DateBucket) ([]model.NamedTestSample, error) {
	samples := make([]model.NamedTestSample, 0, len(buckets))
	for _, bucket := range buckets {
		if len(bucket.Records) == 0 {
			continue
		}
		if err := validateBucket(bucket); err != nil {
			return nil, err
		}
		samples = append(samples, model.NamedTestSample{
			TestName: bucket.Records[0].TestName,
			Date:     bucket.Date,
			Average:  Percentage(CalculateRightAnswers(bucket.Records), len(bucket.Records)),
		})
	}
	return samples, nil
}

func validateBucket(bucket DateBucket) error {
	first := bucket.Records[0]
	var tests []string
	for _, rec := range bucket.Records {
		if rec.TestID == 0 && rec.TestName == "" {
			return &SessionError{Date: bucket.Date, Err: ErrOrphanRecord}
		}
		if rec.TestID != first.TestID || rec.TestName != first.TestName {
			tests = appendUnique(tests, testLabel(first), testLabel(rec))
		}
	}
	if len(tests) > 0 {
		return &SessionError{Date: bucket.Date, Tests: tests, Err: ErrMixedSession}
	}
	return nil
}

// testLabel names a test by name and id so same-named tests stay apart.
func testLabel(rec model.AnswerRecord) string {
	return fmt.Sprintf("%s#%d", rec.TestName, rec.TestID)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
