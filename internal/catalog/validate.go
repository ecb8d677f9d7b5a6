package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid catalog")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks references and shapes. Sessions may name users that
// exist only in the database.
func (c Catalog) Validate() error {
	logins := map[string]bool{}
	for i, u := range c.Users {
		if u.Login == "" {
			return invalidf("user %d has no login", i+1)
		}
		if logins[u.Login] {
			return invalidf("duplicate login %q", u.Login)
		}
		logins[u.Login] = true
	}

	topics := map[string]bool{}
	for _, topic := range c.Topics {
		if topic.Name == "" {
			return invalidf("topic without a name")
		}
		if topics[topic.Name] {
			return invalidf("duplicate topic %q", topic.Name)
		}
		topics[topic.Name] = true
		tests := map[string]bool{}
		for _, test := range topic.Tests {
			if test.Name == "" {
				return invalidf("topic %q has a test without a name", topic.Name)
			}
			if tests[test.Name] {
				return invalidf("duplicate test %q in topic %q", test.Name, topic.Name)
			}
			tests[test.Name] = true
			for qi, q := range test.Questions {
				if err := validateQuestion(q); err != nil {
					return invalidf("test %q question %d: %v", test.Name, qi+1, err)
				}
			}
		}
	}

	type attemptKey struct {
		login string
		date  int64
	}
	attempts := map[attemptKey]bool{}
	for i, s := range c.Sessions {
		if s.Login == "" {
			return invalidf("session %d has no login", i+1)
		}
		if s.Date.IsZero() {
			return invalidf("session %d has no date", i+1)
		}
		key := attemptKey{login: s.Login, date: s.Date.UnixNano()}
		if attempts[key] {
			return invalidf("session %d repeats the date of another attempt by %q", i+1, s.Login)
		}
		attempts[key] = true
		test, ok := c.findTest(s.Topic, s.Test)
		if !ok {
			return invalidf("session %d references unknown test %q in topic %q", i+1, s.Test, s.Topic)
		}
		if len(s.Results) == 0 || len(s.Results) > len(test.Questions) {
			return invalidf("session %d has %d results for %d questions", i+1, len(s.Results), len(test.Questions))
		}
	}
	return nil
}

func validateQuestion(q Question) error {
	if q.Text == "" {
		return errors.New("empty text")
	}
	if len(q.Answers) < 2 {
		return errors.New("needs at least two answers")
	}
	for _, a := range q.Answers {
		if a.Correct {
			return nil
		}
	}
	return errors.New("no correct answer")
}

func (c Catalog) findTest(topicName, testName string) (Test, bool) {
	for _, topic := range c.Topics {
		if topic.Name != topicName {
			continue
		}
		for _, test := range topic.Tests {
			if test.Name == testName {
				return test, true
			}
		}
	}
	return Test{}, false
}
