package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/quizstat/internal/model"
)

// RecordStore is the persistence the statistics service reads from and
// writes through.
type RecordStore interface {
	FindRecordsByUser(ctx context.Context, userID int64) ([]model.AnswerRecord, error)
	FindRecordsByQuestion(ctx context.Context, questionID int64) ([]model.AnswerRecord, error)
	FindAllRecords(ctx context.Context) ([]model.AnswerRecord, error)
	FindTopicByID(ctx context.Context, topicID int64) (model.Topic, error)
	SaveRecord(ctx context.Context, rec model.AnswerRecord) (int64, error)
	SaveRecords(ctx context.Context, recs []model.AnswerRecord) error
	RecordExists(ctx context.Context, id int64) (bool, error)
	UpdateRecord(ctx context.Context, rec model.AnswerRecord) error
	DeleteRecord(ctx context.Context, id int64) error
	DeleteAllRecordsForUser(ctx context.Context, userID int64) error
	DeleteAllRecords(ctx context.Context) error
}

// Service builds user and topic reports from stored answer records.
type Service struct {
	store  RecordStore
	policy model.AttemptPolicy
	now    func() time.Time
}

// NewService returns a Service reading from st. policy decides how test
// attempt counts are reported.
func NewService(st RecordStore, policy model.AttemptPolicy) *Service {
	if policy == "" {
		policy = model.AttemptsSum
	}
	return &Service{store: st, policy: policy, now: time.Now}
}

// WithPolicy returns a copy of s that reports attempts with policy.
func (s *Service) WithPolicy(policy model.AttemptPolicy) *Service {
	out := *s
	if policy != "" {
		out.policy = policy
	}
	return &out
}

// Policy returns the attempt policy in use.
func (s *Service) Policy() model.AttemptPolicy {
	return s.policy
}

// UserStatistics ranks every test the user attempted, weakest first.
func (s *Service) UserStatistics(ctx context.Context, user model.User) (model.UserStatistics, error) {
	us, _, err := s.userReport(ctx, user)
	return us, err
}

// userReport returns the ranked statistics together with the attempts they
// were built from.
func (s *Service) userReport(ctx context.Context, user model.User) (model.UserStatistics, []model.NamedTestSample, error) {
	samples, err := s.SessionHistory(ctx, user)
	if err != nil {
		return model.UserStatistics{}, nil, err
	}
	return model.UserStatistics{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Login:     user.Login,
		Tests:     RankUserReports(MergeByTestName(samples)),
	}, samples, nil
}

// SessionHistory returns the score of every attempt in the order the store
// returned the records.
func (s *Service) SessionHistory(ctx context.Context, user model.User) ([]model.NamedTestSample, error) {
	records, err := s.store.FindRecordsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for user %q: %w", user.Login, err)
	}
	samples, err := SummarizeSessions(GroupByDate(records))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sessions for user %q: %w", user.Login, err)
	}
	return samples, nil
}

// TopicStatistics ranks the tests of a topic, weakest first.
func (s *Service) TopicStatistics(ctx context.Context, topicID int64) ([]model.TestStat, error) {
	_, tests, err := s.TopicReport(ctx, topicID)
	return tests, err
}

// TopicReport loads the topic once and returns it with its ranked test
// statistics.
func (s *Service) TopicReport(ctx context.Context, topicID int64) (model.Topic, []model.TestStat, error) {
	topic, err := s.store.FindTopicByID(ctx, topicID)
	if err != nil {
		return model.Topic{}, nil, fmt.Errorf("failed to load topic %d: %w", topicID, err)
	}
	tests := make([]model.TestStat, 0, len(topic.Tests))
	for _, test := range topic.Tests {
		ts, err := AggregateTest(ctx, test, s.store.FindRecordsByQuestion, s.policy)
		if err != nil {
			return model.Topic{}, nil, fmt.Errorf("failed to aggregate test %q: %w", test.Name, err)
		}
		tests = append(tests, ts)
	}
	return topic, RankTestStats(tests), nil
}

// CalculateRightAnswers counts the correct records.
func (s *Service) CalculateRightAnswers(records []model.AnswerRecord) int {
	return CalculateRightAnswers(records)
}

// SaveStatistics stamps every record with the same time and stores them as
// one attempt.
func (s *Service) SaveStatistics(ctx context.Context, records []model.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	date := s.now()
	stamped := make([]model.AnswerRecord, len(records))
	for i, rec := range records {
		rec.Date = date
		stamped[i] = rec
	}
	if err := s.store.SaveRecords(ctx, stamped); err != nil {
		return fmt.Errorf("failed to save statistics: %w", err)
	}
	return nil
}

// CreateRecord stores a single record as given.
func (s *Service) CreateRecord(ctx context.Context, rec model.AnswerRecord) (int64, error) {
	return s.store.SaveRecord(ctx, rec)
}

// UpdateRecord overwrites the record with the given id. A missing record
// is skipped silently.
func (s *Service) UpdateRecord(ctx context.Context, rec model.AnswerRecord, id int64) error {
	ok, err := s.store.RecordExists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check record %d: %w", id, err)
	}
	if !ok {
		return nil
	}
	rec.ID = id
	return s.store.UpdateRecord(ctx, rec)
}

// DeleteRecord removes one record.
func (s *Service) DeleteRecord(ctx context.Context, rec model.AnswerRecord) error {
	return s.store.DeleteRecord(ctx, rec.ID)
}

// StatisticsByUser returns the raw records of a user.
func (s *Service) StatisticsByUser(ctx context.Context, user model.User) ([]model.AnswerRecord, error) {
	return s.store.FindRecordsByUser(ctx, user.ID)
}

// StatisticsByQuestion returns the raw records of a question.
func (s *Service) StatisticsByQuestion(ctx context.Context, questionID int64) ([]model.AnswerRecord, error) {
	return s.store.FindRecordsByQuestion(ctx, questionID)
}

// FindAll returns every stored record.
func (s *Service) FindAll(ctx context.Context) ([]model.AnswerRecord, error) {
	return s.store.FindAllRecords(ctx)
}

// RemoveStatisticsByUser deletes all records of a user.
func (s *Service) RemoveStatisticsByUser(ctx context.Context, userID int64) error {
	return s.store.DeleteAllRecordsForUser(ctx, userID)
}

// DeleteAll deletes every record.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.store.DeleteAllRecords(ctx)
}
