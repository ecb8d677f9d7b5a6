package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/quizstat/internal/model"
)

type memoryStore struct {
	records    []model.AnswerRecord
	topics     map[int64]model.Topic
	nextID     int64
	topicLoads int
}

func (m *memoryStore) FindRecordsByUser(_ context.Context, userID int64) ([]model.AnswerRecord, error) {
	var out []model.AnswerRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) FindRecordsByQuestion(_ context.Context, questionID int64) ([]model.AnswerRecord, error) {
	var out []model.AnswerRecord
	for _, rec := range m.records {
		if rec.QuestionID == questionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) FindAllRecords(context.Context) ([]model.AnswerRecord, error) {
	return append([]model.AnswerRecord(nil), m.records...), nil
}

func (m *memoryStore) FindTopicByID(_ context.Context, topicID int64) (model.Topic, error) {
	m.topicLoads++
	topic, ok := m.topics[topicID]
	if !ok {
		return model.Topic{}, errors.New("not found")
	}
	return topic, nil
}

func (m *memoryStore) SaveRecord(_ context.Context, rec model.AnswerRecord) (int64, error) {
	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *memoryStore) SaveRecords(ctx context.Context, recs []model.AnswerRecord) error {
	for _, rec := range recs {
		if _, err := m.SaveRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryStore) RecordExists(_ context.Context, id int64) (bool, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) UpdateRecord(_ context.Context, rec model.AnswerRecord) error {
	for i := range m.records {
		if m.records[i].ID == rec.ID {
			m.records[i] = rec
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memoryStore) DeleteRecord(_ context.Context, id int64) error {
	return m.filter(func(rec model.AnswerRecord) bool { return rec.ID != id })
}

func (m *memoryStore) DeleteAllRecordsForUser(_ context.Context, userID int64) error {
	return m.filter(func(rec model.AnswerRecord) bool { return rec.UserID != userID })
}

func (m *memoryStore) DeleteAllRecords(context.Context) error {
	m.records = nil
	return nil
}

func (m *memoryStore) filter(keep func(model.AnswerRecord) bool) error {
	out := m.records[:0]
	for _, rec := range m.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	m.records = out
	return nil
}

func answers(userID, testID int64, testName string, date time.Time, right, total int) []model.AnswerRecord {
	recs := make([]model.AnswerRecord, 0, total)
	for i := 0; i < total; i++ {
		recs = append(recs, model.AnswerRecord{
			UserID:     userID,
			QuestionID: testID*100 + int64(i),
			TestID:     testID,
			TestName:   testName,
			Correct:    i < right,
			Date:       date,
		})
	}
	return recs
}

func TestServiceUserStatistics(t *testing.T) {
	st := &memoryStore{}
	var recs []model.AnswerRecord
	recs = append(recs, answers(1, 1, "QuizA", time.Unix(100, 0), 3, 4)...)
	recs = append(recs, answers(1, 2, "QuizB", time.Unix(200, 0), 1, 5)...)
	recs = append(recs, answers(1, 1, "QuizA", time.Unix(300, 0), 2, 2)...)
	recs = append(recs, answers(2, 1, "QuizA", time.Unix(400, 0), 0, 2)...)
	st.records = recs

	svc := NewService(st, "")
	user := model.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Login: "ada"}
	us, err := svc.UserStatistics(context.Background(), user)
	if err != nil {
		t.Fatalf("user statistics: %v", err)
	}
	if us.Login != "ada" || us.FirstName != "Ada" {
		t.Fatalf("unexpected user header: %+v", us)
	}
	if len(us.Tests) != 2 {
		t.Fatalf("expected 2 test reports, got %d", len(us.Tests))
	}
	if us.Tests[0].TestName != "QuizB" || us.Tests[0].Average != 20 || us.Tests[0].Attempts != 1 {
		t.Fatalf("unexpected first report: %+v", us.Tests[0])
	}
	if us.Tests[1].TestName != "QuizA" || us.Tests[1].Average != 87 || us.Tests[1].Attempts != 2 {
		t.Fatalf("unexpected second report: %+v", us.Tests[1])
	}
}

func TestServiceUserStatisticsNoRecords(t *testing.T) {
	svc := NewService(&memoryStore{}, model.AttemptsSum)
	us, err := svc.UserStatistics(context.Background(), model.User{ID: 9, Login: "nobody"})
	if err != nil {
		t.Fatalf("user statistics: %v", err)
	}
	if len(us.Tests) != 0 {
		t.Fatalf("expected no reports, got %+v", us.Tests)
	}
}

func TestServiceUserStatisticsMixedSession(t *testing.T) {
	now := time.Unix(100, 0)
	st := &memoryStore{records: append(answers(1, 1, "QuizA", now, 1, 1), answers(1, 2, "QuizB", now, 1, 1)...)}
	_, err := NewService(st, "").UserStatistics(context.Background(), model.User{ID: 1, Login: "ada"})
	if !errors.Is(err, ErrMixedSession) {
		t.Fatalf("expected ErrMixedSession, got %v", err)
	}
}

func TestServiceTopicStatistics(t *testing.T) {
	now := time.Unix(100, 0)
	st := &memoryStore{
		topics: map[int64]model.Topic{
			1: {
				ID:   1,
				Name: "Go",
				Tests: []model.Test{
					{ID: 1, Name: "Basics", Questions: []model.Question{{ID: 10, Description: "q10"}}},
					{ID: 2, Name: "Channels", Questions: []model.Question{{ID: 20, Description: "q20"}}},
				},
			},
		},
		records: []model.AnswerRecord{
			{ID: 1, QuestionID: 10, Correct: true, Date: now},
			{ID: 2, QuestionID: 20, Correct: false, Date: now},
			{ID: 3, QuestionID: 20, Correct: true, Date: now},
		},
	}
	tests, err := NewService(st, model.AttemptsSum).TopicStatistics(context.Background(), 1)
	if err != nil {
		t.Fatalf("topic statistics: %v", err)
	}
	if len(tests) != 2 || tests[0].Name != "Channels" || tests[0].Average != 50 || tests[0].Attempts != 2 {
		t.Fatalf("unexpected ranking: %+v", tests)
	}
	if tests[1].Name != "Basics" || tests[1].Average != 100 {
		t.Fatalf("unexpected second test: %+v", tests[1])
	}
	if _, err := NewService(st, "").TopicStatistics(context.Background(), 42); err == nil {
		t.Fatalf("expected error for missing topic")
	}
}

type userIndex map[string]model.User

func (u userIndex) FindUserByLogin(_ context.Context, login string) (model.User, error) {
	user, ok := u[login]
	if !ok {
		return model.User{}, errors.New("not found")
	}
	return user, nil
}

func TestBuildReportLoadsTopicOnce(t *testing.T) {
	now := time.Unix(100, 0)
	st := &memoryStore{
		topics: map[int64]model.Topic{
			1: {ID: 1, Name: "Go", Tests: []model.Test{
				{ID: 1, Name: "Basics", Questions: []model.Question{{ID: 10, Description: "q10"}}},
			}},
		},
		records: answers(1, 1, "Basics", now, 1, 2),
	}
	for i := range st.records {
		st.records[i].QuestionID = 10
	}
	ada := model.User{ID: 1, FirstName: "Ada", Login: "ada"}
	svc := NewService(st, "")
	report, err := BuildReport(context.Background(), svc, userIndex{"ada": ada}, model.StatsConfig{Login: "ada", TopicID: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if st.topicLoads != 1 {
		t.Fatalf("expected 1 topic load, got %d", st.topicLoads)
	}
	if report.TopicName != "Go" || len(report.Tests) != 1 || report.Tests[0].Average != 50 {
		t.Fatalf("unexpected topic section: %q %+v", report.TopicName, report.Tests)
	}
	us, err := svc.UserStatistics(context.Background(), ada)
	if err != nil {
		t.Fatalf("user statistics: %v", err)
	}
	if len(report.User.Tests) != 1 || report.User.Tests[0] != us.Tests[0] || report.User.Login != us.Login {
		t.Fatalf("expected report to match user statistics, got %+v vs %+v", report.User, us)
	}
	if len(report.History) != 1 || report.History[0].Average != 50 {
		t.Fatalf("unexpected history: %+v", report.History)
	}
}

func TestServiceSaveStatisticsSharesTimestamp(t *testing.T) {
	st := &memoryStore{}
	svc := NewService(st, "")
	stamp := time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC)
	svc.now = func() time.Time { return stamp }

	recs := []model.AnswerRecord{
		{UserID: 1, QuestionID: 1, TestID: 1, TestName: "A", Correct: true},
		{UserID: 1, QuestionID: 2, TestID: 1, TestName: "A", Correct: false},
	}
	if err := svc.SaveStatistics(context.Background(), recs); err != nil {
		t.Fatalf("save statistics: %v", err)
	}
	if len(st.records) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(st.records))
	}
	for _, rec := range st.records {
		if !rec.Date.Equal(stamp) {
			t.Fatalf("expected shared timestamp %v, got %v", stamp, rec.Date)
		}
	}
	if !recs[0].Date.IsZero() {
		t.Fatalf("input records must not be modified")
	}
	if err := svc.SaveStatistics(context.Background(), nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
}

func TestServiceRecordCRUD(t *testing.T) {
	ctx := context.Background()
	st := &memoryStore{}
	svc := NewService(st, "")

	id, err := svc.CreateRecord(ctx, model.AnswerRecord{UserID: 1, QuestionID: 5, Correct: false})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.UpdateRecord(ctx, model.AnswerRecord{UserID: 1, QuestionID: 5, Correct: true}, id); err != nil {
		t.Fatalf("update: %v", err)
	}
	byQuestion, err := svc.StatisticsByQuestion(ctx, 5)
	if err != nil {
		t.Fatalf("by question: %v", err)
	}
	if len(byQuestion) != 1 || !byQuestion[0].Correct {
		t.Fatalf("expected updated record, got %+v", byQuestion)
	}
	if got := svc.CalculateRightAnswers(byQuestion); got != 1 {
		t.Fatalf("expected 1 right answer, got %d", got)
	}

	if err := svc.UpdateRecord(ctx, model.AnswerRecord{UserID: 1}, 999); err != nil {
		t.Fatalf("update of missing record should be skipped, got %v", err)
	}
	all, err := svc.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record after skipped update, got %d", len(all))
	}

	if err := svc.DeleteRecord(ctx, byQuestion[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if all, _ := svc.FindAll(ctx); len(all) != 0 {
		t.Fatalf("expected no records, got %d", len(all))
	}
}

func TestServiceRemoveStatistics(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(100, 0)
	st := &memoryStore{records: append(answers(1, 1, "A", now, 1, 2), answers(2, 1, "A", now, 1, 1)...)}
	svc := NewService(st, "")

	if err := svc.RemoveStatisticsByUser(ctx, 1); err != nil {
		t.Fatalf("remove by user: %v", err)
	}
	left, err := svc.StatisticsByUser(ctx, model.User{ID: 1})
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected user 1 cleared, got %d", len(left))
	}
	if others, _ := svc.StatisticsByUser(ctx, model.User{ID: 2}); len(others) != 1 {
		t.Fatalf("expected user 2 untouched, got %d", len(others))
	}
	if err := svc.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if all, _ := svc.FindAll(ctx); len(all) != 0 {
		t.Fatalf("expected no records, got %d", len(all))
	}
}
