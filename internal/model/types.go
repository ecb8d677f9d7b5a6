// Package model defines shared data structures.
package model

import "time"

// AttemptPolicy selects how a test's attempt count is derived from its questions.
// Sum is the default. AttemptsLast reproduces only the attempt count of older
// reports: their averages also carried the previous question's score into
// unanswered questions, while here an unanswered question always scores 0.
type AttemptPolicy string

const (
	// AttemptsSum counts every answer record across the test's questions.
	AttemptsSum AttemptPolicy = "sum"
	// AttemptsMax reports the largest per-question attempt count.
	AttemptsMax AttemptPolicy = "max"
	// AttemptsLast reports the attempt count of the last question in the test.
	AttemptsLast AttemptPolicy = "last"
)

// QuizConfig defines quiz runner settings.
type QuizConfig struct {
	Shuffle        bool
	ShuffleAnswers bool
	MaxQuestions   int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Login       string
	TopicID     int64
	Attempts    AttemptPolicy
	CurveWindow int
}

// User is a quiz participant.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Login     string
}

// Topic groups tests.
type Topic struct {
	ID    int64
	Name  string
	Tests []Test
}

// Test is an ordered sequence of questions.
type Test struct {
	ID        int64
	TopicID   int64
	Name      string
	Questions []Question
}

// Question belongs to exactly one test. TestID and TestName are the
// back-reference to the parent test.
type Question struct {
	ID          int64
	TestID      int64
	TestName    string
	Description string
	Answers     []AnswerOption
}

// AnswerOption is one selectable answer of a question.
type AnswerOption struct {
	ID          int64
	Description string
	Correct     bool
}

// AnswerRecord is one answered question. Date is stamped when the attempt
// is saved; records saved together share it and form one session.
type AnswerRecord struct {
	ID         int64
	UserID     int64
	QuestionID int64
	TestID     int64
	TestName   string
	Correct    bool
	Date       time.Time
}

// QuestionStat summarizes all attempts of a single question.
type QuestionStat struct {
	Description string
	Attempts    int
	Average     int
}

// TestStat summarizes a test across all of its questions.
type TestStat struct {
	Name      string
	Attempts  int
	Average   int
	Questions []QuestionStat
}

// NamedTestSample is the score of one attempt of a test.
type NamedTestSample struct {
	TestName string
	Date     time.Time
	Average  int
}

// UserTestReport summarizes every attempt a user made at one test.
type UserTestReport struct {
	TestName string
	Attempts int
	Average  int
}

// UserStatistics is the per-user report.
type UserStatistics struct {
	FirstName string
	LastName  string
	Login     string
	Tests     []UserTestReport
}
