package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/verte-zerg/quizstat/internal/model"
)

// SaveUser inserts a user, or updates the names of an existing login, and
// returns its id.
func (s *Store) SaveUser(ctx context.Context, u model.User) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, login) VALUES ($1, $2, $3)
		ON CONFLICT (login) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
		RETURNING id`, u.FirstName, u.LastName, u.Login).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save user: %w", err)
	}
	return id, nil
}

// FindUserByLogin returns the user with the given login.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx, `SELECT id, first_name, last_name, login FROM users WHERE login = $1`, login).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Login)
	if err != nil {
		return model.User{}, notFound(err)
	}
	return u, nil
}

// ListUsers returns all users ordered by login.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.Query(ctx, `SELECT id, first_name, last_name, login FROM users ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Login); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return users, nil
}

// SaveTopic stores a topic with its tests, questions and answer options in
// one transaction and returns it with ids filled in.
func (s *Store) SaveTopic(ctx context.Context, topic model.Topic) (model.Topic, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return model.Topic{}, err
	}
	defer rollback(ctx, tx)

	if err := tx.QueryRow(ctx, `INSERT INTO topics (name) VALUES ($1) RETURNING id`, topic.Name).Scan(&topic.ID); err != nil {
		return model.Topic{}, fmt.Errorf("failed to insert topic: %w", err)
	}

	saved := topic
	saved.Tests = make([]model.Test, len(topic.Tests))
	for ti, test := range topic.Tests {
		if err := tx.QueryRow(ctx, `INSERT INTO tests (topic_id, name, position) VALUES ($1, $2, $3) RETURNING id`,
			topic.ID, test.Name, ti).Scan(&test.ID); err != nil {
			return model.Topic{}, fmt.Errorf("failed to insert test %q: %w", test.Name, err)
		}
		test.TopicID = topic.ID
		questions := make([]model.Question, len(test.Questions))
		for qi, q := range test.Questions {
			if err := tx.QueryRow(ctx, `INSERT INTO questions (test_id, description, position) VALUES ($1, $2, $3) RETURNING id`,
				test.ID, q.Description, qi).Scan(&q.ID); err != nil {
				return model.Topic{}, fmt.Errorf("failed to insert question: %w", err)
			}
			q.TestID = test.ID
			q.TestName = test.Name
			answers := make([]model.AnswerOption, len(q.Answers))
			for ai, a := range q.Answers {
				if err := tx.QueryRow(ctx,
					`INSERT INTO answer_options (question_id, description, correct, position) VALUES ($1, $2, $3, $4) RETURNING id`,
					q.ID, a.Description, a.Correct, ai).Scan(&a.ID); err != nil {
					return model.Topic{}, fmt.Errorf("failed to insert answer option: %w", err)
				}
				answers[ai] = a
			}
			q.Answers = answers
			questions[qi] = q
		}
		test.Questions = questions
		saved.Tests[ti] = test
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Topic{}, err
	}
	return saved, nil
}

// ListTopics returns all topics without their tests.
func (s *Store) ListTopics(ctx context.Context) ([]model.Topic, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	topics, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Topic, error) {
		var t model.Topic
		err := row.Scan(&t.ID, &t.Name)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan topics: %w", err)
	}
	return topics, nil
}

// FindTopicByID returns a topic with its ordered tests and questions.
func (s *Store) FindTopicByID(ctx context.Context, topicID int64) (model.Topic, error) {
	var topic model.Topic
	if err := s.db.QueryRow(ctx, `SELECT id, name FROM topics WHERE id = $1`, topicID).Scan(&topic.ID, &topic.Name); err != nil {
		return model.Topic{}, notFound(err)
	}

	rows, err := s.db.Query(ctx, `SELECT id FROM tests WHERE topic_id = $1 ORDER BY position, id`, topicID)
	if err != nil {
		return model.Topic{}, fmt.Errorf("failed to query tests: %w", err)
	}
	testIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return model.Topic{}, fmt.Errorf("failed to scan tests: %w", err)
	}
	for _, id := range testIDs {
		test, err := s.FindTestByID(ctx, id)
		if err != nil {
			return model.Topic{}, err
		}
		topic.Tests = append(topic.Tests, test)
	}
	return topic, nil
}

// FindTestByID returns a test with its ordered questions and answer options.
func (s *Store) FindTestByID(ctx context.Context, testID int64) (model.Test, error) {
	var test model.Test
	if err := s.db.QueryRow(ctx, `SELECT id, topic_id, name FROM tests WHERE id = $1`, testID).
		Scan(&test.ID, &test.TopicID, &test.Name); err != nil {
		return model.Test{}, notFound(err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT q.id, q.description, o.id, o.description, o.correct
		FROM questions q
		LEFT JOIN answer_options o ON o.question_id = q.id
		WHERE q.test_id = $1
		ORDER BY q.position, q.id, o.position, o.id`, testID)
	if err != nil {
		return model.Test{}, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			qID      int64
			qDesc    string
			oID      *int64
			oDesc    *string
			oCorrect *bool
		)
		if err := rows.Scan(&qID, &qDesc, &oID, &oDesc, &oCorrect); err != nil {
			return model.Test{}, fmt.Errorf("failed to scan question: %w", err)
		}
		n := len(test.Questions)
		if n == 0 || test.Questions[n-1].ID != qID {
			test.Questions = append(test.Questions, model.Question{
				ID:          qID,
				TestID:      test.ID,
				TestName:    test.Name,
				Description: qDesc,
			})
			n++
		}
		if oID != nil {
			test.Questions[n-1].Answers = append(test.Questions[n-1].Answers, model.AnswerOption{
				ID:          *oID,
				Description: *oDesc,
				Correct:     *oCorrect,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return model.Test{}, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return test, nil
}
