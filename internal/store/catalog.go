package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/verte-zerg/quizstat/internal/model"
)

// SaveUser inserts a user, or updates the names of an existing login, and
// returns its id.
func (s *Store) SaveUser(ctx context.Context, u model.User) (int64, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, login) VALUES (?, ?, ?)
		 ON CONFLICT(login) DO UPDATE SET first_name = excluded.first_name, last_name = excluded.last_name`,
		u.FirstName, u.LastName, u.Login)
	if err != nil {
		return 0, err
	}
	saved, err := s.FindUserByLogin(ctx, u.Login)
	if err != nil {
		return 0, err
	}
	return saved.ID, nil
}

// FindUserByLogin returns the user with the given login.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, login FROM users WHERE login = ?`, login,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Login)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ListUsers returns all users ordered by login.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, first_name, last_name, login FROM users ORDER BY login`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Login); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveTopic stores a topic with its tests, questions and answer options in
// one transaction and returns it with ids filled in.
func (s *Store) SaveTopic(ctx context.Context, topic model.Topic) (model.Topic, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Topic{}, err
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, `INSERT INTO topics (name) VALUES (?)`, topic.Name)
	if err != nil {
		return model.Topic{}, err
	}
	if topic.ID, err = res.LastInsertId(); err != nil {
		return model.Topic{}, err
	}

	saved := topic
	saved.Tests = make([]model.Test, len(topic.Tests))
	for ti, test := range topic.Tests {
		res, err := tx.ExecContext(ctx, `INSERT INTO tests (topic_id, name, position) VALUES (?, ?, ?)`, topic.ID, test.Name, ti)
		if err != nil {
			return model.Topic{}, err
		}
		if test.ID, err = res.LastInsertId(); err != nil {
			return model.Topic{}, err
		}
		test.TopicID = topic.ID
		questions := make([]model.Question, len(test.Questions))
		for qi, q := range test.Questions {
			res, err := tx.ExecContext(ctx, `INSERT INTO questions (test_id, description, position) VALUES (?, ?, ?)`, test.ID, q.Description, qi)
			if err != nil {
				return model.Topic{}, err
			}
			if q.ID, err = res.LastInsertId(); err != nil {
				return model.Topic{}, err
			}
			q.TestID = test.ID
			q.TestName = test.Name
			answers := make([]model.AnswerOption, len(q.Answers))
			for ai, a := range q.Answers {
				res, err := tx.ExecContext(ctx,
					`INSERT INTO answer_options (question_id, description, correct, position) VALUES (?, ?, ?, ?)`,
					q.ID, a.Description, boolToInt(a.Correct), ai)
				if err != nil {
					return model.Topic{}, err
				}
				if a.ID, err = res.LastInsertId(); err != nil {
					return model.Topic{}, err
				}
				answers[ai] = a
			}
			q.Answers = answers
			questions[qi] = q
		}
		test.Questions = questions
		saved.Tests[ti] = test
	}

	if err := tx.Commit(); err != nil {
		return model.Topic{}, err
	}
	return saved, nil
}

// ListTopics returns all topics without their tests.
func (s *Store) ListTopics(ctx context.Context) ([]model.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM topics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return topics, nil
}

// FindTopicByID returns a topic with its ordered tests and questions.
func (s *Store) FindTopicByID(ctx context.Context, topicID int64) (model.Topic, error) {
	var topic model.Topic
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM topics WHERE id = ?`, topicID).Scan(&topic.ID, &topic.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Topic{}, ErrNotFound
	}
	if err != nil {
		return model.Topic{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM tests WHERE topic_id = ? ORDER BY position, id`, topicID)
	if err != nil {
		return model.Topic{}, err
	}
	var testIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			closeRows(rows)
			return model.Topic{}, err
		}
		testIDs = append(testIDs, id)
	}
	err = rows.Err()
	closeRows(rows)
	if err != nil {
		return model.Topic{}, err
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
	err := s.db.QueryRowContext(ctx, `SELECT id, topic_id, name FROM tests WHERE id = ?`, testID).
		Scan(&test.ID, &test.TopicID, &test.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Test{}, ErrNotFound
	}
	if err != nil {
		return model.Test{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.description, o.id, o.description, o.correct
		 FROM questions q
		 LEFT JOIN answer_options o ON o.question_id = q.id
		 WHERE q.test_id = ?
		 ORDER BY q.position, q.id, o.position, o.id`, testID)
	if err != nil {
		return model.Test{}, err
	}
	defer closeRows(rows)

	for rows.Next() {
		var (
			qID      int64
			qDesc    string
			oID      sql.NullInt64
			oDesc    sql.NullString
			oCorrect sql.NullInt64
		)
		if err := rows.Scan(&qID, &qDesc, &oID, &oDesc, &oCorrect); err != nil {
			return model.Test{}, err
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
		if oID.Valid {
			test.Questions[n-1].Answers = append(test.Questions[n-1].Answers, model.AnswerOption{
				ID:          oID.Int64,
				Description: oDesc.String,
				Correct:     oCorrect.Int64 != 0,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return model.Test{}, err
	}
	return test, nil
}
