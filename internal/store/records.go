package store

import (
	"context"
	"database/sql"

	"github.com/verte-zerg/quizstat/internal/model"
)

const recordColumns = `r.id, r.user_id, r.question_id, COALESCE(t.id, 0), COALESCE(t.name, ''), r.correct, r.answered_at
	FROM answer_records r
	LEFT JOIN questions q ON q.id = r.question_id
	LEFT JOIN tests t ON t.id = q.test_id`

// FindRecordsByUser returns a user's records in the order they were answered.
func (s *Store) FindRecordsByUser(ctx context.Context, userID int64) ([]model.AnswerRecord, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` WHERE r.user_id = ? ORDER BY r.answered_at, r.id`, userID)
}

// FindRecordsByQuestion returns every record of a question.
func (s *Store) FindRecordsByQuestion(ctx context.Context, questionID int64) ([]model.AnswerRecord, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` WHERE r.question_id = ? ORDER BY r.answered_at, r.id`, questionID)
}

// FindAllRecords returns every stored record.
func (s *Store) FindAllRecords(ctx context.Context) ([]model.AnswerRecord, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` ORDER BY r.answered_at, r.id`)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]model.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var records []model.AnswerRecord
	for rows.Next() {
		var rec model.AnswerRecord
		var correct int
		var answeredAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.TestID, &rec.TestName, &correct, &answeredAt); err != nil {
			return nil, err
		}
		parsed, err := parseDate(answeredAt)
		if err != nil {
			return nil, err
		}
		rec.Correct = correct != 0
		rec.Date = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveRecord inserts one record and returns its id.
func (s *Store) SaveRecord(ctx context.Context, rec model.AnswerRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO answer_records (user_id, question_id, correct, answered_at) VALUES (?, ?, ?, ?)`,
		rec.UserID, rec.QuestionID, boolToInt(rec.Correct), formatDate(rec.Date))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SaveRecords inserts records in a single transaction.
func (s *Store) SaveRecords(ctx context.Context, recs []model.AnswerRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO answer_records (user_id, question_id, correct, answered_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.UserID, rec.QuestionID, boolToInt(rec.Correct), formatDate(rec.Date)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordExists reports whether a record with the id is stored.
func (s *Store) RecordExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM answer_records WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateRecord overwrites a stored record.
func (s *Store) UpdateRecord(ctx context.Context, rec model.AnswerRecord) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE answer_records SET user_id = ?, question_id = ?, correct = ?, answered_at = ? WHERE id = ?`,
		rec.UserID, rec.QuestionID, boolToInt(rec.Correct), formatDate(rec.Date), rec.ID)
	if err != nil {
		return err
	}
	return expectRows(res)
}

// DeleteRecord removes one record.
func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM answer_records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRows(res)
}

// DeleteAllRecordsForUser removes every record of a user.
func (s *Store) DeleteAllRecordsForUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM answer_records WHERE user_id = ?`, userID)
	return err
}

// DeleteAllRecords removes every record.
func (s *Store) DeleteAllRecords(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM answer_records`)
	return err
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
