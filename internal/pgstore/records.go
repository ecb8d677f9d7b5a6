package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/verte-zerg/quizstat/internal/model"
	"github.com/verte-zerg/quizstat/internal/store"
)

const recordColumns = `r.id, r.user_id, r.question_id, COALESCE(t.id, 0), COALESCE(t.name, ''), r.correct, r.answered_at
	FROM answer_records r
	LEFT JOIN questions q ON q.id = r.question_id
	LEFT JOIN tests t ON t.id = q.test_id`

const insertRecord = `INSERT INTO answer_records (user_id, question_id, correct, answered_at) VALUES ($1, $2, $3, $4) RETURNING id`

// FindRecordsByUser returns a user's records in the order they were answered.
func (s *Store) FindRecordsByUser(ctx context.Context, userID int64) ([]model.AnswerRecord, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` WHERE r.user_id = $1 ORDER BY r.answered_at, r.id`, userID)
}

// FindRecordsByQuestion returns every record of a question.
func (s *Store) FindRecordsByQuestion(ctx context.Context, questionID int64) ([]model.AnswerRecord, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` WHERE r.question_id = $1 ORDER BY r.answered_at, r.id`, questionID)
}

// FindAllRecords returns every stored record.
func (s *Store) FindAllRecords(ctx context.Context) ([]model.AnswerRecord, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` ORDER BY r.answered_at, r.id`)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]model.AnswerRecord, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AnswerRecord, error) {
		var rec model.AnswerRecord
		err := row.Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.TestID, &rec.TestName, &rec.Correct, &rec.Date)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	return records, nil
}

// SaveRecord inserts one record and returns its id.
func (s *Store) SaveRecord(ctx context.Context, rec model.AnswerRecord) (int64, error) {
	var id int64
	if err := s.db.QueryRow(ctx, insertRecord, rec.UserID, rec.QuestionID, rec.Correct, rec.Date).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}
	return id, nil
}

// SaveRecords inserts records as one batch inside a transaction.
func (s *Store) SaveRecords(ctx context.Context, recs []model.AnswerRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(insertRecord, rec.UserID, rec.QuestionID, rec.Correct, rec.Date)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	return tx.Commit(ctx)
}

// RecordExists reports whether a record with the id is stored.
func (s *Store) RecordExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM answer_records WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateRecord overwrites a stored record.
func (s *Store) UpdateRecord(ctx context.Context, rec model.AnswerRecord) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE answer_records SET user_id = $1, question_id = $2, correct = $3, answered_at = $4 WHERE id = $5`,
		rec.UserID, rec.QuestionID, rec.Correct, rec.Date, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return expectRows(tag)
}

// DeleteRecord removes one record.
func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM answer_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return expectRows(tag)
}

// DeleteAllRecordsForUser removes every record of a user.
func (s *Store) DeleteAllRecordsForUser(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM answer_records WHERE user_id = $1`, userID)
	return err
}

// DeleteAllRecords removes every record.
func (s *Store) DeleteAllRecords(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM answer_records`)
	return err
}

func expectRows(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
