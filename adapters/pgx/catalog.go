package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/studyplan/core"
)

func (a *Adapter) ListLevels(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx, `SELECT DISTINCT level FROM subjects ORDER BY level`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (a *Adapter) ListBoards(ctx context.Context, level string) ([]string, error) {
	rows, err := a.pool.Query(ctx, `SELECT DISTINCT board FROM subjects WHERE level = $1 ORDER BY board`, level)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (a *Adapter) ListSubjects(ctx context.Context, level, board string) ([]core.Subject, error) {
	q := `SELECT id, level, board, subject, examcode, examdate
		FROM subjects WHERE level = $1 AND board = $2
		ORDER BY subject, id`

	rows, err := a.pool.Query(ctx, q, level, board)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Subject, error) {
		var s core.Subject
		err := row.Scan(&s.ID, &s.Level, &s.Board, &s.Name, &s.ExamCode, &s.ExamDate)
		return s, err
	})
}

func (a *Adapter) ListTopics(ctx context.Context, subjectID int64) ([]core.Topic, error) {
	q := `SELECT id, subjectid, topic, size, hours FROM topics WHERE subjectid = $1 ORDER BY topic, id`

	rows, err := a.pool.Query(ctx, q, subjectID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Topic, error) {
		var t core.Topic
		err := row.Scan(&t.ID, &t.SubjectID, &t.Name, &t.Size, &t.Hours)
		return t, err
	})
}

// ImportCatalog upserts subjects by (level, board, subject) and their topics
// by (subjectid, topic) in one transaction. Rows absent from seeds are kept.
func (a *Adapter) ImportCatalog(ctx context.Context, seeds []core.SubjectSeed) (core.ImportStats, error) {
	var stats core.ImportStats

	err := pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		subjectQ := `INSERT INTO subjects (level, board, subject, examcode, examdate)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (level, board, subject)
			DO UPDATE SET examcode = EXCLUDED.examcode, examdate = EXCLUDED.examdate
			RETURNING id`
		topicQ := `INSERT INTO topics (subjectid, topic, size, hours)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (subjectid, topic)
			DO UPDATE SET size = EXCLUDED.size, hours = EXCLUDED.hours`

		for _, seed := range seeds {
			s := seed.Subject
			var subjectID int64
			if err := tx.QueryRow(ctx, subjectQ, s.Level, s.Board, s.Name, s.ExamCode, s.ExamDate).Scan(&subjectID); err != nil {
				return fmt.Errorf("subject %s/%s/%s: %w", s.Level, s.Board, s.Name, err)
			}
			stats.Subjects++

			if len(seed.Topics) == 0 {
				continue
			}

			batch := &pgx.Batch{}
			for _, t := range seed.Topics {
				batch.Queue(topicQ, subjectID, t.Name, t.Size, t.Hours)
			}
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("topics for %s: %w", s.Name, err)
			}
			stats.Topics += len(seed.Topics)
		}
		return nil
	})
	if err != nil {
		return core.ImportStats{}, err
	}
	return stats, nil
}
