package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/studyplan/core"
)

var planColumns = []string{"student_id", "level", "subject", "examboard", "examcode", "examdate"}

// ReplacePlan serialises concurrent replaces for one student with a
// transaction-scoped advisory lock keyed on the student id.
func (a *Adapter) ReplacePlan(ctx context.Context, userID int64, rows []core.PlanRow) error {
	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM student_topics WHERE student_id = $1`, userID); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		_, err := tx.CopyFrom(ctx, pgx.Identifier{"student_topics"}, planColumns,
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				r := rows[i]
				return []any{userID, r.Level, r.Subject, r.ExamBoard, r.ExamCode, r.ExamDate}, nil
			}))
		return err
	})
}

func (a *Adapter) ListPlan(ctx context.Context, userID int64) ([]core.PlanItem, error) {
	q := `SELECT st.id, st.examdate, st.subject,
			COALESCE((SELECT t.hours FROM topics t WHERE t.topic = st.subject ORDER BY t.id DESC LIMIT 1), 0)
		FROM student_topics st
		WHERE st.student_id = $1
		ORDER BY st.examdate, st.subject, st.id`

	rows, err := a.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.PlanItem, error) {
		var item core.PlanItem
		err := row.Scan(&item.ID, &item.Date, &item.Subject, &item.Hours)
		return item, err
	})
}

func (a *Adapter) DeletePlan(ctx context.Context, userID int64) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM student_topics WHERE student_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
