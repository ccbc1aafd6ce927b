package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads the raw rows reports are built from.
type Repository interface {
	PendingDues(ctx context.Context) ([]PendingDue, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) PendingDues(ctx context.Context) ([]PendingDue, error) {
	query := `
		SELECT a.id, a.student_name, c.code, a.balance, a.next_due_date
		FROM admissions a
		JOIN courses c ON c.id = a.course_id
		WHERE a.balance > 0
		ORDER BY a.next_due_date NULLS LAST, a.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dues []PendingDue
	for rows.Next() {
		var due PendingDue
		var nextDue pgtype.Date
		if err := rows.Scan(&due.AdmissionID, &due.StudentName, &due.CourseCode, &due.Balance, &nextDue); err != nil {
			return nil, err
		}
		if nextDue.Valid {
			d := nextDue.Time
			due.NextDueDate = &d
		}
		dues = append(dues, due)
	}
	return dues, rows.Err()
}
