package admissions

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-campus/meridian/internal/ledger"
	"github.com/meridian-campus/meridian/internal/shared"
)

// Repository defines persistence for admissions.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Admission, int, error)
	Get(ctx context.Context, id int64) (Admission, error)
	Create(ctx context.Context, adm Admission) (Admission, error)
	Delete(ctx context.Context, id int64) error
	HasReceipts(ctx context.Context, id int64) (bool, error)
	ScheduleByCourse(ctx context.Context, courseID int64) (*ledger.FeeSchedule, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const admissionColumns = `id, student_name, student_email, student_phone, course_id,
	balance, next_due_date, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Admission, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		where += ` AND student_name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.CourseID > 0 {
		argCount++
		where += ` AND course_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.CourseID)
	}
	if filters.PendingOnly {
		where += ` AND balance > 0`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admissions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + admissionColumns + ` FROM admissions` + where + ` ORDER BY created_at DESC, id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admissions []Admission
	for rows.Next() {
		adm, err := scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		admissions = append(admissions, adm)
	}
	return admissions, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Admission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+admissionColumns+` FROM admissions WHERE id = $1`, id)
	adm, err := scanAdmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admission{}, shared.ErrNotFound
	}
	return adm, err
}

func (r *repository) Create(ctx context.Context, adm Admission) (Admission, error) {
	query := `
		INSERT INTO admissions (
			student_name, student_email, student_phone, course_id,
			balance, next_due_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		adm.StudentName, textOrNull(adm.StudentEmail), textOrNull(adm.StudentPhone),
		adm.CourseID, adm.Balance, adm.NextDueDate,
	).Scan(&adm.ID, &adm.CreatedAt, &adm.UpdatedAt)
	if err != nil {
		return Admission{}, err
	}
	return adm, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) HasReceipts(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM receipts WHERE admission_id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

func (r *repository) ScheduleByCourse(ctx context.Context, courseID int64) (*ledger.FeeSchedule, error) {
	query := `
		SELECT admission_fee, course_fee, semester_fee, agent_commission
		FROM courses
		WHERE id = $1`

	var sched ledger.FeeSchedule
	err := r.pool.QueryRow(ctx, query, courseID).Scan(
		&sched.AdmissionFee, &sched.CourseFee, &sched.SemesterFee, &sched.AgentCommission,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func scanAdmission(row pgx.Row) (Admission, error) {
	var adm Admission
	var email, phone pgtype.Text
	var nextDue pgtype.Date
	err := row.Scan(
		&adm.ID, &adm.StudentName, &email, &phone, &adm.CourseID,
		&adm.Balance, &nextDue, &adm.CreatedAt, &adm.UpdatedAt,
	)
	if err != nil {
		return Admission{}, err
	}
	adm.StudentEmail = email.String
	adm.StudentPhone = phone.String
	if nextDue.Valid {
		due := nextDue.Time
		adm.NextDueDate = &due
	}
	return adm, nil
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
