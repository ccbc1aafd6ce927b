package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-campus/meridian/internal/shared"
)

// Repository defines persistence for the course catalog.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Course, int, error)
	Get(ctx context.Context, id int64) (Course, error)
	Create(ctx context.Context, course Course) (Course, error)
	Update(ctx context.Context, id int64, course Course) error
	Delete(ctx context.Context, id int64) error
	HasAdmissions(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const courseColumns = `id, code, name, duration_months, admission_fee, course_fee,
	semester_fee, agent_commission, created_at, updated_at`

// List uses a dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Course, int, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM courses WHERE 1=1`
	countArgs := []any{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND (name ILIKE $1 OR code ILIKE $1)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

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

	var courses []Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, course)
	}
	return courses, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Course, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	course, err := scanCourse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, shared.ErrNotFound
	}
	return course, err
}

func (r *repository) Create(ctx context.Context, course Course) (Course, error) {
	query := `
		INSERT INTO courses (
			code, name, duration_months, admission_fee, course_fee,
			semester_fee, agent_commission, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		course.Code, course.Name, course.DurationMonths,
		course.AdmissionFee, course.CourseFee, course.SemesterFee, course.AgentCommission,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Course{}, shared.ErrDuplicate
		}
		return Course{}, err
	}
	return course, nil
}

func (r *repository) Update(ctx context.Context, id int64, course Course) error {
	query := `
		UPDATE courses
		SET code = $2, name = $3, duration_months = $4, admission_fee = $5,
			course_fee = $6, semester_fee = $7, agent_commission = $8, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		id, course.Code, course.Name, course.DurationMonths,
		course.AdmissionFee, course.CourseFee, course.SemesterFee, course.AgentCommission,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) HasAdmissions(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admissions WHERE course_id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.DurationMonths,
		&c.AdmissionFee, &c.CourseFee, &c.SemesterFee, &c.AgentCommission,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "name":
		return "name " + dir
	default:
		return "name " + dir
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
