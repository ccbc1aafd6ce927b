package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-campus/meridian/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for the receipt ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithLedgerTx wraps fn in a repeatable-read transaction. The Tx handed to fn
// locks the admission row via AdmissionForUpdate, so the validate-then-write
// sequence of one mutation cannot interleave with another on the same
// admission.
func (r *Repository) WithLedgerTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &ledgerTx{q: tx})
	})
}

// Admission loads an admission without locking it (read path).
func (r *Repository) Admission(ctx context.Context, id int64) (*Admission, error) {
	return scanAdmission(r.pool.QueryRow(ctx, admissionQuery+` WHERE id = $1`, id))
}

// ScheduleByCourse loads the fee schedule attached to a course.
func (r *Repository) ScheduleByCourse(ctx context.Context, courseID int64) (*FeeSchedule, error) {
	return scheduleByCourse(ctx, r.pool, courseID)
}

// ReceiptsByAdmission returns all receipts owned by an admission.
func (r *Repository) ReceiptsByAdmission(ctx context.Context, admissionID int64) ([]Receipt, error) {
	return receiptsByAdmission(ctx, r.pool, admissionID)
}

type ledgerTx struct {
	q querier
}

const admissionQuery = `
	SELECT id, student_name, course_id, balance, next_due_date, created_at, updated_at
	FROM admissions`

func (t *ledgerTx) AdmissionForUpdate(ctx context.Context, admissionID int64) (*Admission, error) {
	return scanAdmission(t.q.QueryRow(ctx, admissionQuery+` WHERE id = $1 FOR UPDATE`, admissionID))
}

func (t *ledgerTx) ScheduleByCourse(ctx context.Context, courseID int64) (*FeeSchedule, error) {
	return scheduleByCourse(ctx, t.q, courseID)
}

func (t *ledgerTx) ReceiptsByAdmission(ctx context.Context, admissionID int64) ([]Receipt, error) {
	return receiptsByAdmission(ctx, t.q, admissionID)
}

func (t *ledgerTx) ReceiptByID(ctx context.Context, id int64) (*Receipt, error) {
	row := t.q.QueryRow(ctx, receiptQuery+` WHERE id = $1`, id)
	rec, err := scanReceipt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	return rec, err
}

func (t *ledgerTx) InsertReceipt(ctx context.Context, admissionID int64, in CreateReceiptInput) (*Receipt, error) {
	query := `
		INSERT INTO receipts (
			admission_id, receipt_number, amount_collected, collected_towards,
			payment_date, payment_mode, transaction_id, notes, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	var createdBy pgtype.Int8
	if in.CreatedBy > 0 {
		createdBy = pgtype.Int8{Int64: in.CreatedBy, Valid: true}
	}

	rec := Receipt{
		AdmissionID:      admissionID,
		Number:           in.Number,
		Amount:           in.Amount,
		CollectedTowards: in.CollectedTowards,
		PaymentDate:      in.PaymentDate,
		PaymentMode:      in.PaymentMode,
		TransactionID:    in.TransactionID,
		Notes:            in.Notes,
		CreatedBy:        in.CreatedBy,
	}
	err := t.q.QueryRow(ctx, query,
		admissionID,
		in.Number,
		in.Amount,
		string(in.CollectedTowards),
		in.PaymentDate,
		in.PaymentMode,
		textOrNull(in.TransactionID),
		textOrNull(in.Notes),
		createdBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateReceiptNumber
		}
		return nil, err
	}
	return &rec, nil
}

func (t *ledgerTx) SaveReceipt(ctx context.Context, rec *Receipt) error {
	query := `
		UPDATE receipts
		SET amount_collected = $2, collected_towards = $3, payment_date = $4,
			payment_mode = $5, transaction_id = $6, notes = $7, updated_at = NOW()
		WHERE id = $1`

	tag, err := t.q.Exec(ctx, query,
		rec.ID,
		rec.Amount,
		string(rec.CollectedTowards),
		rec.PaymentDate,
		rec.PaymentMode,
		textOrNull(rec.TransactionID),
		textOrNull(rec.Notes),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

func (t *ledgerTx) DeleteReceipt(ctx context.Context, id int64) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

func (t *ledgerTx) UpdateDerived(ctx context.Context, admissionID int64, balance decimal.Decimal, nextDueDate *time.Time) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE admissions SET balance = $2, next_due_date = $3, updated_at = NOW() WHERE id = $1`,
		admissionID, balance, nextDueDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

// --- Shared query helpers ---

func scanAdmission(row pgx.Row) (*Admission, error) {
	var adm Admission
	var nextDue pgtype.Date
	err := row.Scan(&adm.ID, &adm.StudentName, &adm.CourseID, &adm.Balance, &nextDue, &adm.CreatedAt, &adm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	if nextDue.Valid {
		due := nextDue.Time
		adm.NextDueDate = &due
	}
	return &adm, nil
}

func scheduleByCourse(ctx context.Context, q querier, courseID int64) (*FeeSchedule, error) {
	query := `
		SELECT admission_fee, course_fee, semester_fee, agent_commission
		FROM courses
		WHERE id = $1`

	var sched FeeSchedule
	err := q.QueryRow(ctx, query, courseID).Scan(
		&sched.AdmissionFee, &sched.CourseFee, &sched.SemesterFee, &sched.AgentCommission,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

const receiptQuery = `
	SELECT id, admission_id, receipt_number, amount_collected, collected_towards,
		payment_date, payment_mode, transaction_id, notes, created_by, created_at, updated_at
	FROM receipts`

func receiptsByAdmission(ctx context.Context, q querier, admissionID int64) ([]Receipt, error) {
	rows, err := q.Query(ctx, receiptQuery+` WHERE admission_id = $1 ORDER BY payment_date, id`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *rec)
	}
	return receipts, rows.Err()
}

func scanReceipt(row pgx.Row) (*Receipt, error) {
	var rec Receipt
	var towards string
	var txnID, notes pgtype.Text
	var createdBy pgtype.Int8
	err := row.Scan(
		&rec.ID, &rec.AdmissionID, &rec.Number, &rec.Amount, &towards,
		&rec.PaymentDate, &rec.PaymentMode, &txnID, &notes, &createdBy,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CollectedTowards = FeeType(towards)
	rec.TransactionID = txnID.String
	rec.Notes = notes.String
	rec.CreatedBy = createdBy.Int64
	return &rec, nil
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
