package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	jobmetrics "github.com/meridian-campus/meridian/internal/jobs"
)

// DuesScanner finds admissions whose next due date has passed and queues a
// payment reminder email for each. Admissions without a contact email are
// logged and skipped.
type DuesScanner struct {
	pool   *pgxpool.Pool
	client *Client
	logger *slog.Logger
	jobs   *jobmetrics.Metrics
	from   string
}

// NewDuesScanner constructs a DuesScanner.
func NewDuesScanner(pool *pgxpool.Pool, client *Client, logger *slog.Logger, jobs *jobmetrics.Metrics, from string) *DuesScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &DuesScanner{pool: pool, client: client, logger: logger, jobs: jobs, from: from}
}

// HandleTask adapts Run to the Asynq handler contract.
func (s *DuesScanner) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload DuesScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := s.jobs.Track("dues_scan")
	return tracker.End(s.Run(ctx))
}

type overdueRow struct {
	AdmissionID int64
	StudentName string
	Email       string
	Balance     decimal.Decimal
	DueDate     time.Time
}

// Run executes one scan pass.
func (s *DuesScanner) Run(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, student_name, student_email, balance, next_due_date
		FROM admissions
		WHERE balance > 0 AND next_due_date IS NOT NULL AND next_due_date <= NOW()::date
		ORDER BY next_due_date`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var overdue []overdueRow
	for rows.Next() {
		var row overdueRow
		var email pgtype.Text
		if err := rows.Scan(&row.AdmissionID, &row.StudentName, &email, &row.Balance, &row.DueDate); err != nil {
			return err
		}
		row.Email = email.String
		overdue = append(overdue, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	queued := 0
	for _, row := range overdue {
		if row.Email == "" {
			s.logger.Warn("overdue admission without email", slog.Int64("admission_id", row.AdmissionID))
			continue
		}
		_, err := s.client.EnqueueSendEmail(ctx, SendEmailPayload{
			From:    s.from,
			To:      row.Email,
			Subject: "Payment reminder",
			Body: "Dear " + row.StudentName + ", a balance of " + row.Balance.String() +
				" was due on " + row.DueDate.Format("2006-01-02") + ". Please arrange payment.",
		})
		if err != nil {
			return err
		}
		queued++
	}

	s.jobs.AddReminders(queued)
	s.logger.Info("dues scan finished",
		slog.Int("overdue", len(overdue)),
		slog.Int("reminders", queued),
	)
	return nil
}
