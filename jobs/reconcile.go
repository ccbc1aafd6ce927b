package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/meridian-campus/meridian/internal/jobs"
	"github.com/meridian-campus/meridian/internal/ledger"
	"github.com/meridian-campus/meridian/internal/observability"
)

// Reconciler recomputes every admission balance from its receipts and fee
// schedule and compares it against the stored value. Drift should never
// happen while all mutations go through the ledger service; this job is the
// backstop for manual database surgery and historic bugs.
type Reconciler struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *observability.Metrics
	jobs    *jobmetrics.Metrics
	repair  bool
}

// NewReconciler constructs a Reconciler. Metrics may be nil.
func NewReconciler(pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics, jobs *jobmetrics.Metrics, repair bool) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{pool: pool, logger: logger, metrics: metrics, jobs: jobs, repair: repair}
}

// HandleTask adapts Run to the Asynq handler contract. The payload's repair
// flag overrides the configured default.
func (r *Reconciler) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := r.jobs.Track("ledger_reconcile")
	return tracker.End(r.run(ctx, r.repair || payload.Repair))
}

// Run executes one reconcile pass with the configured repair setting.
func (r *Reconciler) Run(ctx context.Context) error {
	tracker := r.jobs.Track("ledger_reconcile")
	return tracker.End(r.run(ctx, r.repair))
}

type reconcileRow struct {
	AdmissionID int64
	CourseID    int64
	Stored      decimal.Decimal
}

func (r *Reconciler) run(ctx context.Context, repair bool) error {
	rows, err := r.pool.Query(ctx, `SELECT id, course_id, balance FROM admissions ORDER BY id`)
	if err != nil {
		return err
	}
	var admissions []reconcileRow
	for rows.Next() {
		var row reconcileRow
		if err := rows.Scan(&row.AdmissionID, &row.CourseID, &row.Stored); err != nil {
			rows.Close()
			return err
		}
		admissions = append(admissions, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, row := range admissions {
		g.Go(func() error {
			return r.reconcileOne(ctx, row, repair)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r.logger.Info("ledger reconcile finished",
		slog.Int("admissions", len(admissions)),
		slog.Bool("repair", repair),
	)
	return nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, row reconcileRow, repair bool) error {
	var sched ledger.FeeSchedule
	err := r.pool.QueryRow(ctx, `
		SELECT admission_fee, course_fee, semester_fee, agent_commission
		FROM courses WHERE id = $1`, row.CourseID,
	).Scan(&sched.AdmissionFee, &sched.CourseFee, &sched.SemesterFee, &sched.AgentCommission)
	if err != nil {
		return err
	}

	var paid decimal.Decimal
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_collected), 0)
		FROM receipts WHERE admission_id = $1`, row.AdmissionID,
	).Scan(&paid)
	if err != nil {
		return err
	}

	totalFee := ledger.TotalFee(sched)
	if totalFee.IsNegative() {
		r.logger.Warn("negative total fee",
			slog.Int64("admission_id", row.AdmissionID),
			slog.Int64("course_id", row.CourseID),
			slog.String("total_fee", totalFee.String()),
		)
	}

	derived := ledger.OutstandingBalance(totalFee, paid)
	if derived.Equal(row.Stored) {
		return nil
	}

	r.metrics.BalanceDrift()
	r.logger.Warn("balance drift",
		slog.Int64("admission_id", row.AdmissionID),
		slog.String("stored", row.Stored.String()),
		slog.String("derived", derived.String()),
	)
	if !repair {
		return nil
	}

	if derived.IsPositive() {
		_, err = r.pool.Exec(ctx,
			`UPDATE admissions SET balance = $2, updated_at = NOW() WHERE id = $1`,
			row.AdmissionID, derived)
	} else {
		_, err = r.pool.Exec(ctx,
			`UPDATE admissions SET balance = $2, next_due_date = NULL, updated_at = NOW() WHERE id = $1`,
			row.AdmissionID, derived)
	}
	return err
}
