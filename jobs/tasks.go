package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerReconcile recomputes stored admission balances from receipts.
	TaskLedgerReconcile = "ledger:reconcile"
	// TaskDuesScan finds overdue admissions and queues payment reminders.
	TaskDuesScan = "dues:scan"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// ReconcilePayload configures one reconcile run.
type ReconcilePayload struct {
	Repair bool `json:"repair"`
}

// NewReconcileTask constructs an Asynq task for a ledger reconcile run.
func NewReconcileTask(repair bool) (*asynq.Task, error) {
	data, err := json.Marshal(ReconcilePayload{Repair: repair})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, data), nil
}

// DuesScanPayload configures one dues scan run.
type DuesScanPayload struct {
	From string `json:"from"`
}

// NewDuesScanTask constructs an Asynq task for an overdue-balance scan.
func NewDuesScanTask(from string) (*asynq.Task, error) {
	data, err := json.Marshal(DuesScanPayload{From: from})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDuesScan, data), nil
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
// TODO: deliver through the campus SMTP relay once its credentials land.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	slog.Default().Info("send email",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject),
	)
	return nil
}
