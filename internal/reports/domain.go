package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aging bucket labels, ordered from least to most overdue.
const (
	BucketCurrent = "Current"
	Bucket30      = "1-30"
	Bucket60      = "31-60"
	Bucket90      = "61-90"
	Bucket120     = "91-120"
	BucketOver120 = "120+"
	BucketUndated = "No Due Date"
)

// PendingDue is one admission with money still owed.
type PendingDue struct {
	AdmissionID int64           `json:"admission_id"`
	StudentName string          `json:"student_name"`
	CourseCode  string          `json:"course_code"`
	Balance     decimal.Decimal `json:"balance"`
	NextDueDate *time.Time      `json:"next_due_date,omitempty"`
	Bucket      string          `json:"bucket"`
}

// AgingBucket summarises the amount owed inside one overdue window.
type AgingBucket struct {
	Bucket string          `json:"bucket"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// PendingDuesReport is the full aging view as of a reference date.
type PendingDuesReport struct {
	AsOf    time.Time       `json:"as_of"`
	Dues    []PendingDue    `json:"dues"`
	Buckets []AgingBucket   `json:"buckets"`
	Total   decimal.Decimal `json:"total"`
}
