// Package ledger keeps an admission's stored balance and next due date
// consistent with its set of payment receipts.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// FeeType enumerates the fee components a receipt can be collected towards.
type FeeType string

const (
	FeeAdmission FeeType = "ADMISSION_FEE"
	FeeCourse    FeeType = "COURSE_FEE"
	FeeSemester  FeeType = "SEMESTER_FEE"
	FeeOther     FeeType = "OTHER"
)

// PaymentModeCash is the only payment mode that does not require a transaction id.
const PaymentModeCash = "CASH"

// Sentinel errors surfaced by the ledger.
var (
	ErrAdmissionNotFound      = errors.New("ledger: admission not found")
	ErrReceiptNotFound        = errors.New("ledger: receipt not found")
	ErrDuplicateReceiptNumber = errors.New("ledger: duplicate receipt number")
)

// FeeSchedule is the course-level fee definition, read-only from the ledger.
type FeeSchedule struct {
	AdmissionFee    decimal.NullDecimal
	CourseFee       decimal.NullDecimal
	SemesterFee     decimal.NullDecimal
	AgentCommission decimal.NullDecimal
}

// Admission is the aggregate root of the fee ledger. Balance and NextDueDate
// are derived from the receipt set; only this package may write them.
type Admission struct {
	ID          int64
	StudentName string
	CourseID    int64
	Balance     decimal.Decimal
	NextDueDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Receipt is a single payment event recorded against an admission.
type Receipt struct {
	ID               int64
	AdmissionID      int64
	Number           string
	Amount           decimal.Decimal
	CollectedTowards FeeType
	PaymentDate      time.Time
	PaymentMode      string
	TransactionID    string
	Notes            string
	CreatedBy        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateReceiptInput describes a proposed receipt.
type CreateReceiptInput struct {
	Number           string
	Amount           decimal.Decimal
	CollectedTowards FeeType
	PaymentDate      time.Time
	PaymentMode      string
	TransactionID    string
	Notes            string
	NextDueDate      *time.Time
	CreatedBy        int64
}

// UpdateReceiptInput carries the subset of receipt fields being changed.
// Nil pointers leave the stored value untouched.
type UpdateReceiptInput struct {
	Amount           *decimal.Decimal
	CollectedTowards *FeeType
	PaymentDate      *time.Time
	PaymentMode      *string
	TransactionID    *string
	Notes            *string
	NextDueDate      *time.Time
	UpdatedBy        int64
}

// FeeDetails is the read model exposed to reporting and UI collaborators.
type FeeDetails struct {
	AdmissionID  int64           `json:"admission_id"`
	TotalFee     decimal.Decimal `json:"total_fee"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Balance      decimal.Decimal `json:"balance"`
	AdmissionFee decimal.Decimal `json:"admission_fee"`
	CourseFee    decimal.Decimal `json:"course_fee"`
	SemesterFee  decimal.Decimal `json:"semester_fee"`
	NextDueDate  *time.Time      `json:"next_due_date"`
}
