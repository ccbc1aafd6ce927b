package admissions

import (
	"time"

	"github.com/shopspring/decimal"
)

// Admission enrols a student into a course. Balance and NextDueDate are
// derived fields owned by the receipt ledger once payments start arriving;
// this module only seeds them at enrolment time.
type Admission struct {
	ID           int64           `json:"id"`
	StudentName  string          `json:"student_name"`
	StudentEmail string          `json:"student_email,omitempty"`
	StudentPhone string          `json:"student_phone,omitempty"`
	CourseID     int64           `json:"course_id"`
	Balance      decimal.Decimal `json:"balance"`
	NextDueDate  *time.Time      `json:"next_due_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateInput carries the enrolment request.
type CreateInput struct {
	StudentName  string
	StudentEmail string
	StudentPhone string
	CourseID     int64
	NextDueDate  *time.Time
}

// ListFilters narrows admission listings. PendingOnly keeps rows with a
// positive balance.
type ListFilters struct {
	Page        int
	Limit       int
	Search      string
	CourseID    int64
	PendingOnly bool
}
