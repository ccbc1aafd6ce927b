package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course is the sellable unit of the campus catalog. Its fee components form
// the schedule every admission under it is billed against. Absent components
// mean the course simply does not charge that fee.
type Course struct {
	ID              int64               `json:"id"`
	Code            string              `json:"code"`
	Name            string              `json:"name"`
	DurationMonths  int                 `json:"duration_months"`
	AdmissionFee    decimal.NullDecimal `json:"admission_fee"`
	CourseFee       decimal.NullDecimal `json:"course_fee"`
	SemesterFee     decimal.NullDecimal `json:"semester_fee"`
	AgentCommission decimal.NullDecimal `json:"agent_commission"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ListFilters narrows and orders course listings.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}
