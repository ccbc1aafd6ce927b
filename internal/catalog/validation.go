package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError carries a field-level problem with a course definition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog: %s %s", e.Field, e.Reason)
}

// validateCourse enforces the definition-time rules: code and name are
// required, duration is positive and every fee component that is present is
// non-negative. Negative fee components are rejected here so the ledger can
// assume schedules never carry them.
func validateCourse(c Course) error {
	if strings.TrimSpace(c.Code) == "" {
		return &ValidationError{Field: "code", Reason: "is required"}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if c.DurationMonths <= 0 {
		return &ValidationError{Field: "duration_months", Reason: "must be positive"}
	}
	for _, comp := range []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"admission_fee", c.AdmissionFee},
		{"course_fee", c.CourseFee},
		{"semester_fee", c.SemesterFee},
		{"agent_commission", c.AgentCommission},
	} {
		if comp.value.Valid && comp.value.Decimal.IsNegative() {
			return &ValidationError{Field: comp.name, Reason: "must not be negative"}
		}
	}
	return nil
}
