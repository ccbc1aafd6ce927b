package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule identifies which admission rule a receipt violated.
type Rule string

const (
	RuleAmountPositive        Rule = "AMOUNT_POSITIVE"
	RuleBalanceCap            Rule = "BALANCE_CAP"
	RuleTransactionIDRequired Rule = "TRANSACTION_ID_REQUIRED"
	RuleAdmissionFeeCap       Rule = "ADMISSION_FEE_CAP"
)

// ValidationError reports a rejected receipt along with the violated rule and
// the bound it exceeded. No state change accompanies it.
type ValidationError struct {
	Rule  Rule
	Bound decimal.Decimal
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleAmountPositive:
		return "ledger: amount collected must be positive"
	case RuleBalanceCap:
		return fmt.Sprintf("ledger: amount collected exceeds outstanding balance of %s", e.Bound)
	case RuleTransactionIDRequired:
		return "ledger: transaction id required for non-cash payment mode"
	case RuleAdmissionFeeCap:
		return fmt.Sprintf("ledger: amount collected exceeds admission fee of %s", e.Bound)
	default:
		return "ledger: receipt validation failed"
	}
}

// ValidateReceipt checks a proposed receipt against the balance computed
// before admitting it. The balance cap and mode rules apply at create time
// only; updates re-check positivity alone.
func ValidateReceipt(in CreateReceiptInput, currentBalance, admissionFee decimal.Decimal) error {
	if !in.Amount.IsPositive() {
		return &ValidationError{Rule: RuleAmountPositive}
	}
	if in.Amount.GreaterThan(currentBalance) {
		return &ValidationError{Rule: RuleBalanceCap, Bound: currentBalance}
	}
	if in.PaymentMode != PaymentModeCash && in.TransactionID == "" {
		return &ValidationError{Rule: RuleTransactionIDRequired}
	}
	if in.CollectedTowards == FeeAdmission && in.Amount.GreaterThan(admissionFee) {
		return &ValidationError{Rule: RuleAdmissionFeeCap, Bound: admissionFee}
	}
	return nil
}
