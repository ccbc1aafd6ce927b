package ledger

import "github.com/shopspring/decimal"

// TotalFee sums the fee components of a schedule minus the agent commission.
// Absent components count as zero. The result is intentionally unclamped: a
// commission exceeding the fee sum yields a negative total, which callers may
// want to surface as a schedule misconfiguration.
func TotalFee(s FeeSchedule) decimal.Decimal {
	total := componentOrZero(s.AdmissionFee).
		Add(componentOrZero(s.CourseFee)).
		Add(componentOrZero(s.SemesterFee))
	return total.Sub(componentOrZero(s.AgentCommission))
}

// TotalPaid sums amountCollected across the receipt set. Order is irrelevant.
func TotalPaid(receipts []Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, r := range receipts {
		total = total.Add(r.Amount)
	}
	return total
}

// OutstandingBalance is max(0, totalFee - totalPaid). Overpayment is absorbed
// to a zero balance rather than reported as credit.
func OutstandingBalance(totalFee, totalPaid decimal.Decimal) decimal.Decimal {
	balance := totalFee.Sub(totalPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

func componentOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
