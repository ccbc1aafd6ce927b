package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func TestTotalFeeSumsComponents(t *testing.T) {
	sched := FeeSchedule{
		AdmissionFee: nullDec("2000"),
		CourseFee:    nullDec("8000"),
		SemesterFee:  nullDec("500"),
	}
	require.True(t, TotalFee(sched).Equal(dec("10500")))
}

func TestTotalFeeAbsentComponentsDefaultZero(t *testing.T) {
	sched := FeeSchedule{CourseFee: nullDec("8000")}
	require.True(t, TotalFee(sched).Equal(dec("8000")))

	require.True(t, TotalFee(FeeSchedule{}).Equal(decimal.Zero))
}

func TestTotalFeeSubtractsAgentCommission(t *testing.T) {
	sched := FeeSchedule{
		CourseFee:       nullDec("8000"),
		AgentCommission: nullDec("1000"),
	}
	require.True(t, TotalFee(sched).Equal(dec("7000")))
}

func TestTotalFeeUnclampedWhenCommissionExceedsFees(t *testing.T) {
	sched := FeeSchedule{
		CourseFee:       nullDec("1000"),
		AgentCommission: nullDec("1500"),
	}
	require.True(t, TotalFee(sched).Equal(dec("-500")))
}

func TestTotalPaidSumsReceipts(t *testing.T) {
	receipts := []Receipt{
		{Amount: dec("2000")},
		{Amount: dec("1500.50")},
		{Amount: dec("499.50")},
	}
	require.True(t, TotalPaid(receipts).Equal(dec("4000")))
	require.True(t, TotalPaid(nil).Equal(decimal.Zero))
}

func TestTotalPaidOrderIrrelevant(t *testing.T) {
	a := []Receipt{{Amount: dec("10")}, {Amount: dec("20")}, {Amount: dec("30")}}
	b := []Receipt{{Amount: dec("30")}, {Amount: dec("10")}, {Amount: dec("20")}}
	require.True(t, TotalPaid(a).Equal(TotalPaid(b)))
}

func TestOutstandingBalance(t *testing.T) {
	require.True(t, OutstandingBalance(dec("10000"), dec("2000")).Equal(dec("8000")))
	require.True(t, OutstandingBalance(dec("1000"), dec("1000")).Equal(decimal.Zero))
}

func TestOutstandingBalanceClampsOverpayment(t *testing.T) {
	require.True(t, OutstandingBalance(dec("1000"), dec("1200")).Equal(decimal.Zero))
}
