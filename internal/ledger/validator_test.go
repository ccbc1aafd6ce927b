package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateReceiptRejectsNonPositiveAmount(t *testing.T) {
	in := CreateReceiptInput{Amount: dec("0"), PaymentMode: PaymentModeCash}
	err := ValidateReceipt(in, dec("1000"), dec("500"))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, RuleAmountPositive, verr.Rule)
}

func TestValidateReceiptRejectsAmountAboveBalance(t *testing.T) {
	in := CreateReceiptInput{Amount: dec("600"), PaymentMode: PaymentModeCash}
	err := ValidateReceipt(in, dec("500"), dec("2000"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, RuleBalanceCap, verr.Rule)
	require.True(t, verr.Bound.Equal(dec("500")))
}

func TestValidateReceiptAllowsAmountEqualToBalance(t *testing.T) {
	in := CreateReceiptInput{Amount: dec("500"), PaymentMode: PaymentModeCash}
	require.NoError(t, ValidateReceipt(in, dec("500"), dec("2000")))
}

func TestValidateReceiptNonCashRequiresTransactionID(t *testing.T) {
	in := CreateReceiptInput{Amount: dec("100"), PaymentMode: "UPI"}
	err := ValidateReceipt(in, dec("1000"), dec("2000"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, RuleTransactionIDRequired, verr.Rule)

	in.TransactionID = "UPI-12345"
	require.NoError(t, ValidateReceipt(in, dec("1000"), dec("2000")))
}

func TestValidateReceiptCashNeedsNoTransactionID(t *testing.T) {
	in := CreateReceiptInput{Amount: dec("100"), PaymentMode: PaymentModeCash}
	require.NoError(t, ValidateReceipt(in, dec("1000"), dec("2000")))
}

func TestValidateReceiptAdmissionFeeCap(t *testing.T) {
	in := CreateReceiptInput{
		Amount:           dec("2500"),
		PaymentMode:      PaymentModeCash,
		CollectedTowards: FeeAdmission,
	}
	err := ValidateReceipt(in, dec("10000"), dec("2000"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, RuleAdmissionFeeCap, verr.Rule)
	require.True(t, verr.Bound.Equal(dec("2000")))

	in.CollectedTowards = FeeCourse
	require.NoError(t, ValidateReceipt(in, dec("10000"), dec("2000")))
}
