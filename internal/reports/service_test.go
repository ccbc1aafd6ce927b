package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	dues []PendingDue
}

func (r *memoryRepo) PendingDues(ctx context.Context) ([]PendingDue, error) {
	out := make([]PendingDue, len(r.dues))
	copy(out, r.dues)
	return out, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dateOf(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestPendingDuesBuckets(t *testing.T) {
	asOf, _ := time.Parse("2006-01-02", "2026-08-01")
	repo := &memoryRepo{dues: []PendingDue{
		{AdmissionID: 1, StudentName: "Future", Balance: dec("100"), NextDueDate: dateOf("2026-08-15")},
		{AdmissionID: 2, StudentName: "Today", Balance: dec("200"), NextDueDate: dateOf("2026-08-01")},
		{AdmissionID: 3, StudentName: "Month", Balance: dec("300"), NextDueDate: dateOf("2026-07-10")},
		{AdmissionID: 4, StudentName: "TwoMonths", Balance: dec("400"), NextDueDate: dateOf("2026-06-10")},
		{AdmissionID: 5, StudentName: "Quarter", Balance: dec("500"), NextDueDate: dateOf("2026-05-10")},
		{AdmissionID: 6, StudentName: "Stale", Balance: dec("600"), NextDueDate: dateOf("2026-01-10")},
		{AdmissionID: 7, StudentName: "Undated", Balance: dec("700")},
	}}
	svc := NewService(repo)

	report, err := svc.PendingDues(context.Background(), asOf)
	require.NoError(t, err)
	require.True(t, report.Total.Equal(dec("2800")))

	byBucket := map[string]AgingBucket{}
	for _, b := range report.Buckets {
		byBucket[b.Bucket] = b
	}
	require.True(t, byBucket[BucketCurrent].Amount.Equal(dec("300")), "future and today are current")
	require.Equal(t, 2, byBucket[BucketCurrent].Count)
	require.True(t, byBucket[Bucket30].Amount.Equal(dec("300")))
	require.True(t, byBucket[Bucket60].Amount.Equal(dec("400")))
	require.True(t, byBucket[Bucket90].Amount.Equal(dec("500")))
	require.True(t, byBucket[BucketOver120].Amount.Equal(dec("600")))
	require.True(t, byBucket[BucketUndated].Amount.Equal(dec("700")))

	require.Equal(t, BucketCurrent, report.Dues[0].Bucket)
	require.Equal(t, BucketUndated, report.Dues[6].Bucket)
}

func TestPendingDuesBucketBoundaries(t *testing.T) {
	asOf, _ := time.Parse("2006-01-02", "2026-08-01")

	require.Equal(t, BucketCurrent, bucketFor(dateOf("2026-08-01"), asOf))
	require.Equal(t, Bucket30, bucketFor(dateOf("2026-07-31"), asOf))
	require.Equal(t, Bucket30, bucketFor(dateOf("2026-07-02"), asOf))
	require.Equal(t, Bucket60, bucketFor(dateOf("2026-07-01"), asOf))
	require.Equal(t, Bucket120, bucketFor(dateOf("2026-04-03"), asOf))
	require.Equal(t, BucketOver120, bucketFor(dateOf("2026-04-02"), asOf))
	require.Equal(t, BucketUndated, bucketFor(nil, asOf))
}

func TestPendingDuesEmptyReport(t *testing.T) {
	svc := NewService(&memoryRepo{})

	report, err := svc.PendingDues(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Empty(t, report.Dues)
	require.Empty(t, report.Buckets)
	require.True(t, report.Total.Equal(decimal.Zero))
	require.False(t, report.AsOf.IsZero())
}

func TestWritePendingDuesCSV(t *testing.T) {
	asOf, _ := time.Parse("2006-01-02", "2026-08-01")
	svc := NewService(&memoryRepo{dues: []PendingDue{
		{AdmissionID: 1, StudentName: "Asha Verma", CourseCode: "DIP-CS", Balance: dec("8000"), NextDueDate: dateOf("2026-07-10")},
	}})

	report, err := svc.PendingDues(context.Background(), asOf)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePendingDuesCSV(&buf, report))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Admission ID,Student,Course,Balance,Next Due Date,Bucket"))
	require.Contains(t, out, "1,Asha Verma,DIP-CS,8000,2026-07-10,1-30")
	require.Contains(t, out, "Bucket,Count,Amount")
	require.Contains(t, out, "1-30,1,8000")
}
