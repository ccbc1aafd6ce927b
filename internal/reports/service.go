package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Service computes the reporting views.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PendingDues buckets every admission with an open balance by how overdue its
// next due date is relative to asOf. Admissions whose due date was cleared
// (receipt deletions do this) land in the undated bucket so they still show
// up for follow-up.
func (s *Service) PendingDues(ctx context.Context, asOf time.Time) (*PendingDuesReport, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = asOf.Truncate(24 * time.Hour)

	dues, err := s.repo.PendingDues(ctx)
	if err != nil {
		return nil, err
	}

	byBucket := make(map[string]*AgingBucket)
	total := decimal.Zero
	for i := range dues {
		dues[i].Bucket = bucketFor(dues[i].NextDueDate, asOf)
		b, ok := byBucket[dues[i].Bucket]
		if !ok {
			b = &AgingBucket{Bucket: dues[i].Bucket}
			byBucket[dues[i].Bucket] = b
		}
		b.Count++
		b.Amount = b.Amount.Add(dues[i].Balance)
		total = total.Add(dues[i].Balance)
	}

	buckets := make([]AgingBucket, 0, len(byBucket))
	for _, name := range bucketOrder {
		if b, ok := byBucket[name]; ok {
			buckets = append(buckets, *b)
		}
	}

	return &PendingDuesReport{
		AsOf:    asOf,
		Dues:    dues,
		Buckets: buckets,
		Total:   total,
	}, nil
}

var bucketOrder = []string{
	BucketCurrent, Bucket30, Bucket60, Bucket90, Bucket120, BucketOver120, BucketUndated,
}

func bucketFor(dueDate *time.Time, asOf time.Time) string {
	if dueDate == nil {
		return BucketUndated
	}
	days := int(asOf.Sub(dueDate.Truncate(24*time.Hour)).Hours() / 24)
	switch {
	case days <= 0:
		return BucketCurrent
	case days <= 30:
		return Bucket30
	case days <= 60:
		return Bucket60
	case days <= 90:
		return Bucket90
	case days <= 120:
		return Bucket120
	default:
		return BucketOver120
	}
}
