package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *FeeDetailsCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFeeDetailsCache(client, time.Minute)
}

func TestFeeDetailsCachePopulatesOnMiss(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	calls := 0
	loader := func(ctx context.Context) (*FeeDetails, error) {
		calls++
		return &FeeDetails{
			AdmissionID: 1,
			TotalFee:    dec("10000"),
			TotalPaid:   dec("2000"),
			Balance:     dec("8000"),
		}, nil
	}

	first, err := cache.Fetch(ctx, 1, loader)
	require.NoError(t, err)
	require.True(t, first.Balance.Equal(dec("8000")))
	require.Equal(t, 1, calls)

	second, err := cache.Fetch(ctx, 1, loader)
	require.NoError(t, err)
	require.True(t, second.Balance.Equal(dec("8000")))
	require.Equal(t, 1, calls, "second fetch must hit the cache")
}

func TestFeeDetailsCacheBumpInvalidates(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	balance := dec("8000")
	calls := 0
	loader := func(ctx context.Context) (*FeeDetails, error) {
		calls++
		return &FeeDetails{AdmissionID: 1, Balance: balance}, nil
	}

	first, err := cache.Fetch(ctx, 1, loader)
	require.NoError(t, err)
	require.True(t, first.Balance.Equal(dec("8000")))

	balance = dec("3000")
	require.NoError(t, cache.Bump(ctx))

	second, err := cache.Fetch(ctx, 1, loader)
	require.NoError(t, err)
	require.True(t, second.Balance.Equal(dec("3000")))
	require.Equal(t, 2, calls)
}

func TestFeeDetailsCacheKeysSeparatedByAdmission(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	loaderFor := func(id int64, bal string) func(context.Context) (*FeeDetails, error) {
		return func(ctx context.Context) (*FeeDetails, error) {
			return &FeeDetails{AdmissionID: id, Balance: dec(bal)}, nil
		}
	}

	a, err := cache.Fetch(ctx, 1, loaderFor(1, "100"))
	require.NoError(t, err)
	b, err := cache.Fetch(ctx, 2, loaderFor(2, "200"))
	require.NoError(t, err)

	require.True(t, a.Balance.Equal(dec("100")))
	require.True(t, b.Balance.Equal(dec("200")))
}

func TestFeeDetailsCacheNilSafe(t *testing.T) {
	ctx := context.Background()
	var cache *FeeDetailsCache

	details, err := cache.Fetch(ctx, 1, func(ctx context.Context) (*FeeDetails, error) {
		return &FeeDetails{AdmissionID: 1, Balance: dec("42")}, nil
	})
	require.NoError(t, err)
	require.True(t, details.Balance.Equal(dec("42")))
	require.NoError(t, cache.Bump(ctx))
}
