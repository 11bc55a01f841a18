package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/models"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

func record(destination string, expiresAt time.Time) *models.PendingVerification {
	return &models.PendingVerification{
		Destination: destination,
		CodeHash:    utils.HashCode("123456"),
		Channel:     models.ChannelSMS,
		IssuedAt:    time.Now(),
		ExpiresAt:   expiresAt,
		MaxAttempts: 5,
	}
}

func TestMemoryStorePutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVerificationRepository()

	require.NoError(t, store.Put(ctx, record("+15550001111", time.Now().Add(time.Minute))))

	second := record("+15550001111", time.Now().Add(time.Minute))
	second.CodeHash = utils.HashCode("654321")
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, second.CodeHash, got.CodeHash)
}

func TestMemoryStoreLazyExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := &memoryVerificationRepository{
		records: make(map[string]*models.PendingVerification),
		now:     func() time.Time { return now },
	}

	require.NoError(t, store.Put(ctx, record("+15550001111", now.Add(30*time.Second))))

	got, err := store.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Move the clock past expiry; the next read removes the record.
	now = now.Add(31 * time.Second)
	got, err = store.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = store.IncrementAttempts(ctx, "+15550001111")
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestMemoryStoreIncrementAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVerificationRepository()

	_, err := store.IncrementAttempts(ctx, "+15550001111")
	require.ErrorIs(t, err, utils.ErrNotFound)

	require.NoError(t, store.Put(ctx, record("+15550001111", time.Now().Add(time.Minute))))

	n, err := store.IncrementAttempts(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = store.IncrementAttempts(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := store.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, 2, got.Attempts)
}

func TestMemoryStoreDeleteReportsWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVerificationRepository()

	require.NoError(t, store.Put(ctx, record("+15550001111", time.Now().Add(time.Minute))))

	deleted, err := store.Delete(ctx, "+15550001111")
	require.NoError(t, err)
	require.True(t, deleted)

	// Idempotent, but only the first caller saw true.
	deleted, err = store.Delete(ctx, "+15550001111")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestMemoryStoreCleanupExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := &memoryVerificationRepository{
		records: make(map[string]*models.PendingVerification),
		now:     func() time.Time { return now },
	}

	require.NoError(t, store.Put(ctx, record("+15550001111", now.Add(-time.Minute))))
	require.NoError(t, store.Put(ctx, record("+15550002222", now.Add(time.Minute))))

	require.NoError(t, store.CleanupExpired(ctx))

	require.Len(t, store.records, 1)
	_, ok := store.records["+15550002222"]
	require.True(t, ok)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVerificationRepository()

	require.NoError(t, store.Put(ctx, record("+15550001111", time.Now().Add(time.Minute))))

	got, err := store.Get(ctx, "+15550001111")
	require.NoError(t, err)
	got.Attempts = 99

	again, err := store.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, 0, again.Attempts)
}
