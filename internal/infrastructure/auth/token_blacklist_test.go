package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/corsair/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	ctx := context.Background()
	blacklist := auth.NewInMemoryTokenBlacklist()

	t.Run("revoked jti is reported", func(t *testing.T) {
		require.NoError(t, blacklist.Revoke(ctx, "jti-logout", time.Hour))

		revoked, err := blacklist.IsRevoked(ctx, "jti-logout")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("unknown jti is not", func(t *testing.T) {
		revoked, err := blacklist.IsRevoked(ctx, "jti-unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("entry lapses with its ttl", func(t *testing.T) {
		require.NoError(t, blacklist.Revoke(ctx, "jti-short", time.Millisecond))
		time.Sleep(10 * time.Millisecond)

		revoked, err := blacklist.IsRevoked(ctx, "jti-short")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revocations are independent", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			require.NoError(t, blacklist.Revoke(ctx, fmt.Sprintf("jti-%d", i), time.Hour))
		}
		for i := 0; i < 10; i++ {
			revoked, err := blacklist.IsRevoked(ctx, fmt.Sprintf("jti-%d", i))
			require.NoError(t, err)
			assert.True(t, revoked, "jti-%d", i)
		}
	})
}

func TestInMemoryTokenBlacklist_RevokeOwner(t *testing.T) {
	ctx := context.Background()
	blacklist := auth.NewInMemoryTokenBlacklist()

	issuedBefore := time.Now().Add(-time.Hour)

	t.Run("nothing revoked before the cutoff is set", func(t *testing.T) {
		revoked, err := blacklist.IsOwnerRevoked(ctx, "owner-1", issuedBefore)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("tokens issued before the cutoff are revoked", func(t *testing.T) {
		require.NoError(t, blacklist.RevokeOwner(ctx, "owner-1", time.Hour))

		revoked, err := blacklist.IsOwnerRevoked(ctx, "owner-1", issuedBefore)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("tokens issued after the cutoff survive", func(t *testing.T) {
		issuedAfter := time.Now().Add(time.Second)
		time.Sleep(2 * time.Millisecond)

		revoked, err := blacklist.IsOwnerRevoked(ctx, "owner-1", issuedAfter)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("other owners are untouched", func(t *testing.T) {
		revoked, err := blacklist.IsOwnerRevoked(ctx, "owner-2", issuedBefore)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
