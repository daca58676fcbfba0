package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", "v1", time.Minute))

	val, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)

	require.NoError(t, c.Delete(ctx, "k1"))
	_, err = c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Olmayan key'i silmek hata değil
	assert.NoError(t, c.Delete(ctx, "ghost"))
	assert.NoError(t, c.Delete(ctx))
}

func TestKeysArePrefixed(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", "v1", 0))

	// Paylaşılan instance'ta çakışmayı önleyen uygulama prefix'i
	assert.True(t, mr.Exists("vita:k1"))
	assert.False(t, mr.Exists("k1"))
}

func TestTTLStates(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	// Key yok
	_, err := c.TTL(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// TTL'siz key → 0, hata yok
	require.NoError(t, c.Set(ctx, "forever", "v", 0))
	d, err := c.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)

	// TTL'li key
	require.NoError(t, c.Set(ctx, "temp", "v", time.Minute))
	d, err = c.TTL(ctx, "temp")
	require.NoError(t, err)
	assert.Greater(t, d, 50*time.Second)
}

func TestIncrementWithWindow(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, err := c.IncrementWithWindow(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	// Pencere dolunca sayaç sıfırdan başlar
	mr.FastForward(61 * time.Second)
	count, err := c.IncrementWithWindow(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteByPattern(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "cache:/api/countries", "x", 0))
	require.NoError(t, c.Set(ctx, "cache:/api/countries?x=1", "y", 0))
	require.NoError(t, c.Set(ctx, "cache:/api/other", "z", 0))

	deleted, err := c.DeleteByPattern(ctx, "cache:/api/countries*")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = c.Get(ctx, "cache:/api/other")
	assert.NoError(t, err)
}
