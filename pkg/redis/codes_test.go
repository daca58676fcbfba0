package redis

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewFromClient(rdb), mr
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 20; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestVerifyCodeSingleUse(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.StoreCode(ctx, "verify", "a@b.com", "123456"))

	// Doğru kod — başarılı ve kod yakıldı
	require.NoError(t, c.VerifyCode(ctx, "verify", "a@b.com", "123456"))
	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "123456"), ErrCodeNotFound)
}

func TestVerifyCodeMismatchAndBurn(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.StoreCode(ctx, "verify", "a@b.com", "123456"))

	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "000000"), ErrCodeMismatch)
	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "111111"), ErrCodeMismatch)

	// 3. yanlış deneme kodu yakar
	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "222222"), ErrTooManyAttempts)

	// Doğru kod bile artık işe yaramaz
	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "123456"), ErrCodeNotFound)
}

func TestVerifyCodeExpires(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.StoreCode(ctx, "reset", "a@b.com", "123456"))

	mr.FastForward(16 * time.Minute)
	assert.ErrorIs(t, c.VerifyCode(ctx, "reset", "a@b.com", "123456"), ErrCodeNotFound)
}

func TestStoreCodeResetsAttempts(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.StoreCode(ctx, "verify", "a@b.com", "123456"))
	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "000000"), ErrCodeMismatch)
	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "000000"), ErrCodeMismatch)

	// Yeni kod eski deneme sayacını sıfırlar
	require.NoError(t, c.StoreCode(ctx, "verify", "a@b.com", "654321"))
	assert.ErrorIs(t, c.VerifyCode(ctx, "verify", "a@b.com", "000000"), ErrCodeMismatch)
	require.NoError(t, c.VerifyCode(ctx, "verify", "a@b.com", "654321"))
}

func TestResendCooldown(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.StoreCode(ctx, "verify", "a@b.com", "123456"))

	remaining, err := c.CheckResendCooldown(ctx, "verify", "a@b.com")
	assert.ErrorIs(t, err, ErrResendCooldown)
	assert.Greater(t, remaining, time.Duration(0))

	mr.FastForward(61 * time.Second)
	_, err = c.CheckResendCooldown(ctx, "verify", "a@b.com")
	assert.NoError(t, err)
}

func TestCodePurposesAreIsolated(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.StoreCode(ctx, "verify", "a@b.com", "111111"))
	require.NoError(t, c.StoreCode(ctx, "reset", "a@b.com", "222222"))

	// verify kodu reset akışında çalışmaz
	assert.ErrorIs(t, c.VerifyCode(ctx, "reset", "a@b.com", "111111"), ErrCodeMismatch)
	require.NoError(t, c.VerifyCode(ctx, "verify", "a@b.com", "111111"))
}

func TestTokenUserCache(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CacheTokenUser(ctx, "somehash", "user-1"))

	userID, err := c.GetCachedTokenUser(ctx, "somehash")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// Rotation sonrası invalidation
	require.NoError(t, c.InvalidateTokenUser(ctx, "somehash"))
	_, err = c.GetCachedTokenUser(ctx, "somehash")
	assert.ErrorIs(t, err, ErrNotFound)

	// TTL ile kendiliğinden düşer
	require.NoError(t, c.CacheTokenUser(ctx, "otherhash", "user-2"))
	mr.FastForward(6 * time.Minute)
	_, err = c.GetCachedTokenUser(ctx, "otherhash")
	assert.ErrorIs(t, err, ErrNotFound)
}
