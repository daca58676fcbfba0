// Package redis, go-redis client'ı üzerine uygulamanın ihtiyaç duyduğu
// operasyonları saran ince bir katmandır.
//
// Neden Redis?
// SQLite tek process'in diskidir — sayaçlar ve kısa ömürlü veriler için
// uygun değil. Redis üç işi üstlenir:
//   - Rate limit sayaçları (atomik INCR + TTL)
//   - Response cache (GET endpoint'lerinin JSON çıktısı)
//   - Doğrulama kodları (email verify / password reset, 15 dk TTL)
//
// Tüm key'ler "vita:" prefix'i ile yazılır — aynı Redis instance'ını
// paylaşan başka uygulamalarla çakışmayı önler.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "vita:"

// ErrNotFound, istenen key Redis'te yoksa döner.
// go-redis'in redis.Nil sentinel'ini dışarı sızdırmamak için sarıyoruz —
// çağıran katmanlar go-redis'e import bağımlılığı almasın.
var ErrNotFound = errors.New("redis: key not found")

// Client, uygulamanın Redis bağlantısı.
type Client struct {
	rdb *goredis.Client
}

// New, verilen adrese bağlanan bir Client oluşturur ve PING ile doğrular.
func New(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Bağlantıyı startup'ta doğrula — Redis yoksa uygulama hiç açılmasın,
	// ilk request'te patlamasın.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient, hazır bir go-redis client'ı sarar.
// Testlerde miniredis ile kullanılır.
func NewFromClient(rdb *goredis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close, bağlantı havuzunu kapatır.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping, health check için bağlantıyı yoklar.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Set, key'e TTL ile değer yazar. ttl=0 → kalıcı.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// Get, key'in değerini okur. Key yoksa ErrNotFound döner.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete, verilen key'leri siler. Olmayan key hata değildir.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return c.rdb.Del(ctx, prefixed...).Err()
}

// TTL, key'in kalan yaşam süresini döner. Key yoksa ErrNotFound.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := c.rdb.TTL(ctx, keyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	// Redis TTL: -2 → key yok, -1 → TTL'siz key
	if d == -2*time.Nanosecond {
		return 0, ErrNotFound
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// IncrementWithWindow, fixed-window rate limit sayacının çekirdek operasyonu.
//
// INCR atomiktir: iki eşzamanlı request aynı sayıyı alamaz. Sayaç 1'e
// yeni çıktıysa (pencerenin ilk isteği) TTL'i o anda set ederiz —
// böylece pencere ilk istekle başlar ve TTL dolunca key kendiliğinden
// silinir, temizlik job'ına gerek kalmaz.
//
// Dönen değer: pencere içindeki güncel istek sayısı.
func (c *Client) IncrementWithWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	full := keyPrefix + key
	count, err := c.rdb.Incr(ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, full, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// DeleteByPattern, pattern'e uyan tüm key'leri SCAN ile bulup siler.
// KEYS komutu production'da Redis'i bloklar — SCAN iteratif çalışır.
// Cache invalidation için kullanılır (ör: "cache:/api/countries*").
func (c *Client) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	var deleted int
	iter := c.rdb.Scan(ctx, 0, keyPrefix+pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, nil
}
