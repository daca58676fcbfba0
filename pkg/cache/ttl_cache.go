// Package cache — Generic in-memory TTL cache.
//
// TTLCache, süresi dolunca okunamaz hale gelen kayıtları tutan
// thread-safe, generic bir yapıdır.
//
// Kullanım alanları:
// - Auth middleware'de user lookup cache'i: her request'te JWT'deki
//   user_id için DB'ye gitmek yerine kullanıcı kaydı 30 sn bellekte tutulur.
//   (is_active kontrolü bu yüzden en fazla 30 sn gecikmeli etki eder —
//   kabul edilebilir bir trade-off.)
// - Ülke listesi gibi nadiren değişen küçük veriler.
//
// Neden Redis değil?
// Bu cache process-local ve çok sıcak — network round-trip bile pahalı.
// Paylaşılması gereken veriler (rate limit, response cache) pkg/redis'te yaşar.
//
// Thread safety: sync.RWMutex — birden fazla goroutine aynı anda okuyabilir,
// yazma sırasında tüm erişim bloklanır.
package cache

import (
	"sync"
	"time"
)

// entry, cache'teki tek bir kayıt.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache, generic in-memory TTL cache.
//
//	c := cache.New[string, *models.User](30*time.Second, 5*time.Minute)
//	c.Set("user-id", u)
//	u, ok := c.Get("user-id")
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	// Close() çağrıldığında periyodik temizleme goroutine'i durur.
	stopCleanup chan struct{}
}

// New, cache'i oluşturur ve periyodik temizleme goroutine'ini başlatır.
//
// ttl: her entry'nin yaşam süresi.
// cleanupInterval: süresi dolan entry'lerin map'ten fiziksel silinme sıklığı.
// Get zaten stale entry döndürmez; cleanup sadece belleği geri kazanır.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()

	return c
}

// Get, cache'ten okur. Key yoksa veya süresi dolmuşsa (zero, false) döner.
// Süresi dolan entry burada silinmez — Get'i RLock ile hızlı tutarız,
// fiziksel silmeyi periyodik cleanup yapar.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, cache'e TTL ile yazar.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete, key'i cache'ten siler.
// Kullanım: profil güncellemesi veya deaktivasyon sonrası kullanıcıyı
// invalidate etmek — bir sonraki request taze kaydı DB'den çeker.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear, tüm cache'i boşaltır.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Len, cache'teki toplam entry sayısını döner (süresi dolmuşlar dahil).
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close, temizleme goroutine'ini durdurur (goroutine leak önleme).
func (c *TTLCache[K, V]) Close() {
	close(c.stopCleanup)
}

func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
