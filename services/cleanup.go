package services

import (
	"context"
	"log"
	"time"
)

// StartTokenCleanup, süresi dolmuş refresh token'ları periyodik silen
// background job'ı başlatır.
//
// Token'lar expire olduktan sonra grace period boyunca DB'de tutulur
// (geç reuse denemelerini loglayabilmek için) — bu job grace period'u
// da geçmiş satırları fiziksel olarak siler.
//
// ctx iptal edilince goroutine temiz şekilde durur (graceful shutdown).
func StartTokenCleanup(ctx context.Context, auth AuthService, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Printf("[cleanup] token cleanup job started (interval: %s)", interval)

		for {
			select {
			case <-ticker.C:
				deleted, err := auth.CleanupExpiredTokens(ctx)
				if err != nil {
					log.Printf("[cleanup] token cleanup failed: %v", err)
					continue
				}
				if deleted > 0 {
					log.Printf("[cleanup] deleted %d expired refresh tokens", deleted)
				}
			case <-ctx.Done():
				log.Println("[cleanup] token cleanup job stopped")
				return
			}
		}
	}()
}
