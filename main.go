// Package main, vita backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//   1.  Config'i yükle
//   2.  Database'i başlat (embedded migration'lar ile)
//   3.  Redis'e bağlan
//   4.  Email sender ve AI client'ı oluştur
//   5.  Repository'leri oluştur (DB bağlantısı ile)
//   6.  WebSocket Hub'ı başlat
//   7.  Service'leri oluştur (repository'ler + redis + email + AI ile)
//   8.  Handler'ları oluştur (service'ler ile)
//   9.  Middleware'ları oluştur (service + repo + redis ile)
//  10.  HTTP router'ı kur, route'ları rate limit kurallarıyla bağla
//  11.  CORS yapılandır
//  12.  HTTP Server'ı başlat
//  13.  Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/cors"

	"github.com/akinalp/vita/config"
	"github.com/akinalp/vita/database"
	"github.com/akinalp/vita/handlers"
	"github.com/akinalp/vita/middleware"
	"github.com/akinalp/vita/models"
	"github.com/akinalp/vita/pkg/ai"
	"github.com/akinalp/vita/pkg/cache"
	"github.com/akinalp/vita/pkg/email"
	"github.com/akinalp/vita/pkg/ratelimit"
	"github.com/akinalp/vita/pkg/redis"
	"github.com/akinalp/vita/pkg/storage"
	"github.com/akinalp/vita/repository"
	"github.com/akinalp/vita/services"
	"github.com/akinalp/vita/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] vita server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	//
	// Migration'lar binary'ye gömülüdür (embed.FS) — deploy edilen binary
	// yanında SQL dosyası taşımaz. fs.Sub ile "migrations/" alt dizinine iner.
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to load embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Redis ───
	//
	// Rate limiting, response cache, doğrulama kodları ve refresh token
	// cache'i aynı instance'ı paylaşır — anahtarlar prefix'lerle ayrılır.
	rdb, err := redis.New(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("[main] failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	// ─── 4. Email + AI ───
	//
	// RESEND_API_KEY boşsa sender nil kalır — doğrulama kodları email yerine
	// server loguna yazılır (development kolaylığı).
	var sender email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail)
	} else {
		log.Println("[main] RESEND_API_KEY not set, verification codes will be logged instead of emailed")
	}

	agent := ai.NewClient(cfg.AI.APIKey)

	// Obje deposu (MinIO/S3 uyumlu) — chat dosya ekleri için.
	// STORAGE_ENDPOINT boşsa bağlanılmaz; upload endpoint'leri client'a
	// "not enabled" döner (email'deki nil sender davranışıyla aynı kalıp).
	var store storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		mc, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Fatalf("[main] failed to create storage client: %v", err)
		}
		store, err = storage.NewClient(context.Background(), mc, cfg.Storage.Bucket)
		if err != nil {
			log.Fatalf("[main] failed to initialize storage bucket: %v", err)
		}
	} else {
		log.Println("[main] STORAGE_ENDPOINT not set, chat file uploads disabled")
	}

	// ─── 5. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	tokenRepo := repository.NewSQLiteRefreshTokenRepo(db.Conn)
	threadRepo := repository.NewSQLiteThreadRepo(db.Conn)
	messageRepo := repository.NewSQLiteMessageRepo(db.Conn)
	summaryRepo := repository.NewSQLiteSummaryRepo(db.Conn)
	moderationRepo := repository.NewSQLiteModerationRepo(db.Conn)
	mediaRepo := repository.NewSQLiteMediaRepo(db.Conn)

	// ─── 6. WebSocket Hub ───
	//
	// `go hub.Run()` ayrı bir goroutine'de event loop başlatır:
	// register/unregister channel'larını dinler ve client map'ini günceller.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 7. Service Layer ───
	//
	// userCache, auth middleware ile user service arasında PAYLAŞILIR:
	// middleware her request'te kullanıcıyı buradan okur, profil
	// güncellemeleri cache'i invalidate eder.
	userCache := cache.New[string, *models.User](30*time.Second, time.Minute)
	defer userCache.Close()

	authService := services.NewAuthService(
		db.Conn,
		userRepo,
		repository.NewSQLiteRefreshTokenRepo, // rotation tx-scoped repo ile çalışır
		rdb,
		sender,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	userService := services.NewUserService(userRepo, tokenRepo, userCache)
	countryService := services.NewCountryService()
	chatService := services.NewChatService(
		threadRepo,
		messageRepo,
		summaryRepo,
		moderationRepo,
		agent,
		cfg.AI.Model,
		cfg.AI.ModerationEnabled,
	)
	mediaService := services.NewMediaService(mediaRepo, store, cfg.Storage.MaxFileSize)

	// Süresi dolmuş refresh token'ları periyodik temizle.
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	services.StartTokenCleanup(cleanupCtx, authService, 6*time.Hour)

	// ─── 8. Handler Layer ───
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	countryHandler := handlers.NewCountryHandler(countryService)
	healthHandler := handlers.NewHealthHandler(db.Conn, rdb)
	wsHandler := ws.NewHandler(hub, authService, chatService, cfg.HTTP.AllowedOrigins)

	// ─── 9. Middleware ───
	authMiddleware := middleware.NewAuthMiddleware(authService, userRepo, userCache)
	rateLimiter := middleware.NewRateLimitMiddleware(ratelimit.New(rdb))
	responseCache := middleware.NewResponseCacheMiddleware(rdb)
	secureHeaders := middleware.SecurityHeaders(cfg.HTTP.MaxBodySize)

	// ─── 10. HTTP Router ───
	//
	// Route kalıbı: mux.Handle("METHOD /path", middleware(handler))
	// Go 1.22+ ServeMux method + path pattern destekler — ayrı router
	// kütüphanesine gerek yok.
	mux := http.NewServeMux()

	// Health check — load balancer/monitoring için, rate limit dışında
	mux.HandleFunc("GET /api/health", healthHandler.Health)

	// Auth — public endpoint'ler, her biri kendi rate limit kuralıyla.
	// Brute-force hedefi olan endpoint'ler (login, register, reset) dar
	// limitli; refresh normal kullanımda sık çağrıldığı için daha geniş.
	mux.Handle("POST /api/auth/register", rateLimiter.Limit(ratelimit.RegisterRule)(
		http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/verify-email", rateLimiter.Limit(ratelimit.VerifyRule)(
		http.HandlerFunc(authHandler.VerifyEmail)))
	mux.Handle("POST /api/auth/resend-code", rateLimiter.Limit(ratelimit.ResetRule)(
		http.HandlerFunc(authHandler.ResendCode)))
	mux.Handle("POST /api/auth/login", rateLimiter.Limit(ratelimit.LoginRule)(
		http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/refresh", rateLimiter.Limit(ratelimit.RefreshRule)(
		http.HandlerFunc(authHandler.Refresh)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("POST /api/auth/logout-all", authMiddleware.Require(
		http.HandlerFunc(authHandler.LogoutAll)))

	// Password reset — iki adımlı akış: kod iste → kodu doğrula (reset
	// token al) → yeni şifreyi reset token ile gönder.
	mux.Handle("POST /api/auth/forgot-password", rateLimiter.Limit(ratelimit.ResetRule)(
		http.HandlerFunc(authHandler.ForgotPassword)))
	mux.Handle("POST /api/auth/verify-reset-code", rateLimiter.Limit(ratelimit.VerifyRule)(
		http.HandlerFunc(authHandler.VerifyResetCode)))
	mux.Handle("POST /api/auth/reset-password", rateLimiter.Limit(ratelimit.ResetRule)(
		http.HandlerFunc(authHandler.ResetPassword)))

	// Users — kullanıcının kendi hesabı
	mux.Handle("GET /api/users/me", authMiddleware.Require(
		http.HandlerFunc(userHandler.Me)))
	mux.Handle("PATCH /api/users/me", authMiddleware.Require(
		http.HandlerFunc(userHandler.UpdateMe)))
	mux.Handle("POST /api/users/me/change-password", authMiddleware.Require(
		http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("POST /api/users/me/deactivate", authMiddleware.Require(
		http.HandlerFunc(userHandler.DeactivateMe)))

	// Chat — thread yönetimi REST üzerinden, mesaj akışı WebSocket üzerinden
	mux.Handle("GET /api/chat/threads", authMiddleware.Require(
		http.HandlerFunc(chatHandler.ListThreads)))
	mux.Handle("GET /api/chat/threads/{id}", authMiddleware.Require(
		http.HandlerFunc(chatHandler.GetThread)))
	mux.Handle("PATCH /api/chat/threads/{id}/archive", authMiddleware.Require(
		http.HandlerFunc(chatHandler.ArchiveThread)))
	mux.Handle("DELETE /api/chat/threads/{id}", authMiddleware.Require(
		http.HandlerFunc(chatHandler.DeleteThread)))

	// Chat dosya ekleri — depo private'tır, içerik public URL yerine
	// ownership kontrolü yapan download endpoint'inden okunur.
	mux.Handle("POST /api/chat/uploads", authMiddleware.Require(
		http.HandlerFunc(mediaHandler.Upload)))
	mux.Handle("GET /api/chat/uploads", authMiddleware.Require(
		http.HandlerFunc(mediaHandler.List)))
	mux.Handle("GET /api/chat/uploads/{id}/content", authMiddleware.Require(
		http.HandlerFunc(mediaHandler.Download)))
	mux.Handle("DELETE /api/chat/uploads/{id}", authMiddleware.Require(
		http.HandlerFunc(mediaHandler.Delete)))

	// Countries — statik referans verisi, response cache ile servis edilir.
	// Liste asla değişmediği için 1 saatlik TTL cömertçe yeterli.
	mux.Handle("GET /api/countries", responseCache.Cache(time.Hour)(
		http.HandlerFunc(countryHandler.List)))

	// WebSocket — token query parameter ile authenticate edilir
	//
	// Neden auth middleware kullanmıyoruz?
	// WebSocket upgrade sırasında tarayıcılar custom HTTP header gönderemez.
	// Bu yüzden JWT token URL query parameter olarak gönderilir:
	//   ws://server/ws/chat?token=JWT_TOKEN
	// WS handler kendi içinde token doğrulaması yapar.
	mux.HandleFunc("GET /ws/chat", wsHandler.HandleConnection)

	// Genel taban limit — endpoint'e özel kural olmayan her şeyi kapsar.
	// Zincir (dıştan içe): logging → security headers → genel rate limit → mux
	root := middleware.RequestLogger(
		secureHeaders(
			rateLimiter.Limit(ratelimit.GeneralRule)(mux)))

	// ─── 11. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Device-Id", "X-Device-Name", "X-No-Cache"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(root)

	// ─── 12. HTTP Server ───
	//
	// WriteTimeout yok: WebSocket bağlantıları saatlerce açık kalır,
	// global write timeout stream'leri keser. HTTP endpoint'lerin yazma
	// süresi zaten kısadır.
	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// ─── 13. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce cleanup goroutine'ini ve WebSocket bağlantılarını durdur,
	// sonra HTTP server'ı kapat — yeni request kabul etmeyi durdurur,
	// mevcut request'lerin bitmesini bekler (5sn timeout).
	cleanupCancel()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
