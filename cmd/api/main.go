package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/harborview/guestgate/internal/http/handlers/guestauth"
	imw "github.com/harborview/guestgate/internal/http/middleware"
	"github.com/harborview/guestgate/internal/platform/mailer"
	"github.com/harborview/guestgate/internal/repo/postgres"
	"github.com/harborview/guestgate/internal/service"
	"github.com/harborview/guestgate/pkg/config"
	"github.com/harborview/guestgate/pkg/database"
	"github.com/harborview/guestgate/pkg/events"
	"github.com/harborview/guestgate/pkg/logger"
	mw "github.com/harborview/guestgate/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to parse Redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	bus, err := events.NewNATSPublisher(cfg.NATS.URL)
	if err != nil {
		// Audit publication is best effort; run without the bus rather
		// than refuse to start.
		logger.Warn("Failed to connect to NATS, audit events stay local", "error", err)
		bus = nil
	} else {
		defer bus.Close()
	}

	// Repositories
	guestsRepo := postgres.NewGuestsRepo(pool)
	tokensRepo := postgres.NewTokensRepo(pool)
	sessionsRepo := postgres.NewSessionsRepo(pool)
	auditRepo := postgres.NewAuditRepo(pool)

	// Services
	resolver := service.NewCredentialResolver(guestsRepo)
	issuer := service.NewTokenIssuer(tokensRepo, cfg.App.LinkBaseURL, cfg.Auth.MagicLinkTTL)
	verifier := service.NewTokenVerifier(tokensRepo)
	sessions := service.NewSessionManager(sessionsRepo, cfg.Auth.SessionTTL)

	var pub events.Publisher
	if bus != nil {
		pub = bus
	}
	audit := service.NewAuditRecorder(auditRepo, pub, cfg.NATS.AuditSubject, 256)
	defer audit.Close()

	mailSvc := buildMailer(cfg)

	h := guestauth.NewHandler(resolver, issuer, verifier, sessions, mailSvc, audit, cfg.App)

	// Only the two endpoints that trigger outbound effects (session mint,
	// email send) are rate limited; verification is already single-use.
	limiter := imw.NewRateLimiter(rdb, imw.RateLimitConfig{
		Requests: cfg.Auth.RateLimitMax,
		Window:   cfg.Auth.RateLimitWindow,
		KeyFunc:  authRateKeys,
		SkipFunc: func(r *http.Request) bool {
			switch r.URL.Path {
			case "/v1/guest/auth/identify", "/v1/guest/auth/request-link":
				return false
			}
			return true
		},
	})

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("guestgate"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.LinkBaseURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/v1/guest/auth", func(r chi.Router) {
		r.With(limiter.Middleware()).Mount("/", h.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down guestgate...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting guestgate", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	}
	return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
}

// authRateKeys limits by client IP always and by submitted email on the
// request endpoints, so one address can't farm links for many emails.
func authRateKeys(r *http.Request) []string {
	keys := []string{"ip:" + clientIP(r)}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			if email := r.PostFormValue("email"); email != "" {
				keys = append(keys, "email:"+email)
			}
		}
	}
	return keys
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}
