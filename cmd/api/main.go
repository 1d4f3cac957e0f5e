package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"codearena/internal/config"
	"codearena/internal/db"
	"codearena/internal/email"
	apihttp "codearena/internal/http"
	"codearena/internal/repository"
	"codearena/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	schoolRepo := repository.NewPgSchoolRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)
	competitionRepo := repository.NewPgCompetitionRepository(pool)
	projectRepo := repository.NewPgProjectRepository(pool)
	voteRepo := repository.NewPgVoteRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter  service.OTPRateLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
			redisClient = nil
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	var sso *service.SSOService
	if cfg.SSOSecret != "" {
		sso = service.NewSSOService(cfg.SSOSecret, cfg.SSOIssuer)
	} else {
		logger.Warn("sso secret not configured; portal login disabled")
	}

	sessionSvc := service.NewSessionService(sessionRepo, userRepo)
	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter)
	leaderboardSvc := service.NewLeaderboardService(logger, voteRepo, redisClient)
	projectSvc := service.NewProjectService(logger, projectRepo, competitionRepo, userRepo, emailSender)
	voteSvc := service.NewVoteService(voteRepo, projectRepo, competitionRepo, leaderboardSvc)

	// Limpieza de sesiones vencidas al arrancar.
	if purged, err := sessionSvc.PurgeExpired(ctx); err != nil {
		logger.Warn("purge expired sessions failed", zap.Error(err))
	} else if purged > 0 {
		logger.Info("purged expired sessions", zap.Int64("count", purged))
	}

	authHandler := apihttp.NewAuthHandler(logger, userSvc, sessionSvc, sso, cfg.CookieSecure)
	projectHandler := apihttp.NewProjectHandler(logger, projectSvc, voteSvc, projectRepo)
	competitionHandler := apihttp.NewCompetitionHandler(logger, competitionRepo, leaderboardSvc)
	adminHandler := apihttp.NewAdminHandler(logger, userSvc, userRepo, schoolRepo, categoryRepo)
	router := apihttp.NewRouter(logger, sessionSvc, cfg.CookieSecure, authHandler, projectHandler, competitionHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
