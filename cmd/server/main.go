package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"sidevault/config"
	"sidevault/internal/adapters/auth"
	"sidevault/internal/adapters/email"
	"sidevault/internal/adapters/idgen"
	deliveryhttp "sidevault/internal/delivery/http"
	"sidevault/internal/delivery/http/controllers"
	"sidevault/internal/delivery/http/middleware"
	"sidevault/internal/repository/postgres"
	"sidevault/internal/services"
	"sidevault/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Error("failed to ensure schema", "err", err)
		os.Exit(1)
	}

	kv := postgres.NewKVRepository(db, cfg.StorageQuotaBytes)
	store := storage.New(kv, logger)
	ids := idgen.NewUUIDGenerator()

	pageService := services.NewPageService(store, ids, logger)
	categoryService := services.NewCategoryService(store, ids, pageService, logger)
	tagService := services.NewTagService(store, ids, pageService, logger)
	pageService.SetTagNameLookup(tagService)

	pageService.Initialize(ctx)
	categoryService.Initialize(ctx)
	tagService.Initialize(ctx)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureTLS,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	shareService := services.NewShareService(pageService, renderer, mailer, logger)

	pageController := controllers.NewPageController(logger, pageService, shareService)
	categoryController := controllers.NewCategoryController(logger, categoryService)
	tagController := controllers.NewTagController(logger, tagService)
	authController := controllers.NewAuthController(logger, hasher, issuer, cfg.VaultPasswordHash, cfg.TokenExpiry)
	storageController := controllers.NewStorageController(logger, store, pageService, categoryService, tagService)

	requireAuth := middleware.RequireAuth(verifier, logger)
	mux := deliveryhttp.NewRouter(pageController, categoryController, tagController, authController, storageController, requireAuth)

	handler := middleware.Logging(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
