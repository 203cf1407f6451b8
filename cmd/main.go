package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	restctx "github.com/kinfolkhq/kinfolk-server/internal/api/rest/context"
	"github.com/kinfolkhq/kinfolk-server/internal/api/rest/router"
	restServer "github.com/kinfolkhq/kinfolk-server/internal/api/rest/server"
	"github.com/kinfolkhq/kinfolk-server/internal/config"
	"github.com/kinfolkhq/kinfolk-server/internal/logger"
	"github.com/kinfolkhq/kinfolk-server/internal/mailer"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/oauth"
	"github.com/kinfolkhq/kinfolk-server/internal/repository/postgres"
	"github.com/kinfolkhq/kinfolk-server/internal/server"
	"github.com/kinfolkhq/kinfolk-server/internal/service"
	storage "github.com/kinfolkhq/kinfolk-server/internal/storage/minio"
	"github.com/kinfolkhq/kinfolk-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	childRepo := postgres.NewChildRepository(db)
	verificationRepo := postgres.NewVerificationTokenRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	summaryRepo := postgres.NewDailySummaryRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	var mail mailer.Mailer
	if cfg.Mail.Endpoint != "" {
		mail = mailer.NewClient(cfg.Mail.Endpoint, cfg.Mail.APIKey, cfg.Mail.From, logger)
	} else {
		mail = mailer.NewLogMailer(logger)
	}

	google := oauth.NewGoogle(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.BaseURL)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	authService := service.NewAuth(accountRepo, profileRepo, verificationRepo, refreshTokenRepo, tokenManager, mail, google, cfg.BaseURL, logger)
	profileService := service.NewProfiles(profileRepo, storageClient, logger)
	childService := service.NewChildren(childRepo, profileRepo, authService, logger)
	roleService := service.NewRoles(profileRepo, childRepo, logger)
	summaryService := service.NewSummaries(summaryRepo, profileRepo, logger)
	ctxMgr := restctx.NewManager()

	httpServer := registerHTTPServer(
		logger,
		authService, profileService, childService, roleService, summaryService,
		ctxMgr,
		router.Config{
			BaseURL:         cfg.BaseURL,
			RateLimit:       cfg.RateLimit.Limit,
			RateLimitPeriod: cfg.RateLimit.Period,
		},
		fmt.Sprintf(":%s", cfg.HTTP.Port),
	)

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	logger *logger.Logger,
	authService *service.Auth,
	profileService *service.Profiles,
	childService *service.Children,
	roleService *service.Roles,
	summaryService *service.Summaries,
	ctxMgr model.ContextManager,
	routerConfig router.Config,
	addr string,
) *restServer.HTTPServer {
	r := router.New(authService, profileService, childService, roleService, summaryService, ctxMgr, routerConfig, logger)
	engine := r.Register()

	return restServer.NewHTTPServer(engine, addr)
}
