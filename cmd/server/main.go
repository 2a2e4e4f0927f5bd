package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nstrange/spendtrack/internal/authgorm"
	"github.com/nstrange/spendtrack/internal/authkit"
	"github.com/nstrange/spendtrack/internal/authpg"
	"github.com/nstrange/spendtrack/internal/expense"
	"github.com/nstrange/spendtrack/internal/web"
)

var serveHTTP = func(server *http.Server) error {
	return server.ListenAndServe()
}

func main() {
	_ = godotenv.Load()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "spendtrack",
		Short:   "Auth and expense service with JWT access tokens and rotating refresh tokens",
		PreRunE: prepareServerConfig,
		RunE:    runServer,
	}

	rootCmd.Flags().String("listen_addr", ":8080", "HTTP listen address")
	rootCmd.Flags().String("jwt_signing_key", "", "HS256 signing secret for access JWT")
	rootCmd.Flags().String("jwt_issuer", "spendtrack-auth", "Issuer claim stamped on access tokens")
	rootCmd.Flags().Duration("session_ttl", 15*time.Minute, "Access token TTL")
	rootCmd.Flags().Duration("refresh_ttl", 25*time.Hour, "Refresh token TTL")
	rootCmd.Flags().String("database_url", "", "Database URL (sqlite://, postgres://, or pgx://; leave empty for in-memory stores)")
	rootCmd.Flags().Bool("enable_cors", false, "Enable CORS for cross-origin browser clients")
	rootCmd.Flags().StringSlice("cors_allowed_origins", []string{}, "Allowed origins when CORS is enabled (required if enable_cors is true)")
	rootCmd.Flags().String("sentry_dsn", "", "Sentry DSN; empty disables error reporting")
	rootCmd.Flags().String("environment", "development", "Deployment environment name reported to Sentry")

	_ = viper.BindPFlag("listen_addr", rootCmd.Flags().Lookup("listen_addr"))
	_ = viper.BindPFlag("jwt_signing_key", rootCmd.Flags().Lookup("jwt_signing_key"))
	_ = viper.BindPFlag("jwt_issuer", rootCmd.Flags().Lookup("jwt_issuer"))
	_ = viper.BindPFlag("session_ttl", rootCmd.Flags().Lookup("session_ttl"))
	_ = viper.BindPFlag("refresh_ttl", rootCmd.Flags().Lookup("refresh_ttl"))
	_ = viper.BindPFlag("database_url", rootCmd.Flags().Lookup("database_url"))
	_ = viper.BindPFlag("enable_cors", rootCmd.Flags().Lookup("enable_cors"))
	_ = viper.BindPFlag("cors_allowed_origins", rootCmd.Flags().Lookup("cors_allowed_origins"))
	_ = viper.BindPFlag("sentry_dsn", rootCmd.Flags().Lookup("sentry_dsn"))
	_ = viper.BindPFlag("environment", rootCmd.Flags().Lookup("environment"))

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	return rootCmd
}

const (
	configCodeMissingJWTSigningKey    = "config.missing_jwt_signing_key"
	configCodeMissingJWTIssuer        = "config.missing_jwt_issuer"
	configCodeInvalidSessionTTL       = "config.invalid_session_ttl"
	configCodeInvalidRefreshTTL       = "config.invalid_refresh_ttl"
	configCodeUninitializedServerConf = "config.uninitialized_server_config"
	configCodeUnsupportedDatabaseURL  = "config.unsupported_database_url"
)

type contextKey string

const serverConfigContextKey contextKey = "serverConfig"

func prepareServerConfig(command *cobra.Command, arguments []string) error {
	serverConfig, loadErr := LoadServerConfig()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, serverConfigContextKey, serverConfig))
	return nil
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

func LoadServerConfig() (authkit.ServerConfig, error) {
	jwtSigningKey := viper.GetString("jwt_signing_key")
	if jwtSigningKey == "" {
		return authkit.ServerConfig{}, configError(configCodeMissingJWTSigningKey, "jwt_signing_key must be provided")
	}

	jwtIssuer := strings.TrimSpace(viper.GetString("jwt_issuer"))
	if jwtIssuer == "" {
		return authkit.ServerConfig{}, configError(configCodeMissingJWTIssuer, "jwt_issuer must be non-empty")
	}

	sessionTTL := viper.GetDuration("session_ttl")
	if sessionTTL <= 0 {
		return authkit.ServerConfig{}, configError(configCodeInvalidSessionTTL, "session_ttl must be greater than zero")
	}

	refreshTTL := viper.GetDuration("refresh_ttl")
	if refreshTTL <= 0 {
		return authkit.ServerConfig{}, configError(configCodeInvalidRefreshTTL, "refresh_ttl must be greater than zero")
	}

	return authkit.ServerConfig{
		JWTSigningKey: []byte(jwtSigningKey),
		JWTIssuer:     jwtIssuer,
		SessionTTL:    sessionTTL,
		RefreshTTL:    refreshTTL,
	}, nil
}

type storeSet struct {
	credentials   authkit.CredentialStore
	refreshTokens authkit.RefreshTokenStore
	expenses      expense.Store
	description   string
}

func buildStores(ctx context.Context, databaseURL string) (storeSet, error) {
	trimmed := strings.TrimSpace(databaseURL)
	if trimmed == "" {
		return storeSet{
			credentials:   authkit.NewMemoryCredentialStore(),
			refreshTokens: authkit.NewMemoryRefreshTokenStore(),
			expenses:      expense.NewMemoryStore(),
			description:   "memory",
		}, nil
	}

	parsed, parseErr := url.Parse(trimmed)
	if parseErr != nil {
		return storeSet{}, configError(configCodeUnsupportedDatabaseURL, parseErr.Error())
	}

	if strings.EqualFold(parsed.Scheme, "pgx") {
		pool, poolErr := authpg.BuildPool(ctx, trimmed)
		if poolErr != nil {
			return storeSet{}, poolErr
		}
		if schemaErr := authpg.EnsureSchema(ctx, pool); schemaErr != nil {
			return storeSet{}, schemaErr
		}
		expenseStore, expenseErr := expense.NewPostgresStore(ctx, pool)
		if expenseErr != nil {
			return storeSet{}, expenseErr
		}
		return storeSet{
			credentials:   authpg.NewPostgresCredentialStore(pool),
			refreshTokens: authpg.NewPostgresRefreshTokenStore(pool),
			expenses:      expenseStore,
			description:   "pgx",
		}, nil
	}

	store, openErr := authgorm.Open(ctx, trimmed)
	if openErr != nil {
		return storeSet{}, openErr
	}
	expenseStore, expenseErr := expense.NewGormStore(ctx, store.DB())
	if expenseErr != nil {
		return storeSet{}, expenseErr
	}
	return storeSet{
		credentials:   store.Credentials(),
		refreshTokens: store.RefreshTokens(),
		expenses:      expenseStore,
		description:   store.Driver(),
	}, nil
}

func runServer(command *cobra.Command, arguments []string) error {
	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(serverConfigContextKey)
	}
	serverConfig, ok := contextValue.(authkit.ServerConfig)
	if !ok {
		return configError(configCodeUninitializedServerConf, "server configuration not prepared; PreRunE must execute before RunE")
	}
	if commandContext == nil {
		commandContext = context.Background()
	}

	listenAddr := viper.GetString("listen_addr")
	databaseURL := viper.GetString("database_url")
	enableCORS := viper.GetBool("enable_cors")
	corsAllowedOrigins := viper.GetStringSlice("cors_allowed_origins")
	sentryDSN := viper.GetString("sentry_dsn")
	environment := viper.GetString("environment")

	if sentryDSN != "" {
		if sentryErr := sentry.Init(sentry.ClientOptions{
			Dsn:         sentryDSN,
			Environment: environment,
		}); sentryErr != nil {
			logger.Warn("sentry init failed",
				zap.String("code", "sentry.init.failure"),
				zap.Error(sentryErr))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	stores, storesErr := buildStores(commandContext, databaseURL)
	if storesErr != nil {
		return storesErr
	}
	logger.Info("stores ready", zap.String("backend", stores.description))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapLoggerMiddleware(logger))

	if enableCORS {
		corsMiddleware, corsErr := web.ConfigureCORS(logger, corsAllowedOrigins)
		if corsErr != nil {
			return corsErr
		}
		router.Use(corsMiddleware)
	}

	clock := authkit.NewSystemClock()
	metricsRecorder := authkit.NewCounterMetrics()

	refreshService := authkit.NewRefreshTokenService(stores.credentials, stores.refreshTokens, clock, serverConfig)
	sessionService := authkit.NewSessionService(stores.credentials, refreshService, authkit.NewBcryptHasher(), clock, serverConfig, logger, metricsRecorder)
	expenseService := expense.NewService(stores.expenses, clock)

	router.Use(authkit.AuthenticationGate(authkit.GateConfig{
		Server:      serverConfig,
		Credentials: stores.credentials,
		Clock:       clock,
		Logger:      logger,
		Metrics:     metricsRecorder,
	}))
	authkit.MountAuthRoutes(router, sessionService, clock, logger)
	expense.MountExpenseRoutes(router, expenseService, clock, logger)

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()

	go func() {
		stopSignals := make(chan os.Signal, 1)
		signal.Notify(stopSignals, syscall.SIGINT, syscall.SIGTERM)
		<-stopSignals
		graceCtx, graceCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer graceCancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", listenAddr))
	if err := serveHTTP(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen error: %w", err)
	}
	return nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		startTime := time.Now()
		contextGin.Next()
		duration := time.Since(startTime)
		logger.Info("http",
			zap.String("method", contextGin.Request.Method),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Int("status", contextGin.Writer.Status()),
			zap.String("ip", contextGin.ClientIP()),
			zap.Duration("elapsed", duration),
		)
	}
}
