package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"societyhub/internal/api/middleware"
	v1 "societyhub/internal/api/v1"
	"societyhub/internal/repository/postgres"
	"societyhub/internal/scheduler"
	schedulerjobs "societyhub/internal/scheduler/jobs"
	"societyhub/internal/service"
	"societyhub/internal/tenant"
)

type Config struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`
	Server struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Database struct {
		URL           string        `mapstructure:"url"`
		MaxConns      int           `mapstructure:"max_conns"`
		PingTimeout   time.Duration `mapstructure:"ping_timeout"`
		MigrationsDir string        `mapstructure:"migrations_dir"`
	} `mapstructure:"database"`
	Log struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"log"`
	Security struct {
		InternalToken     string `mapstructure:"internal_token"`
		InternalTokenFile string `mapstructure:"internal_token_file"`
	} `mapstructure:"security"`
	Bootstrap struct {
		Email    string `mapstructure:"email"`
		Name     string `mapstructure:"name"`
		Password string `mapstructure:"password"`
		Phone    string `mapstructure:"phone"`
	} `mapstructure:"bootstrap"`
	CORS struct {
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"cors"`
}

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrateCommand(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync() //nolint:errcheck

	if !strings.EqualFold(cfg.App.Env, "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	dbPool, err := newDBPool(context.Background(), cfg)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	defer dbPool.Close()

	if err := runMigrations(cfg); err != nil {
		logger.Fatal("run migrations failed", zap.Error(err))
	}

	adminRepo := postgres.NewAdminRepository(dbPool)
	societyRepo := postgres.NewSocietyRepository(dbPool)
	residentRepo := postgres.NewResidentRepository(dbPool)
	ownerRepo := postgres.NewFlatOwnerRepository(dbPool)
	eventRepo := postgres.NewEventRepository(dbPool)
	entryRepo := postgres.NewEntryRepository(dbPool)
	couponRepo := postgres.NewCouponRepository(dbPool)
	broadcastRepo := postgres.NewBroadcastRepository(dbPool)

	jwtPrivateKey, err := loadRSAPrivateKey()
	if err != nil {
		logger.Info("jwt signing disabled", zap.Error(err))
		jwtPrivateKey = nil
	}

	authSvc := service.NewAuthService(adminRepo, jwtPrivateKey, cfg.Bootstrap.Email, logger)
	societySvc := service.NewSocietyService(societyRepo, logger)
	residentSvc := service.NewResidentService(residentRepo, logger)
	ownerSvc := service.NewFlatOwnerService(ownerRepo, societyRepo, residentRepo, logger)
	eventSvc := service.NewEventService(eventRepo, logger)
	entrySvc := service.NewEntryService(entryRepo, logger)
	couponSvc := service.NewCouponService(couponRepo, societyRepo, eventRepo, residentRepo, logger)
	broadcastSvc := service.NewBroadcastService(broadcastRepo, logger)
	scopes := tenant.NewResolver(adminRepo)

	if cfg.Bootstrap.Password != "" {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := authSvc.EnsureSuperadmin(seedCtx, cfg.Bootstrap.Name, cfg.Bootstrap.Password, cfg.Bootstrap.Phone); err != nil {
			logger.Warn("superadmin seed failed", zap.Error(err))
		}
		cancel()
	}

	entryJob := schedulerjobs.NewEntryExpiryJob(entrySvc, logger)
	cronRunner := scheduler.NewScheduler(scheduler.Deps{EntryJob: entryJob}, logger)
	cronRunner.Start()
	defer func() {
		stopCtx := cronRunner.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(2 * time.Second):
		}
	}()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(buildCORSMiddleware(cfg))
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Database.PingTimeout)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"error":  "database unavailable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	internalGroup := router.Group("/internal")
	internalGroup.Use(middleware.InternalTokenAuth(cfg.Security.InternalToken))
	internalGroup.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	v1.RegisterAuthRoutes(apiGroup, authSvc)
	v1.RegisterSocietyRoutes(apiGroup, societySvc, scopes)
	v1.RegisterResidentRoutes(apiGroup, residentSvc, scopes)
	v1.RegisterEventRoutes(apiGroup, eventSvc, scopes)
	v1.RegisterBroadcastRoutes(apiGroup, broadcastSvc, scopes)
	v1.RegisterFlatOwnerRoutes(apiGroup, ownerSvc, scopes)
	v1.RegisterEntryRoutes(apiGroup, entrySvc, scopes)
	v1.RegisterCouponRoutes(apiGroup, couponSvc, scopes)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	logger.Info("server started",
		zap.String("addr", srv.Addr),
		zap.String("version", Version),
		zap.String("commit", Commit),
		zap.String("build_time", BuildTime),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			logger.Fatal("server exited unexpectedly", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown server failed", zap.Error(err))
	}
}

func loadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SOCIETYHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "SOCIETYHUB_DATABASE_URL", "DATABASE_URL")

	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.ping_timeout", "3s")
	v.SetDefault("database.migrations_dir", "./migrations")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("security.internal_token", "")
	v.SetDefault("security.internal_token_file", "")
	v.SetDefault("bootstrap.email", "")
	v.SetDefault("bootstrap.name", "Superadmin")
	v.SetDefault("bootstrap.password", "")
	v.SetDefault("bootstrap.phone", "")
	v.SetDefault("cors.allow_origins", []string{"http://localhost:5173"})

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return Config{}, fmt.Errorf("read config file failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config failed: %w", err)
	}

	if strings.TrimSpace(cfg.Security.InternalToken) == "" && strings.TrimSpace(cfg.Security.InternalTokenFile) != "" {
		// #nosec G304 -- path is provided by operator config.
		raw, err := os.ReadFile(strings.TrimSpace(cfg.Security.InternalTokenFile))
		if err != nil {
			return Config{}, fmt.Errorf("read security.internal_token_file failed: %w", err)
		}
		cfg.Security.InternalToken = strings.TrimSpace(string(raw))
	}

	if cfg.Database.URL == "" {
		return Config{}, errors.New("database.url is required")
	}
	if cfg.Database.MaxConns <= 0 {
		return Config{}, errors.New("database.max_conns must be greater than 0")
	}
	if cfg.Database.PingTimeout <= 0 {
		return Config{}, errors.New("database.ping_timeout must be greater than 0")
	}

	return cfg, nil
}

func newLogger(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.App.Env, "development") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log.level: %w", err)
		}
	}
	if cfg.Log.Encoding != "" {
		zapCfg.Encoding = cfg.Log.Encoding
	}

	return zapCfg.Build()
}

func newDBPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database.url failed: %w", err)
	}

	const maxInt32 = int(^uint32(0) >> 1)
	if cfg.Database.MaxConns > maxInt32 {
		return nil, fmt.Errorf("database.max_conns must be <= %d", maxInt32)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns) // #nosec G115 -- validated upper bound above.

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.PingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}

	return pool, nil
}

func runMigrations(cfg Config) error {
	dir := strings.TrimSpace(cfg.Database.MigrationsDir)
	if dir == "" {
		dir = "./migrations"
	}

	migrator, err := migrate.New("file://"+dir, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func runMigrateCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		return fmt.Errorf("run migrations failed: %w", err)
	}

	fmt.Println("migrations applied successfully")
	return nil
}

func buildCORSMiddleware(cfg Config) gin.HandlerFunc {
	origins := make([]string, 0, len(cfg.CORS.AllowOrigins))
	for _, origin := range cfg.CORS.AllowOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		origins = append(origins, trimmed)
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func loadRSAPrivateKey() (*rsa.PrivateKey, error) {
	pem := strings.TrimSpace(os.Getenv("SOCIETYHUB_JWT_PRIVATE_KEY"))
	if pem == "" {
		path := strings.TrimSpace(os.Getenv("SOCIETYHUB_JWT_PRIVATE_KEY_FILE"))
		if path != "" {
			// #nosec G304 -- path is provided by operator environment variable.
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			pem = string(raw)
		}
	}
	if pem == "" {
		return nil, errors.New("jwt private key not configured")
	}
	return jwt.ParseRSAPrivateKeyFromPEM([]byte(pem))
}
