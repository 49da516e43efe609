package main

import (
	"context"
	cryptorand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hepacare/cdss/internal/config"
	"github.com/hepacare/cdss/internal/domain/announcement"
	"github.com/hepacare/cdss/internal/domain/drug"
	"github.com/hepacare/cdss/internal/domain/identity"
	"github.com/hepacare/cdss/internal/domain/patient"
	"github.com/hepacare/cdss/internal/platform/auth"
	"github.com/hepacare/cdss/internal/platform/db"
	"github.com/hepacare/cdss/internal/platform/middleware"
	"github.com/hepacare/cdss/internal/platform/secrets"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cdss-server",
		Short: "Liver cancer clinical record API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(identityCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

// identityCmd bootstraps the first superuser. It writes the identity row
// directly so a fresh deployment does not need an existing session to call
// the admin API.
func identityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage identities",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an identity (bootstrap superuser)",
		RunE: func(cmd *cobra.Command, args []string) error {
			loginID, _ := cmd.Flags().GetString("login-id")
			secret, _ := cmd.Flags().GetString("secret")
			superuser, _ := cmd.Flags().GetBool("superuser")
			if loginID == "" || secret == "" {
				return fmt.Errorf("--login-id and --secret are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			hash, err := secrets.Hash(secret)
			if err != nil {
				return err
			}
			ident := &identity.Identity{
				ID:         uuid.New(),
				LoginID:    loginID,
				SecretHash: hash,
				Superuser:  superuser,
				CreatedAt:  time.Now().UTC(),
			}
			if err := identity.NewRepoPG(pool).Create(ctx, ident); err != nil {
				return fmt.Errorf("create identity: %w", err)
			}
			fmt.Printf("Created identity %s (%s)\n", loginID, ident.ID)
			return nil
		},
	}
	createCmd.Flags().String("login-id", "", "Login identifier")
	createCmd.Flags().String("secret", "", "Initial secret")
	createCmd.Flags().Bool("superuser", false, "Grant superuser privileges")
	cmd.AddCommand(createCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	signingKey := cfg.SigningKey()
	if len(signingKey) == 0 {
		// Development fallback. Sessions die with the process.
		signingKey = make([]byte, 32)
		if _, err := cryptorand.Read(signingKey); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate signing key")
		}
		logger.Warn().Msg("SESSION_SIGNING_KEY not set; using an ephemeral key, sessions will not survive a restart")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Storage
	identityRepo := identity.NewRepoPG(pool)
	profileRepo := identity.NewProfileRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	drugRepo := drug.NewRepoPG(pool)
	interactionRepo := drug.NewInteractionRepoPG(pool)
	announcementRepo := announcement.NewRepoPG(pool)
	sessionStore := auth.NewPGSessionStore(pool)

	// Services. Deprovisioning spans patients, profiles, sessions and the
	// identity row, so the identity service gets a transaction runner.
	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
	identitySvc := identity.NewService(identityRepo, profileRepo, patientRepo, sessionStore, runTx, logger)
	sessions := auth.NewManager(sessionStore, identitySvc, signingKey)
	patientSvc := patient.NewService(patientRepo, identitySvc, logger)
	drugSvc := drug.NewService(drugRepo, interactionRepo, patientSvc, logger)
	announcementSvc := announcement.NewService(announcementRepo, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.Audit(logger))

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	requireSession := auth.RequireSession(sessions)
	identity.NewHandler(identitySvc, sessions).RegisterRoutes(apiV1, requireSession)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1, requireSession)
	drug.NewHandler(drugSvc).RegisterRoutes(apiV1, requireSession)
	announcement.NewHandler(announcementSvc).RegisterRoutes(apiV1, requireSession)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
