package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/careline/internal/api"
	"github.com/terraincognita07/careline/internal/cli"
	"github.com/terraincognita07/careline/internal/config"
	"github.com/terraincognita07/careline/internal/db"
	"github.com/terraincognita07/careline/internal/i18n"
	"github.com/terraincognita07/careline/internal/logging"
	"github.com/terraincognita07/careline/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "careline"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          serviceName,
		Short:        "CareLine chemotherapy symptom tracker",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(resetPasswordCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDatabase(database)

			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (driver: %s)\n", cfg.DBDriver)
			return nil
		},
	}
}

func resetPasswordCmd() *cobra.Command {
	var phone string
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a user's password by phone number",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDatabase(database)

			auth := services.NewAuthService(db.NewUserRepository(database))
			return cli.RunResetPasswordCommand(auth, cli.ResetPasswordOptions{
				Phone:  phone,
				Prompt: prompt,
				Out:    cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number of the account")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "read the new password from the terminal instead of generating one")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	return database, nil
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func runServer(cfg *config.Config) error {
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	i18nManager, err := i18n.NewEmbeddedManager(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	clock := services.NewFixedZoneClock(cfg.TimezoneOffsetHours)
	handler, err := api.NewHandler(database, cfg.SecretKey, clock, i18nManager, logger)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(cfg, handler, logger)

	repos := db.NewRepositories(database)
	reminders := services.NewReminderService(repos.Families, repos.DailyRecords, clock, logger, services.ReminderConfig{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		APIURL:   cfg.TelegramAPIURL,
		Interval: cfg.ReminderInterval,
	})
	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	reminders.Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("careline listening",
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("timezone", clock.Location().String()),
		zap.Bool("reminders", reminders.Enabled()),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(cfg *config.Config, handler *api.Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "CareLine",
		DisableStartupMessage: true,
		BodyLimit:             1 << 20,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(recover.New())
	app.Use(logging.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}
