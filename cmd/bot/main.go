package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/app"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/auth"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/handlers"
	"github.com/Spok95/disclosure-portal-bot/internal/config"
	"github.com/Spok95/disclosure-portal-bot/internal/db"
	"github.com/Spok95/disclosure-portal-bot/internal/jobs"
	"github.com/Spok95/disclosure-portal-bot/internal/logging"
	"github.com/Spok95/disclosure-portal-bot/internal/observability"
	"github.com/Spok95/disclosure-portal-bot/internal/portal"
	"github.com/Spok95/disclosure-portal-bot/internal/router"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/tg"
	"github.com/Spok95/disclosure-portal-bot/internal/upload"
	"github.com/Spok95/disclosure-portal-bot/internal/views"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "disclosure-bot",
		Short:         "Telegram front-end for the AICTE disclosure portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), migrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply session store migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return errors.New("DATABASE_URL is not set")
			}
			database, err := db.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer database.Close()
			return db.Migrate(cmd.Context(), database)
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres DSN (default $DATABASE_URL)")
	return cmd
}

func runCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file (optional)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer lg.Sync()
	log := lg.Base

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		log.Warn("sentry init", zap.Error(err))
	}
	defer flush()

	var (
		store    session.Store = session.NewMemoryStore()
		database *sql.DB
	)
	if cfg.DatabaseURL != "" {
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := db.Migrate(ctx, database); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store = db.NewSessionStore(database)
	} else {
		log.Warn("DATABASE_URL is empty, sessions are kept in memory")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = !cfg.IsProd()
	log.Info("bot started", zap.String("username", bot.Self.UserName), zap.String("portal", cfg.PortalURL))

	client := portal.New(cfg.PortalURL, cfg.PortalTimeout, cfg.UploadTimeout, log.Named("portal"))
	instWF := workflow.NewInstitution(client, log.Named("institution"))
	authWF := workflow.NewAuthority(client, log.Named("authority"))
	v, err := views.New()
	if err != nil {
		return fmt.Errorf("views: %w", err)
	}

	limiter := app.NewChatLimiter()
	flows := auth.New(bot, workflow.NewAuth(client, log.Named("auth")), v, limiter, cfg.OTPResendAfter, log.Named("auth"))
	pages := handlers.New(handlers.Deps{
		Bot:           bot,
		Pages:         router.New(instWF, authWF, v, log.Named("router")),
		Institution:   instWF,
		Authority:     authWF,
		Uploader:      upload.New(client, cfg.AcademicYear, log.Named("upload")),
		Views:         v,
		UploadTimeout: cfg.UploadTimeout,
		Now:           func() time.Time { return time.Now().In(cfg.Location) },
		Log:           log.Named("handlers"),
	})
	dispatcher := app.NewDispatcher(bot, store, flows, pages, limiter, log.Named("dispatcher"))
	queue := app.NewChatQueue(dispatcher.HandleUpdate, log.Named("queue"))

	app.StartHTTP(ctx, cfg.HTTPAddr, database, lg.Level, log)

	runner := jobs.New(ctx, log.Named("jobs"))
	poller := jobs.NewNotificationPoller(store, client, limiter, func(_ context.Context, chatID int64, text string) error {
		_, err := tg.Send(bot, tg.HTML(chatID, text))
		return err
	}, log.Named("notifications"))
	runner.Every(cfg.NotifyPollInterval, "notifications", poller.Poll)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Info("shutting down")
			queue.Wait()
			return nil
		case upd, ok := <-updates:
			if !ok {
				queue.Wait()
				return nil
			}
			// чаты параллельно, внутри чата строго по порядку
			queue.Push(ctx, upd)
		}
	}
}
