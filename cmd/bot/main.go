package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jessevdk/go-flags"

	"github.com/Vahidrezaa/super-duper-funicular/app/admins"
	"github.com/Vahidrezaa/super-duper-funicular/app/delivery"
	"github.com/Vahidrezaa/super-duper-funicular/app/engine"
	"github.com/Vahidrezaa/super-duper-funicular/app/gate"
	"github.com/Vahidrezaa/super-duper-funicular/app/session"
	"github.com/Vahidrezaa/super-duper-funicular/app/storage"
	"github.com/Vahidrezaa/super-duper-funicular/app/telegram"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
)

var opts struct {
	TelegramAPIToken   string  `long:"telegram-api-token" env:"TELEGRAM_API_TOKEN" required:"true" description:"telegram api token"`
	TelegramWorkersNum int     `long:"telegram-workers-num" env:"TELEGRAM_WORKERS_NUM" default:"5" description:"number of workers for telegram bot"`
	DBPath             string  `long:"db-path" env:"DB_PATH" default:"./db/categories.sqlite" description:"path to the sqlite database file"`
	AdminIDs           []int64 `long:"admin-id" env:"ADMIN_IDS" env-delim:"," description:"seed admin user ids"`
	SentryDSN          string  `long:"sentry-dsn" env:"SENTRY_DSN" description:"sentry dsn, error reporting is off when empty"`
}

var Revision = "dev"

func main() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Info("starting bot", "revision", Revision)

	if opts.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:     opts.SentryDSN,
			Release: Revision,
		})
		if err != nil {
			log.Error("initializing sentry", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.NewSQLite(ctx, opts.DBPath)
	if err != nil {
		log.Error("creating sqlite3 database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing sqlite3 database", "error", err)
		}
	}()

	authority := &admins.Authority{
		Log:   log,
		Store: db,
	}

	if err := authority.Seed(ctx, opts.AdminIDs); err != nil {
		log.Error("seeding admins", "error", err)
		os.Exit(1)
	}

	bot := &telegram.Client{
		Log:        log,
		APIToken:   opts.TelegramAPIToken,
		WorkersNum: opts.TelegramWorkersNum,
	}

	ng := &engine.Engine{
		Log:      log,
		Sessions: session.NewStore(),
		Admins:   authority,

		Categories: db,
		Files:      db,
		Channels:   db,
		Settings:   db,

		Gate: &gate.Gate{
			Log:      log,
			Checker:  bot,
			Attempts: gate.DefaultAttempts,
			Backoff:  gate.DefaultBackoff,
		},

		Pipeline: &delivery.Pipeline{
			Log:          log,
			Store:        db,
			Sender:       bot,
			ItemDelay:    delivery.DefaultItemDelay,
			FailureDelay: delivery.DefaultFailureDelay,
		},

		Cleaner: bot,
	}

	bot.Engine = ng

	err = bot.Start(ctx)
	if err != nil {
		log.Error("starting bot", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("stopping bot")

	bot.Wait()

	os.Exit(0)
}
