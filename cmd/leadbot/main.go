package main

import (
	"fmt"
	"log"
	"time"

	corecmd "leadbot/core/cmd"
	coredatabase "leadbot/core/database"
	"leadbot/core/logger"
	"leadbot/internal/bot"
	"leadbot/internal/config"
	"leadbot/internal/leads"
	"leadbot/internal/session"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: bootstrap,
	})
	if err != nil {
		log.Fatalf("leadbot: %v", err)
	}
}

func bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}

	if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, closeStore, err := buildSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	var repo *leads.Repository
	var closeDB func() error
	if cfg.DatabaseEnabled() {
		if err := coredatabase.RunMigrations(cfg.Database); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		db, err := coredatabase.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		closeDB = db.Close
		repo = leads.NewRepository(db)
	}

	app := bot.New(cfg, store, repo)
	app.AddCloser("database", closeDB)
	app.AddCloser("session_store", closeStore)
	return app, nil
}

func buildSessionStore(cfg *config.Config) (session.Store, func() error, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendBadger:
		store, err := session.NewBadgerStore(session.BadgerOptions{
			Dir: cfg.Session.Dir,
			TTL: time.Duration(cfg.Session.TTLHours) * time.Hour,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		return store, store.Close, nil
	default:
		return session.NewMemoryStore(), nil, nil
	}
}
