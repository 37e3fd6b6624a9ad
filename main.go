package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"burguerclub-pos/internal/auth"
	"burguerclub-pos/internal/config"
	"burguerclub-pos/internal/ledger"
	"burguerclub-pos/internal/logger"
	"burguerclub-pos/internal/menu"
	"burguerclub-pos/internal/notify"
	"burguerclub-pos/internal/settings"
	"burguerclub-pos/internal/storage"
	"burguerclub-pos/pkg/pubsub"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "clear the data directory before starting")
	seed := flag.Bool("seed", false, "restore the demo menu and staff records")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *reset {
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			log.Fatal("data directory reset failed", zap.Error(err))
		}
		log.Info("data directory reset", zap.String("dir", cfg.DataDir))
	}

	bus := pubsub.New()
	records, err := storage.Open(cfg.DataDir, bus, log)
	if err != nil {
		log.Fatal("record store open failed", zap.Error(err))
	}

	if *seed {
		if err := records.Put("menu-items", menu.DefaultCatalog()); err != nil {
			log.Fatal("menu seed failed", zap.Error(err))
		}
		// dropping the users record makes the auth store reseed the
		// demo staff on construction
		if err := records.Delete("users"); err != nil {
			log.Fatal("users reset failed", zap.Error(err))
		}
		log.Info("demo records restored")
	}

	settingsStore := settings.NewStore(records, bus, log)
	menuStore := menu.NewStore(records, bus, log)
	ledgerStore := ledger.NewStore(records, bus, menuStore, log)
	notifyStore := notify.NewStore(records, bus, log)
	notify.NewRelay(notifyStore, bus, log)
	authStore := auth.NewStore(records, bus, log, auth.Options{
		SessionSecret: cfg.SessionSecret,
		SessionExpiry: cfg.SessionExpiry,
		LoginDelay:    cfg.LoginDelay,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go storage.NewPoller(bus, cfg.PollInterval, log).Run(ctx)

	log.Info("pos core ready",
		zap.Int("orders", len(ledgerStore.Orders())),
		zap.Int("menuItems", len(menuStore.Items())),
		zap.Int("staff", len(authStore.Users())),
		zap.Int("tables", settingsStore.Settings().NumberOfTables),
		zap.Int("unreadNotifications", notifyStore.UnreadCount()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	log.Info("pos core stopped")
}
