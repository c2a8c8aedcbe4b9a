package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-pizza-bot/internal/config"
	kafkax "github.com/ariefcatur/go-pizza-bot/internal/kafka"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadEventLog()
	if err != nil {
		logger.Z().Fatal("config", zap.Error(err))
	}
	log := logger.Init(cfg.LogMode, logger.Options{Dir: cfg.LogDir, Filename: "eventlog.log"})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.Group, orders.AllTopics, cfg.Workers)
	log.Info("event log consumer started",
		zap.String("group", cfg.Group), zap.Strings("topics", orders.AllTopics), zap.Int("workers", cfg.Workers))
	if err := cons.Start(ctx, kafkax.EventLogger(log)); err != nil {
		log.Fatal("consumer exit", zap.Error(err))
	}
	log.Info("event log consumer stopped")
}
