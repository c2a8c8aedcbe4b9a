package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-pizza-bot/internal/bot"
	"github.com/ariefcatur/go-pizza-bot/internal/builder"
	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
	"github.com/ariefcatur/go-pizza-bot/internal/checkout"
	"github.com/ariefcatur/go-pizza-bot/internal/config"
	"github.com/ariefcatur/go-pizza-bot/internal/fulfillment"
	"github.com/ariefcatur/go-pizza-bot/internal/httpx"
	kafkax "github.com/ariefcatur/go-pizza-bot/internal/kafka"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
	"github.com/ariefcatur/go-pizza-bot/internal/postgres"
	"github.com/ariefcatur/go-pizza-bot/internal/redisx"
	"github.com/ariefcatur/go-pizza-bot/internal/retention"
	"github.com/ariefcatur/go-pizza-bot/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Z().Fatal("config", zap.Error(err))
	}
	log := logger.Init(cfg.LogMode, logger.Options{Dir: cfg.LogDir})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	menu, err := catalog.Load(cfg.MenuFile)
	if err != nil {
		log.Fatal("menu", zap.Error(err))
	}

	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	store := &orders.Repo{DB: db}

	// events outlive the HTTP server so in-flight updates still publish
	var events orders.EventSink = orders.NopEvents{}
	var prod *kafkax.Producer
	prodCtx, stopProd := context.WithCancel(context.Background())
	defer stopProd()
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(prodCtx)
		events = kafkax.NewOrderEvents(prod, cfg.ServiceName)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("telegram", zap.Error(err))
	}
	layout := telegram.NewLayout(menu)
	tg := telegram.NewNotifier(api, layout)

	carts := cart.NewStore()
	b := builder.New(carts, catalog.DefaultIngredients)
	co := checkout.New(carts, store, tg, catalog.DefaultIngredients, checkout.Config{
		AdminID:      cfg.AdminID,
		KitchenID:    cfg.KitchenID,
		BankName:     cfg.BankName,
		CardNumber:   cfg.CardNumber,
		SupportPhone: cfg.SupportPhone,
	}, checkout.WithEvents(events))
	f := fulfillment.New(store, tg, tg, events)
	d := bot.New(menu, carts, b, co, f, tg, bot.Config{AdminID: cfg.AdminID, SupportPhone: cfg.SupportPhone})

	hook := &httpx.WebhookHandler{Secret: cfg.WebhookSecret, Updates: telegram.NewRouter(api, d, layout)}
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		hook.Dedup = redisx.NewDedup(rdb, cfg.ServiceName)
	}
	router := httpx.NewRouter(log)
	hook.Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	if cfg.WebhookBase != "" {
		if _, err := telegram.SetWebhook(api, cfg.WebhookBase, httpx.WebhookPath(cfg.WebhookSecret)); err != nil {
			log.Fatal("webhook", zap.Error(err))
		}
		log.Info("webhook registered", zap.String("base", cfg.WebhookBase))
	} else {
		log.Warn("WEBHOOK_BASE_URL not set, webhook not registered")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return retention.New(store, events).Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("stopped with error", zap.Error(err))
	}
	log.Info("shutting down")
	if prod != nil {
		stopProd()
		prod.WaitClosed()
	}
}
