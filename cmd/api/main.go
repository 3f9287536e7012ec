package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/config"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/db"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/logger"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/payment"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	gdb, err := db.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := realtime.NewRedis(cfg)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect redis")
	}
	defer rdb.Close()

	hub := realtime.NewHub(log)
	go hub.Run()
	go func() {
		if err := realtime.Subscribe(ctx, rdb, hub, log); err != nil {
			log.Error().Err(err).Msg("notification subscriber stopped")
		}
	}()

	jobRepo := contracts.NewRepository(gdb)
	contractSvc := contracts.NewService(jobRepo)
	walletSvc := wallet.NewWalletService(gdb)
	engine := payment.NewEngine(gdb, jobRepo, walletSvc, log,
		payment.WithTimeout(cfg.PaymentTimeout),
		payment.WithNotifier(realtime.NewPublisher(rdb)),
	)

	app := fiber.New(fiber.Config{DisableStartupMessage: !cfg.IsDevelopment()})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	router := &handlers.Router{
		Auth: &handlers.AuthHandler{
			DB:        gdb,
			Wallet:    walletSvc,
			JWTSecret: cfg.JWTSecret,
			Expires:   cfg.JWTExpiresMin,
			Log:       log,
		},
		Contracts:     handlers.NewContractHandler(contractSvc, log),
		Jobs:          handlers.NewJobHandler(contractSvc, engine, log),
		Balances:      &handlers.BalanceHandler{Wallet: walletSvc, Log: log},
		Notifications: &handlers.NotificationHandler{Hub: hub, Log: log},
		Authenticate:  middleware.Authenticate(gdb, cfg.JWTSecret),
	}
	router.Register(app)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		hub.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("starting contractpay api")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
