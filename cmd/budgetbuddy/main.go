package main

import (
	"context"
	"net/http"
	"time"

	"github.com/brohem/BudgedBuddy/internal/amqp"
	"github.com/brohem/BudgedBuddy/internal/bot"
	"github.com/brohem/BudgedBuddy/internal/cli"
	apphttp "github.com/brohem/BudgedBuddy/internal/http"
	applog "github.com/brohem/BudgedBuddy/internal/log"
	"github.com/brohem/BudgedBuddy/internal/store"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)
	log := logger.WithComponent(applog.ComponentApp)

	st, err := store.New(cfg, logger)
	if err != nil {
		log.Error("Failed to initialize account store",
			applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		return
	}

	// Event publishing is optional; the bot runs fine without a broker.
	var events bot.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			log.Warn("AMQP unavailable, ledger events disabled", applog.FieldError, err)
		} else {
			events = amqpClient
		}
	}

	proc := bot.NewProcessor(st, bot.ProcessorOptions{
		BotName:     cfg.BotName,
		LockTimeout: cfg.LockTimeout,
		SaveRetries: cfg.SaveRetries,
		Events:      events,
	}, logger)

	srv := apphttp.NewServer(":"+cfg.Port, proc, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(log, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", applog.FieldError, err)
		}
		if amqpClient != nil {
			amqpClient.Close()
		}
		if err := st.Close(); err != nil {
			log.Error("Store close error", applog.FieldError, err)
		}
	})

	log.Info("Starting budgetbuddy server",
		"port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	log.Info("Server stopped gracefully")
}
