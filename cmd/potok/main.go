// Package main запускает бота ПОТОК и HTTP-сервер Mini App API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/potokpay/potok-system/internal/bankdir"
	"github.com/potokpay/potok-system/internal/config"
	"github.com/potokpay/potok-system/internal/engine"
	"github.com/potokpay/potok-system/internal/repository"
	"github.com/potokpay/potok-system/internal/telegram"
	"github.com/potokpay/potok-system/internal/token"
	"github.com/potokpay/potok-system/internal/webapp"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	dir := bankdir.New(cfg.LogosBaseURL)
	codec := token.NewCodec(cfg.TransferSecret)

	eng := engine.New(repo, repo, dir, codec, logger, cfg.MiniAppURL)

	var tgBot *telegram.Bot
	if cfg.TelegramToken != "" {
		tgBot, err = telegram.New(cfg.TelegramToken, eng, repo, dir, logger)
		if err != nil {
			sugar.Fatalw("telegram bot initialization error", "error", err.Error())
		}
	} else {
		sugar.Warn("telegram token is empty, running webapp API only")
	}

	srv := webapp.NewServer(repo, codec, logger)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск long polling Telegram
	if tgBot != nil {
		g.Go(func() error {
			sugar.Info("starting telegram long polling")
			tgBot.Start(ctx)
			return nil
		})
	}

	// Запуск HTTP-сервера Mini App API
	g.Go(func() error {
		sugar.Infow("starting webapp server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
