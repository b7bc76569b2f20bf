package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zauremazhikova/linkpage/internal/app"
	"github.com/zauremazhikova/linkpage/internal/config"
	"github.com/zauremazhikova/linkpage/internal/db/postgres"
	"github.com/zauremazhikova/linkpage/internal/db/storage"
	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/logger/message"
	"github.com/zauremazhikova/linkpage/internal/services"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	config.InitConfig()
	logger.New("info")

	if config.AppConfig.StorageType == "DB" {
		postgres.PrepareDB()
	} else {
		storage.InitStorage()
	}

	linkService := services.NewLinkService(config.AppConfig.StorageType)

	srv := &http.Server{
		Addr:    config.AppConfig.ServerAddr,
		Handler: app.InitHandlers(linkService),
	}

	// останавливаемся по сигналу; file-хранилище сбрасывается на диск
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("HTTP shutdown ERROR: %s", err)})
		}

		if config.AppConfig.StorageType == "File" && storage.Store != nil {
			if err := storage.Store.ShutdownSaveToFile(config.AppConfig.FileStorage); err != nil {
				logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("Store save ERROR: %s", err)})
			}
		}
		close(idleConnsClosed)
	}()

	fmt.Println("Running server on", config.AppConfig.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-idleConnsClosed
	return nil
}
