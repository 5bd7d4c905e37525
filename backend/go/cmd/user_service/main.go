// The user service owns accounts: registration, login, JWT issuance and
// profile lookup, backed by MySQL.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"EchoChat/backend/go/internal/bootstrap"
	"EchoChat/backend/go/internal/config"
	"EchoChat/backend/go/internal/database/mysql"
	"EchoChat/backend/go/internal/user_service/api"
	"EchoChat/backend/go/internal/user_service/service"
	"EchoChat/backend/go/internal/user_service/store"
	"EchoChat/backend/go/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("cannot load config: %v", err)
	}
	bootstrap.InitLogger(cfg)
	log := logger.New("user_service", "", "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		log.Fatal("cannot connect to MySQL: " + err.Error())
	}
	userStore, err := store.NewGormStore(db)
	if err != nil {
		log.Fatal("cannot migrate users table: " + err.Error())
	}

	userService := service.NewUserService(userStore, &cfg.Auth, log)
	handler := api.NewHandler(userService, log)
	router := api.NewRouter(handler, cfg, bootstrap.BuildLimiter(&cfg.Middleware.RateLimiter))

	server := &http.Server{Addr: cfg.Server.UserAddress, Handler: router}
	go func() {
		log.Info("user service listening on " + cfg.Server.UserAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed: " + err.Error())
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown failed: " + err.Error())
	}
}
