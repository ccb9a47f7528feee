package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jenca-cloud/users/internal/auth"
	"github.com/jenca-cloud/users/internal/cache"
	"github.com/jenca-cloud/users/internal/config"
	"github.com/jenca-cloud/users/internal/db"
	"github.com/jenca-cloud/users/internal/handler"
	"github.com/jenca-cloud/users/internal/model"
	"github.com/jenca-cloud/users/internal/repository"
	"github.com/jenca-cloud/users/internal/router"
	"github.com/jenca-cloud/users/internal/service"
)

func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	users := repository.NewUserRepository(gormDB)
	tokens := auth.NewTokenService(cfg.SecretKey)
	sessions := auth.NewSessionManager(tokens, auth.NewSessionStore(cacheClient), users)

	authSvc := service.NewAuthService(users, sessions)
	h := handler.NewAuthHandler(authSvc)

	router.RegisterAuth(e, cfg, h)

	addr := ":" + cfg.AuthPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
