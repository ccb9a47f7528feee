package main

import (
	"log"
	"net/http"

	_ "github.com/jenca-cloud/users/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jenca-cloud/users/internal/cache"
	"github.com/jenca-cloud/users/internal/config"
	"github.com/jenca-cloud/users/internal/db"
	"github.com/jenca-cloud/users/internal/handler"
	"github.com/jenca-cloud/users/internal/model"
	"github.com/jenca-cloud/users/internal/repository"
	"github.com/jenca-cloud/users/internal/router"
	"github.com/jenca-cloud/users/internal/service"
)

// @title User Storage API
// @version 1.0
// @description Storage service persisting user records for the authentication service.
// @host localhost:5001
// @BasePath /
// @schemes http
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
	svc := service.NewUserService(users, cacheClient)
	h := handler.NewUserHandler(svc)

	router.RegisterStorage(e, h)

	addr := ":" + cfg.StoragePort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
