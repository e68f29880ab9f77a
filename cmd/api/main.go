package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/carstash/carstash-go/internal/config"
	"github.com/carstash/carstash-go/internal/handler"
	"github.com/carstash/carstash-go/internal/middleware"
	"github.com/carstash/carstash-go/internal/repository"
	"github.com/carstash/carstash-go/internal/service"
	"github.com/carstash/carstash-go/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := storage.NewMinioStore(context.Background(), cfg.Minio)
	if err != nil {
		slog.Error("object storage connection failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	authHandler := handler.NewAuthHandler(authService)

	carRepo := repository.NewCarRepository(db)
	carService := service.NewCarService(carRepo, store, cfg.MaxImageCount)
	carHandler := handler.NewCarHandler(carService, cfg.MaxUploadSize)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/users/signup", authHandler.HandleSignup)
		r.Post("/users/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Post("/cars/create", carHandler.HandleCreate)
		r.Get("/cars/list", carHandler.HandleList)
		r.Get("/cars/search", carHandler.HandleSearch)
		r.Get("/cars/detail/{id}", carHandler.HandleDetail)
		r.Put("/cars/update/{id}", carHandler.HandleUpdate)
		r.Delete("/cars/delete/{id}", carHandler.HandleDelete)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
