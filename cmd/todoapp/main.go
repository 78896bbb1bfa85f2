package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/todoapp/server/internal/app/auth"
	"github.com/todoapp/server/internal/app/todo"
	"github.com/todoapp/server/internal/app/web"
	"github.com/todoapp/server/internal/platform/config"
	"github.com/todoapp/server/internal/platform/httpx"
	"github.com/todoapp/server/internal/platform/logging"
	"github.com/todoapp/server/internal/platform/sqlitedb"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New(config.LogConfig{}).Error("configuration error", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log)

	db, err := sqlitedb.Open(cfg.Data.Directory)
	if err != nil {
		log.Error("database error", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := todo.NewSQLRepository(db)
	todoService := todo.NewService(repo)

	sessions := auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.SecureCookie)
	provider := auth.NewGitHub(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.EnterpriseDomain)
	authHandler := auth.NewHandler(provider, sessions, log)
	authHandler.TrustProxy = cfg.Server.TrustProxyHeaders

	todoHandler := todo.NewHandler(todoService, log, authHandler.RequireUser)
	webHandler, err := web.NewHandler(log)
	if err != nil {
		log.Error("template error", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(httpx.RequestLogger(log))
	r.Use(authHandler.WithPrincipal)
	authHandler.Register(r)
	webHandler.Register(r)
	r.Mount("/api/items", todoHandler.Router())

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	log.Info("todo app listening", "addr", cfg.Server.Addr)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error("server error", "error", err)
		os.Exit(1)
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
