package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"overlay-server/config"
	"overlay-server/core"
	"overlay-server/handlers/api/health"
	"overlay-server/handlers/api/overlays"
	"overlay-server/handlers/websocket"
	"overlay-server/stores"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

func setupRouter(cfg *config.Config, store core.OverlayStore, clients health.ClientCounter) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.HandleHealth(store, clients))

	r.Route("/api/overlays", func(r chi.Router) {
		r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
		r.Get("/", overlays.HandleList(store))
		r.Post("/", overlays.HandleCreate(store))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", overlays.HandleGet(store))
			r.Put("/", overlays.HandleUpdate(store))
			r.Delete("/", overlays.HandleDelete(store))
		})
	})

	return r
}

func waitForShutdown(srv *http.Server, hub *websocket.Hub, cfg *config.Config) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	s := <-signalC
	logrus.WithField("signal", s.String()).Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("server did not shut down cleanly")
	}
}

func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(cfg.Formatter())

	store := stores.GetStore(cfg.SeedSample)
	hub := websocket.NewHub(store, cfg.AllowedOrigins)

	r := setupRouter(cfg, stores.WithNotifier(store, hub), hub)
	r.Handle("/socket.io/", hub.Handler())

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	logrus.WithField("addr", cfg.ListenAddr).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(srv, hub, cfg)
}
