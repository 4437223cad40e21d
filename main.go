package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/cache"
	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
	"github.com/EmpoweredVote/roadgeo/internal/metrics"
	"github.com/EmpoweredVote/roadgeo/internal/middleware"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"github.com/EmpoweredVote/roadgeo/internal/roads"
	"github.com/EmpoweredVote/roadgeo/internal/roadworks"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	_ = godotenv.Load(".env.local")
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	d, err := db.Open(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	if err := roads.Init(d); err != nil {
		logrus.Fatal("Failed to set up road segments: ", err)
	}
	if err := roadworks.Init(d); err != nil {
		logrus.Fatal("Failed to set up roadworks: ", err)
	}

	opts := nearest.Options{Strategy: cfg.Query.Strategy, Polyline: cfg.Query.Polyline}
	roadQ, err := nearest.New(d, roads.Target, opts)
	if err != nil {
		logrus.Fatal(err)
	}
	worksQ, err := nearest.New(d, roadworks.Target, opts)
	if err != nil {
		logrus.Fatal(err)
	}

	rc := cache.OpenRedis(cfg.Redis)
	if rc != nil {
		defer rc.Close()
	}
	roadSvc := roads.NewService(cache.Wrap(roadQ, rc, roads.TableName, cfg.Redis))
	worksSvc := roadworks.NewService(cache.Wrap(worksQ, rc, roadworks.TableName, cfg.Redis), d, cfg.Query.WithinMeters)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	r.Use(middleware.Metrics)
	r.Get("/", RootHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
		r.Mount("/roads", roads.SetupRoutes(roadSvc))
		r.Mount("/roadworks", roadworks.SetupRoutes(worksSvc))
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logrus.Infof("Server listening on port :%s...", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}
