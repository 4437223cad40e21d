package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/signal"

	"github.com/EmpoweredVote/roadgeo/internal/cache"
	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/feature"
	"github.com/EmpoweredVote/roadgeo/internal/ingest"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
	"github.com/EmpoweredVote/roadgeo/internal/roads"
	"github.com/EmpoweredVote/roadgeo/internal/roadworks"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		kind       = flag.String("kind", "", "roads or roadworks")
		path       = flag.String("file", "", "path to a GeoJSON FeatureCollection")
		dbURL      = flag.String("db", "", "DATABASE_URL (overrides config)")
		chunkSize  = flag.Int("chunk", 0, "features per transaction (overrides config)")
		report     = flag.String("report", "", "write the JSON report to this path")
	)
	flag.Parse()

	if *path == "" || (*kind != "roads" && *kind != "roadworks") {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load(".env.local")
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	if *dbURL != "" {
		cfg.Database.URL = *dbURL
	}
	if *chunkSize > 0 {
		cfg.Ingest.ChunkSize = *chunkSize
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	raws, err := feature.LoadFile(*path)
	if err != nil {
		logrus.Fatalf("load %s: %v", *path, err)
	}

	d, err := db.Open(cfg.Database)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := run(ctx, d, *kind, raws, cfg.Ingest.ChunkSize)
	if rep.Inserted > 0 {
		dropCached(ctx, cfg.Redis, *kind)
	}
	if *report != "" {
		writeReport(*report, rep)
	}
	if err != nil {
		if errors.Is(err, db.ErrConnectivity) {
			logrus.Fatal("lost the database, run aborted: ", err)
		}
		logrus.Fatal(err)
	}
	logrus.Info(rep.Summary())
}

func run(ctx context.Context, d *gorm.DB, kind string, raws []feature.Raw, chunkSize int) (ingest.Report, error) {
	opts := []ingest.Option{
		ingest.WithChunkSize(chunkSize),
		ingest.WithLogger(logging.For("ingest")),
	}
	switch kind {
	case "roadworks":
		if err := roadworks.Init(d); err != nil {
			return ingest.Report{}, err
		}
		return roadworks.NewIngestor(d, opts...).Run(ctx, raws)
	default:
		if err := roads.Init(d); err != nil {
			return ingest.Report{}, err
		}
		return roads.NewIngestor(d, opts...).Run(ctx, raws)
	}
}

// dropCached clears cached nearest answers for the table just written to.
func dropCached(ctx context.Context, cfg config.Redis, kind string) {
	rc := cache.OpenRedis(cfg)
	if rc == nil {
		return
	}
	defer rc.Close()
	prefix := roads.TableName
	if kind == "roadworks" {
		prefix = roadworks.TableName
	}
	n, err := cache.Invalidate(ctx, rc, prefix)
	if err != nil {
		logrus.WithError(err).Warn("could not clear cached answers")
		return
	}
	logrus.WithField("keys", n).Info("cleared cached nearest answers")
}

func writeReport(path string, rep ingest.Report) {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		logrus.WithError(err).Warn("could not encode report")
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		logrus.WithError(err).Warn("could not write report")
	}
}
