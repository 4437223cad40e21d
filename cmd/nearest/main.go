package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
	"github.com/EmpoweredVote/roadgeo/internal/nearest"
	"github.com/EmpoweredVote/roadgeo/internal/roads"
	"github.com/EmpoweredVote/roadgeo/internal/roadworks"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional YAML config file")
		kind       = flag.String("kind", "roads", "roads or roadworks")
		lat        = flag.Float64("lat", 0, "latitude (WGS 84)")
		lon        = flag.Float64("lon", 0, "longitude (WGS 84)")
		strategy   = flag.String("strategy", "", "auto, index or planar (overrides config)")
		polyline   = flag.Bool("polyline", false, "planar strategy measures every segment")
		within     = flag.Float64("within", 0, "roadworks only: list sites within this many meters")
	)
	flag.Parse()

	_ = godotenv.Load(".env.local")
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	if *strategy != "" {
		cfg.Query.Strategy = *strategy
	}
	if *polyline {
		cfg.Query.Polyline = true
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	d, err := db.Open(cfg.Database)
	if err != nil {
		logrus.Fatal(err)
	}
	opts := nearest.Options{Strategy: cfg.Query.Strategy, Polyline: cfg.Query.Polyline}
	ctx := context.Background()

	var out interface{}
	switch *kind {
	case "roads":
		q, err := nearest.New(d, roads.Target, opts)
		if err != nil {
			logrus.Fatal(err)
		}
		m, err := roads.NewService(q).Nearest(ctx, *lat, *lon)
		if err != nil {
			logrus.Fatal(err)
		}
		if m == nil {
			fmt.Println("No road found")
			return
		}
		out = m
	case "roadworks":
		q, err := nearest.New(d, roadworks.Target, opts)
		if err != nil {
			logrus.Fatal(err)
		}
		svc := roadworks.NewService(q, d, cfg.Query.WithinMeters)
		if *within > 0 {
			matches, err := svc.Within(ctx, *lat, *lon, *within)
			if err != nil {
				logrus.Fatal(err)
			}
			if len(matches) == 0 {
				fmt.Printf("No roadworks within %.0f meters\n", *within)
				return
			}
			out = matches
			break
		}
		m, err := svc.Nearest(ctx, *lat, *lon)
		if err != nil {
			logrus.Fatal(err)
		}
		if m == nil {
			fmt.Println("No roadworks found")
			return
		}
		out = m
	default:
		flag.Usage()
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logrus.Fatal(err)
	}
}
