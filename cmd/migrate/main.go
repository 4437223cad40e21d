package main

import (
	"flag"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
	"github.com/EmpoweredVote/roadgeo/internal/roads"
	"github.com/EmpoweredVote/roadgeo/internal/roadworks"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

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
		logrus.Fatal(err)
	}

	if err := roads.Init(d); err != nil {
		logrus.Fatal(err)
	}
	if err := roadworks.Init(d); err != nil {
		logrus.Fatal(err)
	}
	logrus.WithField("dialect", d.Dialector.Name()).Info("road_segments and road_construction are ready")
}
