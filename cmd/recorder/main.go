package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/em_tracker/internal/app"
	"github.com/relabs-tech/em_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	log.Infoln("starting em-tracker recorder (MQTT → sqlite)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunRecorder(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
