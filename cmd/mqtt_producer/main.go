// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/em_tracker/internal/app"
	"github.com/relabs-tech/em_tracker/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	mock := flag.Bool("mock", false, "use the mock tracker source")
	flag.Parse()

	log.Infoln("starting em-tracker frame producer (tracker → MQTT)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunProducer(*mock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
