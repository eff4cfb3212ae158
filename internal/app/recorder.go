// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/em_tracker/internal/config"
	"github.com/relabs-tech/em_tracker/internal/format"
	"github.com/relabs-tech/em_tracker/internal/recorder"
)

// RunRecorder subscribes to the frames topic and spools every frame into
// the sqlite capture database under a fresh session id.
func RunRecorder() error {
	cfg := config.Get()

	session := uuid.NewString()
	store, err := recorder.Open(cfg.RecorderDBPath, session)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Infof("recorder: session %s spooling to %s", session, cfg.RecorderDBPath)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDRecorder)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Infof("recorder: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicFrames, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec format.FrameRecord
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Errorf("recorder: frame unmarshal error: %v", err)
			return
		}
		if err := store.WriteFrame(rec); err != nil {
			log.Errorf("recorder: write error: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Infof("recorder: subscribed to MQTT topic %s", cfg.TopicFrames)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	client.Disconnect(250)

	n, err := store.Count()
	if err != nil {
		log.Warnf("recorder: sample count unavailable: %v", err)
	} else {
		log.Infof("recorder: session %s stored %d samples", session, n)
	}
	return nil
}
