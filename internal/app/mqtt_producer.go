package app

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/em_tracker/internal/config"
	"github.com/relabs-tech/em_tracker/internal/format"
)

// RunProducer polls the tracker at the configured cadence and publishes
// each frame as a JSON Lines record to the frames topic.
func RunProducer(mock bool) error {
	cfg := config.Get()

	src, err := openSource(mock, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Infof("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	fmtr, err := format.New("json")
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-sigCh:
			log.Infof("producer: interrupted, stopping after %d frames", frames)
			return nil
		case <-ticker.C:
			frame, err := src.Next()
			if err != nil {
				return err
			}

			record, err := fmtr.Format(frame)
			if err != nil {
				log.Errorf("producer: frame marshal error: %v", err)
				continue
			}

			payload := strings.TrimSuffix(record, "\n")
			if token := client.Publish(cfg.TopicFrames, 0, true, []byte(payload)); token.Wait() && token.Error() != nil {
				log.Errorf("producer: MQTT publish error: %v", token.Error())
				continue
			}

			frames++
			if frames%progressEvery == 0 {
				log.Infof("producer: %d frames published to %s", frames, cfg.TopicFrames)
			}
		}
	}
}
