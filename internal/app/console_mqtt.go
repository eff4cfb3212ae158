package app

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/em_tracker/internal/config"
	"github.com/relabs-tech/em_tracker/internal/format"
)

// RunConsoleMQTT subscribes to the frames topic and prints one line per
// sensor per frame, for watching a capture session from another machine.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("emtracker-console-subscriber")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Infof("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicFrames, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec format.FrameRecord
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Errorf("console: frame unmarshal error: %v", err)
			return
		}

		ids := make([]string, 0, len(rec.Sensors))
		for id := range rec.Sensors {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, _ := strconv.Atoi(ids[i])
			b, _ := strconv.Atoi(ids[j])
			return a < b
		})

		for _, id := range ids {
			s := rec.Sensors[id]
			fmt.Printf(
				"[S%s] t=%8dms  pos=%9.4f %9.4f %9.4f  ori=%9.4f %9.4f %9.4f  q=%d\n",
				id, rec.T,
				s.Pos[0], s.Pos[1], s.Pos[2],
				s.Ori[0], s.Ori[1], s.Ori[2],
				s.Q,
			)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Infof("console: subscribed to %s", cfg.TopicFrames)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Infoln("console: shutting down")
	client.Disconnect(250)
	return nil
}
