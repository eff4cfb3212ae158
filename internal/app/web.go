package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/em_tracker/internal/config"
	"github.com/relabs-tech/em_tracker/internal/format"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RunWeb subscribes to the frames topic and serves the latest frame as
// JSON plus a websocket push stream for live viewers.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu        sync.RWMutex
		lastFrame []byte
	)
	var (
		subMu sync.Mutex
		subs  = make(map[*websocket.Conn]chan []byte)
	)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Infof("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicFrames, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec format.FrameRecord
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Errorf("web: frame unmarshal error: %v", err)
			return
		}

		payload := append([]byte(nil), msg.Payload()...)
		mu.Lock()
		lastFrame = payload
		mu.Unlock()

		subMu.Lock()
		for _, ch := range subs {
			select {
			case ch <- payload:
			default: // slow viewer, drop this frame for it
			}
		}
		subMu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Infof("web: subscribed to MQTT topic %s", cfg.TopicFrames)

	// Latest frame as JSON.
	http.HandleFunc("/api/frame", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		frame := lastFrame
		mu.RUnlock()

		if frame == nil {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(frame); err != nil {
			log.Errorf("web: frame write error: %v", err)
		}
	})

	// Live frame push for viewers.
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("web: websocket upgrade error: %v", err)
			return
		}

		ch := make(chan []byte, 8)
		subMu.Lock()
		subs[conn] = ch
		subMu.Unlock()
		defer func() {
			subMu.Lock()
			delete(subs, conn)
			subMu.Unlock()
			conn.Close()
		}()

		for payload := range ch {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Warnf("web: websocket write error: %v", err)
				return
			}
		}
	})

	// Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Infof("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
