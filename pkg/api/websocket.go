// pkg/api/websocket.go

package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// Origins are already open via the CORS middleware; the websocket upgrade
// follows the same policy.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// serveEvents streams monitor events (alerts and score snapshots) to a
// websocket client until either side disconnects.
func (s *APIServer) serveEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket connection: %v", err)
		return
	}

	events := s.monitor.Subscribe()

	defer func() {
		s.monitor.Unsubscribe(events)

		if err := conn.Close(); err != nil {
			log.Printf("Error closing websocket: %v", err)
		}
	}()

	// Reader goroutine: the client sends nothing we care about, but reads
	// must be drained for close and control frames to be processed.
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}

			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}

			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error writing websocket event: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
