package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/Vovarama1992/voxstudio/internal/ports"
)

type statusMsg struct {
	Status   string `json:"status"`
	ID       string `json:"id,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

// WSHandler registers the socket in its room and starts a job from the
// first message. Closing the socket cancels the job.
func WSHandler(hub *Hub, producer ports.Producer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WS] upgrade failed: %v", err)
			return
		}

		roomID := r.URL.Query().Get("roomID")
		if roomID == "" {
			roomID = "default"
		}

		ctx, cancel := context.WithCancel(context.Background())

		log.Printf("[WS] start room=%s", roomID)
		hub.Register(roomID, conn)

		defer func() {
			cancel()
			log.Printf("[WS] end room=%s", roomID)
			hub.Unregister(roomID, conn)
		}()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[WS] read init fail room=%s err=%v", roomID, err)
			return
		}

		var req ports.ProduceRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Printf("[WS] bad json room=%s", roomID)
			hub.SendJSON(roomID, statusMsg{Status: "error", Error: "invalid json"})
			return
		}

		log.Printf("[WS] init room=%s mode=%s dur=%g", roomID, req.Mode, req.Duration)
		hub.SendJSON(roomID, statusMsg{Status: "processing_started"})

		go func() {
			v, err := producer.Produce(ctx, req, roomID)
			if err != nil {
				log.Printf("[WS] job error room=%s err=%v", roomID, err)
				hub.SendJSON(roomID, statusMsg{Status: "error", Error: err.Error()})
				return
			}
			hub.SendJSON(roomID, statusMsg{Status: "ok", ID: v.ID, VideoURL: v.VideoURL})
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Printf("[WS] disconnect room=%s", roomID)
				return
			}
		}
	}
}
