package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/qdash/internal/events"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

// WebSocketHandler pushes bus events to views over a websocket. Frames are
// JSON text by default, msgpack binary with ?encoding=msgpack.
type WebSocketHandler struct {
	eventBus     *events.Bus
	writeTimeout time.Duration
	log          zerolog.Logger
}

// NewWebSocketHandler creates the websocket event pusher
func NewWebSocketHandler(eventBus *events.Bus, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		eventBus:     eventBus,
		writeTimeout: 5 * time.Second,
		log:          log.With().Str("component", "ws_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	binary := r.URL.Query().Get("encoding") == "msgpack"
	allowed := parseTypesFilter(r.URL.Query().Get("types"))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	eventChan, id := subscribe(h.eventBus, allowed, h.log)
	defer h.eventBus.Unsubscribe(id)

	// Views never send; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Bool("msgpack", binary).Msg("Client connected to websocket stream")

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from websocket stream")
			return

		case event := <-eventChan:
			if err := h.write(ctx, conn, event, binary); err != nil {
				h.log.Warn().Err(err).Str("event_type", string(event.Type)).Msg("Failed to write websocket frame")
				return
			}
		}
	}
}

func (h *WebSocketHandler) write(ctx context.Context, conn *websocket.Conn, event *events.Event, binary bool) error {
	var (
		data    []byte
		err     error
		msgType = websocket.MessageText
	)
	if binary {
		data, err = msgpack.Marshal(event)
		msgType = websocket.MessageBinary
	} else {
		data, err = json.Marshal(event)
	}
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, msgType, data)
}
