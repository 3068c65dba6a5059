package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	ws "github.com/isdelr/yatube/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to live feed subscriptions.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler accepting browsers
// from allowedOrigins and same-origin pages.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin] || strings.HasSuffix(origin, "://"+r.Host)
			},
		},
	}
}

// Serve handles the WebSocket connection request. The optional topic query
// parameter picks the initial feed, defaulting to the global one.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = ws.GlobalTopic
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, topic)
	h.hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		// Unregistering closes Send, which stops the write pump.
		h.hub.Unregister(client)
	}()
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg struct {
		Action  string `json:"action"`
		Payload struct {
			Topic string `json:"topic"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		h.hub.SendTo(client, ws.NewErrorMessage("Invalid message"))
		return
	}

	switch msg.Action {
	case ws.ActionSubscribe, ws.ActionUnsubscribe:
		if msg.Payload.Topic == "" {
			h.hub.SendTo(client, ws.NewErrorMessage("Missing topic"))
			return
		}
		if msg.Action == ws.ActionSubscribe {
			h.hub.Subscribe(client, msg.Payload.Topic)
		} else {
			h.hub.Unsubscribe(client, msg.Payload.Topic)
		}
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.hub.SendTo(client, ws.NewErrorMessage("Unknown action: "+msg.Action))
	}
}
