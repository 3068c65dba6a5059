package websocket

import "github.com/rs/zerolog/log"

// GlobalTopic receives every post event.
const GlobalTopic = "global"

// GroupTopic is the topic for posts published to the group with slug.
func GroupTopic(slug string) string { return "group:" + slug }

// ProfileTopic is the topic for posts written by username.
func ProfileTopic(username string) string { return "profile:" + username }

type subscription struct {
	client *Client
	topic  string
	on     bool
}

type publication struct {
	topics  []string
	client  *Client // direct reply, topics ignored
	message []byte
}

// Hub maintains the set of active clients and fans post events out to the
// topics they are subscribed to. All maps are owned by the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// A map of topics to the set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	subscribe chan subscription
	publish   chan publication
	done      chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		subscribe:     make(chan subscription),
		publish:       make(chan publication, 64),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
			if client.Topic != "" {
				h.addSubscription(client, client.Topic)
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case sub := <-h.subscribe:
			if !h.clients[sub.client] {
				continue
			}
			if sub.on {
				h.addSubscription(sub.client, sub.topic)
			} else {
				h.removeSubscription(sub.client, sub.topic)
			}
		case pub := <-h.publish:
			h.deliver(pub)
		}
	}
}

// Stop ends the Run loop and closes every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client and its initial topic.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendTo queues message for a single client.
func (h *Hub) SendTo(client *Client, message []byte) {
	if message == nil {
		return
	}
	select {
	case h.publish <- publication{client: client, message: message}:
	case <-h.done:
	}
}

// Publish queues message for every client subscribed to any of topics.
// A client subscribed to several of them receives it once.
func (h *Hub) Publish(message []byte, topics ...string) {
	if message == nil {
		return
	}
	select {
	case h.publish <- publication{topics: topics, message: message}:
	case <-h.done:
	}
}

// Subscribe adds client to topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	select {
	case h.subscribe <- subscription{client: client, topic: topic, on: true}:
	case <-h.done:
	}
}

// Unsubscribe removes client from topic.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	select {
	case h.subscribe <- subscription{client: client, topic: topic}:
	case <-h.done:
	}
}

func (h *Hub) deliver(pub publication) {
	if pub.client != nil {
		if h.clients[pub.client] {
			h.trySend(pub.client, pub.message)
		}
		return
	}

	sent := make(map[*Client]bool)
	for _, topic := range pub.topics {
		for client := range h.subscriptions[topic] {
			if sent[client] {
				continue
			}
			sent[client] = true
			h.trySend(client, pub.message)
		}
	}
}

func (h *Hub) trySend(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		// Slow consumer, drop it.
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	for topic, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}

func (h *Hub) addSubscription(client *Client, topic string) {
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[*Client]bool)
	}
	h.subscriptions[topic][client] = true
}

func (h *Hub) removeSubscription(client *Client, topic string) {
	if subs, ok := h.subscriptions[topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, topic)
		}
	}
}
