package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// GlobalTopic is the topic of clients following every hoot.
const GlobalTopic = ""

type envelope struct {
	topic string
	data  []byte
}

// Hub maintains the set of active clients and fans hoot activity out to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// A map of hoot IDs to the clients following that hoot.
	subscriptions map[string]map[*Client]bool

	// Outbound activity waiting to be fanned out.
	broadcast chan envelope

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:     make(chan envelope, 256),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			if h.subscriptions[client.Topic] == nil {
				h.subscriptions[client.Topic] = make(map[*Client]bool)
			}
			h.subscriptions[client.Topic][client] = true
			log.Info().Int("total_clients", len(h.clients)).Str("topic", client.Topic).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case msg := <-h.broadcast:
			h.deliver(GlobalTopic, msg.data)
			if msg.topic != GlobalTopic {
				h.deliver(msg.topic, msg.data)
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues activity for the clients following topic and for global clients.
// It never blocks; when the queue is full the message is dropped.
func (h *Hub) Publish(topic, action string, payload interface{}) {
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return
	}
	select {
	case h.broadcast <- envelope{topic: topic, data: data}:
	default:
		log.Warn().Str("action", action).Str("topic", topic).Msg("Websocket broadcast queue full, dropping message")
	}
}

func (h *Hub) deliver(topic string, data []byte) {
	for client := range h.subscriptions[topic] {
		select {
		case client.Send <- data:
		default:
			// Slow consumer.
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	if subs, ok := h.subscriptions[client.Topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.Topic)
		}
	}
	client.closeSend()
}
