package ws

import (
	"encoding/json"
	"log"
	"sync"

	"tarefas/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgTaskDone  MessageType = "task_done"
	MsgBatchDone MessageType = "batch_done"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ProgressEvent is the payload for batch progress messages
type ProgressEvent struct {
	BatchID  string              `json:"batch_id"`
	Outcome  *model.TaskOutcome  `json:"outcome,omitempty"`
	Outcomes []model.TaskOutcome `json:"outcomes,omitempty"`
}

// Connection represents one subscribed WebSocket client. An empty BatchID
// subscribes to every batch.
type Connection struct {
	BatchID string
	Send    chan []byte
	Hub     *Hub
}

// Hub fans batch progress events out to subscribers. It implements
// service.Broadcaster; submissions proceed unchanged when nobody listens.
type Hub struct {
	conns map[*Connection]bool
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	events     chan *Message
}

// NewHub creates a new progress hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		events:     make(chan *Message, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = true
			h.mu.Unlock()
			log.Printf("[WS] subscriber connected (batch %q)", conn.BatchID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.conns[conn] {
				delete(h.conns, conn)
				close(conn.Send)
			}
			h.mu.Unlock()

		case msg := <-h.events:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *Message) {
	var event ProgressEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		if conn.BatchID != "" && conn.BatchID != event.BatchID {
			continue
		}
		select {
		case conn.Send <- data:
		default:
			// Slow subscriber; drop rather than block the batch
		}
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// TaskDone broadcasts one completed task outcome
func (h *Hub) TaskDone(batchID string, outcome model.TaskOutcome) {
	h.emit(MsgTaskDone, ProgressEvent{BatchID: batchID, Outcome: &outcome})
}

// BatchDone broadcasts the completed batch aggregate
func (h *Hub) BatchDone(batchID string, outcomes []model.TaskOutcome) {
	h.emit(MsgBatchDone, ProgressEvent{BatchID: batchID, Outcomes: outcomes})
}

func (h *Hub) emit(msgType MessageType, event ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] failed to encode %s event: %v", msgType, err)
		return
	}
	select {
	case h.events <- &Message{Type: msgType, Payload: payload}:
	default:
		log.Printf("[WS] event buffer full, dropping %s", msgType)
	}
}
