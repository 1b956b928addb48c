package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"garden-core/internal/logging"
	"garden-core/internal/models"
)

// TriggerEvent is the JSON frame pushed to live feed subscribers.
type TriggerEvent struct {
	RuleID      string  `json:"ruleId"`
	DeviceName  string  `json:"deviceName"`
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold"`
	Condition   string  `json:"condition"`
	TriggeredAt string  `json:"triggeredAt"`
}

// Hub tracks websocket subscribers to the live alert feed. Connections are
// best-effort observers; a write failure just evicts the connection.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	logger *logging.Logger
}

// NewHub constructs an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool), logger: logger}
}

// Add registers a subscriber connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	h.logger.Infof("Alert feed subscriber added (total: %d)", len(h.conns))
}

// Remove unregisters and closes a subscriber connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
		h.logger.Infof("Alert feed subscriber removed (remaining: %d)", len(h.conns))
	}
}

// BroadcastTrigger pushes a fired trigger to every subscriber.
func (h *Hub) BroadcastTrigger(tc models.TriggerContext) {
	ev := TriggerEvent{
		RuleID:      tc.Rule.ID.String(),
		DeviceName:  tc.DeviceName,
		Metric:      string(tc.Metric),
		Value:       tc.Value,
		Threshold:   tc.Rule.Threshold,
		Condition:   string(tc.Rule.Condition),
		TriggeredAt: tc.OccurredAt.UTC().Format(time.RFC3339),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warnf("Dropping alert feed subscriber: %v", err)
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}
