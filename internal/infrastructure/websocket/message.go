package websocket

import (
	"encoding/json"
	"time"
)

const (
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeDealEvent = "deal_event"
)

// WSMessage is the envelope for every frame sent over /ws.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func encode(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
