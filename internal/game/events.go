package game

import "time"

// GameEvent records something that happened during the game, for the
// in-memory event log carried alongside the state.
type GameEvent struct {
	Type      string                 `json:"event_type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

func newEvent(eventType string, data map[string]interface{}) GameEvent {
	return GameEvent{Type: eventType, Data: data, Timestamp: time.Now().UTC()}
}
