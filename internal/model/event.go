package model

import "encoding/json"

// Event is a notification produced by a committed engine operation.
type Event struct {
	Seq       uint64      `json:"seq"`
	EventName string      `json:"event_name"`
	PoolID    string      `json:"pool_id"`
	Token     string      `json:"token"`
	Actor     string      `json:"actor"`
	Timestamp uint64      `json:"timestamp"`
	Decoded   interface{} `json:"decoded"`
}

// EventRecord is the JSON representation used when reading the event log back.
type EventRecord struct {
	Seq       uint64          `json:"seq"`
	EventName string          `json:"event_name"`
	PoolID    string          `json:"pool_id"`
	Token     string          `json:"token"`
	Actor     string          `json:"actor"`
	Timestamp uint64          `json:"timestamp"`
	Decoded   json.RawMessage `json:"decoded"`
}
