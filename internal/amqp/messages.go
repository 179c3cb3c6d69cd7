package amqp

import (
	"encoding/json"
	"fmt"

	"savings/internal/events"
)

// EncodeRecordEvent converts the event to the JSON message body.
func EncodeRecordEvent(e events.RecordEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeRecordEvent parses a message body. Bodies without type or id are rejected.
func DecodeRecordEvent(data []byte) (events.RecordEvent, error) {
	var e events.RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return e, err
	}
	if e.Type == "" || e.ID == "" {
		return e, fmt.Errorf("record event missing type or id")
	}
	return e, nil
}
