package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ParseLine decodes one journal line.
func ParseLine(line []byte) (AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(line, &e); err != nil {
		return AuditEvent{}, err
	}
	if e.EventType == "" {
		return AuditEvent{}, fmt.Errorf("journal line has no event type")
	}
	return e, nil
}

// decodeAll reads consecutive events from r until EOF.
func decodeAll(r io.Reader) ([]AuditEvent, error) {
	dec := json.NewDecoder(r)
	var events []AuditEvent
	for n := 1; ; n++ {
		var e AuditEvent
		err := dec.Decode(&e)
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", n, err)
		}
		events = append(events, e)
	}
}

func systemEvent(eventType EventType, meta map[string]string) AuditEvent {
	return AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    StatusSuccess,
		Metadata:  meta,
	}
}
