package audit

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseLine_PreservesFields(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a journal line parses back to the same event", prop.ForAll(
		func(src, dst string, collision bool, nanos int64) bool {
			event := AuditEvent{
				Timestamp:       time.Unix(0, nanos).UTC(),
				RunID:           GenerateRunID(),
				EventType:       EventPlace,
				Status:          StatusSuccess,
				SourcePath:      src,
				DestinationPath: dst,
				Date:            "2024-02-29",
				Mode:            "copy",
				Collision:       collision,
			}
			data, err := json.Marshal(event)
			if err != nil {
				return false
			}
			got, err := ParseLine(data)
			if err != nil {
				t.Logf("ParseLine: %v", err)
				return false
			}
			return got.Timestamp.Equal(event.Timestamp) &&
				got.RunID == event.RunID &&
				got.SourcePath == src &&
				got.DestinationPath == dst &&
				got.Date == event.Date &&
				got.Mode == event.Mode &&
				got.Collision == collision
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Bool(),
		gen.Int64Range(0, 4102444800*1e9),
	))

	properties.TestingRun(t)
}

func TestEvent_OptionalFieldsOmitted(t *testing.T) {
	event := AuditEvent{
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EventType: EventLogInitialized,
		Status:    StatusSuccess,
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	line := string(data)
	for _, field := range []string{"runId", "sourcePath", "destinationPath", "date", "mode", "collision", "summary", "errorDetails", "metadata"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("Expected %s to be omitted, got %s", field, line)
		}
	}
	if !strings.Contains(line, `"timestamp":"2024-03-01T12:00:00Z"`) {
		t.Errorf("Expected RFC 3339 timestamp, got %s", line)
	}
}

func TestParseLine_Invalid(t *testing.T) {
	for _, line := range []string{
		`{"timestamp":"yesterday","eventType":"PLACE"}`,
		`{not json`,
		`{"timestamp":"2024-03-01T12:00:00Z"}`,
	} {
		if _, err := ParseLine([]byte(line)); err == nil {
			t.Errorf("ParseLine(%s): expected an error", line)
		}
	}
}

func TestDecodeAll(t *testing.T) {
	input := `{"timestamp":"2024-03-01T12:00:00Z","eventType":"RUN_START","status":"SUCCESS","runId":"r1"}
{"timestamp":"2024-03-01T12:00:01Z","eventType":"PLACE","status":"SUCCESS","runId":"r1","collision":true}
`
	events, err := decodeAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("decodeAll: %v", err)
	}
	if len(events) != 2 || events[1].EventType != EventPlace || !events[1].Collision {
		t.Errorf("Unexpected events %+v", events)
	}

	if _, err := decodeAll(strings.NewReader(input + "{broken\n")); err == nil {
		t.Error("Expected an error for a truncated line")
	}
}

func TestSegmentName_SortsByTime(t *testing.T) {
	a := segmentName(time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC))
	b := segmentName(time.Date(2024, 1, 2, 3, 4, 5, 7, time.UTC))
	if !isSegment(a) || !isSegment(b) {
		t.Fatalf("names not recognized as segments: %s %s", a, b)
	}
	if a >= b {
		t.Errorf("expected %s < %s", a, b)
	}
	if isSegment(ActiveLogName) {
		t.Error("the active log is not a segment")
	}
}
