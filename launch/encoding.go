package launch

import (
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
)

// EncodeDetails encodes the launch payload into the TEXT representation
// stored in SQLite. A zero Details encodes to "{}".
func EncodeDetails(d Details) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("launch: encode details: %w", err)
	}
	return string(data), nil
}

// DecodeDetails decodes a payload produced by EncodeDetails. An empty
// payload decodes to a zero Details.
func DecodeDetails(payload string) (Details, error) {
	var d Details
	if payload == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return d, fmt.Errorf("launch: decode details: %w", err)
	}
	return d, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// ceilMillis rounds up to the next whole millisecond. Stored timestamps are
// whole milliseconds, so stored < ceilMillis(t) matches stored < t exactly.
func ceilMillis(value time.Time) int64 {
	ms := toMillis(value)
	if fromMillis(ms).Before(value) {
		ms++
	}
	return ms
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullableOffset(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
