package fiado

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Instant is a creation timestamp persisted as Unix milliseconds.
type Instant int64

// InstantOf returns the Instant for t.
func InstantOf(t time.Time) Instant { return Instant(t.UnixMilli()) }

// UnmarshalJSON accepts milliseconds (number or string) and RFC 3339 strings.
// Unreadable values leave the zero Instant.
func (i *Instant) UnmarshalJSON(data []byte) error {
	*i = 0
	data = bytes.TrimSpace(data)
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*i = Instant(f)
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*i = InstantOf(t)
	}
	return nil
}
