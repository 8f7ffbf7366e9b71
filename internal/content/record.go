package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the createdAt wire format.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Record describes one published reel.
type Record struct {
	ID          string
	Title       string
	Description string
	VideoURL    string
	CreatedAt   time.Time
}

type recordJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	CreatedAt   string `json:"createdAt"`
}

// FormatTimestamp renders t in the createdAt wire format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a createdAt value, accepting any RFC 3339 variant.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse createdAt %q: %w", value, err)
	}
	return t.UTC(), nil
}

// MarshalJSON renders the listing contract.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		VideoURL:    r.VideoURL,
		CreatedAt:   FormatTimestamp(r.CreatedAt),
	})
}

// UnmarshalJSON parses the listing contract.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	created, err := ParseTimestamp(raw.CreatedAt)
	if err != nil {
		return err
	}
	*r = Record{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		VideoURL:    raw.VideoURL,
		CreatedAt:   created,
	}
	return nil
}
