package suggestion

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Suggestion is one ranked auto-completion candidate, built transiently from
// historical records and persisted only inside a cache entry.
type Suggestion struct {
	NormalizedValue string    `json:"normalized_value"`
	DisplayValue    string    `json:"display_value"`
	Frequency       int       `json:"frequency"`
	LastUsed        time.Time `json:"last_used"`
	Context         Context   `json:"context"`
}

// Context captures who used the value and when in the day.
type Context struct {
	ActorID   uuid.UUID `json:"actor_id,omitempty"`
	TimeOfDay TimeOfDay `json:"time_of_day,omitempty"`
}

type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// BucketFor maps an instant to its time-of-day bucket.
func BucketFor(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h < 12:
		return Morning
	case h < 17:
		return Afternoon
	default:
		return Evening
	}
}

// Normalize produces the case-insensitive merge key for a raw value.
func Normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Buckets is the ranked output served to the UI: three small, disjoint lists.
type Buckets struct {
	Recent     []Suggestion `json:"recent"`
	Frequent   []Suggestion `json:"frequent"`
	Contextual []Suggestion `json:"contextual"`
	// Source parameters the buckets were computed for.
	RecordType string    `json:"record_type"`
	Field      string    `json:"field"`
	ComputedAt time.Time `json:"computed_at"`
}

// Result wraps Buckets with provenance so callers can tell a cache hit from a
// fresh computation, and an error from genuinely empty history.
type Result struct {
	Buckets   Buckets `json:"buckets"`
	FromCache bool    `json:"from_cache"`
}
