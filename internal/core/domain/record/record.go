package record

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is a single household record: a typed entry with a title, free-form
// JSON fields and tags. Fields stays opaque to everything except the
// suggestion ranking code, which inspects individual field values.
type Record struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	HouseholdID uuid.UUID       `json:"household_id" db:"household_id"`
	MemberID    uuid.UUID       `json:"member_id" db:"member_id"`
	Type        Type            `json:"type" db:"type"`
	Title       string          `json:"title" db:"title"`
	Fields      json.RawMessage `json:"fields" db:"fields"`
	Tags        []string        `json:"tags" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type Type string

const (
	TypeActivity Type = "activity"
	TypePurchase Type = "purchase"
	TypeNote     Type = "note"
	TypeDocument Type = "document"
)

// ValidTypes lists the record types the API accepts.
func ValidTypes() []Type {
	return []Type{TypeActivity, TypePurchase, TypeNote, TypeDocument}
}

// IsValid reports whether t is a known record type.
func (t Type) IsValid() bool {
	for _, v := range ValidTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// FieldValues extracts the candidate values a record contributes for the
// named field. "title" and "tags" address the dedicated columns; any other
// name is looked up in the Fields JSON object. Non-string and empty values
// are skipped.
func (r *Record) FieldValues(field string) []string {
	switch field {
	case "title":
		if r.Title == "" {
			return nil
		}
		return []string{r.Title}
	case "tags":
		var out []string
		for _, t := range r.Tags {
			if t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	if len(r.Fields) == 0 {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(r.Fields, &fields); err != nil {
		// Malformed historical payloads contribute nothing.
		return nil
	}
	v, ok := fields[field]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return []string{s}
}
