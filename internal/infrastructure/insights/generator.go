package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
)

// sampleSize bounds how much history one summary reads.
const sampleSize = 200

// Generator is the built-in ports.InsightGenerator: a simple activity
// summary over recent records. Deployments can swap in richer generators;
// the caching layer treats the output as an opaque artifact either way.
type Generator struct {
	records ports.RecordRepository
	logger  *logrus.Logger
}

// NewGenerator creates the default summary generator.
func NewGenerator(records ports.RecordRepository, logger *logrus.Logger) *Generator {
	return &Generator{records: records, logger: logger}
}

type summary struct {
	HouseholdID  string         `json:"household_id"`
	GeneratedAt  time.Time      `json:"generated_at"`
	TotalRecords int            `json:"total_records"`
	ByType       map[string]int `json:"by_type"`
	TopTags      []tagCount     `json:"top_tags"`
	ActiveWeek   int            `json:"records_last_7_days"`
}

type tagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Generate implements ports.InsightGenerator.
func (g *Generator) Generate(ctx context.Context, householdID uuid.UUID) ([]byte, error) {
	rows, err := g.records.ListRecent(ctx, householdID, "", sampleSize)
	if err != nil {
		return nil, fmt.Errorf("insight generator: %w", err)
	}

	s := summary{
		HouseholdID: householdID.String(),
		GeneratedAt: time.Now(),
		ByType:      make(map[string]int),
	}
	tags := make(map[string]int)
	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	for _, r := range rows {
		s.TotalRecords++
		s.ByType[string(r.Type)]++
		if r.CreatedAt.After(weekAgo) {
			s.ActiveWeek++
		}
		for _, t := range r.Tags {
			tags[t]++
		}
	}
	for t, n := range tags {
		s.TopTags = append(s.TopTags, tagCount{Tag: t, Count: n})
	}
	sort.Slice(s.TopTags, func(i, j int) bool {
		if s.TopTags[i].Count != s.TopTags[j].Count {
			return s.TopTags[i].Count > s.TopTags[j].Count
		}
		return s.TopTags[i].Tag < s.TopTags[j].Tag
	})
	if len(s.TopTags) > 10 {
		s.TopTags = s.TopTags[:10]
	}

	return json.Marshal(&s)
}
