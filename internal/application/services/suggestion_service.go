package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/homewarden/homewarden/internal/core/domain/record"
	"github.com/homewarden/homewarden/internal/core/domain/suggestion"
	"github.com/homewarden/homewarden/internal/core/ports"
)

const (
	// historySampleSize bounds how much history one computation reads.
	historySampleSize = 75

	recentWindow  = 7 * 24 * time.Hour
	recentTop     = 5
	frequentTop   = 5
	contextualTop = 3
	frequentMin   = 2
)

// SuggestionConfig tunes the cached suggestion sets.
type SuggestionConfig struct {
	// TTL of a cached bucket set; independent from any database caching.
	TTL time.Duration
	// KeyPrefix namespaces suggestion entries inside the shared cache.
	KeyPrefix string
}

// SuggestionService implements ports.SuggestionService: ranked
// auto-completion buckets computed from recent record history, cached
// per household with prefix invalidation on writes.
type SuggestionService struct {
	records ports.RecordRepository
	cache   ports.ArtifactCache
	cfg     SuggestionConfig
	logger  *logrus.Logger
	sf      singleflight.Group

	now func() time.Time
}

// NewSuggestionService wires the history source and the cache.
func NewSuggestionService(records ports.RecordRepository, cache ports.ArtifactCache, cfg SuggestionConfig, logger *logrus.Logger) *SuggestionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "suggest"
	}
	return &SuggestionService{records: records, cache: cache, cfg: cfg, logger: logger, now: time.Now}
}

// cacheKey scopes an entry to (household, record type, field) plus the typed
// current value, since the exclusion in step 2 is baked into the stored
// buckets and a hit is returned verbatim.
func (s *SuggestionService) cacheKey(q ports.SuggestQuery) string {
	key := fmt.Sprintf("%s:%s:%s:%s", s.cfg.KeyPrefix, q.HouseholdID, q.RecordType, q.Field)
	if cur := suggestion.Normalize(q.CurrentValue); cur != "" {
		key += ":cur:" + cur
	}
	return key
}

// Suggest implements ports.SuggestionService.Suggest. A cache failure
// degrades to recomputation; a history-source failure is an error, so
// callers can tell "no data" from "something broke".
func (s *SuggestionService) Suggest(ctx context.Context, q ports.SuggestQuery) (*suggestion.Result, error) {
	key := s.cacheKey(q)

	if s.cache != nil {
		b, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("suggestions: cache unavailable, recomputing")
			}
		} else if ok {
			var buckets suggestion.Buckets
			if uerr := json.Unmarshal(b, &buckets); uerr == nil {
				return &suggestion.Result{Buckets: buckets, FromCache: true}, nil
			}
			// Corrupt payload reads as a miss.
		}
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		rows, err := s.records.ListRecent(ctx, q.HouseholdID, q.RecordType, historySampleSize)
		if err != nil {
			return nil, fmt.Errorf("suggestions: load history: %w", err)
		}
		buckets := s.rank(rows, q)
		if s.cache != nil {
			if b, merr := json.Marshal(&buckets); merr == nil {
				if perr := s.cache.Put(ctx, key, b, s.cfg.TTL); perr != nil && s.logger != nil {
					s.logger.WithError(perr).Warn("suggestions: cache write failed")
				}
			}
		}
		return buckets, nil
	})
	if err != nil {
		return nil, err
	}
	buckets, ok := v.(suggestion.Buckets)
	if !ok {
		return nil, fmt.Errorf("suggestions: unexpected singleflight result type")
	}
	return &suggestion.Result{Buckets: buckets, FromCache: false}, nil
}

// InvalidateHousehold implements ports.SuggestionService.InvalidateHousehold.
func (s *SuggestionService) InvalidateHousehold(ctx context.Context, householdID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidatePrefix(ctx, s.cfg.KeyPrefix+":"+householdID.String())
}

// rank runs the bucket derivation over a most-recent-first history sample.
// Per-record problems (missing field, malformed payload) skip that record;
// they never abort the computation.
func (s *SuggestionService) rank(rows []*record.Record, q ports.SuggestQuery) suggestion.Buckets {
	now := s.now()
	currentNorm := suggestion.Normalize(q.CurrentValue)

	// Deduplicate case-insensitively, summing frequency and keeping the
	// most recent use's display value and context. Rows arrive newest
	// first, so the first occurrence wins those fields.
	merged := make(map[string]*suggestion.Suggestion)
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		for _, val := range row.FieldValues(q.Field) {
			norm := suggestion.Normalize(val)
			if norm == "" || norm == currentNorm {
				continue
			}
			if existing, ok := merged[norm]; ok {
				existing.Frequency++
				if row.CreatedAt.After(existing.LastUsed) {
					existing.LastUsed = row.CreatedAt
					existing.DisplayValue = val
					existing.Context = contextOf(row)
				}
				continue
			}
			merged[norm] = &suggestion.Suggestion{
				NormalizedValue: norm,
				DisplayValue:    val,
				Frequency:       1,
				LastUsed:        row.CreatedAt,
				Context:         contextOf(row),
			}
			order = append(order, norm)
		}
	}

	all := make([]suggestion.Suggestion, 0, len(order))
	for _, norm := range order {
		all = append(all, *merged[norm])
	}

	buckets := suggestion.Buckets{
		RecordType: string(q.RecordType),
		Field:      q.Field,
		ComputedAt: now,
	}
	selected := make(map[string]bool)

	// Recent: used within the trailing week, newest first.
	recent := filter(all, func(sg suggestion.Suggestion) bool {
		return now.Sub(sg.LastUsed) <= recentWindow
	})
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].LastUsed.After(recent[j].LastUsed)
	})
	buckets.Recent = take(recent, recentTop, selected)

	// Frequent: repeat values, most used first.
	frequent := filter(all, func(sg suggestion.Suggestion) bool {
		return sg.Frequency >= frequentMin
	})
	sortByFrequency(frequent)
	buckets.Frequent = take(frequent, frequentTop, selected)

	// Contextual: same actor or same time-of-day bucket, excluding
	// anything already selected above.
	bucketNow := suggestion.BucketFor(now)
	contextual := filter(all, func(sg suggestion.Suggestion) bool {
		if selected[sg.NormalizedValue] {
			return false
		}
		if q.ActorID != uuid.Nil && sg.Context.ActorID == q.ActorID {
			return true
		}
		return sg.Context.TimeOfDay == bucketNow
	})
	sortByFrequency(contextual)
	buckets.Contextual = take(contextual, contextualTop, selected)

	return buckets
}

func contextOf(r *record.Record) suggestion.Context {
	return suggestion.Context{
		ActorID:   r.MemberID,
		TimeOfDay: suggestion.BucketFor(r.CreatedAt),
	}
}

func filter(in []suggestion.Suggestion, keep func(suggestion.Suggestion) bool) []suggestion.Suggestion {
	var out []suggestion.Suggestion
	for _, sg := range in {
		if keep(sg) {
			out = append(out, sg)
		}
	}
	return out
}

func sortByFrequency(in []suggestion.Suggestion) {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].Frequency != in[j].Frequency {
			return in[i].Frequency > in[j].Frequency
		}
		return in[i].LastUsed.After(in[j].LastUsed)
	})
}

func take(in []suggestion.Suggestion, n int, selected map[string]bool) []suggestion.Suggestion {
	if len(in) > n {
		in = in[:n]
	}
	out := make([]suggestion.Suggestion, len(in))
	copy(out, in)
	for _, sg := range out {
		selected[sg.NormalizedValue] = true
	}
	return out
}
