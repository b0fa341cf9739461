package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/homewarden/homewarden/internal/core/domain/record"
	"github.com/homewarden/homewarden/internal/core/domain/suggestion"
	"github.com/homewarden/homewarden/internal/core/ports"
)

type recordRepoMock struct {
	ListRecentFn func(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit int) ([]*record.Record, error)
}

func (m *recordRepoMock) Create(ctx context.Context, r *record.Record) error { return nil }
func (m *recordRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	return nil, fmt.Errorf("not found")
}
func (m *recordRepoMock) List(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit, offset int) ([]*record.Record, error) {
	return nil, nil
}
func (m *recordRepoMock) ListRecent(ctx context.Context, householdID uuid.UUID, recordType record.Type, limit int) ([]*record.Record, error) {
	return m.ListRecentFn(ctx, householdID, recordType, limit)
}
func (m *recordRepoMock) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type cacheMock struct {
	GetFn              func(ctx context.Context, key string) ([]byte, bool, error)
	PutFn              func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidatePrefixFn func(ctx context.Context, prefix string) error
}

func (m *cacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}
func (m *cacheMock) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *cacheMock) InvalidatePrefix(ctx context.Context, prefix string) error {
	if m.InvalidatePrefixFn != nil {
		return m.InvalidatePrefixFn(ctx, prefix)
	}
	return nil
}
func (m *cacheMock) SweepExpired(ctx context.Context) (int, error) { return 0, nil }

// titled builds a purchase record with just the fields ranking looks at.
func titled(title string, memberID uuid.UUID, createdAt time.Time) *record.Record {
	return &record.Record{
		ID:        uuid.New(),
		MemberID:  memberID,
		Type:      record.TypePurchase,
		Title:     title,
		CreatedAt: createdAt,
	}
}

// newestFirst mirrors the repository ordering contract.
func newestFirst(rows ...*record.Record) []*record.Record {
	out := make([]*record.Record, len(rows))
	copy(out, rows)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func newSuggestionService(rows []*record.Record, cache ports.ArtifactCache) (*SuggestionService, time.Time) {
	repo := &recordRepoMock{ListRecentFn: func(ctx context.Context, hid uuid.UUID, rt record.Type, limit int) ([]*record.Record, error) {
		return rows, nil
	}}
	svc := NewSuggestionService(repo, cache, SuggestionConfig{TTL: time.Minute, KeyPrefix: "suggest"}, logrus.New())
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) // a morning
	svc.now = func() time.Time { return now }
	return svc, now
}

func TestSuggest_DedupIsCaseInsensitive(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := newestFirst(
		titled("soccer", actor, now.Add(-2*time.Hour)),
		titled("Soccer", actor, now.Add(-1*time.Hour)),
	)
	svc, _ := newSuggestionService(rows, nil)

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), ActorID: actor,
		RecordType: record.TypePurchase, Field: "title",
	})
	require.NoError(t, err)
	require.False(t, res.FromCache)

	require.Len(t, res.Buckets.Recent, 1)
	got := res.Buckets.Recent[0]
	require.Equal(t, "soccer", got.NormalizedValue)
	// Most recent use wins the display casing.
	require.Equal(t, "Soccer", got.DisplayValue)
	require.Equal(t, 2, got.Frequency)
	require.Equal(t, now.Add(-1*time.Hour), got.LastUsed)
}

func TestSuggest_CurrentValueIsExcluded(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := newestFirst(
		titled("Pizza", actor, now.Add(-1*time.Hour)),
		titled("Sushi", actor, now.Add(-2*time.Hour)),
	)
	svc, _ := newSuggestionService(rows, nil)

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), ActorID: actor,
		RecordType: record.TypePurchase, Field: "title",
		CurrentValue: "  PIZZA ",
	})
	require.NoError(t, err)
	require.Len(t, res.Buckets.Recent, 1)
	require.Equal(t, "sushi", res.Buckets.Recent[0].NormalizedValue)
}

func TestSuggest_BucketDerivation(t *testing.T) {
	me := uuid.New()
	someoneElse := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := newestFirst(
		// Recent and frequent: used twice this week.
		titled("Pizza", me, now.Add(-1*time.Hour)),
		titled("pizza", me, now.Add(-3*24*time.Hour)),
		// Recent only.
		titled("Sushi", me, now.Add(-2*time.Hour)),
		// Too old for Recent, frequency 2 keeps it in Frequent.
		titled("Tacos", someoneElse, now.Add(-10*24*time.Hour)),
		titled("tacos", someoneElse, now.Add(-12*24*time.Hour)),
		// Too old, used once, same actor: Contextual only.
		titled("Ramen", me, now.Add(-9*24*time.Hour)),
	)
	svc, _ := newSuggestionService(rows, nil)

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), ActorID: me,
		RecordType: record.TypePurchase, Field: "title",
	})
	require.NoError(t, err)
	b := res.Buckets

	require.Equal(t, []string{"pizza", "sushi"}, normalizedValues(b.Recent))
	require.Equal(t, []string{"pizza", "tacos"}, normalizedValues(b.Frequent))

	// Contextual never repeats a value already surfaced above.
	require.Equal(t, []string{"ramen"}, normalizedValues(b.Contextual))
}

func TestSuggest_ContextualMatchesTimeOfDay(t *testing.T) {
	me := uuid.New()
	stranger := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) // morning query

	rows := newestFirst(
		// Someone else's old morning record: time-of-day match.
		titled("Oatmeal", stranger, now.Add(-20*24*time.Hour)),
		// Someone else's old evening record: no match on either axis.
		titled("Whiskey", stranger, time.Date(2026, 2, 20, 21, 0, 0, 0, time.UTC)),
	)
	svc, _ := newSuggestionService(rows, nil)

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), ActorID: me,
		RecordType: record.TypePurchase, Field: "title",
	})
	require.NoError(t, err)
	require.Empty(t, res.Buckets.Recent)
	require.Empty(t, res.Buckets.Frequent)
	require.Equal(t, []string{"oatmeal"}, normalizedValues(res.Buckets.Contextual))
}

func TestSuggest_MalformedHistoryRowsAreSkipped(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	broken := &record.Record{
		ID: uuid.New(), MemberID: actor, Type: record.TypePurchase,
		Fields: json.RawMessage(`{not json`), CreatedAt: now.Add(-1 * time.Hour),
	}
	good := &record.Record{
		ID: uuid.New(), MemberID: actor, Type: record.TypePurchase,
		Fields: json.RawMessage(`{"store":"Greenmart"}`), CreatedAt: now.Add(-2 * time.Hour),
	}
	svc, _ := newSuggestionService(newestFirst(broken, good), nil)

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), ActorID: actor,
		RecordType: record.TypePurchase, Field: "store",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"greenmart"}, normalizedValues(res.Buckets.Recent))
}

func TestSuggest_CacheHitSkipsComputation(t *testing.T) {
	cached := suggestion.Buckets{
		Recent:     []suggestion.Suggestion{{NormalizedValue: "pizza", DisplayValue: "Pizza"}},
		RecordType: "purchase",
		Field:      "title",
	}
	payload, err := json.Marshal(&cached)
	require.NoError(t, err)

	repo := &recordRepoMock{ListRecentFn: func(ctx context.Context, hid uuid.UUID, rt record.Type, limit int) ([]*record.Record, error) {
		t.Fatal("history must not be read on a cache hit")
		return nil, nil
	}}
	cache := &cacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		return payload, true, nil
	}}
	svc := NewSuggestionService(repo, cache, SuggestionConfig{TTL: time.Minute}, logrus.New())

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), RecordType: record.TypePurchase, Field: "title",
	})
	require.NoError(t, err)
	require.True(t, res.FromCache)
	require.Equal(t, "pizza", res.Buckets.Recent[0].NormalizedValue)
}

func TestSuggest_CacheErrorDegradesToRecompute(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := newestFirst(titled("Pizza", actor, now.Add(-1*time.Hour)))

	cache := &cacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		return nil, false, fmt.Errorf("store down")
	}}
	repo := &recordRepoMock{ListRecentFn: func(ctx context.Context, hid uuid.UUID, rt record.Type, limit int) ([]*record.Record, error) {
		return rows, nil
	}}
	svc := NewSuggestionService(repo, cache, SuggestionConfig{TTL: time.Minute}, logrus.New())
	svc.now = func() time.Time { return now }

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), ActorID: actor,
		RecordType: record.TypePurchase, Field: "title",
	})
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.Equal(t, []string{"pizza"}, normalizedValues(res.Buckets.Recent))
}

func TestSuggest_CorruptCachedPayloadReadsAsMiss(t *testing.T) {
	actor := uuid.New()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rows := newestFirst(titled("Pizza", actor, now.Add(-1*time.Hour)))

	cache := &cacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		return []byte("{garbage"), true, nil
	}}
	repo := &recordRepoMock{ListRecentFn: func(ctx context.Context, hid uuid.UUID, rt record.Type, limit int) ([]*record.Record, error) {
		return rows, nil
	}}
	svc := NewSuggestionService(repo, cache, SuggestionConfig{TTL: time.Minute}, logrus.New())
	svc.now = func() time.Time { return now }

	res, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), ActorID: actor,
		RecordType: record.TypePurchase, Field: "title",
	})
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.Len(t, res.Buckets.Recent, 1)
}

func TestSuggest_HistoryErrorPropagates(t *testing.T) {
	repo := &recordRepoMock{ListRecentFn: func(ctx context.Context, hid uuid.UUID, rt record.Type, limit int) ([]*record.Record, error) {
		return nil, fmt.Errorf("db down")
	}}
	svc := NewSuggestionService(repo, nil, SuggestionConfig{TTL: time.Minute}, logrus.New())

	_, err := svc.Suggest(context.Background(), ports.SuggestQuery{
		HouseholdID: uuid.New(), RecordType: record.TypePurchase, Field: "title",
	})
	require.Error(t, err)
}

func TestSuggest_CurrentValueVariesCacheKey(t *testing.T) {
	var keys []string
	cache := &cacheMock{GetFn: func(ctx context.Context, key string) ([]byte, bool, error) {
		keys = append(keys, key)
		return nil, false, nil
	}}
	repo := &recordRepoMock{ListRecentFn: func(ctx context.Context, hid uuid.UUID, rt record.Type, limit int) ([]*record.Record, error) {
		return nil, nil
	}}
	svc := NewSuggestionService(repo, cache, SuggestionConfig{TTL: time.Minute}, logrus.New())

	hid := uuid.New()
	q := ports.SuggestQuery{HouseholdID: hid, RecordType: record.TypePurchase, Field: "title"}
	_, err := svc.Suggest(context.Background(), q)
	require.NoError(t, err)
	q.CurrentValue = "Piz"
	_, err = svc.Suggest(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, keys, 2)
	require.NotEqual(t, keys[0], keys[1])
	// Both keys stay under the household prefix used for invalidation.
	for _, k := range keys {
		require.Contains(t, k, "suggest:"+hid.String())
	}
}

func TestInvalidateHousehold_UsesHouseholdPrefix(t *testing.T) {
	var got string
	cache := &cacheMock{InvalidatePrefixFn: func(ctx context.Context, prefix string) error {
		got = prefix
		return nil
	}}
	svc := NewSuggestionService(&recordRepoMock{}, cache, SuggestionConfig{TTL: time.Minute}, logrus.New())

	hid := uuid.New()
	require.NoError(t, svc.InvalidateHousehold(context.Background(), hid))
	require.Equal(t, "suggest:"+hid.String(), got)
}

func normalizedValues(in []suggestion.Suggestion) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.NormalizedValue)
	}
	return out
}
