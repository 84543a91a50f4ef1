package assistant

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"ruach/models"
)

type fakeCatalogSource struct {
	mu      sync.Mutex
	fetches int
	entries []models.CatalogEntry
}

func (f *fakeCatalogSource) FetchEntries(ctx context.Context) ([]models.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.entries, nil
}

func (f *fakeCatalogSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func TestTokenizeQuery(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"Looking for COCA-COLA!!", []string{"coca", "cola"}},
		{"do you have it?", nil},       // stopwords and short tokens only
		{"  ", nil},                    // whitespace only
		{"tv & hi-fi", nil},            // everything <= 2 chars after splitting
		{"wireless earbuds under 5k", []string{"wireless", "earbuds", "under"}},
	}
	for _, tc := range cases {
		if got := TokenizeQuery(tc.input); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("TokenizeQuery(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestPrefixMatchOutranksSubstring(t *testing.T) {
	source := &fakeCatalogSource{entries: []models.CatalogEntry{
		{Name: "Cola Mints"},
		{Name: "Coca-Cola 50cl"},
	}}
	scorer := NewScorer(NewCatalogCache(source, time.Minute))

	matches, _, err := scorer.Search(context.Background(), "looking for coca cola")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected both entries to score, got %d", len(matches))
	}
	if matches[0].Entry.Name != "Coca-Cola 50cl" {
		t.Fatalf("prefix match did not outrank substring match: %+v", matches)
	}
	if matches[0].Score <= matches[1].Score {
		t.Fatalf("expected strictly higher score, got %d vs %d", matches[0].Score, matches[1].Score)
	}
}

func TestZeroTokensReturnsEmptyWithoutFetch(t *testing.T) {
	source := &fakeCatalogSource{entries: []models.CatalogEntry{{Name: "Anything"}}}
	scorer := NewScorer(NewCatalogCache(source, time.Minute))

	matches, tokens, err := scorer.Search(context.Background(), "do you?")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 || len(tokens) != 0 {
		t.Fatalf("expected empty result, got %d matches, %d tokens", len(matches), len(tokens))
	}
	if got := source.fetchCount(); got != 0 {
		t.Fatalf("no-signal query should not hit the catalog, got %d fetches", got)
	}
}

func TestZeroScoreEntriesDiscardedAndTopN(t *testing.T) {
	source := &fakeCatalogSource{entries: []models.CatalogEntry{
		{Name: "Plantain Chips", InStock: true},
		{Name: "Groundnut Oil"},
		{Name: "Plantain Flour"},
		{Name: "Plantain Mix A"},
		{Name: "Plantain Mix B"},
	}}
	scorer := NewScorer(NewCatalogCache(source, time.Minute))

	matches, _, err := scorer.Search(context.Background(), "plantain")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected top-3 truncation, got %d", len(matches))
	}
	for _, m := range matches {
		if !strings.Contains(m.Entry.Name, "Plantain") {
			t.Fatalf("zero-score entry retained: %+v", m.Entry)
		}
	}
	// The in-stock entry gets the flat availability point and leads.
	if matches[0].Entry.Name != "Plantain Chips" {
		t.Fatalf("in-stock bias not applied, got %q first", matches[0].Entry.Name)
	}
	// Ties keep catalog order.
	if matches[1].Entry.Name != "Plantain Flour" || matches[2].Entry.Name != "Plantain Mix A" {
		t.Fatalf("tie order not stable: %+v", matches)
	}
}

func TestCatalogCacheTTL(t *testing.T) {
	source := &fakeCatalogSource{entries: []models.CatalogEntry{{Name: "Honey Jar"}}}
	now := time.Unix(1_700_000_000, 0)
	var clockMu sync.Mutex
	cache := NewCatalogCache(source, 5*time.Minute).WithClock(func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	})
	advance := func(d time.Duration) {
		clockMu.Lock()
		now = now.Add(d)
		clockMu.Unlock()
	}
	scorer := NewScorer(cache)

	if _, _, err := scorer.Search(context.Background(), "honey"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := source.fetchCount(); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}

	// Within the TTL window the snapshot is served from memory.
	advance(4 * time.Minute)
	if _, _, err := scorer.Search(context.Background(), "honey"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := source.fetchCount(); got != 1 {
		t.Fatalf("cache miss inside TTL window, %d fetches", got)
	}

	// Past the TTL exactly one refetch happens.
	advance(2 * time.Minute)
	if _, _, err := scorer.Search(context.Background(), "honey"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := source.fetchCount(); got != 2 {
		t.Fatalf("expected exactly one refetch after expiry, got %d fetches", got)
	}
}

func TestRecommendFormatting(t *testing.T) {
	source := &fakeCatalogSource{entries: []models.CatalogEntry{
		{Name: "Shea Butter 200g", Price: 3500, InStock: true, Tags: []string{"beauty", "organic", "skincare"}},
		{Name: "Shea Soap", InStock: false},
	}}
	scorer := NewScorer(NewCatalogCache(source, time.Minute))

	text, err := scorer.Recommend(context.Background(), "shea butter please")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !strings.Contains(text, "1. Shea Butter 200g — ₦3500.00 — in stock [beauty, organic]") {
		t.Fatalf("unexpected first line:\n%s", text)
	}
	if !strings.Contains(text, "price on request") {
		t.Fatalf("missing price fallback:\n%s", text)
	}
	if !strings.Contains(text, "out of stock") {
		t.Fatalf("missing availability text:\n%s", text)
	}
	if !strings.Contains(text, "\"shea butter\"") {
		t.Fatalf("missing refine hint with extracted tokens:\n%s", text)
	}
}

func TestRecommendEmptyOnNoMatch(t *testing.T) {
	source := &fakeCatalogSource{entries: []models.CatalogEntry{{Name: "Honey Jar"}}}
	scorer := NewScorer(NewCatalogCache(source, time.Minute))

	text, err := scorer.Recommend(context.Background(), "spaceship")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty recommendation, got %q", text)
	}
}
