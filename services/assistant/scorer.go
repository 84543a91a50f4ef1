// File: services/assistant/scorer.go
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"ruach/models"
)

const (
	// DefaultCatalogTTL is how long a cached catalog snapshot stays fresh.
	DefaultCatalogTTL = 5 * time.Minute
	// DefaultTopN caps how many scored entries a search returns.
	DefaultTopN = 3
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// stopwords are dropped from queries before scoring, together with any
// token of length <= 2.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"you": {}, "your": {}, "are": {}, "was": {}, "can": {}, "could": {},
	"would": {}, "what": {}, "where": {}, "when": {}, "how": {}, "who": {},
	"why": {}, "please": {}, "show": {}, "need": {}, "want": {},
	"looking": {}, "find": {}, "buy": {}, "get": {}, "some": {}, "any": {},
	"about": {}, "have": {}, "has": {}, "does": {}, "sell": {}, "there": {},
}

// TokenizeQuery lowercases the text, folds non-alphanumerics to spaces and
// drops stopwords and short tokens. An empty result means the query carries
// no searchable signal.
func TokenizeQuery(text string) []string {
	cleaned := nonAlphanumeric.ReplaceAllString(strings.ToLower(text), " ")
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 2 {
			continue
		}
		if _, skip := stopwords[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// CatalogCache holds one process-wide catalog snapshot with a time-boxed
// lifetime, shared across all assistant instances. The snapshot is replaced
// wholesale on expiry; concurrent readers racing a TTL boundary may trigger
// duplicate fetches, which is harmless.
type CatalogCache struct {
	source CatalogSource
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	entries   []models.CatalogEntry
	fetchedAt time.Time
}

func NewCatalogCache(source CatalogSource, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{source: source, ttl: ttl, now: time.Now}
}

// WithClock replaces the cache's clock. Tests use it to fast-forward TTL
// expiry deterministically.
func (c *CatalogCache) WithClock(now func() time.Time) *CatalogCache {
	c.now = now
	return c
}

// Entries serves the cached snapshot when fresh, otherwise fetches a new
// one and swaps it in.
func (c *CatalogCache) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	c.mu.RLock()
	if c.entries != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	entries, err := c.source.FetchEntries(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries = entries
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return entries, nil
}

// Invalidate drops the snapshot so the next read refetches.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.entries = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// Scorer matches free-text queries against the catalog snapshot by
// weighted token overlap.
type Scorer struct {
	cache *CatalogCache
	topN  int
}

func NewScorer(cache *CatalogCache) *Scorer {
	return &Scorer{cache: cache, topN: DefaultTopN}
}

// WithTopN overrides the result cap.
func (s *Scorer) WithTopN(n int) *Scorer {
	if n > 0 {
		s.topN = n
	}
	return s
}

// scoreEntry sums field-overlap weights per token: a name prefix hit beats
// a name substring hit, category and tags beat description. An in-stock
// entry gets one flat availability point.
func scoreEntry(entry models.CatalogEntry, tokens []string) int {
	name := strings.ToLower(entry.Name)
	desc := strings.ToLower(entry.Description)
	category := strings.ToLower(entry.Category)

	score := 0
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(name, tok):
			score += 6
		case strings.Contains(name, tok):
			score += 4
		}
		if strings.Contains(desc, tok) {
			score += 2
		}
		if strings.Contains(category, tok) {
			score += 3
		}
		for _, tag := range entry.Tags {
			if strings.Contains(strings.ToLower(tag), tok) {
				score += 3
				break
			}
		}
	}
	if score > 0 && entry.InStock {
		score++
	}
	return score
}

// Search returns the ranked top-N matches for the query along with the
// extracted tokens. Zero extracted tokens yields an empty result rather
// than arbitrary top picks.
func (s *Scorer) Search(ctx context.Context, text string) ([]models.ScoredMatch, []string, error) {
	tokens := TokenizeQuery(text)
	if len(tokens) == 0 {
		return nil, nil, nil
	}
	entries, err := s.cache.Entries(ctx)
	if err != nil {
		return nil, tokens, err
	}

	var matches []models.ScoredMatch
	for _, entry := range entries {
		if score := scoreEntry(entry, tokens); score > 0 {
			matches = append(matches, models.ScoredMatch{Entry: entry, Score: score})
		}
	}
	// Stable sort keeps catalog order on ties.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > s.topN {
		matches = matches[:s.topN]
	}
	return matches, tokens, nil
}

// Recommend renders the ranked matches as a numbered list followed by a
// refine-search hint. It returns an empty string when the query carries no
// signal or nothing matched, so callers can fall through to their static
// response.
func (s *Scorer) Recommend(ctx context.Context, text string) (string, error) {
	matches, tokens, err := s.Search(ctx, text)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return FormatMatches(matches, tokens), nil
}

// FormatMatches renders one line per match: name, price (or a fallback when
// absent), availability and up to two tags.
func FormatMatches(matches []models.ScoredMatch, tokens []string) string {
	var sb strings.Builder
	sb.WriteString("Here's what I found:\n")
	for i, m := range matches {
		price := "price on request"
		if m.Entry.Price > 0 {
			price = fmt.Sprintf("₦%.2f", m.Entry.Price)
		}
		availability := "out of stock"
		if m.Entry.InStock {
			availability = "in stock"
		}
		line := fmt.Sprintf("%d. %s — %s — %s", i+1, m.Entry.Name, price, availability)
		if len(m.Entry.Tags) > 0 {
			tags := m.Entry.Tags
			if len(tags) > 2 {
				tags = tags[:2]
			}
			line += fmt.Sprintf(" [%s]", strings.Join(tags, ", "))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Want something more specific? Try searching for \"%s\".", strings.Join(tokens, " ")))
	return sb.String()
}
