package fussballdaten

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/ligatipp/internal/cache"
	"github.com/fortuna/ligatipp/internal/names"
)

// pageCacheTTL keeps a fetched page around long enough for quick retries
// within a run without hitting the site again.
const pageCacheTTL = 10 * time.Minute

// Ingester fetches and parses one matchday at a time.
type Ingester struct {
	client *Client
	parser *Parser
	cache  *cache.RedisCache
}

// NewIngester wires the scraper client to the parser. cache may be nil.
func NewIngester(client *Client, resolver *names.Resolver, cfg ParserConfig, redisCache *cache.RedisCache) *Ingester {
	return &Ingester{
		client: client,
		parser: NewParser(resolver, cfg),
		cache:  redisCache,
	}
}

// Close releases the scraper client.
func (ing *Ingester) Close() {
	if ing.client != nil {
		ing.client.Close()
	}
}

// IngestMatchday fetches one round and extracts its candidates. A fetch
// or parse failure yields an empty set and an error for the caller's
// retry loop; it never produces candidates that could corrupt stored data.
func (ing *Ingester) IngestMatchday(ctx context.Context, season string, matchday int) ([]Candidate, error) {
	html, err := ing.fetchPage(ctx, season, matchday)
	if err != nil {
		return nil, fmt.Errorf("fetching matchday %d: %w", matchday, err)
	}

	doc, err := ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("parsing matchday %d: %w", matchday, err)
	}

	cands := ing.parser.ParsePage(doc, season, matchday)
	log.Printf("  ✓ Matchday %d: %d candidates extracted", matchday, len(cands))
	return cands, nil
}

func (ing *Ingester) fetchPage(ctx context.Context, season string, matchday int) (string, error) {
	key := fmt.Sprintf("page:%s:%d", season, matchday)

	if ing.cache != nil {
		if html, err := ing.cache.Get(ctx, key); err == nil && html != "" {
			return html, nil
		}
	}

	html, err := ing.client.FetchMatchday(ctx, season, matchday)
	if err != nil {
		return "", err
	}

	if ing.cache != nil {
		if err := ing.cache.Set(ctx, key, html, pageCacheTTL); err != nil {
			log.Printf("  ⚠️  caching page %s: %v", key, err)
		}
	}
	return html, nil
}
