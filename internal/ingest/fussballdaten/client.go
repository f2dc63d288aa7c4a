package fussballdaten

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const (
	// BaseURL of the results site.
	BaseURL = "https://www.fussballdaten.de/bundesliga"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval keeps the scraper polite; the site rate-limits
	// and the pause is mandatory, not an optimization.
	MinRequestInterval = 2 * time.Second
)

// Client fetches matchday pages through a headless browser. The site
// sits behind a bot shield that rejects plain HTTP clients, so pages are
// loaded via chromedp like a regular visitor.
type Client struct {
	baseURL     string
	lastRequest time.Time
	interval    time.Duration

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewClient creates a new scraper client.
func NewClient() (*Client, error) {
	return NewClientWithBaseURL(BaseURL)
}

// NewClientWithBaseURL overrides the site base URL (useful for tests).
func NewClientWithBaseURL(baseURL string) (*Client, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Client{
		baseURL:  baseURL,
		interval: MinRequestInterval,
		allocCtx: allocCtx,
		cancel:   cancel,
	}, nil
}

// Close releases the browser allocator.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchMatchday fetches one round's page, enforcing the minimum interval
// between consecutive requests.
func (c *Client) FetchMatchday(ctx context.Context, season string, matchday int) (string, error) {
	url, err := c.matchdayURL(season, matchday)
	if err != nil {
		return "", err
	}

	if !c.lastRequest.IsZero() {
		if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.interval - elapsed):
			}
		}
	}

	html, err := c.fetch(ctx, url)
	c.lastRequest = time.Now()
	return html, err
}

// matchdayURL builds the round URL; the site addresses a season by its
// closing year ("2025/26" lives under /2026/).
func (c *Client) matchdayURL(season string, matchday int) (string, error) {
	year, err := SeasonEndYear(season)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d/%d/", c.baseURL, year, matchday), nil
}

// SeasonEndYear converts a season token like "2025/26" to 2026.
func SeasonEndYear(season string) (int, error) {
	start, _, ok := strings.Cut(season, "/")
	if !ok {
		return 0, fmt.Errorf("malformed season token %q", season)
	}
	y, err := strconv.Atoi(start)
	if err != nil {
		return 0, fmt.Errorf("malformed season token %q: %w", season, err)
	}
	return y + 1, nil
}

// fetch loads the page in a fresh browser context.
func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()

	// Stop waiting early if the caller gives up.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-browserCtx.Done():
		}
	}()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second), // let the shield's JS settle
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)

	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}
	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}

	return htmlContent, nil
}

// ParseHTML converts raw HTML to a goquery Document for parsing.
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
