// Package wiki provides the Wikipedia revision history client.
//
// This is the only component that touches the network. It retrieves
// chronologically ordered revision records for a page via the MediaWiki
// API, paginating with rvcontinue and respecting a client-side rate
// limit so batch analyses stay polite.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/flashpoint/internal/logging"
	"github.com/abelbrown/flashpoint/internal/revision"
)

// defaultUserAgent identifies the tool to the Wikimedia servers.
const defaultUserAgent = "Flashpoint/0.1 (edit war research; github.com/abelbrown/flashpoint)"

// maxPerRequest is the API cap for rvlimit without a bot flag.
const maxPerRequest = 500

// maxRetries bounds retry attempts on transient HTTP failures.
const maxRetries = 3

// PageMissingError reports a page that does not exist on the wiki.
type PageMissingError struct {
	Title string
}

func (e *PageMissingError) Error() string {
	return fmt.Sprintf("page %q does not exist", e.Title)
}

// Client fetches revision histories from a Wikipedia language edition.
type Client struct {
	apiURL    string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Client for the given language edition ("en",
// "de", ...) limited to requestsPerSecond API calls.
func NewClient(language string, requestsPerSecond float64) *Client {
	if language == "" {
		language = "en"
	}
	return &Client{
		apiURL:    fmt.Sprintf("https://%s.wikipedia.org/w/api.php", language),
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// SetUserAgent overrides the default User-Agent header.
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// FetchRevisions retrieves up to limit revisions of a page in
// chronological order (oldest first). Partial histories are fine:
// pages with fewer revisions than requested return what exists.
func (c *Client) FetchRevisions(ctx context.Context, title string, limit int) ([]revision.Revision, error) {
	logging.Debug("Fetching revisions", "page", title, "limit", limit)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "revisions")
	params.Set("titles", title)
	params.Set("rvprop", "ids|timestamp|user|comment|sha1|size")
	params.Set("rvdir", "newer")

	var revs []revision.Revision
	for len(revs) < limit {
		batch := limit - len(revs)
		if batch > maxPerRequest {
			batch = maxPerRequest
		}
		params.Set("rvlimit", strconv.Itoa(batch))

		var resp revisionsResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return nil, fmt.Errorf("fetch revisions for %q: %w", title, err)
		}

		page, err := resp.page(title)
		if err != nil {
			return nil, err
		}

		for _, raw := range page.Revisions {
			rev, err := raw.toRevision(title)
			if err != nil {
				return nil, err
			}
			revs = append(revs, rev)
		}

		cont, ok := resp.Continue["rvcontinue"]
		if !ok {
			break
		}
		params.Set("rvcontinue", cont)
	}

	logging.Info("Fetched revisions", "page", title, "count", len(revs))
	return revs, nil
}

// RandomPages returns up to n random article titles (main namespace,
// redirects excluded). Used for contested-article sampling.
func (c *Client) RandomPages(ctx context.Context, n int) ([]string, error) {
	if n > maxPerRequest {
		n = maxPerRequest
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "random")
	params.Set("rnnamespace", "0")
	params.Set("rnfilterredir", "nonredirects")
	params.Set("rnlimit", strconv.Itoa(n))

	var resp randomResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch random pages: %w", err)
	}

	titles := make([]string, 0, len(resp.Query.Random))
	for _, p := range resp.Query.Random {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

// get performs one rate-limited API call with retry on transient
// failures (429 and 5xx back off and try again, up to maxRetries).
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			logging.Warn("Retrying API call", "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse API response: %w", err)
		}
		return nil
	}
	return lastErr
}

// API response shapes. The query API keys pages by page id, with "-1"
// for missing titles.

type revisionsResponse struct {
	Continue map[string]string `json:"continue"`
	Query    struct {
		Pages map[string]pageEntry `json:"pages"`
	} `json:"query"`
}

type pageEntry struct {
	PageID    int64         `json:"pageid"`
	Title     string        `json:"title"`
	Missing   *string       `json:"missing"`
	Revisions []rawRevision `json:"revisions"`
}

func (r *revisionsResponse) page(title string) (*pageEntry, error) {
	for id, page := range r.Query.Pages {
		if id == "-1" || page.Missing != nil {
			return nil, &PageMissingError{Title: title}
		}
		return &page, nil
	}
	return nil, &PageMissingError{Title: title}
}

type rawRevision struct {
	RevID     int64  `json:"revid"`
	ParentID  int64  `json:"parentid"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Comment   string `json:"comment"`
	SHA1      string `json:"sha1"`
	Size      int    `json:"size"`
}

func (r rawRevision) toRevision(page string) (revision.Revision, error) {
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return revision.Revision{}, fmt.Errorf("page %q: bad timestamp %q: %w", page, r.Timestamp, err)
	}
	return revision.Revision{
		ID:        r.RevID,
		PageID:    page,
		Timestamp: ts.UTC(),
		Editor:    r.User,
		Comment:   r.Comment,
		SHA1:      r.SHA1,
		ParentID:  r.ParentID,
		Size:      r.Size,
	}, nil
}

type randomResponse struct {
	Query struct {
		Random []struct {
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
}
