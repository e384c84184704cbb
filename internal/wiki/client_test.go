package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testClient(serverURL string) *Client {
	return &Client{
		apiURL:    serverURL,
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: 5 * time.Second},
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
}

func TestFetchRevisionsPaginates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("rvcontinue") {
		case "":
			fmt.Fprint(w, `{
				"continue": {"rvcontinue": "20240301120000|2", "continue": "||"},
				"query": {"pages": {"123": {"pageid": 123, "title": "Sandbox", "revisions": [
					{"revid": 1, "parentid": 0, "user": "alice", "timestamp": "2024-03-01T10:00:00Z", "comment": "create", "sha1": "aaa", "size": 100}
				]}}}
			}`)
		case "20240301120000|2":
			fmt.Fprint(w, `{
				"query": {"pages": {"123": {"pageid": 123, "title": "Sandbox", "revisions": [
					{"revid": 2, "parentid": 1, "user": "bob", "timestamp": "2024-03-01T12:00:00Z", "comment": "revert", "sha1": "bbb", "size": 90}
				]}}}
			}`)
		default:
			t.Errorf("unexpected rvcontinue %q", r.URL.Query().Get("rvcontinue"))
		}
	}))
	defer server.Close()

	revs, err := testClient(server.URL).FetchRevisions(context.Background(), "Sandbox", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 API calls, got %d", calls)
	}
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}
	if revs[0].ID != 1 || revs[0].Editor != "alice" || revs[0].SHA1 != "aaa" {
		t.Errorf("unexpected first revision: %+v", revs[0])
	}
	if !revs[1].Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp: %v", revs[1].Timestamp)
	}
}

func TestFetchRevisionsMissingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query": {"pages": {"-1": {"title": "Nope", "missing": ""}}}}`)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchRevisions(context.Background(), "Nope", 10)
	var missing *PageMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected PageMissingError, got %v", err)
	}
	if missing.Title != "Nope" {
		t.Errorf("error should carry the title, got %q", missing.Title)
	}
}

func TestFetchRevisionsRetriesTransientErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"query": {"pages": {"123": {"pageid": 123, "title": "Sandbox", "revisions": [
			{"revid": 1, "user": "alice", "timestamp": "2024-03-01T10:00:00Z"}
		]}}}}`)
	}))
	defer server.Close()

	revs, err := testClient(server.URL).FetchRevisions(context.Background(), "Sandbox", 10)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls (one retry), got %d", calls)
	}
	if len(revs) != 1 {
		t.Errorf("expected 1 revision, got %d", len(revs))
	}
}

func TestFetchRevisionsRespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("rvlimit"); got != "3" {
			t.Errorf("expected rvlimit=3, got %q", got)
		}
		fmt.Fprint(w, `{"query": {"pages": {"123": {"pageid": 123, "title": "Sandbox", "revisions": [
			{"revid": 1, "user": "a", "timestamp": "2024-03-01T10:00:00Z"},
			{"revid": 2, "user": "b", "timestamp": "2024-03-01T11:00:00Z"},
			{"revid": 3, "user": "c", "timestamp": "2024-03-01T12:00:00Z"}
		]}}}}`)
	}))
	defer server.Close()

	revs, err := testClient(server.URL).FetchRevisions(context.Background(), "Sandbox", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(revs) != 3 {
		t.Errorf("expected 3 revisions, got %d", len(revs))
	}
}

func TestRandomPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("list") != "random" || q.Get("rnnamespace") != "0" {
			t.Errorf("unexpected query: %v", q)
		}
		fmt.Fprint(w, `{"query": {"random": [{"title": "Alpha"}, {"title": "Beta"}]}}`)
	}))
	defer server.Close()

	titles, err := testClient(server.URL).RandomPages(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(titles) != 2 || titles[0] != "Alpha" || titles[1] != "Beta" {
		t.Errorf("unexpected titles: %v", titles)
	}
}
