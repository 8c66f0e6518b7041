package crossref

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fastRetry keeps tests quick while exercising the retry loop.
var fastRetry = RetryPolicy{MaxAttempts: 3, Backoff: 5 * time.Millisecond}

func newTestClient(url string) *Client {
	return NewClient(
		WithBaseURL(url),
		WithRateLimit(1000),
		WithRetryPolicy(fastRetry),
	)
}

func worksBody(items string) string {
	return fmt.Sprintf(`{"status":"ok","message":{"items":[%s]}}`, items)
}

func TestResolveByTitle_ExactMatch(t *testing.T) {
	var gotQuery, gotRows string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query.title")
		gotRows = r.URL.Query().Get("rows")
		fmt.Fprint(w, worksBody(`
			{"DOI":"10.1000/other","title":["A Different Paper Entirely"]},
			{"DOI":"10.1000/match","title":["<i>Ocean Warming</i> Trends"],
			 "author":[{"given":"Jane","family":"Doe"}],
			 "publisher":"Springs","short-container-title":["Nat. Clim."],
			 "published-print":{"date-parts":[[2021,3]]}}`))
	}))
	defer srv.Close()

	work, err := newTestClient(srv.URL).ResolveByTitle(context.Background(), "Ocean warming trends.")
	if err != nil {
		t.Fatalf("ResolveByTitle() error = %v", err)
	}
	if work.DOI != "10.1000/match" {
		t.Errorf("DOI = %q, want %q", work.DOI, "10.1000/match")
	}
	if gotQuery != "Ocean warming trends." {
		t.Errorf("query.title = %q, want original title", gotQuery)
	}
	if gotRows != "5" {
		t.Errorf("rows = %q, want %q", gotRows, "5")
	}
	if parts := work.PublishedPrint.Parts(); len(parts) != 2 || parts[0] != 2021 {
		t.Errorf("PublishedPrint.Parts() = %v, want [2021 3]", parts)
	}
}

func TestResolveByTitle_ReturnedCandidateAlwaysMatchesNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, worksBody(`
			{"DOI":"10.1000/close","title":["Ocean warming trends in the Atlantic"]},
			{"DOI":"10.1000/close2","title":["Ocean warming"]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ResolveByTitle(context.Background(), "Ocean warming trends")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("ResolveByTitle() error = %v, want ErrNoMatch", err)
	}
	if !IsNoMatch(err) {
		t.Errorf("IsNoMatch() = false, want true")
	}
}

func TestResolveByTitle_EmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, worksBody(``))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ResolveByTitle(context.Background(), "anything")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("ResolveByTitle() error = %v, want ErrNoMatch", err)
	}
}

func TestResolveByTitle_RetriesOnServiceBusy(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, worksBody(`{"DOI":"10.1000/match","title":["Coral Bleaching"]}`))
	}))
	defer srv.Close()

	work, err := newTestClient(srv.URL).ResolveByTitle(context.Background(), "Coral bleaching")
	if err != nil {
		t.Fatalf("ResolveByTitle() error = %v", err)
	}
	if work.DOI != "10.1000/match" {
		t.Errorf("DOI = %q, want %q", work.DOI, "10.1000/match")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestResolveByTitle_RetriesExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ResolveByTitle(context.Background(), "Coral bleaching")
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("ResolveByTitle() error = %v, want ErrRetriesExhausted", err)
	}
	if !IsNoMatch(err) {
		t.Errorf("IsNoMatch() = false, want true for exhausted retries")
	}
	if calls != fastRetry.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, fastRetry.MaxAttempts)
	}
}

func TestResolveByTitle_PermanentFailureNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ResolveByTitle(context.Background(), "Coral bleaching")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ResolveByTitle() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusBadRequest)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent failure)", calls)
	}
	if IsNoMatch(err) {
		t.Errorf("IsNoMatch() = true, want false for permanent API failure")
	}
}

func TestResolveByTitle_NetworkErrorRetried(t *testing.T) {
	// A server that is already closed produces connection errors, which
	// retry like rate-limit responses rather than failing permanently.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).ResolveByTitle(context.Background(), "Coral bleaching")
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("ResolveByTitle() error = %v, want ErrRetriesExhausted", err)
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(fmt.Errorf("wrapped: %w", ErrRateLimited)) {
		t.Errorf("IsRateLimited(ErrRateLimited) = false, want true")
	}
	if !IsRateLimited(&APIError{StatusCode: 429}) {
		t.Errorf("IsRateLimited(429) = false, want true")
	}
	if IsRateLimited(&APIError{StatusCode: 400}) {
		t.Errorf("IsRateLimited(400) = true, want false")
	}
}
