package course

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/FranksOps/careerscout/internal/fingerprint"
	"github.com/FranksOps/careerscout/internal/scraper"
)

// fakeAdapter returns canned records for any non-empty body.
type fakeAdapter struct {
	platform Platform
	records  []Record
}

func (f fakeAdapter) Platform() Platform { return f.platform }
func (f fakeAdapter) Referer() string    { return "https://" + f.platform.Key() + ".test/" }
func (f fakeAdapter) SearchURL(query string) string {
	return "https://" + f.platform.Key() + ".test/?q=" + query
}
func (f fakeAdapter) Extract(p Page) []Record {
	if len(p.Body) == 0 {
		return nil
	}
	return finalize(append([]Record(nil), f.records...), f.platform, p)
}

// fakeGetter answers per platform key.
type fakeGetter struct {
	mu    sync.Mutex
	errs  map[string]error
	delay time.Duration
	calls []scraper.Request
}

func (g *fakeGetter) Get(ctx context.Context, r scraper.Request) ([]byte, error) {
	g.mu.Lock()
	g.calls = append(g.calls, r)
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := g.errs[r.Platform]; err != nil {
		return nil, err
	}
	return []byte("page"), nil
}

func rec(title, url string) Record { return Record{Title: title, URL: url} }

func TestAggregator_MergeOrderAndDedup(t *testing.T) {
	adapters := []Adapter{
		fakeAdapter{Coursera, []Record{rec("A", "https://x/a"), rec("B", "https://x/b")}},
		fakeAdapter{Udemy, []Record{rec("B again", "https://x/b"), rec("C", "https://x/c")}},
		fakeAdapter{YouTube, []Record{rec("D", "https://x/d")}},
	}
	getter := &fakeGetter{errs: map[string]error{"youtube": &scraper.UpstreamError{Platform: "youtube", StatusCode: 503}}}
	agg := NewAggregator(getter, AggregatorConfig{Adapters: adapters})

	res, err := agg.Search(context.Background(), "react")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback {
		t.Fatal("expected live results")
	}

	var titles []string
	seen := map[string]bool{}
	for _, c := range res.Courses {
		titles = append(titles, c.Title)
		if seen[c.URL] {
			t.Errorf("duplicate url %s", c.URL)
		}
		seen[c.URL] = true
	}
	if strings.Join(titles, ",") != "A,B,C" {
		t.Errorf("expected A,B,C in platform order, got %v", titles)
	}
	if len(getter.calls) != 3 {
		t.Errorf("expected every platform to be queried, got %d calls", len(getter.calls))
	}
}

func TestAggregator_PerPlatformLimit(t *testing.T) {
	adapters := []Adapter{
		fakeAdapter{Coursera, []Record{rec("A", "https://x/a"), rec("B", "https://x/b")}},
		fakeAdapter{Udemy, []Record{rec("A dup", "https://x/a"), rec("C", "https://x/c"), rec("D", "https://x/d")}},
	}
	agg := NewAggregator(&fakeGetter{}, AggregatorConfig{Adapters: adapters, Limit: 1})

	res, _ := agg.Search(context.Background(), "go")
	if len(res.Courses) != 2 || res.Courses[0].Title != "A" || res.Courses[1].Title != "C" {
		t.Fatalf("expected [A C], got %+v", res.Courses)
	}
}

func TestAggregator_AllPlatformsFail(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	getter := &fakeGetter{errs: map[string]error{"coursera": netErr, "udemy": netErr, "youtube": netErr}}
	agg := NewAggregator(getter, AggregatorConfig{})

	res, err := agg.Search(context.Background(), "react")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Fallback || len(res.Courses) != 3 {
		t.Fatalf("expected 3 fallback courses, got %d (fallback=%v)", len(res.Courses), res.Fallback)
	}
	for _, c := range res.Courses {
		if !strings.Contains(c.Title, "React") {
			t.Errorf("expected fallback title to contain React, got %q", c.Title)
		}
	}
}

func TestAggregator_NothingExtracted(t *testing.T) {
	adapters := []Adapter{fakeAdapter{Coursera, nil}, fakeAdapter{Udemy, nil}}
	res, _ := NewAggregator(&fakeGetter{}, AggregatorConfig{Adapters: adapters}).Search(context.Background(), "rust")
	if !res.Fallback || len(res.Courses) == 0 {
		t.Fatalf("expected fallback when no platform yields records, got %+v", res)
	}
}

func TestAggregator_EmptyQuery(t *testing.T) {
	getter := &fakeGetter{}
	_, err := NewAggregator(getter, AggregatorConfig{}).Search(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if len(getter.calls) != 0 {
		t.Errorf("expected no upstream calls, got %d", len(getter.calls))
	}
}

func TestAggregator_FetchesConcurrently(t *testing.T) {
	getter := &fakeGetter{delay: 200 * time.Millisecond}
	adapters := []Adapter{
		fakeAdapter{Coursera, []Record{rec("A", "https://x/a")}},
		fakeAdapter{Udemy, []Record{rec("B", "https://x/b")}},
		fakeAdapter{YouTube, []Record{rec("C", "https://x/c")}},
	}

	start := time.Now()
	res, _ := NewAggregator(getter, AggregatorConfig{Adapters: adapters}).Search(context.Background(), "go")
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("expected concurrent fetches, took %v", elapsed)
	}
	if len(res.Courses) != 3 {
		t.Errorf("expected 3 courses, got %d", len(res.Courses))
	}
}

func newFetcher(t *testing.T, timeout time.Duration) *scraper.Fetcher {
	t.Helper()
	f, err := scraper.NewFetcher(scraper.FetchConfig{Timeout: timeout, Fingerprint: fingerprint.ProfileGo})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func TestAggregator_SlowPlatformIsBounded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/results") {
			select {
			case <-time.After(3 * time.Second):
			case <-r.Context().Done():
			}
			return
		}
		_, _ = w.Write([]byte(courseraSearchHTML))
	}))
	defer ts.Close()

	timeout := 150 * time.Millisecond
	agg := NewAggregator(newFetcher(t, timeout), AggregatorConfig{
		Adapters: []Adapter{CourseraAdapter{BaseURL: ts.URL}, YouTubeAdapter{BaseURL: ts.URL}},
	})

	start := time.Now()
	res, err := agg.Search(context.Background(), "react")
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed > timeout+time.Second {
		t.Errorf("search exceeded timeout bound: %v", elapsed)
	}
	if res.Fallback || len(res.Courses) != 2 {
		t.Fatalf("expected the 2 coursera courses only, got %d (fallback=%v)", len(res.Courses), res.Fallback)
	}
	for _, c := range res.Courses {
		if c.Platform != Coursera {
			t.Errorf("slow platform contributed %+v", c)
		}
	}
}

func TestAggregator_Scrape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		case "/course/go/":
			if want := "http://" + r.Host + "/"; r.Referer() != want {
				t.Errorf("expected Referer %q, got %q", want, r.Referer())
			}
			_, _ = w.Write([]byte(udemyDetailHTML))
		default:
			_, _ = w.Write([]byte("<html><body></body></html>"))
		}
	}))
	defer ts.Close()

	f := newFetcher(t, 2*time.Second)
	agg := NewAggregator(f, AggregatorConfig{Robots: scraper.NewRobotsTxtAuditor(f, "", nil)})
	ctx := context.Background()

	rec, err := agg.Scrape(ctx, "udemy", ts.URL+"/course/go/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Go: The Complete Developer's Guide" || rec.URL != ts.URL+"/course/go/" {
		t.Errorf("unexpected record: %+v", rec)
	}

	if _, err := agg.Scrape(ctx, "udemy", ts.URL+"/private/course"); !errors.Is(err, scraper.ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}
	if _, err := agg.Scrape(ctx, "coursera", ts.URL+"/empty"); !errors.Is(err, scraper.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
	for _, bad := range []string{"", "not a url", "ftp://example.com/x", "/relative"} {
		if _, err := agg.Scrape(ctx, "*", bad); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Scrape(%q): expected ErrInvalidURL, got %v", bad, err)
		}
	}
}

func TestAggregator_ScrapeSendsOriginReferer(t *testing.T) {
	getter := &fakeGetter{}
	agg := NewAggregator(getter, AggregatorConfig{})
	_, _ = agg.Scrape(context.Background(), "udemy", "https://www.udemy.com/course/go-the-complete-guide/?couponCode=X")

	if len(getter.calls) != 1 {
		t.Fatalf("expected one fetch, got %d", len(getter.calls))
	}
	if got := getter.calls[0].Referer; got != "https://www.udemy.com/" {
		t.Errorf("expected origin Referer, got %q", got)
	}
}

func TestAggregator_ScrapeNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	target := ts.URL + "/course/x"
	ts.Close()

	_, err := NewAggregator(newFetcher(t, time.Second), AggregatorConfig{}).Scrape(context.Background(), "udemy", target)
	if !errors.Is(err, scraper.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFallback_Deterministic(t *testing.T) {
	first, _ := json.Marshal(Fallback("machine learning"))
	for i := 0; i < 5; i++ {
		again, _ := json.Marshal(Fallback("machine learning"))
		if string(again) != string(first) {
			t.Fatalf("fallback output changed between calls:\n%s\n%s", first, again)
		}
	}

	courses := Fallback("machine learning")
	if courses[0].Platform != Udemy || courses[1].Platform != Coursera || courses[2].Platform != YouTube {
		t.Errorf("unexpected platform order: %s %s %s", courses[0].Platform, courses[1].Platform, courses[2].Platform)
	}
	seen := map[string]bool{}
	for _, c := range courses {
		if !strings.Contains(c.Title, "Machine Learning") {
			t.Errorf("expected title-cased query in %q", c.Title)
		}
		if c.Rating < DefaultRating || c.Rating > 5 {
			t.Errorf("rating out of range: %v", c.Rating)
		}
		if seen[c.URL] {
			t.Errorf("duplicate fallback url %s", c.URL)
		}
		seen[c.URL] = true
	}

	if other := Fallback("kubernetes"); other[0].Title == courses[0].Title {
		t.Error("expected different queries to produce different titles")
	}
}
