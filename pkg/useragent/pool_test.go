package useragent

import (
	"strings"
	"sync"
	"testing"
)

func TestPool_GetSequential(t *testing.T) {
	p := NewPool([]string{"A", "B", "C"})

	for _, want := range []string{"A", "B", "C", "A"} {
		if got := p.GetSequential(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestPool_Default(t *testing.T) {
	p := NewPool(nil)
	if len(p.GetAll()) != len(DefaultPool) {
		t.Errorf("expected pool length %d, got %d", len(DefaultPool), len(p.GetAll()))
	}
	if got := p.GetSequential(); got != DefaultPool[0] {
		t.Errorf("expected %s, got %s", DefaultPool[0], got)
	}
}

func TestPool_GetRandom(t *testing.T) {
	p := NewPool([]string{"A", "B"})

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		got := p.GetRandom()
		if got != "A" && got != "B" {
			t.Fatalf("unexpected UA: %s", got)
		}
		seen[got] = true
	}
	if !seen["A"] || !seen["B"] {
		t.Errorf("expected to see both A and B randomly, got %v", seen)
	}
}

func TestPool_Concurrent(t *testing.T) {
	uas := []string{"X", "Y", "Z"}
	p := NewPool(uas)

	const routines, iterations = 50, 300
	var mu sync.Mutex
	counts := map[string]int{}

	var wg sync.WaitGroup
	for i := 0; i < routines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := map[string]int{}
			for j := 0; j < iterations; j++ {
				local[p.GetSequential()]++
			}
			mu.Lock()
			for k, v := range local {
				counts[k] += v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	expected := routines * iterations / len(uas)
	for _, ua := range uas {
		if counts[ua] != expected {
			t.Errorf("expected %d hits for %s, got %d", expected, ua, counts[ua])
		}
	}
}

func TestPool_Empty(t *testing.T) {
	p := &Pool{uas: []string{}}
	if got := p.GetSequential(); got != "" {
		t.Errorf("expected empty string on empty sequential, got %s", got)
	}
	if got := p.GetRandom(); got != "" {
		t.Errorf("expected empty string on empty random, got %s", got)
	}
}

func TestBrowserHeaders(t *testing.T) {
	chrome := DefaultPool[0]
	h := BrowserHeaders(chrome, "https://www.udemy.com/")
	if h.Get("User-Agent") != chrome {
		t.Errorf("unexpected UA %q", h.Get("User-Agent"))
	}
	if h.Get("Referer") != "https://www.udemy.com/" || h.Get("Sec-Fetch-Site") != "same-origin" {
		t.Errorf("expected referer headers, got %v", h)
	}
	if !strings.HasPrefix(h.Get("Accept"), "text/html") {
		t.Errorf("expected html accept, got %q", h.Get("Accept"))
	}
	if h.Get("Sec-Ch-Ua-Mobile") == "" {
		t.Error("expected client hint for Chrome")
	}

	firefox := BrowserHeaders("Mozilla/5.0 (X11; rv:133.0) Gecko/20100101 Firefox/133.0", "")
	if firefox.Get("Referer") != "" || firefox.Get("Sec-Fetch-Site") != "none" {
		t.Errorf("unexpected referer headers for direct navigation: %v", firefox)
	}
	if firefox.Get("Sec-Ch-Ua-Mobile") != "" {
		t.Error("Firefox must not send client hints")
	}
}
