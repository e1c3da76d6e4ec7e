package profile

import (
	"math/rand/v2"
	"testing"
)

func sum(shares []LanguageShare) int {
	total := 0
	for _, s := range shares {
		total += s.Percentage
	}
	return total
}

func TestShares(t *testing.T) {
	got := Shares(map[string]int64{"Go": 7000, "Shell": 2000, "Makefile": 1000, "Empty": 0})

	if len(got) != 3 {
		t.Fatalf("expected 3 languages, got %d", len(got))
	}
	want := []LanguageShare{{"Go", 7000, 70}, {"Shell", 2000, 20}, {"Makefile", 1000, 10}}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("share %d: got %+v, want %+v", i, got[i], w)
		}
	}
}

func TestShares_RoundingSumsTo100(t *testing.T) {
	// Three equal shares of 33.33% each.
	got := Shares(map[string]int64{"A": 1, "B": 1, "C": 1})
	if sum(got) != 100 {
		t.Errorf("expected 100, got %d (%+v)", sum(got), got)
	}

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		bytes := map[string]int64{}
		for j := 0; j < 1+r.IntN(15); j++ {
			bytes[string(rune('A'+j))] = 1 + r.Int64N(100000)
		}
		if s := sum(Shares(bytes)); s < 98 || s > 102 {
			t.Fatalf("percentages sum to %d for %v", s, bytes)
		}
	}
}

func TestShares_Empty(t *testing.T) {
	got := Shares(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestAggregateLanguages(t *testing.T) {
	repos := []Repository{
		{Name: "api", Languages: []LanguageShare{{Name: "Go", Bytes: 6000}, {Name: "Shell", Bytes: 1000}}},
		{Name: "web", Languages: []LanguageShare{{Name: "TypeScript", Bytes: 2000}, {Name: "Shell", Bytes: 1000}}},
		{Name: "empty", Languages: []LanguageShare{}},
	}
	got := AggregateLanguages(repos)

	if len(got) != 3 || got[0].Name != "Go" || got[0].Percentage != 60 {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
	if got[1].Name != "Shell" || got[1].Bytes != 2000 || got[1].Percentage != 20 {
		t.Errorf("expected Shell bytes to be summed across repos, got %+v", got[1])
	}
	if sum(got) != 100 {
		t.Errorf("expected 100, got %d", sum(got))
	}
}
