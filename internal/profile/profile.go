// Package profile looks up developer profiles on GitHub and LinkedIn.
package profile

import (
	"context"
	"math"
	"sort"

	"github.com/FranksOps/careerscout/internal/scraper"
)

// Getter fetches one upstream document. *scraper.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, r scraper.Request) ([]byte, error)
}

// Profile is a developer identity. Username is the identity key.
type Profile struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Avatar      string `json:"avatar"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"publicRepos"`
	ProfileURL  string `json:"profileUrl"`
}

// Repository is one public repository with its language breakdown.
type Repository struct {
	Name        string          `json:"name"`
	FullName    string          `json:"fullName"`
	Description string          `json:"description"`
	Language    string          `json:"language"`
	Stars       int             `json:"stars"`
	Forks       int             `json:"forks"`
	Watchers    int             `json:"watchers"`
	OpenIssues  int             `json:"openIssues"`
	Topics      []string        `json:"topics"`
	URL         string          `json:"url"`
	Fork        bool            `json:"fork"`
	Languages   []LanguageShare `json:"languages"`
}

// LanguageShare is one language's share of a byte total.
type LanguageShare struct {
	Name       string `json:"name"`
	Bytes      int64  `json:"bytes"`
	Percentage int    `json:"percentage"`
}

// Shares turns per-language byte counts into whole-number percentages, largest
// first. Percentages are apportioned by largest remainder so that they sum to
// exactly 100 whenever any bytes are present. The result is never nil.
func Shares(bytes map[string]int64) []LanguageShare {
	out := make([]LanguageShare, 0, len(bytes))
	var total int64
	for name, b := range bytes {
		if b <= 0 {
			continue
		}
		total += b
		out = append(out, LanguageShare{Name: name, Bytes: b})
	}
	if total == 0 {
		return out
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Name < out[j].Name
	})

	remainders := make([]float64, len(out))
	assigned := 0
	for i := range out {
		exact := float64(out[i].Bytes) * 100 / float64(total)
		floor := math.Floor(exact)
		out[i].Percentage = int(floor)
		remainders[i] = exact - floor
		assigned += int(floor)
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return remainders[order[a]] > remainders[order[b]] })
	for k := 0; k < 100-assigned && k < len(order); k++ {
		out[order[k]].Percentage++
	}
	return out
}

// AggregateLanguages sums language bytes across repos and returns the shares
// of the combined total.
func AggregateLanguages(repos []Repository) []LanguageShare {
	totals := make(map[string]int64)
	for _, r := range repos {
		for _, l := range r.Languages {
			totals[l.Name] += l.Bytes
		}
	}
	return Shares(totals)
}
