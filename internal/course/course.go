// Package course discovers courses across learning platforms and normalises
// them into a single Record shape.
package course

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/FranksOps/careerscout/internal/fallback"
	"github.com/PuerkitoBio/goquery"
)

// Platform identifies the source of a course.
type Platform string

const (
	Coursera Platform = "Coursera"
	Udemy    Platform = "Udemy"
	YouTube  Platform = "YouTube"
	Generic  Platform = "Generic"
)

// Key is the lower-case label used for logs, metrics and fetch requests.
func (p Platform) Key() string {
	return strings.ToLower(string(p))
}

// Defaults applied when a page omits a field.
const (
	MaxPerPlatform  = 5
	DefaultRating   = 4.5
	DefaultLevel    = "All Levels"
	DefaultDuration = "Self-paced"
)

// Record is one normalised course listing. URL is the identity used for
// de-duplication.
type Record struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Platform    Platform `json:"platform"`
	Instructor  string   `json:"instructor"`
	Rating      float64  `json:"rating"`
	Price       string   `json:"price"`
	Duration    string   `json:"duration"`
	Level       string   `json:"level"`
	Students    int      `json:"students"`
	Image       string   `json:"image,omitempty"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
}

// Page is one fetched upstream document handed to an adapter.
type Page struct {
	URL       string // request URL, used to resolve relative links
	Body      []byte
	Query     string
	FetchedAt time.Time
}

// Adapter turns a platform's search page into course records. Extract never
// fails: missing markers yield an empty slice and missing fields get defaults.
type Adapter interface {
	Platform() Platform
	SearchURL(query string) string
	Referer() string
	Extract(p Page) []Record
}

func defaultPrice(p Platform) string {
	switch p {
	case Coursera:
		return "Free to audit"
	case Udemy:
		return "Paid"
	case YouTube:
		return "Free"
	default:
		return "See website"
	}
}

// estimateEnrollment returns a plausible, stable student count for platforms
// that do not publish one.
func estimateEnrollment(title string) int {
	return 1000 + fallback.StableIndex(title, 50000)
}

func describe(query string, p Platform) string {
	return fmt.Sprintf("Learn %s with this course on %s.", strings.TrimSpace(query), p)
}

// finalize stamps IDs and fills every empty field with its default.
func finalize(records []Record, p Platform, page Page) []Record {
	if len(records) > MaxPerPlatform {
		records = records[:MaxPerPlatform]
	}
	for i := range records {
		r := &records[i]
		r.ID = fmt.Sprintf("%s-%d-%d", p.Key(), i, page.FetchedAt.UnixMilli())
		r.Platform = p
		if r.Instructor == "" {
			r.Instructor = string(p) + " Instructor"
		}
		if r.Rating <= 0 || r.Rating > 5 {
			r.Rating = DefaultRating
		}
		if r.Price == "" {
			r.Price = defaultPrice(p)
		}
		if r.Duration == "" {
			r.Duration = DefaultDuration
		}
		if r.Level == "" {
			r.Level = DefaultLevel
		}
		if r.Students <= 0 {
			r.Students = estimateEnrollment(r.Title)
		}
		if r.Description == "" {
			topic := page.Query
			if strings.TrimSpace(topic) == "" {
				topic = r.Title
			}
			r.Description = describe(topic, p)
		}
	}
	return records
}

// findCards returns the matches of the first selector that matches anything.
// Alternatives are tried in turn so nested card markup is not counted twice.
func findCards(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, sel := range selectors {
		if cards := doc.Find(sel); cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find(selectors[len(selectors)-1])
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := text(s.Find(sel).First()); t != "" {
			return t
		}
	}
	return ""
}

func firstAttr(s *goquery.Selection, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := s.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// resolve makes href absolute against base. Unparsable input is returned as is.
func resolve(base, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// parseRating returns the first number in s, or 0 when there is none.
func parseRating(s string) float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

var groupedRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

var magnitudes = map[string]float64{
	"k": 1e3, "thousand": 1e3,
	"m": 1e6, "million": 1e6,
	"b": 1e9, "billion": 1e9,
}

// parseCount reads counts such as "1,234 students", "12K views", "1.5M" or
// "2.5 million views". Anything after the number that is not a magnitude
// ("2 Months") leaves it unscaled.
func parseCount(s string) int {
	m := numberRe.FindStringIndex(s)
	if m == nil {
		return 0
	}
	digits := s[m[0]:m[1]]

	mult := 1.0
	rest := strings.ToLower(strings.TrimSpace(s[m[1]:]))
	word := strings.FieldsFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
	if len(word) > 0 && strings.HasPrefix(rest, word[0]) {
		if v, ok := magnitudes[word[0]]; ok {
			mult = v
		}
	}

	if groupedRe.MatchString(digits) && mult == 1 {
		n, err := strconv.Atoi(strings.NewReplacer(",", "", ".", "").Replace(digits))
		if err != nil {
			return 0
		}
		return n
	}
	// A single separator is a decimal point; several are grouping.
	if strings.Count(digits, ",")+strings.Count(digits, ".") > 1 {
		digits = strings.NewReplacer(",", "", ".", "").Replace(digits)
	} else {
		digits = strings.ReplaceAll(digits, ",", ".")
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return int(v * mult)
}
