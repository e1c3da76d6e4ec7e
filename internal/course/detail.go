package course

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/FranksOps/careerscout/internal/scraper"
	"github.com/PuerkitoBio/goquery"
)

// ParseScrapePlatform maps the platform parameter of an explicit-URL scrape
// to a Platform. "*", "" and unknown names are resolved from the URL host.
func ParseScrapePlatform(name, rawURL string) Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "udemy":
		return Udemy
	case "coursera":
		return Coursera
	case "youtube":
		return YouTube
	case "edx":
		return Generic
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Generic
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "udemy.com" || strings.HasSuffix(host, ".udemy.com"):
		return Udemy
	case host == "coursera.org" || strings.HasSuffix(host, ".coursera.org"):
		return Coursera
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || host == "youtu.be":
		return YouTube
	}
	return Generic
}

type detailSelectors struct {
	title, instructor, rating, price, duration, level, students, description []string
}

var detailRules = map[Platform]detailSelectors{
	Udemy: {
		title:       []string{`h1[data-purpose="lead-title"]`, "h1.clp-lead__title"},
		instructor:  []string{`[data-purpose="instructor-name-top"] a`, ".instructor-links a"},
		rating:      []string{`[data-purpose="rating-number"]`, ".star-rating--rating-number"},
		price:       []string{`[data-purpose="course-price-text"] span span`, `[data-purpose="course-price-text"]`},
		duration:    []string{`[data-purpose="video-content-length"]`, ".curriculum--content-length"},
		level:       []string{`[data-purpose="course-level"]`},
		students:    []string{`[data-purpose="enrollment"]`, ".enrollment"},
		description: []string{`[data-purpose="lead-headline"]`, ".clp-lead__headline"},
	},
	Coursera: {
		title:       []string{`h1[data-e2e="hero-title"]`, "h1"},
		instructor:  []string{`[data-e2e="instructor-name"]`, ".instructor-name", `a[data-track-component="hero_instructor"]`},
		rating:      []string{`[data-testid="ratings-count-expertise-style"]`, ".rating-text", `[class*=ratings-text]`},
		duration:    []string{`[data-e2e="key-information"] [class*=duration]`},
		level:       []string{`[data-e2e="key-information"] [class*=level]`},
		students:    []string{`[data-e2e="enrolled-count"]`, ".enrolled-count"},
		description: []string{`[data-e2e="description"]`, ".description"},
	},
	Generic: {
		title:       []string{"h1.course-intro-heading", "h1"},
		instructor:  []string{".instructor-name", `[class*=instructor] a`},
		price:       []string{".course-price", `[class*=price]`},
		duration:    []string{`[class*=effort]`, `[class*=duration]`},
		level:       []string{`[class*=level]`},
		description: []string{".course-description", "[class*=short-description]"},
	},
}

// ExtractDetail reads a single course page. It returns scraper.ErrExtraction
// when no title can be found anywhere on the page.
func ExtractDetail(p Platform, page Page) (Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return Record{}, fmt.Errorf("parse %s: %w", page.URL, scraper.ErrExtraction)
	}
	rules, ok := detailRules[p]
	if !ok {
		rules = detailRules[Generic]
	}
	root := doc.Selection

	rec := Record{
		Title:       firstText(root, rules.title...),
		URL:         page.URL,
		Instructor:  firstText(root, rules.instructor...),
		Rating:      parseRating(firstText(root, rules.rating...)),
		Price:       firstText(root, rules.price...),
		Duration:    firstText(root, rules.duration...),
		Level:       firstText(root, rules.level...),
		Students:    parseCount(firstText(root, rules.students...)),
		Description: firstText(root, rules.description...),
		Image:       firstAttr(root, "content", `meta[property="og:image"]`),
	}

	// Open Graph and schema.org metadata cover pages whose markup changed.
	if rec.Title == "" {
		rec.Title = firstAttr(root, "content", `meta[property="og:title"]`, `meta[name="twitter:title"]`)
	}
	if rec.Title == "" {
		rec.Title = firstText(root, "title")
	}
	if rec.Title == "" {
		return Record{}, fmt.Errorf("no title on %s: %w", page.URL, scraper.ErrExtraction)
	}
	if rec.Description == "" {
		rec.Description = firstAttr(root, "content", `meta[name="description"]`, `meta[property="og:description"]`)
	}
	if rec.Instructor == "" {
		rec.Instructor = firstAttr(root, "content", `meta[name="author"]`)
	}
	if rec.Rating == 0 {
		rec.Rating = parseRating(firstAttr(root, "content", `[itemprop="ratingValue"]`))
	}
	if rec.Price == "" {
		if amount := firstAttr(root, "content", `meta[property="product:price:amount"]`, `[itemprop="price"]`); amount != "" {
			rec.Price = strings.TrimSpace(firstAttr(root, "content", `meta[property="product:price:currency"]`, `[itemprop="priceCurrency"]`) + " " + amount)
		}
	}

	out := finalize([]Record{rec}, p, page)
	return out[0], nil
}
