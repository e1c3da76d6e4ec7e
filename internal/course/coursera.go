package course

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CourseraAdapter scrapes www.coursera.org/search.
type CourseraAdapter struct {
	BaseURL string
}

func (a CourseraAdapter) base() string {
	if a.BaseURL == "" {
		return "https://www.coursera.org"
	}
	return strings.TrimRight(a.BaseURL, "/")
}

func (a CourseraAdapter) Platform() Platform { return Coursera }

func (a CourseraAdapter) Referer() string { return a.base() + "/" }

func (a CourseraAdapter) SearchURL(query string) string {
	return a.base() + "/search?query=" + url.QueryEscape(query)
}

var courseraCards = []string{`[data-testid="product-card-cds"]`, ".cds-ProductCard-base", "li.ais-InfiniteHits-item"}

func (a CourseraAdapter) Extract(p Page) []Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil
	}

	var out []Record
	findCards(doc, courseraCards...).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := firstText(card, "h3.cds-CommonCard-title", "h3", "h2")
		href := firstAttr(card, "href", "a.cds-CommonCard-titleLink", "a[href]")
		if title == "" || href == "" {
			return true
		}

		rec := Record{
			Title:       title,
			URL:         resolve(p.URL, href),
			Instructor:  firstText(card, ".cds-ProductCard-partnerNames", "[class*=partnerNames]", ".partner-name"),
			Rating:      parseRating(firstText(card, ".cds-RatingStat-meter", "[class*=ratings-text]", "[aria-label*=Rating]")),
			Image:       firstAttr(card, "src", ".cds-CommonCard-previewImage img", "img"),
			Description: firstText(card, ".cds-CommonCard-bodyContent", "[class*=description]"),
		}
		if reviews := firstText(card, ".cds-RatingStat-sizeLabel", "[class*=ratings-count]"); reviews != "" {
			rec.Students = parseCount(reviews)
		}
		// e.g. "Beginner · Specialization · 3 - 6 Months"
		if meta := firstText(card, ".cds-CommonCard-metadata p", "[class*=metadata]"); meta != "" {
			parts := strings.Split(meta, "·")
			rec.Level = strings.TrimSpace(parts[0])
			if len(parts) > 1 {
				rec.Duration = strings.TrimSpace(parts[len(parts)-1])
			}
		}

		out = append(out, rec)
		return len(out) < MaxPerPlatform
	})

	return finalize(out, Coursera, p)
}
