package course

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// UdemyAdapter scrapes www.udemy.com/courses/search.
type UdemyAdapter struct {
	BaseURL string
}

func (a UdemyAdapter) base() string {
	if a.BaseURL == "" {
		return "https://www.udemy.com"
	}
	return strings.TrimRight(a.BaseURL, "/")
}

func (a UdemyAdapter) Platform() Platform { return Udemy }

func (a UdemyAdapter) Referer() string { return a.base() + "/" }

func (a UdemyAdapter) SearchURL(query string) string {
	return a.base() + "/courses/search/?q=" + url.QueryEscape(query)
}

var udemyCards = []string{`[data-purpose="course-card-container"]`, ".course-card--container", ".course-card_container"}

func (a UdemyAdapter) Extract(p Page) []Record {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil
	}

	var out []Record
	findCards(doc, udemyCards...).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := firstText(card, `[data-purpose="course-title-url"] a`, "h3 a", "h3")
		href := firstAttr(card, "href", `[data-purpose="course-title-url"] a`, "h3 a", "a[href]")
		if title == "" || href == "" {
			return true
		}

		rec := Record{
			Title:       title,
			URL:         resolve(p.URL, href),
			Instructor:  firstText(card, `[data-purpose="safely-set-inner-html:course-card:visible-instructors"]`, ".course-card-instructors", `[class*=instructor]`),
			Rating:      parseRating(firstText(card, `[data-purpose="rating-number"]`, `[class*=star-rating] span`)),
			Price:       firstText(card, `[data-purpose="course-price-text"] span span`, `[data-purpose="course-price-text"]`, `[class*=price-text]`),
			Image:       firstAttr(card, "src", "img"),
			Description: firstText(card, `[data-purpose="safely-set-inner-html:course-card:course-headline"]`, ".course-card-headline", `[class*=headline]`),
		}
		card.Find(`[data-purpose="course-meta-info"] span, .course-card-details span`).Each(func(_ int, s *goquery.Selection) {
			t := text(s)
			lower := strings.ToLower(t)
			switch {
			case rec.Duration == "" && strings.Contains(lower, "hour"):
				rec.Duration = t
			case rec.Level == "" && (strings.Contains(lower, "level") || strings.Contains(lower, "beginner") ||
				strings.Contains(lower, "intermediate") || strings.Contains(lower, "expert")):
				rec.Level = t
			}
		})

		out = append(out, rec)
		return len(out) < MaxPerPlatform
	})

	return finalize(out, Udemy, p)
}
