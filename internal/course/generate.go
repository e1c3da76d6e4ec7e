package course

import (
	"fmt"
	"net/url"

	"github.com/FranksOps/careerscout/internal/fallback"
)

type fallbackTemplate struct {
	platform Platform
	title    string // %s is the title-cased query
	price    string
	duration string
	level    string
	url      string // %s is the escaped query
}

var fallbackTemplates = []fallbackTemplate{
	{Udemy, "The Complete %s Bootcamp: From Zero to Expert", "Paid", "24 total hours", "All Levels", "https://www.udemy.com/courses/search/?q=%s"},
	{Coursera, "%s Specialization", "Free to audit", "3 - 6 Months", "Beginner", "https://www.coursera.org/search?query=%s"},
	{YouTube, "%s Full Course for Beginners", "Free", "4:00:00", "Beginner", "https://www.youtube.com/results?search_query=%s"},
}

// Fallback synthesises one course per platform for query. The output depends
// only on query, so repeated calls return identical records.
func Fallback(query string) []Record {
	title := fallback.Title(query)
	escaped := url.QueryEscape(query)
	hash := fallback.Hash(query)

	out := make([]Record, 0, len(fallbackTemplates))
	for i, t := range fallbackTemplates {
		name := fmt.Sprintf(t.title, title)
		out = append(out, Record{
			ID:          fmt.Sprintf("fallback-%s-%d-%d", t.platform.Key(), i, hash),
			Title:       name,
			Platform:    t.platform,
			Instructor:  fallback.Instructors[(hash+i)%len(fallback.Instructors)],
			Rating:      DefaultRating + float64(fallback.StableIndex(query+t.platform.Key(), 5))/10,
			Price:       t.price,
			Duration:    t.duration,
			Level:       t.level,
			Students:    estimateEnrollment(name),
			URL:         fmt.Sprintf(t.url, escaped),
			Description: fmt.Sprintf("Master %s with hands-on projects and real-world examples.", title),
		})
	}
	return out
}
