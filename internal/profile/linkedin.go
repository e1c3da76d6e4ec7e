package profile

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/FranksOps/careerscout/internal/fallback"
	"github.com/FranksOps/careerscout/internal/scraper"
	"github.com/PuerkitoBio/goquery"
)

// DefaultLinkedInURL is the public profile host.
const DefaultLinkedInURL = "https://www.linkedin.com"

// LinkedInProfile is a Profile with the résumé sections of a LinkedIn page.
// Experience and Education are newline-separated text blocks.
type LinkedInProfile struct {
	Profile
	Headline   string   `json:"headline"`
	Experience string   `json:"experience"`
	Education  string   `json:"education"`
	Skills     []string `json:"skills"`
	// Synthetic marks a profile produced by FallbackLinkedIn.
	Synthetic bool `json:"synthetic"`
}

// LinkedIn scrapes public LinkedIn profile pages.
type LinkedIn struct {
	getter  Getter
	baseURL string
}

// NewLinkedIn creates a scraper fetching through g. An empty baseURL means
// DefaultLinkedInURL.
func NewLinkedIn(g Getter, baseURL string) *LinkedIn {
	if baseURL == "" {
		baseURL = DefaultLinkedInURL
	}
	return &LinkedIn{getter: g, baseURL: strings.TrimRight(baseURL, "/")}
}

// ProfileURL is the public page for username.
func (l *LinkedIn) ProfileURL(username string) string {
	return l.baseURL + "/in/" + url.PathEscape(username) + "/"
}

// Lookup fetches and extracts the public profile of username.
func (l *LinkedIn) Lookup(ctx context.Context, username string) (LinkedInProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return LinkedInProfile{}, ErrEmptyUsername
	}
	target := l.ProfileURL(username)
	body, err := l.getter.Get(ctx, scraper.Request{Platform: "linkedin", URL: target, Referer: "https://www.google.com/"})
	if err != nil {
		return LinkedInProfile{}, fmt.Errorf("linkedin %s: %w", username, err)
	}
	return ExtractLinkedIn(username, target, body)
}

// ExtractLinkedIn reads a public profile page. A page without a profile name
// (a sign-in wall, for instance) is an extraction failure.
func ExtractLinkedIn(username, pageURL string, body []byte) (LinkedInProfile, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return LinkedInProfile{}, fmt.Errorf("parse %s: %w", pageURL, scraper.ErrExtraction)
	}

	name := clean(doc.Find("h1.top-card-layout__title").First().Text())
	if name == "" {
		name = clean(doc.Find(".top-card-layout__entity-info h1, h1.top-card__title").First().Text())
	}
	if name == "" {
		return LinkedInProfile{}, fmt.Errorf("no profile name on %s: %w", pageURL, scraper.ErrExtraction)
	}

	p := LinkedInProfile{
		Profile: Profile{
			Username:   username,
			Name:       name,
			Bio:        clean(doc.Find("section.summary .core-section-container__content p, section.summary p").First().Text()),
			Location:   clean(doc.Find(".top-card-layout__first-subline .top-card__subline-item, .top-card__subline-item").First().Text()),
			ProfileURL: pageURL,
		},
		Headline: clean(doc.Find("h2.top-card-layout__headline").First().Text()),
		Skills:   []string{},
	}

	img := doc.Find("img.top-card__profile-image, .top-card-layout__entity-image").First()
	if src, ok := img.Attr("data-delayed-url"); ok && src != "" {
		p.Avatar = src
	} else if src, ok := img.Attr("src"); ok {
		p.Avatar = src
	}

	doc.Find(".top-card-layout__first-subline span, .top-card__subline-item").Each(func(_ int, s *goquery.Selection) {
		t := strings.ToLower(clean(s.Text()))
		if strings.Contains(t, "follower") {
			p.Followers = leadingInt(t)
		}
	})

	var experience []string
	doc.Find("section.experience li.experience-item, section[data-section=experience] li").Each(func(_ int, s *goquery.Selection) {
		title := clean(s.Find("h3").First().Text())
		company := clean(s.Find("h4").First().Text())
		dates := clean(s.Find(".date-range").First().Text())
		if title == "" {
			return
		}
		if p.Company == "" {
			p.Company = company
		}
		experience = append(experience, entry(title, company, " at ", dates))
	})
	p.Experience = strings.Join(experience, "\n")

	var education []string
	doc.Find("section.education li.education__list-item, section[data-section=educationsDetails] li").Each(func(_ int, s *goquery.Selection) {
		school := clean(s.Find("h3").First().Text())
		degree := clean(s.Find("h4").First().Text())
		dates := clean(s.Find(".date-range").First().Text())
		if school == "" {
			return
		}
		education = append(education, entry(degree, school, ", ", dates))
	})
	p.Education = strings.Join(education, "\n")

	doc.Find("section.skills li, section[data-section=skills] li").Each(func(_ int, s *goquery.Selection) {
		if skill := clean(s.Text()); skill != "" {
			p.Skills = append(p.Skills, skill)
		}
	})

	return p, nil
}

// FallbackLinkedIn synthesises a plausible profile for username. Every
// categorical field is chosen by fallback.StableIndex, so the result depends
// only on username.
func FallbackLinkedIn(username string) LinkedInProfile {
	username = strings.TrimSpace(username)
	h := fallback.Hash(username)
	pick := func(options []string, offset int) string {
		return options[(h+offset)%len(options)]
	}

	title := fallback.Pick(username, fallback.JobTitles)
	company := fallback.Pick(username, fallback.Companies)

	skills := make([]string, 0, len(fallback.Skills)/3+1)
	for i, s := range fallback.Skills {
		if (h+i)%3 == 0 {
			skills = append(skills, s)
		}
	}

	return LinkedInProfile{
		Profile: Profile{
			Username:   username,
			Name:       fallback.Title(strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(username)),
			Bio:        fmt.Sprintf("%s passionate about building reliable, user-focused software.", title),
			Location:   fallback.Pick(username, fallback.Locations),
			Company:    company,
			ProfileURL: DefaultLinkedInURL + "/in/" + url.PathEscape(username) + "/",
		},
		Headline: title + " at " + company,
		Experience: strings.Join([]string{
			entry(title, company, " at ", "2021 - Present"),
			entry(pick(fallback.JobTitles, 1), pick(fallback.Companies, 1), " at ", "2018 - 2021"),
		}, "\n"),
		Education: entry(fallback.Pick(username, fallback.Degrees), fallback.Pick(username, fallback.Universities), ", ", "2014 - 2018"),
		Skills:    skills,
		Synthetic: true,
	}
}

func entry(first, second, sep, dates string) string {
	var sb strings.Builder
	sb.WriteString(first)
	if second != "" {
		if first != "" {
			sb.WriteString(sep)
		}
		sb.WriteString(second)
	}
	if dates != "" {
		sb.WriteString(" (" + dates + ")")
	}
	return sb.String()
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// leadingInt reads the number at the start of s, e.g. 500 from "500+ followers".
func leadingInt(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, fields[0])
	n, _ := strconv.Atoi(digits)
	return n
}
