package server

import (
	"github.com/FranksOps/careerscout/internal/course"
	"github.com/FranksOps/careerscout/internal/profile"
)

// Policy declares how an endpoint answers when its operation fails after
// input validation. With Degrade set the endpoint answers 200 with
// Degrade(input); otherwise it answers 500 with Message.
type Policy struct {
	Endpoint string
	Degrade  func(input string) any
	Message  string
}

// Degrades reports whether failures are answered with substitute data.
func (p Policy) Degrades() bool { return p.Degrade != nil }

// DefaultPolicies returns the per-endpoint failure policies. Aggregate
// queries and profile lookups degrade; an explicit-URL scrape does not.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		EndpointSearch: {
			Endpoint: EndpointSearch,
			Degrade: func(query string) any {
				return course.SearchResult{Courses: course.Fallback(query), Fallback: true}
			},
		},
		EndpointScrape: {
			Endpoint: EndpointScrape,
			Message:  "Failed to scrape course data",
		},
		EndpointGitHub: {
			Endpoint: EndpointGitHub,
			Degrade:  func(username string) any { return profile.FallbackGitHubResult(username) },
		},
		EndpointLinkedIn: {
			Endpoint: EndpointLinkedIn,
			Degrade:  func(username string) any { return profile.FallbackLinkedIn(username) },
		},
	}
}
