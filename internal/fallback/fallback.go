// Package fallback holds the deterministic selection used to synthesise
// placeholder records when live platforms return nothing.
package fallback

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StableIndex maps seed onto [0, modulus) as the sum of its character codes
// modulo modulus. The same seed always yields the same index. A non-positive
// modulus yields 0.
func StableIndex(seed string, modulus int) int {
	if modulus <= 0 {
		return 0
	}
	return Hash(seed) % modulus
}

// Hash is the unreduced character-code sum behind StableIndex.
func Hash(seed string) int {
	sum := 0
	for _, r := range seed {
		sum += int(r)
	}
	return sum
}

// Pick returns the element of options selected by StableIndex(seed, len(options)).
func Pick(seed string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[StableIndex(seed, len(options))]
}

// Title renders a free-text query as a title, e.g. "machine learning" -> "Machine Learning".
func Title(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.English).String(s)
}

// Template tables shared by the course and profile generators.
var (
	Instructors = []string{
		"Dr. Angela Yu",
		"Andrew Ng",
		"Jose Portilla",
		"Maximilian Schwarzmüller",
		"Colt Steele",
		"Stephen Grider",
	}

	Companies = []string{
		"Google",
		"Microsoft",
		"Amazon",
		"Meta",
		"Apple",
		"Netflix",
		"Stripe",
		"Shopify",
	}

	JobTitles = []string{
		"Software Engineer",
		"Senior Software Engineer",
		"Full Stack Developer",
		"Frontend Developer",
		"Backend Developer",
		"Data Scientist",
		"DevOps Engineer",
	}

	Universities = []string{
		"Stanford University",
		"Massachusetts Institute of Technology",
		"University of California, Berkeley",
		"Carnegie Mellon University",
		"University of Washington",
		"Georgia Institute of Technology",
	}

	Degrees = []string{
		"B.S. Computer Science",
		"M.S. Computer Science",
		"B.S. Software Engineering",
		"B.S. Information Technology",
	}

	Skills = []string{
		"JavaScript",
		"TypeScript",
		"React",
		"Node.js",
		"Python",
		"Go",
		"SQL",
		"Docker",
		"Kubernetes",
		"AWS",
		"Git",
		"GraphQL",
	}

	Locations = []string{
		"San Francisco, CA",
		"Seattle, WA",
		"New York, NY",
		"Austin, TX",
		"Remote",
	}
)
