package profile

import (
	"sort"
	"strings"

	"github.com/FranksOps/careerscout/internal/analyzer"
)

// Technology is a canonical technology name and the repositories it was
// detected in.
type Technology struct {
	Name  string   `json:"name"`
	Repos []string `json:"repos"`
}

type techEntry struct {
	name    string
	aliases []string
	// languageOnly entries are too ambiguous to find in prose ("go", "c") and
	// match only GitHub language names. Their aliases are still searched.
	languageOnly bool
}

var techCatalog = []techEntry{
	{name: "JavaScript", aliases: []string{"js", "ecmascript"}},
	{name: "TypeScript"},
	{name: "React", aliases: []string{"reactjs", "react.js", "react-native"}},
	{name: "Next.js", aliases: []string{"nextjs"}},
	{name: "Vue.js", aliases: []string{"vue", "vuejs", "nuxt"}},
	{name: "Angular", aliases: []string{"angularjs"}},
	{name: "Svelte", aliases: []string{"sveltekit"}},
	{name: "Node.js", aliases: []string{"node", "nodejs", "express", "expressjs"}},
	{name: "Python"},
	{name: "Django"},
	{name: "Flask"},
	{name: "FastAPI"},
	{name: "Go", aliases: []string{"golang"}, languageOnly: true},
	{name: "Rust"},
	{name: "Java"},
	{name: "Spring", aliases: []string{"spring boot", "springboot", "spring-boot"}},
	{name: "Kotlin"},
	{name: "Swift", aliases: []string{"swiftui"}},
	{name: "C", languageOnly: true},
	{name: "C++", aliases: []string{"cpp"}},
	{name: "C#", aliases: []string{"csharp", ".net", "dotnet"}},
	{name: "Ruby"},
	{name: "Ruby on Rails", aliases: []string{"rails"}},
	{name: "PHP"},
	{name: "Laravel"},
	{name: "R", languageOnly: true},
	{name: "HTML", aliases: []string{"html5"}},
	{name: "CSS", aliases: []string{"css3", "scss", "sass"}},
	{name: "Tailwind CSS", aliases: []string{"tailwind", "tailwindcss"}},
	{name: "Shell", aliases: []string{"bash", "zsh"}, languageOnly: true},
	{name: "Docker", aliases: []string{"dockerfile", "docker-compose"}},
	{name: "Kubernetes", aliases: []string{"k8s", "helm"}},
	{name: "Terraform", aliases: []string{"hcl"}},
	{name: "AWS", aliases: []string{"amazon web services", "lambda"}},
	{name: "Google Cloud", aliases: []string{"gcp", "firebase"}},
	{name: "Azure"},
	{name: "PostgreSQL", aliases: []string{"postgres"}},
	{name: "MySQL"},
	{name: "MongoDB", aliases: []string{"mongo", "mongoose"}},
	{name: "Redis"},
	{name: "GraphQL", aliases: []string{"apollo"}},
	{name: "TensorFlow", aliases: []string{"keras"}},
	{name: "PyTorch", aliases: []string{"torch"}},
	{name: "Machine Learning", aliases: []string{"machine-learning", "deep learning", "deep-learning", "ml"}},
	{name: "Jupyter Notebook", aliases: []string{"jupyter"}},
}

// textTerms is the catalog as searched in prose. languageOnly entries
// contribute one term per alias, mapped back through textCanonical.
var textTerms, textCanonical = buildTextTerms()

func buildTextTerms() ([]analyzer.Term, map[string]string) {
	var terms []analyzer.Term
	canonical := make(map[string]string)
	for _, e := range techCatalog {
		if !e.languageOnly {
			terms = append(terms, analyzer.Term{Name: e.name, Aliases: e.aliases})
			canonical[e.name] = e.name
			continue
		}
		for _, a := range e.aliases {
			terms = append(terms, analyzer.Term{Name: a})
			canonical[a] = e.name
		}
	}
	return terms, canonical
}

// languageTech maps a GitHub language name to a catalog name.
func languageTech(lang string) (string, bool) {
	for _, e := range techCatalog {
		if strings.EqualFold(lang, e.name) {
			return e.name, true
		}
		for _, a := range e.aliases {
			if strings.EqualFold(lang, a) {
				return e.name, true
			}
		}
	}
	return "", false
}

// DetectTechnologies finds catalog technologies in each repository's
// languages, name, description and topics. The result is a fresh set per
// call, ordered by the number of repositories, then by name.
func DetectTechnologies(repos []Repository) []Technology {
	found := make(map[string][]string)
	for _, r := range repos {
		seen := make(map[string]bool)
		mark := func(tech string) {
			if !seen[tech] {
				seen[tech] = true
				found[tech] = append(found[tech], r.Name)
			}
		}

		if tech, ok := languageTech(r.Language); ok {
			mark(tech)
		}
		for _, l := range r.Languages {
			if tech, ok := languageTech(l.Name); ok {
				mark(tech)
			}
		}

		prose := strings.Join(append([]string{
			strings.NewReplacer("-", " ", "_", " ").Replace(r.Name),
			r.Description,
		}, r.Topics...), ". ")
		for _, m := range analyzer.FindTermMatches(prose, textTerms) {
			mark(textCanonical[m.Term])
		}
	}

	out := make([]Technology, 0, len(found))
	for name, list := range found {
		out = append(out, Technology{Name: name, Repos: list})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Repos) != len(out[j].Repos) {
			return len(out[i].Repos) > len(out[j].Repos)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
