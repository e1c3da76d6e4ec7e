package profile

import "testing"

func TestDetectTechnologies(t *testing.T) {
	repos := []Repository{
		{Name: "dotfiles", Description: "Ready to go in five minutes", Language: "Shell"},
		{Name: "ml-notebooks", Description: "Deep learning with PyTorch", Topics: []string{"machine-learning"}, Language: "Jupyter Notebook"},
		{Name: "golang-api", Description: "A tiny REST service", Language: "Go",
			Languages: []LanguageShare{{Name: "Go"}, {Name: "Dockerfile"}}},
		{Name: "portfolio", Description: "Next.js and Tailwind", Language: "TypeScript"},
	}

	got := DetectTechnologies(repos)
	byName := map[string][]string{}
	for _, tech := range got {
		byName[tech.Name] = tech.Repos
	}

	want := map[string][]string{
		"Shell":            {"dotfiles"},
		"Machine Learning": {"ml-notebooks"},
		"PyTorch":          {"ml-notebooks"},
		"Jupyter Notebook": {"ml-notebooks"},
		"Go":               {"golang-api"},
		"Docker":           {"golang-api"},
		"Next.js":          {"portfolio"},
		"Tailwind CSS":     {"portfolio"},
		"TypeScript":       {"portfolio"},
	}
	for name, repos := range want {
		if len(byName[name]) != len(repos) || byName[name][0] != repos[0] {
			t.Errorf("%s: got %v, want %v", name, byName[name], repos)
		}
	}
	// "go" in prose must not be read as the language.
	if len(byName["Go"]) != 1 {
		t.Errorf("expected Go only from golang-api, got %v", byName["Go"])
	}
}

func TestDetectTechnologies_Ordering(t *testing.T) {
	repos := []Repository{
		{Name: "a", Language: "Python"},
		{Name: "b", Language: "Python", Description: "Uses Redis"},
		{Name: "c", Description: "Redis and Docker"},
		{Name: "d", Language: "Python"},
	}
	got := DetectTechnologies(repos)
	if len(got) != 3 || got[0].Name != "Python" || got[1].Name != "Redis" || got[2].Name != "Docker" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if len(got[0].Repos) != 3 {
		t.Errorf("expected Python in 3 repos, got %v", got[0].Repos)
	}
}

func TestDetectTechnologies_FreshSetPerCall(t *testing.T) {
	first := DetectTechnologies([]Repository{{Name: "x", Language: "Rust"}})
	second := DetectTechnologies([]Repository{{Name: "y", Language: "Kotlin"}})
	if len(first) != 1 || len(second) != 1 || second[0].Name != "Kotlin" {
		t.Errorf("expected independent results, got %+v and %+v", first, second)
	}
	if got := DetectTechnologies(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}
