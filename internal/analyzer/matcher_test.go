package analyzer

import (
	"strings"
	"testing"
)

func TestFindTermMatchesBasic(t *testing.T) {
	content := "A React dashboard. Built with react.js and Docker! Deployed via docker-compose."
	terms := []Term{
		{Name: "React", Aliases: []string{"react.js", "reactjs"}},
		{Name: "Docker"},
		{Name: "Kubernetes", Aliases: []string{"k8s"}},
	}

	results := FindTermMatches(content, terms)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// "react" also occurs at the start of "react.js", which counts once as the
	// name and once as the alias.
	if results[0].Term != "React" || results[0].Count != 3 {
		t.Errorf("React: expected count 3, got %+v", results[0])
	}
	if results[1].Term != "Docker" || results[1].Count != 2 {
		t.Errorf("Docker: expected count 2, got %+v", results[1])
	}
}

func TestCountWord(t *testing.T) {
	tests := []struct {
		text, word string
		want       int
	}{
		{"golang and go", "go", 1},
		{"good to go. go!", "go", 2},
		{"c++ and c++17", "c++", 1},
		{"java javascript", "java", 1},
		{"node.js, nodejs", "node.js", 1},
		{"aws", "aws", 1},
		{"", "x", 0},
		{"abc", "", 0},
		{"müller go", "go", 1},
	}
	for _, tt := range tests {
		if got := CountWord(tt.text, tt.word); got != tt.want {
			t.Errorf("CountWord(%q, %q) = %d, want %d", tt.text, tt.word, got, tt.want)
		}
	}
}

func TestFindTermMatchesEmpty(t *testing.T) {
	if got := FindTermMatches("", []Term{{Name: "Go"}}); got != nil {
		t.Errorf("expected nil for empty content, got %v", got)
	}
	if got := FindTermMatches("go", nil); got != nil {
		t.Errorf("expected nil for no terms, got %v", got)
	}
}

func benchmarkContent(size int) string {
	sb := strings.Builder{}
	sb.Grow(size)

	paragraphs := []string{
		"A full stack Next.js starter with TypeScript, Tailwind CSS and PostgreSQL.",
		"Kubernetes operator written in Go for managing Redis clusters on AWS.",
		"Machine learning experiments in PyTorch and TensorFlow with Jupyter notebooks.",
		"REST API built with Node.js, Express and MongoDB, deployed with Docker.",
	}

	for sb.Len() < size {
		for _, p := range paragraphs {
			sb.WriteString(p)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func BenchmarkFindTermMatches(b *testing.B) {
	content := benchmarkContent(50 * 1024)
	terms := []Term{
		{Name: "Go", Aliases: []string{"golang"}},
		{Name: "Docker"},
		{Name: "Kubernetes", Aliases: []string{"k8s"}},
		{Name: "Node.js", Aliases: []string{"nodejs", "express"}},
		{Name: "PostgreSQL", Aliases: []string{"postgres"}},
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		FindTermMatches(content, terms)
	}
}
