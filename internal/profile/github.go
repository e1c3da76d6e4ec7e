package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/FranksOps/careerscout/internal/scraper"
	"golang.org/x/sync/errgroup"
)

// DefaultGitHubURL is the public REST API root.
const DefaultGitHubURL = "https://api.github.com"

// ErrEmptyUsername is returned for a blank username.
var ErrEmptyUsername = errors.New("username is required")

// GitHubConfig configures a GitHub client.
type GitHubConfig struct {
	BaseURL string
	// Token is sent as a bearer token when set; unauthenticated calls share a
	// low per-IP rate limit.
	Token string
	// LanguageConcurrency bounds the parallel per-repository language calls.
	LanguageConcurrency int
	MaxRepos            int
	Logger              *slog.Logger
}

// GitHubResult is the answer to one GitHub lookup.
type GitHubResult struct {
	Profile      Profile         `json:"profile"`
	Repos        []Repository    `json:"repos"`
	Languages    []LanguageShare `json:"languages"`
	Technologies []Technology    `json:"technologies"`
	// Fallback is set when the lookup failed and every field is a default.
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// EmptyGitHubResult is a result for username with every collection empty.
func EmptyGitHubResult(username string) GitHubResult {
	return GitHubResult{
		Profile:      Profile{Username: username, Name: username},
		Repos:        []Repository{},
		Languages:    []LanguageShare{},
		Technologies: []Technology{},
	}
}

// FallbackGitHubResult is the zeroed answer served when a lookup fails. It is
// marked so callers can tell it from a real account without repositories.
func FallbackGitHubResult(username string) GitHubResult {
	res := EmptyGitHubResult(username)
	res.Fallback = true
	res.Error = "GitHub profile unavailable"
	return res
}

// GitHub reads profiles, repositories and language statistics from the
// GitHub REST API.
type GitHub struct {
	getter Getter
	cfg    GitHubConfig
	logger *slog.Logger
}

// NewGitHub creates a client fetching through g.
func NewGitHub(g Getter, cfg GitHubConfig) *GitHub {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGitHubURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.LanguageConcurrency <= 0 {
		cfg.LanguageConcurrency = 4
	}
	if cfg.MaxRepos <= 0 || cfg.MaxRepos > 100 {
		cfg.MaxRepos = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &GitHub{getter: g, cfg: cfg, logger: cfg.Logger}
}

type githubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	Email       string `json:"email"`
	Blog        string `json:"blog"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	PublicRepos int    `json:"public_repos"`
}

type githubRepo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Watchers    int      `json:"watchers_count"`
	OpenIssues  int      `json:"open_issues_count"`
	Topics      []string `json:"topics"`
	HTMLURL     string   `json:"html_url"`
	Fork        bool     `json:"fork"`
}

// Lookup fetches the user, their repositories and each repository's
// languages. Only a failure to load the user is returned; a failed repository
// or language call leaves that part empty.
func (g *GitHub) Lookup(ctx context.Context, username string) (GitHubResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return GitHubResult{}, ErrEmptyUsername
	}

	var user githubUser
	if err := g.getJSON(ctx, "/users/"+url.PathEscape(username), &user); err != nil {
		return GitHubResult{}, fmt.Errorf("github user %s: %w", username, err)
	}

	res := EmptyGitHubResult(username)
	res.Profile = Profile{
		Username:    username,
		Name:        user.Name,
		Bio:         user.Bio,
		Location:    user.Location,
		Company:     strings.TrimPrefix(user.Company, "@"),
		Email:       user.Email,
		Website:     user.Blog,
		Avatar:      user.AvatarURL,
		Followers:   user.Followers,
		Following:   user.Following,
		PublicRepos: user.PublicRepos,
		ProfileURL:  user.HTMLURL,
	}
	if user.Login != "" {
		res.Profile.Username = user.Login
	}
	if res.Profile.Name == "" {
		res.Profile.Name = res.Profile.Username
	}

	repos, err := g.repos(ctx, username)
	if err != nil {
		g.logger.Warn("github repositories unavailable", "username", username, "err", err)
		return res, nil
	}
	g.fillLanguages(ctx, repos)

	res.Repos = repos
	res.Languages = AggregateLanguages(repos)
	res.Technologies = DetectTechnologies(repos)
	return res, nil
}

func (g *GitHub) repos(ctx context.Context, username string) ([]Repository, error) {
	path := fmt.Sprintf("/users/%s/repos?per_page=%d&sort=updated", url.PathEscape(username), g.cfg.MaxRepos)
	var raw []githubRepo
	if err := g.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	repos := make([]Repository, 0, len(raw))
	for _, r := range raw {
		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		repos = append(repos, Repository{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			Language:    r.Language,
			Stars:       r.Stars,
			Forks:       r.Forks,
			Watchers:    r.Watchers,
			OpenIssues:  r.OpenIssues,
			Topics:      topics,
			URL:         r.HTMLURL,
			Fork:        r.Fork,
			Languages:   []LanguageShare{},
		})
	}
	return repos, nil
}

// fillLanguages loads every repository's language bytes with bounded
// parallelism. Each goroutine writes only its own element.
func (g *GitHub) fillLanguages(ctx context.Context, repos []Repository) {
	var eg errgroup.Group
	eg.SetLimit(g.cfg.LanguageConcurrency)
	for i := range repos {
		if repos[i].FullName == "" {
			continue
		}
		eg.Go(func() error {
			var bytes map[string]int64
			if err := g.getJSON(ctx, "/repos/"+repos[i].FullName+"/languages", &bytes); err != nil {
				g.logger.Debug("github languages unavailable", "repo", repos[i].FullName, "err", err)
				return nil
			}
			repos[i].Languages = Shares(bytes)
			return nil
		})
	}
	_ = eg.Wait()
}

func (g *GitHub) getJSON(ctx context.Context, path string, v any) error {
	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	header.Set("X-GitHub-Api-Version", "2022-11-28")
	if g.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+g.cfg.Token)
	}

	body, err := g.getter.Get(ctx, scraper.Request{Platform: "github", URL: g.cfg.BaseURL + path, Header: header})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %v: %w", path, err, scraper.ErrExtraction)
	}
	return nil
}
