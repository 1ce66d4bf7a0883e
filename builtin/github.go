package builtin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v60/github"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// GitHubGetRepo is the catalog name of the GitHub repository lookup.
const GitHubGetRepo = "github.get_repo"

// GitHubRepoParams is the typed parameter set for github.get_repo.
type GitHubRepoParams struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// GitHubRepoInfo is the execution artifact of github.get_repo.
type GitHubRepoInfo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Stars         int    `json:"stars"`
	DefaultBranch string `json:"default_branch"`
	URL           string `json:"url"`
	Private       bool   `json:"private"`
}

// GitHubOption configures the GitHub-backed command.
type GitHubOption func(*github.Client)

// WithGitHubBaseURL sets a custom base URL (for testing).
func WithGitHubBaseURL(url string) GitHubOption {
	return func(c *github.Client) {
		c.BaseURL, _ = c.BaseURL.Parse(url + "/")
	}
}

func init() {
	Register(GitHubGetRepo, func(s Settings) (command.Definition, error) {
		return NewGitHubGetRepo(s.GitHubToken), nil
	})
}

// NewGitHubGetRepo builds the repository lookup command. An empty token
// makes unauthenticated requests, which is enough for public repositories.
func NewGitHubGetRepo(token string, opts ...GitHubOption) command.Definition {
	var httpClient *http.Client
	if token != "" {
		httpClient = &http.Client{Transport: &tokenTransport{token: token}}
	}
	client := github.NewClient(httpClient)
	for _, opt := range opts {
		opt(client)
	}

	return command.Definition{
		Description: "Get metadata for a GitHub repository",
		Parameters: command.Schema{
			"owner": {Type: command.TypeString, Required: true, Description: "repository owner"},
			"repo":  {Type: command.TypeString, Required: true, Description: "repository name"},
		},
		Executable: &command.Executable{
			Params: GitHubRepoParams{},
			Result: GitHubRepoInfo{},
			Run: func(ctx context.Context, params any) (any, error) {
				p := params.(*GitHubRepoParams)
				r, _, err := client.Repositories.Get(ctx, p.Owner, p.Repo)
				if err != nil {
					return nil, fmt.Errorf("fetching repository: %w", err)
				}
				return GitHubRepoInfo{
					ID:            r.GetID(),
					Name:          r.GetName(),
					FullName:      r.GetFullName(),
					Description:   r.GetDescription(),
					Stars:         r.GetStargazersCount(),
					DefaultBranch: r.GetDefaultBranch(),
					URL:           r.GetHTMLURL(),
					Private:       r.GetPrivate(),
				}, nil
			},
		},
	}
}

// tokenTransport adds authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}
