package builtin

import (
	"context"
	"fmt"
	"net/url"

	"github.com/xanzy/go-gitlab"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// GitLabGetProject is the catalog name of the GitLab project lookup.
const GitLabGetProject = "gitlab.get_project"

// GitLabProjectParams is the typed parameter set for gitlab.get_project.
type GitLabProjectParams struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// GitLabProjectInfo is the execution artifact of gitlab.get_project.
type GitLabProjectInfo struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Stars         int    `json:"stars"`
	DefaultBranch string `json:"default_branch"`
	URL           string `json:"url"`
}

// GitLabOption configures the GitLab-backed command.
type GitLabOption func(*gitLabConfig)

type gitLabConfig struct {
	baseURL string
}

// WithGitLabBaseURL sets a custom base URL (for testing).
func WithGitLabBaseURL(url string) GitLabOption {
	return func(c *gitLabConfig) {
		c.baseURL = url
	}
}

func init() {
	Register(GitLabGetProject, func(s Settings) (command.Definition, error) {
		return NewGitLabGetProject(s.GitLabToken)
	})
}

// NewGitLabGetProject builds the project lookup command.
func NewGitLabGetProject(token string, opts ...GitLabOption) (command.Definition, error) {
	cfg := gitLabConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var clientOpts []gitlab.ClientOptionFunc
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(cfg.baseURL+"/api/v4"))
	}
	client, err := gitlab.NewClient(token, clientOpts...)
	if err != nil {
		return command.Definition{}, fmt.Errorf("creating gitlab client: %w", err)
	}

	return command.Definition{
		Description: "Get metadata for a GitLab project",
		Parameters: command.Schema{
			"owner": {Type: command.TypeString, Required: true, Description: "project namespace"},
			"repo":  {Type: command.TypeString, Required: true, Description: "project name"},
		},
		Executable: &command.Executable{
			Params: GitLabProjectParams{},
			Result: GitLabProjectInfo{},
			Run: func(ctx context.Context, params any) (any, error) {
				p := params.(*GitLabProjectParams)
				path := url.PathEscape(p.Owner + "/" + p.Repo)
				project, _, err := client.Projects.GetProject(path, nil, gitlab.WithContext(ctx))
				if err != nil {
					return nil, fmt.Errorf("fetching project: %w", err)
				}
				return GitLabProjectInfo{
					ID:            project.ID,
					Name:          project.Name,
					FullName:      project.PathWithNamespace,
					Description:   project.Description,
					Stars:         project.StarCount,
					DefaultBranch: project.DefaultBranch,
					URL:           project.WebURL,
				}, nil
			},
		},
	}, nil
}
