// Package publisher talks to GitHub: release objects, asset uploads,
// repository dispatch for the package index, and remote ref cleanup.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v84/github"
	"github.com/grokify/gogithub/release"
	"github.com/grokify/mogo/net/http/retryhttp"

	"github.com/grokify/releaseconductor/pkg/model"
)

// GitHubPublisher implements Publisher against the GitHub API.
type GitHubPublisher struct {
	client *github.Client
	repo   model.RepoRef
}

// Publisher defines the remote release operations the pipeline needs.
type Publisher interface {
	// CreateRelease creates a new release for the repository.
	CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error)

	// UploadAssets attaches local files to an existing release.
	UploadAssets(ctx context.Context, releaseID int64, assets []model.Artifact) error

	// Dispatch sends a repository_dispatch event to another repository.
	Dispatch(ctx context.Context, repo model.RepoRef, eventType string, payload any) error

	// DeleteTagRef removes a tag ref on the remote.
	DeleteTagRef(ctx context.Context, tagName string) error
}

// New creates a GitHub publisher for repo. The underlying HTTP client uses a
// retry transport that handles 429 rate limits automatically.
func New(token string, repo model.RepoRef) *GitHubPublisher {
	rt := retryhttp.NewWithOptions()
	httpClient := &http.Client{Transport: rt}

	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &GitHubPublisher{client: client, repo: repo}
}

// CreateRelease creates a new release for the repository.
func (p *GitHubPublisher) CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
	ghRelease := &github.RepositoryRelease{
		TagName:    github.Ptr(req.TagName),
		Name:       github.Ptr(req.Name),
		Body:       github.Ptr(req.Body),
		Draft:      github.Ptr(req.Draft),
		Prerelease: github.Ptr(req.Prerelease),
	}

	if req.TargetCommitish != "" {
		ghRelease.TargetCommitish = github.Ptr(req.TargetCommitish)
	}

	created, err := release.CreateRelease(ctx, p.client, req.Repo.Owner, req.Repo.Name, ghRelease)
	if err != nil {
		return nil, fmt.Errorf("failed to create release: %w", err)
	}

	return &model.Release{
		ID:          created.GetID(),
		TagName:     created.GetTagName(),
		Name:        created.GetName(),
		Body:        created.GetBody(),
		Draft:       created.GetDraft(),
		Prerelease:  created.GetPrerelease(),
		CreatedAt:   created.GetCreatedAt().Time,
		PublishedAt: created.GetPublishedAt().Time,
		HTMLURL:     created.GetHTMLURL(),
		Repo:        req.Repo,
	}, nil
}

// UploadAssets attaches local files to an existing release.
func (p *GitHubPublisher) UploadAssets(ctx context.Context, releaseID int64, assets []model.Artifact) error {
	for _, asset := range assets {
		f, err := os.Open(filepath.Clean(asset.Path))
		if err != nil {
			return fmt.Errorf("failed to open asset %s: %w", asset.Path, err)
		}

		opts := &github.UploadOptions{Name: filepath.Base(asset.Path), Label: asset.Label}
		_, _, err = p.client.Repositories.UploadReleaseAsset(ctx, p.repo.Owner, p.repo.Name, releaseID, opts, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to upload asset %s: %w", asset.Path, err)
		}
	}
	return nil
}

// Dispatch sends a repository_dispatch event to another repository. Used to
// notify the package-index repository after a stable release.
func (p *GitHubPublisher) Dispatch(ctx context.Context, repo model.RepoRef, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch payload: %w", err)
	}
	msg := json.RawMessage(raw)

	_, _, err = p.client.Repositories.Dispatch(ctx, repo.Owner, repo.Name, github.DispatchRequestOptions{
		EventType:     eventType,
		ClientPayload: &msg,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch %s to %s: %w", eventType, repo.FullName(), err)
	}
	return nil
}

// DeleteTagRef removes a tag ref on the remote. Used as the API fallback for
// trigger-tag cleanup when a local push is not possible.
func (p *GitHubPublisher) DeleteTagRef(ctx context.Context, tagName string) error {
	_, err := p.client.Git.DeleteRef(ctx, p.repo.Owner, p.repo.Name, "tags/"+tagName)
	if err != nil {
		return fmt.Errorf("failed to delete tag ref %s: %w", tagName, err)
	}
	return nil
}
