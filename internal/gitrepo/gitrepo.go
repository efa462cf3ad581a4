// Package gitrepo wraps go-git for the local repository operations the
// release pipeline needs: tag enumeration, branch checkout, version commits,
// annotated tagging, and pushes.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/grokify/releaseconductor/pkg/model"
)

// DefaultRemote is the remote all push operations target.
const DefaultRemote = "origin"

// Repo wraps a local git repository.
type Repo struct {
	repo        *git.Repository
	path        string
	authorName  string
	authorEmail string
}

// Open opens the repository at path.
func Open(path string, authorName, authorEmail string) (*Repo, error) {
	cleanPath := filepath.Clean(path)
	repo, err := git.PlainOpen(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", cleanPath, err)
	}
	return &Repo{repo: repo, path: cleanPath, authorName: authorName, authorEmail: authorEmail}, nil
}

// NewFromRepository wraps an already-open go-git repository. Used by tests
// with in-memory storage.
func NewFromRepository(repo *git.Repository, authorName, authorEmail string) *Repo {
	return &Repo{repo: repo, authorName: authorName, authorEmail: authorEmail}
}

// Path returns the working tree path. Empty for in-memory repositories.
func (r *Repo) Path() string {
	return r.path
}

// TagNames returns the short names of all tags in the repository.
func (r *Repo) TagNames() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return names, nil
}

// ShowTag renders a tag the way `git show` frames it: the tag header and
// message for annotated tags, then the target commit header. Lightweight
// tags render only the commit part, which downstream extraction rejects.
func (r *Repo) ShowTag(name string) (string, error) {
	ref, err := r.repo.Tag(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve tag %s: %w", name, err)
	}

	var sb strings.Builder
	target := ref.Hash()

	tagObj, err := r.repo.TagObject(ref.Hash())
	if err == nil {
		target = tagObj.Target
		sb.WriteString("tag " + tagObj.Name + "\n")
		sb.WriteString(fmt.Sprintf("Tagger: %s <%s>\n", tagObj.Tagger.Name, tagObj.Tagger.Email))
		sb.WriteString("Date:   " + tagObj.Tagger.When.Format("Mon Jan 2 15:04:05 2006 -0700") + "\n")
		sb.WriteString("\n")
		sb.WriteString(tagObj.Message)
		if !strings.HasSuffix(tagObj.Message, "\n") {
			sb.WriteString("\n")
		}
	} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return "", fmt.Errorf("failed to read tag object for %s: %w", name, err)
	}

	commit, err := r.repo.CommitObject(target)
	if err != nil {
		return "", fmt.Errorf("failed to read commit for tag %s: %w", name, err)
	}

	sb.WriteString("commit " + commit.Hash.String() + "\n")
	sb.WriteString(fmt.Sprintf("Author: %s <%s>\n", commit.Author.Name, commit.Author.Email))
	sb.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(commit.Message, "\n"), "\n") {
		sb.WriteString("    " + line + "\n")
	}

	return sb.String(), nil
}

// CheckoutBranch checks out the named branch, creating a local branch from
// the origin remote-tracking ref when no local one exists.
func (r *Repo) CheckoutBranch(ctx context.Context, name string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(name)
	err = w.Checkout(&git.CheckoutOptions{Branch: branchRef})
	if err == nil {
		return nil
	}

	remoteRef, rerr := r.repo.Reference(plumbing.NewRemoteReferenceName(DefaultRemote, name), true)
	if rerr != nil {
		return fmt.Errorf("%w: %s", model.ErrBranchNotFound, name)
	}

	err = w.Checkout(&git.CheckoutOptions{
		Hash:   remoteRef.Hash(),
		Branch: branchRef,
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("failed to check out %s: %w", name, err)
	}
	return nil
}

// WriteFile writes a file relative to the working tree.
func (r *Repo) WriteFile(relPath string, data []byte) error {
	if r.path == "" {
		return fmt.Errorf("repository has no working tree path")
	}
	full := filepath.Join(r.path, filepath.Clean(relPath))
	if err := os.WriteFile(full, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}

// CommitAll stages every change in the worktree and commits it, returning
// the new commit SHA.
func (r *Repo) CommitAll(ctx context.Context, message string) (string, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to stage changes: %w", err)
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: r.signature(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

// HeadSHA returns the SHA of the current HEAD commit.
func (r *Repo) HeadSHA() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CreateAnnotatedTag creates an annotated tag at HEAD.
func (r *Repo) CreateAnnotatedTag(ctx context.Context, name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// Push pushes the given refspecs to origin. A token, when set, is used as
// HTTP basic auth. Already-up-to-date is not an error.
func (r *Repo) Push(ctx context.Context, token string, refspecs ...string) error {
	specs := make([]gitconfig.RefSpec, 0, len(refspecs))
	for _, s := range refspecs {
		specs = append(specs, gitconfig.RefSpec(s))
	}

	opts := &git.PushOptions{
		RemoteName: DefaultRemote,
		RefSpecs:   specs,
	}
	if token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "git", Password: token}
	}

	err := r.repo.PushContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %v: %w", refspecs, err)
	}
	return nil
}

// PushBranchAndTag pushes the release branch and release tag in one call.
func (r *Repo) PushBranchAndTag(ctx context.Context, token, branch, tag string) error {
	return r.Push(ctx, token,
		fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch),
		fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag),
	)
}

// DeleteRemoteTag deletes a tag on origin by pushing an empty refspec.
func (r *Repo) DeleteRemoteTag(ctx context.Context, token, name string) error {
	return r.Push(ctx, token, ":refs/tags/"+name)
}

func (r *Repo) signature() *object.Signature {
	return &object.Signature{
		Name:  r.authorName,
		Email: r.authorEmail,
		When:  time.Now(),
	}
}
