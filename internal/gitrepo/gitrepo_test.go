package gitrepo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grokify/releaseconductor/pkg/model"
)

func testSignature() *object.Signature {
	return &object.Signature{
		Name:  "Release Bot",
		Email: "bot@example.com",
		When:  time.Now(),
	}
}

// newTestRepo builds an in-memory repository with one commit.
func newTestRepo(t *testing.T) (*Repo, *git.Repository, plumbing.Hash) {
	t.Helper()

	fs := memfs.New()
	raw, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err)

	w, err := raw.Worktree()
	require.NoError(t, err)

	require.NoError(t, util.WriteFile(fs, "README.md", []byte("hello\n"), 0o644))
	_, err = w.Add("README.md")
	require.NoError(t, err)

	hash, err := w.Commit("initial commit", &git.CommitOptions{Author: testSignature()})
	require.NoError(t, err)

	return NewFromRepository(raw, "Release Bot", "bot@example.com"), raw, hash
}

func TestTagNames(t *testing.T) {
	repo, raw, hash := newTestRepo(t)

	_, err := raw.CreateTag("v2.3.0", hash, nil)
	require.NoError(t, err)
	_, err = raw.CreateTag("release-v2.4.0", hash, &git.CreateTagOptions{
		Tagger:  testSignature(),
		Message: "notes",
	})
	require.NoError(t, err)

	names, err := repo.TagNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v2.3.0", "release-v2.4.0"}, names)
}

func TestShowTagAnnotated(t *testing.T) {
	repo, raw, hash := newTestRepo(t)

	message := "## Quick Start\n\nApply install.yaml and enjoy.\n"
	_, err := raw.CreateTag("release-v2.4.0", hash, &git.CreateTagOptions{
		Tagger:  testSignature(),
		Message: message,
	})
	require.NoError(t, err)

	out, err := repo.ShowTag("release-v2.4.0")
	require.NoError(t, err)

	assert.Contains(t, out, "tag release-v2.4.0")
	assert.Contains(t, out, "Tagger: Release Bot <bot@example.com>")
	assert.Contains(t, out, "## Quick Start")
	assert.Contains(t, out, "commit "+hash.String())

	// Tag message comes before the commit header, as in git show.
	assert.Less(t, strings.Index(out, "## Quick Start"), strings.Index(out, "commit "))
}

func TestShowTagLightweight(t *testing.T) {
	repo, raw, hash := newTestRepo(t)

	_, err := raw.CreateTag("v2.4.0", hash, nil)
	require.NoError(t, err)

	out, err := repo.ShowTag("v2.4.0")
	require.NoError(t, err)

	assert.NotContains(t, out, "tag v2.4.0")
	assert.True(t, strings.HasPrefix(out, "commit "))
}

func TestCheckoutBranchNotFound(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	err := repo.CheckoutBranch(context.Background(), "release-9.9")
	assert.ErrorIs(t, err, model.ErrBranchNotFound)
}

func TestCheckoutBranchLocal(t *testing.T) {
	repo, raw, hash := newTestRepo(t)

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("release-2.4"), hash)
	require.NoError(t, raw.Storer.SetReference(ref))

	require.NoError(t, repo.CheckoutBranch(context.Background(), "release-2.4"))

	head, err := raw.Head()
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/release-2.4", head.Name().String())
}

func TestCreateAnnotatedTagAndHead(t *testing.T) {
	repo, raw, hash := newTestRepo(t)

	sha, err := repo.HeadSHA()
	require.NoError(t, err)
	assert.Equal(t, hash.String(), sha)

	require.NoError(t, repo.CreateAnnotatedTag(context.Background(), "v2.4.0", "v2.4.0\n"))

	ref, err := raw.Tag("v2.4.0")
	require.NoError(t, err)

	tagObj, err := raw.TagObject(ref.Hash())
	require.NoError(t, err)
	assert.Equal(t, hash, tagObj.Target)
}
