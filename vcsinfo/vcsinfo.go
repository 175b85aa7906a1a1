// Package vcsinfo resolves the revisions deployed to the fleet.
package vcsinfo

import (
	"context"
	"log"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/pkg/errors"
)

// Commitish resolves the reference within the local repository at dir.
// returns an empty string when the reference can not be resolved.
func Commitish(dir, treeish string) string {
	var (
		err error
		r   *git.Repository
		ref *plumbing.Reference
	)

	if r, err = git.PlainOpen(dir); err != nil {
		log.Println("unable to detect git repository - commit will be empty", dir, err)
		return ""
	}

	if ref, err = r.Reference(plumbing.ReferenceName(treeish), true); err != nil {
		log.Println("unable to resolve git reference - commit will be empty", dir, treeish, err)
		return ""
	}

	return ref.Hash().String()
}

// RemoteCommitish resolves the head commit of the branch within the remote repository.
func RemoteCommitish(ctx context.Context, url, branch string) (_ string, err error) {
	var (
		refs []*plumbing.Reference
		name = plumbing.NewBranchReferenceName(branch)
	)

	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{url},
	})

	if refs, err = remote.ListContext(ctx, &git.ListOptions{}); err != nil {
		return "", errors.Wrapf(err, "unable to list references: %s", url)
	}

	for _, ref := range refs {
		if ref.Name() == name {
			return ref.Hash().String(), nil
		}
	}

	return "", errors.Errorf("branch %s not found: %s", branch, url)
}

// MaybeRemoteCommitish resolves the branch head, logging and returning an empty
// string when it can not.
func MaybeRemoteCommitish(ctx context.Context, url, branch string) string {
	commit, err := RemoteCommitish(ctx, url, branch)
	if err != nil {
		log.Println("unable to resolve remote branch - deploying the branch head", err)
		return ""
	}

	return commit
}
