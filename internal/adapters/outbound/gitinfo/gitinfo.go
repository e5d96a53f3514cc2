package gitinfo

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.GitInfo using go-git. The theme root may
// sit anywhere inside the repository.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func open(rootPath string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(rootPath, &git.PlainOpenOptions{DetectDotGit: true})
}

func (g *GitInfoAdapter) IsGitRepo(rootPath string) bool {
	_, err := open(rootPath)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(rootPath string) (string, error) {
	repo, err := open(rootPath)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// ChangedFiles lists modified, added and untracked files under rootPath,
// relative to it. Deleted files are left out since there is nothing to lint.
func (g *GitInfoAdapter) ChangedFiles(rootPath string) ([]string, error) {
	repo, err := open(rootPath)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	absRoot, err := resolve(rootPath)
	if err != nil {
		return nil, err
	}
	repoRoot, err := resolve(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}

	var changed []string
	for file, st := range status {
		if st.Worktree == git.Deleted || st.Staging == git.Deleted {
			continue
		}
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		rel, err := filepath.Rel(absRoot, filepath.Join(repoRoot, filepath.FromSlash(file)))
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		changed = append(changed, filepath.ToSlash(rel))
	}
	sort.Strings(changed)
	return changed, nil
}

func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
