package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.uber.org/zap"

	"github.com/jadenpxrk/fileconcat/internal/fileset"
	"github.com/jadenpxrk/fileconcat/internal/pattern"
)

var githubURL = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)(?:/tree/([^/]+)(?:/(.+))?)?`)

// RepoRef is a parsed repository location.
type RepoRef struct {
	CloneURL string
	Name     string
	Ref      string // Branch or tag; empty for the default branch
	SubPath  string // Only files below this path are kept
}

// IsRepoURL reports whether input looks like a git repository.
func IsRepoURL(input string) bool {
	_, err := ParseRepoURL(input)
	return err == nil
}

// ParseRepoURL understands github.com/owner/repo[/tree/ref[/path]] links
// and plain clone URLs ending in .git or starting with git@.
func ParseRepoURL(input string) (RepoRef, error) {
	input = strings.TrimSpace(input)
	if m := githubURL.FindStringSubmatch(input); m != nil {
		name := strings.TrimSuffix(m[2], ".git")
		return RepoRef{
			CloneURL: fmt.Sprintf("https://github.com/%s/%s.git", m[1], name),
			Name:     name,
			Ref:      m[3],
			SubPath:  strings.Trim(m[4], "/"),
		}, nil
	}
	if strings.HasSuffix(input, ".git") || strings.HasPrefix(input, "git@") {
		base := input[strings.LastIndexAny(input, "/:")+1:]
		return RepoRef{CloneURL: input, Name: strings.TrimSuffix(base, ".git")}, nil
	}
	return RepoRef{}, fmt.Errorf("%w: %s", ErrUnsupportedURL, input)
}

// Repo clones a repository into memory and reads its worktree.
type Repo struct {
	Ref      RepoRef
	Rules    pattern.Rules
	Workers  int
	SkipRead SkipFunc
	Logger   *zap.Logger

	// clone is replaceable in tests.
	clone func(ctx context.Context, ref RepoRef) (billy.Filesystem, error)
}

// Fetch clones the repository with depth 1 and records every file below
// the sub-path, with the sub-path stripped from record paths.
func (r *Repo) Fetch(ctx context.Context) (fileset.Batch, error) {
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	clone := r.clone
	if clone == nil {
		clone = cloneMemory
	}

	r.Logger.Info("Cloning repository",
		zap.String("url", r.Ref.CloneURL),
		zap.String("ref", r.Ref.Ref))
	fs, err := clone(ctx, r.Ref)
	if err != nil {
		if ctx.Err() != nil {
			return fileset.Batch{}, fileset.Aborted(ctx.Err())
		}
		return fileset.Batch{}, fmt.Errorf("failed to clone repository '%s': %w", r.Ref.CloneURL, err)
	}
	return r.read(ctx, fs)
}

func (r *Repo) read(ctx context.Context, fs billy.Filesystem) (fileset.Batch, error) {
	var jobs []job
	prefix := ""
	if r.Ref.SubPath != "" {
		prefix = r.Ref.SubPath + "/"
	}

	walkErr := util.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		rel := strings.TrimPrefix(path.Clean("/"+p), "/")
		if rel == "" {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			if !strings.HasPrefix(rel+"/", prefix) {
				if strings.HasPrefix(prefix, rel+"/") {
					return nil // Ancestor of the sub-path
				}
				return filepath.SkipDir
			}
			if inner := strings.TrimPrefix(rel+"/", prefix); inner != "" && r.Rules.PruneDir(strings.TrimSuffix(inner, "/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasPrefix(rel, prefix) || !info.Mode().IsRegular() {
			return nil
		}
		name := strings.TrimPrefix(rel, prefix)
		jobs = append(jobs, job{
			path: name,
			size: info.Size(),
			skip: r.SkipRead != nil && r.SkipRead(name, info.Size()),
			read: func() ([]byte, error) { return util.ReadFile(fs, p) },
		})
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return fileset.Batch{}, fileset.Aborted(ctx.Err())
		}
		return fileset.Batch{}, fmt.Errorf("walk repository: %w", walkErr)
	}

	if r.Ref.SubPath != "" && len(jobs) == 0 {
		ref := r.Ref.Ref
		if ref == "" {
			ref = "HEAD"
		}
		return fileset.Batch{}, fmt.Errorf("path '%s' not found in branch '%s'", r.Ref.SubPath, ref)
	}
	return readAll(ctx, jobs, r.Workers)
}

func cloneMemory(ctx context.Context, ref RepoRef) (billy.Filesystem, error) {
	opts := &git.CloneOptions{
		URL:          ref.CloneURL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if ref.Ref == "" {
		fs := memfs.New()
		_, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts)
		return fs, err
	}

	var lastErr error
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref.Ref),
		plumbing.NewTagReferenceName(ref.Ref),
	} {
		fs := memfs.New()
		opts.ReferenceName = name
		if _, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return fs, nil
	}
	return nil, lastErr
}
