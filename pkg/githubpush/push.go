// Package githubpush uploads the text files under a local folder to a GitHub
// repository, creating the repository and individual files as needed.
package githubpush

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/SamiUllah481/Local-AI-Agent-for-File-Manipulation/pkg/logger"
)

// ErrAuth reports a missing or rejected GitHub token. It aborts a push;
// everything else is a per-file warning.
var ErrAuth = errors.New("github authentication failed")

// API is the slice of the GitHub REST surface the pusher needs. The real
// implementation wraps go-github; tests substitute a fake.
type API interface {
	// AuthenticatedLogin resolves the token owner's login name.
	AuthenticatedLogin(ctx context.Context) (string, error)
	// RepoExists reports whether owner/name exists.
	RepoExists(ctx context.Context, owner, name string) (bool, error)
	// CreateRepo creates a public repository under the authenticated account.
	CreateRepo(ctx context.Context, name string) error
	// FileSHA returns the blob SHA of the file at path, or found=false on 404.
	FileSHA(ctx context.Context, owner, repo, path string) (sha string, found bool, err error)
	CreateFile(ctx context.Context, owner, repo, path, message string, content []byte) error
	UpdateFile(ctx context.Context, owner, repo, path, message string, content []byte, sha string) error
}

// FileFailure is one recoverable per-file push failure.
type FileFailure struct {
	Path   string
	Reason string
}

// Result summarizes a push.
type Result struct {
	Repo    string
	Created int
	Updated int
	Skipped int
	Failed  []FileFailure
}

// Pusher pushes folders to GitHub.
type Pusher struct {
	api     API
	ignore  *ignoreSet
	verbose bool
	logger  logger.Logger
}

// Options configures a Pusher.
type Options struct {
	// Token is the personal access token. Required.
	Token string
	// ExtraIgnore adds names or globs to the built-in ignore set.
	ExtraIgnore []string
	Verbose     bool
	Logger      logger.Logger

	// api overrides the REST client, for tests.
	api API
}

// New builds a Pusher. A missing token is an authentication error.
func New(opts Options) (*Pusher, error) {
	api := opts.api
	if api == nil {
		if strings.TrimSpace(opts.Token) == "" {
			return nil, fmt.Errorf("%w: GITHUB_TOKEN is not set", ErrAuth)
		}
		api = newRESTAPI(opts.Token)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pusher{
		api:     api,
		ignore:  newIgnoreSet(opts.ExtraIgnore),
		verbose: opts.Verbose,
		logger:  log,
	}, nil
}

// NewWithAPI builds a Pusher over a caller-provided API implementation.
func NewWithAPI(api API, opts Options) (*Pusher, error) {
	opts.api = api
	return New(opts)
}

// PushFolder ensures the named repository exists under the authenticated
// account and pushes every text file under folder into it. Binary and ignored
// files are skipped; per-file remote failures are collected in the result; an
// authentication failure aborts the whole push.
func (p *Pusher) PushFolder(ctx context.Context, repoName, folder, commitMessage string) (*Result, error) {
	if strings.TrimSpace(repoName) == "" {
		return nil, errors.New("repository name is required")
	}
	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	info, err := os.Stat(absFolder)
	if err != nil {
		return nil, fmt.Errorf("local folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absFolder)
	}

	owner, err := p.api.AuthenticatedLogin(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve authenticated user: %w", err)
	}

	exists, err := p.api.RepoExists(ctx, owner, repoName)
	if err != nil {
		return nil, fmt.Errorf("check repository %s/%s: %w", owner, repoName, err)
	}
	if !exists {
		logger.Info(p.logger, "creating repository", map[string]any{"repo": owner + "/" + repoName})
		if err := p.api.CreateRepo(ctx, repoName); err != nil {
			return nil, fmt.Errorf("create repository %s: %w", repoName, err)
		}
	}

	result := &Result{Repo: owner + "/" + repoName}
	err = filepath.WalkDir(absFolder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn(p.logger, "walk error, skipping", map[string]any{"path": path, "error": err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != absFolder && p.ignore.match(d.Name()) {
				logger.Debug(p.verbose, p.logger, "ignoring directory", map[string]any{"path": path})
				return fs.SkipDir
			}
			return nil
		}
		if p.ignore.match(d.Name()) {
			logger.Debug(p.verbose, p.logger, "ignoring file", map[string]any{"path": path})
			result.Skipped++
			return nil
		}

		rel, err := filepath.Rel(absFolder, path)
		if err != nil {
			return nil
		}
		remotePath := filepath.ToSlash(rel)

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn(p.logger, "unreadable file, skipping", map[string]any{"path": path, "error": err.Error()})
			result.Skipped++
			return nil
		}
		if !utf8.Valid(content) {
			logger.Debug(p.verbose, p.logger, "binary file, skipping", map[string]any{"path": path})
			result.Skipped++
			return nil
		}

		if err := p.pushFile(ctx, owner, repoName, remotePath, commitMessage, content, result); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logger.Info(p.logger, "push complete", map[string]any{
		"repo": result.Repo, "created": result.Created, "updated": result.Updated,
		"skipped": result.Skipped, "failed": len(result.Failed),
	})
	return result, nil
}

// pushFile creates or updates one remote file. Authentication errors abort;
// everything else becomes a recoverable failure entry.
func (p *Pusher) pushFile(ctx context.Context, owner, repo, remotePath, message string, content []byte, result *Result) error {
	sha, found, err := p.api.FileSHA(ctx, owner, repo, remotePath)
	if err != nil {
		if errors.Is(err, ErrAuth) {
			return err
		}
		p.recordFailure(result, remotePath, err)
		return nil
	}

	if found {
		err = p.api.UpdateFile(ctx, owner, repo, remotePath, message, content, sha)
	} else {
		err = p.api.CreateFile(ctx, owner, repo, remotePath, message, content)
	}
	if err != nil {
		if errors.Is(err, ErrAuth) {
			return err
		}
		p.recordFailure(result, remotePath, err)
		return nil
	}

	if found {
		result.Updated++
		logger.Debug(p.verbose, p.logger, "updated file", map[string]any{"path": remotePath})
	} else {
		result.Created++
		logger.Debug(p.verbose, p.logger, "created file", map[string]any{"path": remotePath})
	}
	return nil
}

func (p *Pusher) recordFailure(result *Result, path string, err error) {
	logger.Warn(p.logger, "file push failed", map[string]any{"path": path, "error": err.Error()})
	result.Failed = append(result.Failed, FileFailure{Path: path, Reason: err.Error()})
}
