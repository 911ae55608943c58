// Package gitstatus resolves the git status of listed paths.
//
// The first lookup inside a repository runs "git status" once and keeps the
// snapshot for the rest of the run. Paths outside any repository, or runs
// without a git binary, report GitStatusDefault.
package gitstatus

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harrison/kgls/internal/models"
)

// CommandRunner executes git with args in dir and returns stdout.
type CommandRunner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// Cache holds one status snapshot per repository.
// It is safe for concurrent use.
type Cache struct {
	// Run executes git commands (optional, uses exec.CommandContext if nil)
	Run CommandRunner

	mu       sync.Mutex
	toplevel map[string]string // directory -> repository root ("" = not a repository)
	repos    map[string]*snapshot
}

// NewCache creates an empty Cache that shells out to git.
func NewCache() *Cache {
	return &Cache{
		toplevel: make(map[string]string),
		repos:    make(map[string]*snapshot),
	}
}

// Status returns the status of path. Directories report the highest status
// found below them. Cancelling ctx kills a running git command.
func (c *Cache) Status(ctx context.Context, path string) models.GitStatus {
	abs, err := filepath.Abs(path)
	if err != nil {
		return models.GitStatusDefault
	}

	dir := abs
	if info, err := os.Lstat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	top := c.findTopLevel(ctx, dir)
	if top == "" {
		return models.GitStatusDefault
	}
	snap := c.snapshot(ctx, top)
	if snap == nil {
		return models.GitStatusDefault
	}

	// git reports the repository root with symlinks resolved.
	real := abs
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		real = filepath.Join(resolved, filepath.Base(abs))
	}
	rel, err := filepath.Rel(top, real)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return models.GitStatusDefault
	}
	return snap.lookup(filepath.ToSlash(rel))
}

func (c *Cache) findTopLevel(ctx context.Context, dir string) string {
	if top, ok := c.toplevel[dir]; ok {
		return top
	}
	out, err := c.run(ctx, dir, "rev-parse", "--show-toplevel")
	top := ""
	if err == nil {
		top = filepath.Clean(strings.TrimSpace(string(out)))
		if resolved, err := filepath.EvalSymlinks(top); err == nil {
			top = resolved
		}
	}
	c.toplevel[dir] = top
	return top
}

func (c *Cache) snapshot(ctx context.Context, top string) *snapshot {
	if s, ok := c.repos[top]; ok {
		return s
	}
	out, err := c.run(ctx, top, "status", "--porcelain=v1", "-z", "--ignored")
	var s *snapshot
	if err == nil {
		s = parsePorcelain(out)
	}
	c.repos[top] = s
	return s
}

func (c *Cache) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	if c.Run != nil {
		return c.Run(ctx, dir, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// snapshot is the parsed output of one "git status" call.
// All keys are slash-separated paths relative to the repository root.
type snapshot struct {
	files  map[string]models.GitStatus // exact entries
	trees  map[string]models.GitStatus // "dir/" entries covering everything below
	rollup map[string]models.GitStatus // highest status of anything below a directory
}

func (s *snapshot) lookup(rel string) models.GitStatus {
	if rel == "." {
		rel = ""
	}
	status := models.GitStatusDefault
	raise := func(st models.GitStatus) {
		if st > status {
			status = st
		}
	}

	if st, ok := s.files[rel]; ok {
		raise(st)
	}
	if st, ok := s.rollup[rel]; ok {
		raise(st)
	}
	for prefix := rel; prefix != ""; prefix = parentOf(prefix) {
		if st, ok := s.trees[prefix]; ok {
			raise(st)
		}
	}

	if status == models.GitStatusDefault {
		return models.GitStatusUnmodified
	}
	return status
}

// parsePorcelain parses "git status --porcelain=v1 -z" output.
// Records are NUL-terminated "XY path"; renames and copies are followed by
// an extra record holding the original path.
func parsePorcelain(out []byte) *snapshot {
	s := &snapshot{
		files:  make(map[string]models.GitStatus),
		trees:  make(map[string]models.GitStatus),
		rollup: make(map[string]models.GitStatus),
	}

	fields := strings.Split(string(out), "\x00")
	for i := 0; i < len(fields); i++ {
		rec := fields[i]
		if len(rec) < 4 {
			continue
		}
		x, y, path := rec[0], rec[1], rec[3:]
		if x == 'R' || x == 'C' {
			i++ // skip the source path
		}

		status := statusFromCodes(x, y)
		if strings.HasSuffix(path, "/") {
			path = strings.TrimSuffix(path, "/")
			s.trees[path] = max(s.trees[path], status)
		} else {
			s.files[path] = max(s.files[path], status)
		}
		for dir := parentOf(path); dir != ""; dir = parentOf(dir) {
			s.rollup[dir] = max(s.rollup[dir], status)
		}
		s.rollup[""] = max(s.rollup[""], status)
	}
	return s
}

// statusFromCodes maps the two-letter porcelain code to the highest
// applicable status.
func statusFromCodes(x, y byte) models.GitStatus {
	switch {
	case x == '?' && y == '?':
		return models.GitStatusNewInWorkdir
	case x == '!' && y == '!':
		return models.GitStatusIgnored
	case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
		return models.GitStatusConflicted
	}
	return max(indexStatus(x), worktreeStatus(y))
}

func indexStatus(c byte) models.GitStatus {
	switch c {
	case 'A', 'C':
		return models.GitStatusNewInIndex
	case 'M':
		return models.GitStatusModified
	case 'D':
		return models.GitStatusDeleted
	case 'R':
		return models.GitStatusRenamed
	case 'T':
		return models.GitStatusTypechange
	default:
		return models.GitStatusDefault
	}
}

func worktreeStatus(c byte) models.GitStatus {
	switch c {
	case 'M':
		return models.GitStatusModified
	case 'D':
		return models.GitStatusDeleted
	case 'T':
		return models.GitStatusTypechange
	default:
		return models.GitStatusDefault
	}
}

func parentOf(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}
