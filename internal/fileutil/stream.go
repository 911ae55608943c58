package fileutil

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/harrison/kgls/internal/models"
	"golang.org/x/sync/errgroup"
)

// Unlimited is the MaxDepth value that never stops descent.
const Unlimited = math.MaxInt

const defaultBuffer = 256

// WalkOptions configures one walk.
type WalkOptions struct {
	MaxDepth    int                  // deepest level yielded below a directory root
	Display     models.DisplayFilter // hidden and directory-only filtering
	IgnoreGlobs []string             // doublestar patterns, matched on name and root-relative path
	Workers     int                  // concurrent directory readers, 0 = GOMAXPROCS
	Buffer      int                  // result channel capacity, 0 = default
}

func (o WalkOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o WalkOptions) buffer() int {
	if o.Buffer > 0 {
		return o.Buffer
	}
	return defaultBuffer
}

func (o WalkOptions) showHidden() bool {
	return o.Display == models.DisplayAlmostAll || o.Display == models.DisplayAll
}

// descentLimit is the deepest level yielded below a root. Directory-only
// walks spend one level on the root itself.
func (o WalkOptions) descentLimit() int {
	if o.Display == models.DisplayDirectoryOnly {
		return o.MaxDepth - 1
	}
	return o.MaxDepth
}

type result struct {
	entry models.RawEntry
	err   error
}

// Stream delivers the entries of a running walk. It is safe to call Next
// from one goroutine while the walk proceeds in others.
type Stream struct {
	opts    WalkOptions
	matcher globMatcher
	group   *errgroup.Group
	results chan result
	cancel  context.CancelFunc
	once    sync.Once
}

// NewStream starts walking roots in the background and returns the stream
// of discovered entries. Cancelling ctx or calling Close stops the walk.
func NewStream(ctx context.Context, roots []string, opts WalkOptions) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	s := &Stream{
		opts:    opts,
		matcher: newGlobMatcher(opts.IgnoreGlobs),
		group:   g,
		results: make(chan result, opts.buffer()),
		cancel:  cancel,
	}

	go func() {
		for _, root := range roots {
			if err := s.walkRoot(gctx, root); err != nil {
				break
			}
		}
		_ = g.Wait()
		close(s.results)
	}()

	return s
}

// Next blocks until the next entry is available. It returns io.EOF once the
// walk is complete, ctx.Err() when ctx is done, and a *models.TraversalError
// for a path that could not be read.
func (s *Stream) Next(ctx context.Context) (models.RawEntry, error) {
	select {
	case r, ok := <-s.results:
		if !ok {
			return models.RawEntry{}, io.EOF
		}
		return r.entry, r.err
	case <-ctx.Done():
		return models.RawEntry{}, ctx.Err()
	}
}

// Close stops the walk and waits for every worker to exit.
// It is safe to call more than once.
func (s *Stream) Close() {
	s.once.Do(func() {
		s.cancel()
		for range s.results {
		}
	})
}

func (s *Stream) send(ctx context.Context, r result) error {
	select {
	case s.results <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Stream) sendErr(ctx context.Context, path string, err error) error {
	return s.send(ctx, result{err: &models.TraversalError{Path: path, Err: err}})
}

func (s *Stream) walkRoot(ctx context.Context, root string) error {
	clean := filepath.Clean(root)

	// Roots follow symlinks so "kgls link-to-dir" lists the target's contents.
	info, err := os.Stat(clean)
	if err != nil {
		return s.sendErr(ctx, root, err)
	}

	limit := s.opts.descentLimit()
	if info.IsDir() && s.opts.Display != models.DisplayDirectoryOnly {
		if limit < 1 {
			return nil
		}
		return s.walkDir(ctx, clean, clean, 1)
	}

	if linfo, err := os.Lstat(clean); err == nil && !info.IsDir() {
		info = linfo
	}
	expanded := info.IsDir() && limit >= 1
	entry := models.RawEntry{Path: clean, Name: root, Depth: 0, Info: info, Expanded: expanded}
	if err := s.send(ctx, result{entry: entry}); err != nil {
		return err
	}
	if expanded {
		return s.walkDir(ctx, clean, clean, 1)
	}
	return nil
}

// walkDir yields the contents of dir at the given depth and schedules
// subdirectories on the pool, walking them inline when the pool is full.
func (s *Stream) walkDir(ctx context.Context, root, dir string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		if err := s.sendErr(ctx, dir, readErr); err != nil {
			return err
		}
	}

	limit := s.opts.descentLimit()
	dirsOnly := s.opts.Display == models.DisplayDirectoryOnly

	for _, de := range entries {
		name := de.Name()
		if !s.opts.showHidden() && IsHiddenName(name) {
			continue
		}

		path := filepath.Join(dir, name)
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = name
		}
		if s.matcher.match(name, rel) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			if err := s.sendErr(ctx, path, err); err != nil {
				return err
			}
			continue
		}
		if dirsOnly && !info.IsDir() {
			continue
		}

		expanded := info.IsDir() && depth < limit
		entry := models.RawEntry{Path: path, Name: name, Depth: depth, Info: info, Expanded: expanded}
		if err := s.send(ctx, result{entry: entry}); err != nil {
			return err
		}

		if expanded {
			s.spawn(ctx, root, path, depth+1)
		}
	}
	return ctx.Err()
}

func (s *Stream) spawn(ctx context.Context, root, dir string, depth int) {
	walk := func() error {
		return s.walkDir(ctx, root, dir, depth)
	}
	if !s.group.TryGo(walk) {
		_ = walk()
	}
}
