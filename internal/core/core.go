// Package core drives one listing run: it validates the requested roots,
// pulls raw entries from the walker, enriches them, rebuilds the hierarchy
// when a tree is requested, sorts, hands the result to a renderer, and
// folds every partial failure into a single Severity.
//
// Collaborators are injected through Dependencies so the run can be driven
// by fakes in tests.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/harrison/kgls/internal/enrich"
	"github.com/harrison/kgls/internal/fileutil"
	"github.com/harrison/kgls/internal/logger"
	"github.com/harrison/kgls/internal/models"
	"github.com/harrison/kgls/internal/sorter"
	"github.com/harrison/kgls/internal/tree"
)

// Source is a pull-based stream of raw entries.
type Source interface {
	// Next returns the next entry. io.EOF or a context error ends the
	// stream; any other error describes one unreadable path.
	Next(ctx context.Context) (models.RawEntry, error)
	Close()
}

// SourceFactory opens a Source over the validated roots.
type SourceFactory func(ctx context.Context, roots []string, opts fileutil.WalkOptions) Source

// Enricher turns a raw entry into a display record.
type Enricher interface {
	Enrich(ctx context.Context, raw models.RawEntry) *models.Record
}

// Renderer writes the final listing.
type Renderer interface {
	RenderFlat(w io.Writer, records []*models.Record) error
	RenderTree(w io.Writer, roots []*models.Record) error
}

// Logger receives run diagnostics.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogWarn(message string)
	LogSummary(stats models.RunStats)
}

// Recursion controls descent in flat layouts. Depth also bounds the tree
// layout; 0 means unlimited.
type Recursion struct {
	Enabled bool
	Depth   int
}

// Options is the per-run listing policy.
type Options struct {
	Layout      models.Layout
	Recursion   Recursion
	Sort        sorter.Criteria
	Display     models.DisplayFilter
	IgnoreGlobs []string
	Workers     int
}

// maxDepth is the deepest level the walker yields below a root.
func (o Options) maxDepth() int {
	if o.Layout != models.LayoutTree && !o.Recursion.Enabled {
		return 1
	}
	if o.Recursion.Depth <= 0 {
		return fileutil.Unlimited
	}
	return o.Recursion.Depth
}

// Dependencies are the collaborators of a run. Renderer is required; other
// zero values are replaced with the production implementations by New.
type Dependencies struct {
	Source   SourceFactory
	Enricher Enricher
	Renderer Renderer
	Logger   Logger
	Stdout   io.Writer
	Stderr   io.Writer
	Stat     func(path string) (fs.FileInfo, error)
}

// Core runs listings. A Core is single-use per Run call and must not run
// concurrently with itself.
type Core struct {
	opts Options
	deps Dependencies
}

// New creates a Core.
func New(opts Options, deps Dependencies) *Core {
	if deps.Source == nil {
		deps.Source = WalkerSource
	}
	if deps.Enricher == nil {
		deps.Enricher = enrich.New(enrich.Options{})
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Stat == nil {
		deps.Stat = os.Stat
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Core{opts: opts, deps: deps}
}

// WalkerSource opens the concurrent filesystem walker.
func WalkerSource(ctx context.Context, roots []string, opts fileutil.WalkOptions) Source {
	return fileutil.NewStream(ctx, roots, opts)
}

// run holds the state of one Run call.
type run struct {
	severity models.Severity
	stats    models.RunStats
}

// Run lists roots and returns the highest severity observed.
// Cancelling ctx ends the walk early; whatever was gathered is rendered.
func (c *Core) Run(ctx context.Context, roots []string) models.Severity {
	started := time.Now()
	r := &run{}

	valid := c.validRoots(r, roots)
	if len(valid) == 0 {
		return r.severity
	}

	records := c.collect(ctx, r, valid)

	var err error
	if c.opts.Layout == models.LayoutTree {
		err = c.renderTree(r, records)
	} else {
		r.stats.Roots = len(records)
		sorter.SortLevel(records, c.opts.Sort)
		err = c.deps.Renderer.RenderFlat(c.deps.Stdout, records)
	}
	if err != nil {
		c.deps.Logger.LogDebug(fmt.Sprintf("render: %v", err))
	}

	r.stats.Duration = time.Since(started)
	c.deps.Logger.LogSummary(r.stats)
	return r.severity
}

func (c *Core) validRoots(r *run, roots []string) []string {
	valid := make([]string, 0, len(roots))
	for _, root := range roots {
		if _, err := c.deps.Stat(root); err != nil {
			c.reportTraversal(r, &models.TraversalError{Path: root, Err: err})
			continue
		}
		valid = append(valid, root)
	}
	return valid
}

// collect drains the source, enriching every entry in arrival order.
func (c *Core) collect(ctx context.Context, r *run, roots []string) []*models.Record {
	src := c.deps.Source(ctx, roots, fileutil.WalkOptions{
		MaxDepth:    c.opts.maxDepth(),
		Display:     c.opts.Display,
		IgnoreGlobs: c.opts.IgnoreGlobs,
		Workers:     c.opts.Workers,
	})
	defer src.Close()

	var records []*models.Record
	for {
		raw, err := src.Next(ctx)
		if err != nil {
			if endOfStream(err) {
				if !errors.Is(err, io.EOF) {
					c.deps.Logger.LogDebug(fmt.Sprintf("walk ended early: %v", err))
				}
				return records
			}
			r.stats.Errors++
			c.reportTraversal(r, err)
			continue
		}
		c.deps.Logger.LogTrace(fmt.Sprintf("entry %s (depth %d)", raw.Path, raw.Depth))
		records = append(records, c.deps.Enricher.Enrich(ctx, raw))
		r.stats.Entries++
	}
}

func (c *Core) renderTree(r *run, records []*models.Record) error {
	entries := make([]tree.Entry, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		// overlapping roots can reach the same path twice
		if _, dup := seen[rec.Path]; dup {
			continue
		}
		seen[rec.Path] = struct{}{}
		entries = append(entries, tree.Entry{Record: rec, Depth: rec.Depth})
	}

	roots, orphans := tree.Build(entries)
	for _, o := range orphans {
		c.deps.Logger.LogWarn(fmt.Sprintf("Entry '%s' orphaned (parent '%s' was filtered)", o.Path, o.Parent))
	}
	r.stats.Roots = len(roots)
	r.stats.Orphans = len(orphans)
	r.stats.Entries = 0
	for _, root := range roots {
		r.stats.Entries += root.Count()
	}

	sorter.Sort(roots, c.opts.Sort)
	return c.deps.Renderer.RenderTree(c.deps.Stdout, roots)
}

func (c *Core) reportTraversal(r *run, err error) {
	var terr *models.TraversalError
	if errors.As(err, &terr) {
		c.reportf(r, "cannot access '%s': %v", terr.Path, cause(terr.Err))
		return
	}
	c.reportf(r, "%v", err)
}

// reportf writes a diagnostic to stderr and raises the run to Minor.
func (c *Core) reportf(r *run, format string, args ...any) {
	fmt.Fprintf(c.deps.Stderr, "kgls: "+format+"\n", args...)
	r.severity.Raise(models.SeverityMinor)
}

// endOfStream reports whether err terminates the source rather than
// describing one failed path.
func endOfStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// cause strips the path from fs errors, which the caller already prints.
func cause(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return models.ErrNotFound
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
